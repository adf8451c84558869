package models

import "errors"

// Sentinel errors shared by repositories and services. Handlers map these to
// HTTP status codes with errors.Is, so wrap them rather than comparing strings.
var (
	ErrValidation     = errors.New("invalid input")
	ErrDuplicateEmail = errors.New("email is already registered")
	ErrWorkerNotFound = errors.New("worker not found")
	ErrCodeNotFound   = errors.New("no pending verification code")
	ErrCodeInvalid    = errors.New("invalid verification code")
)
