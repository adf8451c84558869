package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/joshua-takyi/workwave/internal/helpers"
	"github.com/joshua-takyi/workwave/internal/models"
)

const otpCodeLength = 6

// CodeStore holds pending verification codes keyed by normalized phone
// number. Implementations must be safe for concurrent use; two requests may
// touch the same phone at once.
type CodeStore interface {
	Set(phone, code string)
	Get(phone string) (string, bool)
	Delete(phone string)
}

type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]string
}

var _ CodeStore = (*MemoryCodeStore)(nil)

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[string]string)}
}

func (s *MemoryCodeStore) Set(phone, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = code
}

func (s *MemoryCodeStore) Get(phone string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[phone]
	return code, ok
}

func (s *MemoryCodeStore) Delete(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, phone)
}

// OTPService owns the phone verification flow: generate a code, dispatch it
// over SMS, verify it once. Pending codes never expire; see DESIGN.md.
type OTPService struct {
	codes       CodeStore
	sender      SMSSender
	countryCode string
}

func NewOTPService(codes CodeStore, sender SMSSender, countryCode string) *OTPService {
	return &OTPService{
		codes:       codes,
		sender:      sender,
		countryCode: countryCode,
	}
}

// Generate stores a fresh 6-digit code for the phone, overwriting any
// pending one, and dispatches it. The call succeeds only if dispatch does.
func (o *OTPService) Generate(ctx context.Context, phone string) (string, error) {
	normalized := helpers.NormalizePhone(phone, o.countryCode)
	if normalized == "" {
		return "", fmt.Errorf("%w: phone is required", models.ErrValidation)
	}

	code, err := helpers.RandomNumericCode(otpCodeLength)
	if err != nil {
		return "", err
	}
	o.codes.Set(normalized, code)

	body := fmt.Sprintf("Your WorkWave verification code is %s", code)
	if err := o.sender.Send(ctx, normalized, body); err != nil {
		// The stored code is unreachable without the SMS; drop it so a
		// later Generate starts clean.
		o.codes.Delete(normalized)
		return "", err
	}
	return code, nil
}

// Verify consumes the pending code on a match. A mismatch keeps the entry so
// the caller can retry with the right code.
func (o *OTPService) Verify(ctx context.Context, phone, code string) error {
	normalized := helpers.NormalizePhone(phone, o.countryCode)
	if normalized == "" || code == "" {
		return fmt.Errorf("%w: phone and otp are required", models.ErrValidation)
	}

	pending, ok := o.codes.Get(normalized)
	if !ok {
		return models.ErrCodeNotFound
	}
	if pending != code {
		return models.ErrCodeInvalid
	}

	o.codes.Delete(normalized)
	return nil
}
