package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	WorkerDbName  = "workwave"
	WorkerColName = "workers"
)

type WorkerStatus string

const (
	StatusActive WorkerStatus = "Active"
	StatusBusy   WorkerStatus = "Busy"
)

// GeoPoint is the GeoJSON form of a worker position, kept alongside the raw
// latitude/longitude so the collection can carry a 2dsphere index.
type GeoPoint struct {
	Type        string    `bson:"type" json:"-"`
	Coordinates []float64 `bson:"coordinates" json:"-"` // [longitude, latitude]
}

type Worker struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name" validate:"required"`
	Phone      string             `bson:"phone" json:"phone" validate:"required"`
	Email      string             `bson:"email" json:"email" validate:"required,email"`
	PhotoURL   string             `bson:"photo_url" json:"photoURL" validate:"required,url"`
	Profession string             `bson:"profession" json:"profession" validate:"required"`
	Experience float64            `bson:"experience" json:"experience" validate:"gte=0"`
	Location   string             `bson:"location" json:"location"`
	Latitude   *float64           `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude  *float64           `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Geo        *GeoPoint          `bson:"geo,omitempty" json:"-"`
	Status     WorkerStatus       `bson:"status" json:"status"`
	ClickCount int64              `bson:"click_count" json:"clickCount"`
	PlanType   string             `bson:"plan_type,omitempty" json:"planType,omitempty"`
	PlanLimit  int                `bson:"plan_limit,omitempty" json:"planLimit,omitempty"`
	CreatedAt  time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt  time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

func (s WorkerStatus) IsValid() bool {
	return s == StatusActive || s == StatusBusy
}

// BeforeCreate fills in identity, defaults and timestamps prior to insertion.
func (w *Worker) BeforeCreate() error {
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	if w.Status == "" {
		w.Status = StatusActive
	}
	if !w.Status.IsValid() {
		return fmt.Errorf("%w: status must be %s or %s", ErrValidation, StatusActive, StatusBusy)
	}
	if w.Location == "" {
		w.Location = "Location not set"
	}
	w.SyncGeo()
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now
	return nil
}

// SyncGeo rebuilds the GeoJSON point from the raw coordinates. A worker with
// no coordinates carries no geo field and is simply absent from nearby
// queries.
func (w *Worker) SyncGeo() {
	if w.Latitude == nil || w.Longitude == nil {
		w.Geo = nil
		return
	}
	w.Geo = &GeoPoint{
		Type:        "Point",
		Coordinates: []float64{*w.Longitude, *w.Latitude},
	}
}
