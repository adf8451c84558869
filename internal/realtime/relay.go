package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/workwave/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageUpdateLocation is the only inbound message type on the live channel.
const MessageUpdateLocation = "updateLocation"

// InboundMessage is what clients push over the websocket. No response
// message is defined.
type InboundMessage struct {
	Type      string   `json:"type"`
	WorkerID  string   `json:"workerId"`
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Position is the buffered last-known position for a worker.
type Position struct {
	Location  string
	Latitude  *float64
	Longitude *float64
}

// LocationWriter flushes a buffered position into the worker store.
// *services.WorkerService satisfies it.
type LocationWriter interface {
	UpdateLocation(ctx context.Context, id primitive.ObjectID, location string, lat, lon *float64) (*models.Worker, error)
}

type pendingFlush struct {
	pos   Position
	timer *time.Timer
}

// Relay buffers the latest position per worker and flushes it to the store
// after a fixed delay. Each new position for a worker reschedules that
// worker's single pending flush instead of spawning an independent timer, so
// a stale position can never overwrite a newer one out of order. Connection
// state is irrelevant here: a pending flush survives the socket that
// submitted it.
type Relay struct {
	writer LocationWriter
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending map[primitive.ObjectID]*pendingFlush
	closed  bool
}

func NewRelay(writer LocationWriter, delay time.Duration, logger *slog.Logger) *Relay {
	return &Relay{
		writer:  writer,
		delay:   delay,
		logger:  logger,
		pending: make(map[primitive.ObjectID]*pendingFlush),
	}
}

// Submit overwrites the buffered position for the worker and (re)schedules
// its flush.
func (r *Relay) Submit(workerID string, pos Position) error {
	id, err := primitive.ObjectIDFromHex(workerID)
	if err != nil {
		return fmt.Errorf("%w: invalid worker id %q", models.ErrValidation, workerID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("relay is closed")
	}

	if p, ok := r.pending[id]; ok {
		p.pos = pos
		p.timer.Reset(r.delay)
		return nil
	}

	p := &pendingFlush{pos: pos}
	p.timer = time.AfterFunc(r.delay, func() { r.flush(id) })
	r.pending[id] = p
	return nil
}

func (r *Relay) flush(id primitive.ObjectID) {
	r.mu.Lock()
	p, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()
	if !ok {
		// Timer fired while Submit was rescheduling it; the rescheduled
		// flush already ran or will run.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.writer.UpdateLocation(ctx, id, p.pos.Location, p.pos.Latitude, p.pos.Longitude); err != nil {
		r.logger.Error("Failed to flush worker location",
			"worker_id", id.Hex(),
			"error", err,
		)
		return
	}
	r.logger.Debug("Flushed worker location", "worker_id", id.Hex())
}

// Close stops all pending timers. Buffered positions that have not flushed
// yet are dropped.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for id, p := range r.pending {
		p.timer.Stop()
		delete(r.pending, id)
	}
}
