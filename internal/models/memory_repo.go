package models

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/umahmood/haversine"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryWorkersRepo is an in-memory WorkersRepo used by tests and local
// development. It enforces the same email uniqueness and atomic-increment
// contracts as the Mongo implementation.
type MemoryWorkersRepo struct {
	mu      sync.RWMutex
	workers map[primitive.ObjectID]*Worker
	byEmail map[string]primitive.ObjectID
}

var _ WorkersRepo = (*MemoryWorkersRepo)(nil)

func NewMemoryWorkersRepo() *MemoryWorkersRepo {
	return &MemoryWorkersRepo{
		workers: make(map[primitive.ObjectID]*Worker),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (r *MemoryWorkersRepo) CreateWorker(ctx context.Context, worker *Worker) (*Worker, error) {
	if err := Validate.Struct(worker); err != nil {
		return nil, ErrValidation
	}
	if err := worker.BeforeCreate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[worker.Email]; exists {
		return nil, ErrDuplicateEmail
	}

	stored := *worker
	r.workers[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID

	result := stored
	return &result, nil
}

func (r *MemoryWorkersRepo) GetWorkerByID(ctx context.Context, id primitive.ObjectID) (*Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workers[id]
	if !ok {
		return nil, ErrWorkerNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *MemoryWorkersRepo) GetWorkerByEmail(ctx context.Context, email string) (*Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrWorkerNotFound
	}
	cp := *r.workers[id]
	return &cp, nil
}

func (r *MemoryWorkersRepo) GetWorkerByPhone(ctx context.Context, phone string) (*Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.workers {
		if w.Phone == phone {
			cp := *w
			return &cp, nil
		}
	}
	return nil, ErrWorkerNotFound
}

func (r *MemoryWorkersRepo) SearchByProfession(ctx context.Context, query string) ([]*Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	result := []*Worker{}
	for _, w := range r.workers {
		if strings.Contains(strings.ToLower(w.Profession), needle) {
			cp := *w
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *MemoryWorkersRepo) ListProfessions(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	professions := []string{}
	for _, w := range r.workers {
		if w.Profession != "" && !seen[w.Profession] {
			seen[w.Profession] = true
			professions = append(professions, w.Profession)
		}
	}
	sort.Strings(professions)
	return professions, nil
}

func (r *MemoryWorkersRepo) UpdateWorkerStatus(ctx context.Context, id primitive.ObjectID, status WorkerStatus) (*Worker, error) {
	if !status.IsValid() {
		return nil, ErrValidation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[id]
	if !ok {
		return nil, ErrWorkerNotFound
	}
	w.Status = status
	cp := *w
	return &cp, nil
}

func (r *MemoryWorkersRepo) UpdateWorkerLocation(ctx context.Context, id primitive.ObjectID, location string, lat, lon *float64) (*Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[id]
	if !ok {
		return nil, ErrWorkerNotFound
	}
	w.Location = location
	if lat != nil && lon != nil {
		w.Latitude = lat
		w.Longitude = lon
		w.SyncGeo()
	}
	cp := *w
	return &cp, nil
}

func (r *MemoryWorkersRepo) IncrementClickCount(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workers[id]
	if !ok {
		return ErrWorkerNotFound
	}
	w.ClickCount++
	return nil
}

func (r *MemoryWorkersRepo) FindNearby(ctx context.Context, lon, lat float64, maxMeters int) ([]*Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	origin := haversine.Coord{Lat: lat, Lon: lon}
	result := []*Worker{}
	for _, w := range r.workers {
		if w.Latitude == nil || w.Longitude == nil {
			continue
		}
		_, km := haversine.Distance(origin, haversine.Coord{Lat: *w.Latitude, Lon: *w.Longitude})
		if km*1000 <= float64(maxMeters) {
			cp := *w
			result = append(result, &cp)
		}
	}
	return result, nil
}
