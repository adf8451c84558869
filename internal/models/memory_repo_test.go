package models

import (
	"context"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedWorker(t *testing.T, repo *MemoryWorkersRepo, email, profession string) *Worker {
	t.Helper()
	w, err := repo.CreateWorker(context.Background(), &Worker{
		Name:       "Test Worker",
		Phone:      "+919999999999",
		Email:      email,
		PhotoURL:   "https://cdn.test/worker_photos/photo.jpg",
		Profession: profession,
		Experience: 3,
		Location:   "Kochi",
	})
	if err != nil {
		t.Fatalf("failed to seed worker: %v", err)
	}
	return w
}

func TestCreateWorkerDuplicateEmail(t *testing.T) {
	repo := NewMemoryWorkersRepo()
	seedWorker(t, repo, "a@x.com", "Plumber")

	_, err := repo.CreateWorker(context.Background(), &Worker{
		Name:       "Another Worker",
		Phone:      "+918888888888",
		Email:      "a@x.com",
		PhotoURL:   "https://cdn.test/worker_photos/other.jpg",
		Profession: "Electrician",
		Experience: 1,
		Location:   "Chennai",
	})
	if err != ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestCreateWorkerDefaults(t *testing.T) {
	repo := NewMemoryWorkersRepo()
	w := seedWorker(t, repo, "a@x.com", "Plumber")

	if w.Status != StatusActive {
		t.Errorf("status = %q, want %q", w.Status, StatusActive)
	}
	if w.ClickCount != 0 {
		t.Errorf("click count = %d, want 0", w.ClickCount)
	}
	if w.ID.IsZero() {
		t.Error("worker was not assigned an ID")
	}
}

func TestIncrementClickCountConcurrent(t *testing.T) {
	repo := NewMemoryWorkersRepo()
	w := seedWorker(t, repo, "a@x.com", "Plumber")

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := repo.IncrementClickCount(context.Background(), w.ID); err != nil {
				t.Errorf("increment failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.GetWorkerByID(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("failed to fetch worker: %v", err)
	}
	if got.ClickCount != n {
		t.Errorf("click count = %d after %d concurrent increments", got.ClickCount, n)
	}
}

func TestSearchByProfessionSubstring(t *testing.T) {
	repo := NewMemoryWorkersRepo()
	seedWorker(t, repo, "a@x.com", "Master Plumber")
	seedWorker(t, repo, "b@x.com", "Electrician")

	matches, err := repo.SearchByProfession(context.Background(), "plumb")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Profession != "Master Plumber" {
		t.Errorf("search for %q returned %d matches", "plumb", len(matches))
	}
}

func TestListProfessionsDistinct(t *testing.T) {
	repo := NewMemoryWorkersRepo()
	seedWorker(t, repo, "a@x.com", "Plumber")
	seedWorker(t, repo, "b@x.com", "Plumber")
	seedWorker(t, repo, "c@x.com", "Electrician")

	professions, err := repo.ListProfessions(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"Electrician", "Plumber"}
	if len(professions) != len(want) {
		t.Fatalf("professions = %v, want %v", professions, want)
	}
	for i := range want {
		if professions[i] != want[i] {
			t.Errorf("professions[%d] = %q, want %q", i, professions[i], want[i])
		}
	}
}

func TestUpdateWorkerStatusUnknownID(t *testing.T) {
	repo := NewMemoryWorkersRepo()

	_, err := repo.UpdateWorkerStatus(context.Background(), primitive.NewObjectID(), StatusBusy)
	if err != ErrWorkerNotFound {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}
}

func TestFindNearby(t *testing.T) {
	repo := NewMemoryWorkersRepo()
	near := seedWorker(t, repo, "near@x.com", "Plumber")
	lat, lon := 9.9312, 76.2673 // Kochi
	if _, err := repo.UpdateWorkerLocation(context.Background(), near.ID, "Kochi", &lat, &lon); err != nil {
		t.Fatalf("failed to set location: %v", err)
	}

	far := seedWorker(t, repo, "far@x.com", "Plumber")
	farLat, farLon := 28.7041, 77.1025 // Delhi
	if _, err := repo.UpdateWorkerLocation(context.Background(), far.ID, "Delhi", &farLat, &farLon); err != nil {
		t.Fatalf("failed to set location: %v", err)
	}

	found, err := repo.FindNearby(context.Background(), 76.2700, 9.9300, 5000)
	if err != nil {
		t.Fatalf("nearby failed: %v", err)
	}
	if len(found) != 1 || found[0].Email != "near@x.com" {
		t.Errorf("nearby returned %d workers, want only the Kochi one", len(found))
	}
}
