package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/joshua-takyi/workwave/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSink struct {
	mu         sync.Mutex
	uploads    int
	removed    []string
	failUpload bool
}

func (s *stubSink) Upload(ctx context.Context, r io.Reader, filename string) (*UploadedPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpload {
		return nil, io.ErrUnexpectedEOF
	}
	s.uploads++
	return &UploadedPhoto{
		URL:      "https://cdn.test/worker_photos/" + filename,
		PublicID: "worker_photos/" + filename,
	}, nil
}

func (s *stubSink) Remove(ctx context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, publicID)
	return nil
}

func validInput() RegisterWorkerInput {
	return RegisterWorkerInput{
		Name:          "Anu Thomas",
		Phone:         "9999999999",
		Email:         "anu@x.com",
		Profession:    "Plumber",
		Experience:    4,
		Location:      "Kochi",
		Photo:         strings.NewReader("jpeg bytes"),
		PhotoFilename: "anu.jpg",
	}
}

func TestRegisterWorker(t *testing.T) {
	repo := models.NewMemoryWorkersRepo()
	sink := &stubSink{}
	ws := NewWorkerService(repo, sink, "+91")

	worker, err := ws.Register(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "+919999999999", worker.Phone)
	assert.Equal(t, models.StatusActive, worker.Status)
	assert.Equal(t, int64(0), worker.ClickCount)
	assert.Contains(t, worker.PhotoURL, "anu.jpg")
	assert.Equal(t, 1, sink.uploads)
	assert.Empty(t, sink.removed)
}

func TestRegisterWithoutPhoto(t *testing.T) {
	ws := NewWorkerService(models.NewMemoryWorkersRepo(), &stubSink{}, "+91")

	in := validInput()
	in.Photo = nil
	_, err := ws.Register(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRegisterMissingFields(t *testing.T) {
	ws := NewWorkerService(models.NewMemoryWorkersRepo(), &stubSink{}, "+91")

	for _, mutate := range []func(*RegisterWorkerInput){
		func(in *RegisterWorkerInput) { in.Name = "" },
		func(in *RegisterWorkerInput) { in.Phone = "" },
		func(in *RegisterWorkerInput) { in.Email = "not-an-email" },
		func(in *RegisterWorkerInput) { in.Profession = "" },
		func(in *RegisterWorkerInput) { in.Experience = -1 },
		func(in *RegisterWorkerInput) { in.Location = "" },
	} {
		in := validInput()
		mutate(&in)
		_, err := ws.Register(context.Background(), in)
		assert.ErrorIs(t, err, models.ErrValidation)
	}
}

func TestRegisterWithCoordinatesInsteadOfLocation(t *testing.T) {
	ws := NewWorkerService(models.NewMemoryWorkersRepo(), &stubSink{}, "+91")

	lat, lon := 9.9312, 76.2673
	in := validInput()
	in.Location = ""
	in.Latitude = &lat
	in.Longitude = &lon

	worker, err := ws.Register(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, worker.Geo)
	assert.Equal(t, []float64{lon, lat}, worker.Geo.Coordinates)
}

func TestRegisterDuplicateEmailSkipsUpload(t *testing.T) {
	repo := models.NewMemoryWorkersRepo()
	sink := &stubSink{}
	ws := NewWorkerService(repo, sink, "+91")

	_, err := ws.Register(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Photo = strings.NewReader("other bytes")
	in.Name = "Someone Else"
	_, err = ws.Register(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	// The duplicate was caught before a second upload happened.
	assert.Equal(t, 1, sink.uploads)
}

// raceRepo simulates a concurrent registration slipping in between the email
// lookup and the insert: the lookup sees nothing, the unique index still
// rejects the insert.
type raceRepo struct {
	*models.MemoryWorkersRepo
}

func (r *raceRepo) CreateWorker(ctx context.Context, w *models.Worker) (*models.Worker, error) {
	return nil, models.ErrDuplicateEmail
}

func TestRegisterDuplicateOnInsertCleansUpPhoto(t *testing.T) {
	sink := &stubSink{}
	ws := NewWorkerService(&raceRepo{models.NewMemoryWorkersRepo()}, sink, "+91")

	_, err := ws.Register(context.Background(), validInput())
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	require.Len(t, sink.removed, 1)
	assert.Equal(t, "worker_photos/anu.jpg", sink.removed[0])
}

func TestRegisterUploadFailureCommitsNothing(t *testing.T) {
	repo := models.NewMemoryWorkersRepo()
	ws := NewWorkerService(repo, &stubSink{failUpload: true}, "+91")

	_, err := ws.Register(context.Background(), validInput())
	require.Error(t, err)

	_, err = repo.GetWorkerByEmail(context.Background(), "anu@x.com")
	assert.ErrorIs(t, err, models.ErrWorkerNotFound)
}

func TestSignin(t *testing.T) {
	repo := models.NewMemoryWorkersRepo()
	ws := NewWorkerService(repo, &stubSink{}, "+91")

	created, err := ws.Register(context.Background(), validInput())
	require.NoError(t, err)

	byEmail, err := ws.Signin(context.Background(), "anu@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	// Phone lookup normalizes before matching.
	byPhone, err := ws.Signin(context.Background(), "", "9999999999")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byPhone.ID)

	_, err = ws.Signin(context.Background(), "nobody@x.com", "")
	assert.ErrorIs(t, err, models.ErrWorkerNotFound)

	_, err = ws.Signin(context.Background(), "", "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateStatus(t *testing.T) {
	repo := models.NewMemoryWorkersRepo()
	ws := NewWorkerService(repo, &stubSink{}, "+91")

	created, err := ws.Register(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := ws.UpdateStatus(context.Background(), created.ID, "Busy")
	require.NoError(t, err)
	assert.Equal(t, models.StatusBusy, updated.Status)

	_, err = ws.UpdateStatus(context.Background(), created.ID, "Sleeping")
	assert.ErrorIs(t, err, models.ErrValidation)
}
