package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/joshua-takyi/workwave/internal/helpers"
	"github.com/joshua-takyi/workwave/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkerService struct {
	workersRepo models.WorkersRepo
	photos      PhotoSink
	countryCode string
}

func NewWorkerService(workersRepo models.WorkersRepo, photos PhotoSink, countryCode string) *WorkerService {
	return &WorkerService{
		workersRepo: workersRepo,
		photos:      photos,
		countryCode: countryCode,
	}
}

type RegisterWorkerInput struct {
	Name       string   `validate:"required"`
	Phone      string   `validate:"required"`
	Email      string   `validate:"required,email"`
	Profession string   `validate:"required"`
	Experience float64  `validate:"gte=0"`
	Location   string
	Latitude   *float64
	Longitude  *float64

	Photo         io.Reader
	PhotoFilename string
}

// Register validates the input, pushes the photo to the upload sink and
// inserts the worker. The store's unique email index is the source of truth
// for duplicates; the lookup beforehand only spares an upload in the common
// case. If the insert still hits the index, the uploaded photo is removed
// again so it does not leak.
func (ws *WorkerService) Register(ctx context.Context, in RegisterWorkerInput) (*models.Worker, error) {
	if in.Photo == nil {
		return nil, fmt.Errorf("%w: worker photo is required", models.ErrValidation)
	}
	if err := models.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if in.Location == "" && (in.Latitude == nil || in.Longitude == nil) {
		return nil, fmt.Errorf("%w: location or a latitude/longitude pair is required", models.ErrValidation)
	}

	phone := helpers.NormalizePhone(in.Phone, ws.countryCode)

	if _, err := ws.workersRepo.GetWorkerByEmail(ctx, in.Email); err == nil {
		return nil, models.ErrDuplicateEmail
	} else if !errors.Is(err, models.ErrWorkerNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %v", err)
	}

	photo, err := ws.photos.Upload(ctx, in.Photo, in.PhotoFilename)
	if err != nil {
		return nil, err
	}

	worker := &models.Worker{
		Name:       in.Name,
		Phone:      phone,
		Email:      in.Email,
		PhotoURL:   photo.URL,
		Profession: in.Profession,
		Experience: in.Experience,
		Location:   in.Location,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
	}

	created, err := ws.workersRepo.CreateWorker(ctx, worker)
	if err != nil {
		if removeErr := ws.photos.Remove(ctx, photo.PublicID); removeErr != nil {
			return nil, fmt.Errorf("insert failed (%v) and photo cleanup failed: %v", err, removeErr)
		}
		return nil, err
	}
	return created, nil
}

// Signin looks a worker up by email or, failing that, by phone.
func (ws *WorkerService) Signin(ctx context.Context, email, phone string) (*models.Worker, error) {
	if email == "" && phone == "" {
		return nil, fmt.Errorf("%w: email or phone is required", models.ErrValidation)
	}
	if email != "" {
		return ws.workersRepo.GetWorkerByEmail(ctx, email)
	}
	return ws.workersRepo.GetWorkerByPhone(ctx, helpers.NormalizePhone(phone, ws.countryCode))
}

func (ws *WorkerService) GetWorker(ctx context.Context, id primitive.ObjectID) (*models.Worker, error) {
	return ws.workersRepo.GetWorkerByID(ctx, id)
}

func (ws *WorkerService) SearchByProfession(ctx context.Context, query string) ([]*models.Worker, error) {
	return ws.workersRepo.SearchByProfession(ctx, query)
}

func (ws *WorkerService) ListProfessions(ctx context.Context) ([]string, error) {
	return ws.workersRepo.ListProfessions(ctx)
}

func (ws *WorkerService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Worker, error) {
	s := models.WorkerStatus(status)
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: status must be %s or %s", models.ErrValidation, models.StatusActive, models.StatusBusy)
	}
	return ws.workersRepo.UpdateWorkerStatus(ctx, id, s)
}

func (ws *WorkerService) UpdateLocation(ctx context.Context, id primitive.ObjectID, location string, lat, lon *float64) (*models.Worker, error) {
	if location == "" && (lat == nil || lon == nil) {
		return nil, fmt.Errorf("%w: location or a latitude/longitude pair is required", models.ErrValidation)
	}
	return ws.workersRepo.UpdateWorkerLocation(ctx, id, location, lat, lon)
}

func (ws *WorkerService) IncrementClicks(ctx context.Context, id primitive.ObjectID) error {
	return ws.workersRepo.IncrementClickCount(ctx, id)
}

func (ws *WorkerService) Nearby(ctx context.Context, lat, lon float64, maxMeters int) ([]*models.Worker, error) {
	if maxMeters <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", models.ErrValidation)
	}
	return ws.workersRepo.FindNearby(ctx, lon, lat, maxMeters)
}
