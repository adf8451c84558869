package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/workwave/internal/models"
	"github.com/joshua-takyi/workwave/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// statusFromError maps the service error taxonomy onto HTTP status codes.
// Anything unrecognized is an upstream failure.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrCodeInvalid):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrWorkerNotFound),
		errors.Is(err, models.ErrCodeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, models.ErrorResponse("internal server error"))
		return
	}
	c.JSON(status, models.ErrorResponse(err.Error()))
}

func workerIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("workerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid worker ID format"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func optionalFloatForm(c *gin.Context, field string) (*float64, error) {
	raw := c.PostForm(field)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// RegisterWorker handles the multipart registration form: required text
// fields, an optional location or coordinate pair, and the photo file.
func RegisterWorker(ws *services.WorkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		experienceRaw := c.PostForm("experience")
		if experienceRaw == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("experience is required"))
			return
		}
		experience, err := strconv.ParseFloat(experienceRaw, 64)
		if err != nil || experience < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("experience must be a non-negative number"))
			return
		}

		lat, latErr := optionalFloatForm(c, "latitude")
		lon, lonErr := optionalFloatForm(c, "longitude")
		if latErr != nil || lonErr != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("latitude and longitude must be numbers"))
			return
		}

		in := services.RegisterWorkerInput{
			Name:       c.PostForm("name"),
			Phone:      c.PostForm("phone"),
			Email:      c.PostForm("email"),
			Profession: c.PostForm("profession"),
			Experience: experience,
			Location:   c.PostForm("location"),
			Latitude:   lat,
			Longitude:  lon,
		}

		fileHeader, err := c.FormFile("photo")
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("worker photo is required"))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("failed to read worker photo"))
			return
		}
		defer file.Close()
		in.Photo = file
		in.PhotoFilename = fileHeader.Filename

		worker, err := ws.Register(c.Request.Context(), in)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(worker, "Worker registered successfully"))
	}
}

// SigninWorker looks a worker up by email or phone and returns its id.
func SigninWorker(ws *services.WorkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email"`
			Phone string `json:"phone"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		worker, err := ws.Signin(c.Request.Context(), req.Email, req.Phone)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"workerId": worker.ID.Hex()}, ""))
	}
}

func GetWorker(ws *services.WorkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := workerIDParam(c)
		if !ok {
			return
		}

		worker, err := ws.GetWorker(c.Request.Context(), id)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(worker, ""))
	}
}

func UpdateWorkerStatus(ws *services.WorkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := workerIDParam(c)
		if !ok {
			return
		}

		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("status is required"))
			return
		}

		worker, err := ws.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(worker, "Status updated"))
	}
}

func UpdateWorkerLocation(ws *services.WorkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := workerIDParam(c)
		if !ok {
			return
		}

		var req struct {
			Location  string   `json:"location"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		worker, err := ws.UpdateLocation(c.Request.Context(), id, req.Location, req.Latitude, req.Longitude)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(worker, "Location updated"))
	}
}

func ListProfessions(ws *services.WorkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		professions, err := ws.ListProfessions(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(professions, ""))
	}
}

func SearchByProfession(ws *services.WorkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Param("profession")
		if query == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("profession is required"))
			return
		}

		workers, err := ws.SearchByProfession(c.Request.Context(), query)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(workers, ""))
	}
}

func IncrementCallCounter(ws *services.WorkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := workerIDParam(c)
		if !ok {
			return
		}

		if err := ws.IncrementClicks(c.Request.Context(), id); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Counter incremented"))
	}
}

// NearbyWorkers returns workers with a stored position within the radius.
func NearbyWorkers(ws *services.WorkerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
		lon, lonErr := strconv.ParseFloat(c.Query("longitude"), 64)
		if latErr != nil || lonErr != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("latitude and longitude query parameters are required"))
			return
		}
		radius, err := strconv.Atoi(c.DefaultQuery("radius", "5000"))
		if err != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("radius must be a positive number of meters"))
			return
		}

		workers, err := ws.Nearby(c.Request.Context(), lat, lon, radius)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(workers, ""))
	}
}
