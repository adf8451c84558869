package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/workwave/internal/config"
	"github.com/joshua-takyi/workwave/internal/models"
	"github.com/joshua-takyi/workwave/internal/realtime"
	"github.com/joshua-takyi/workwave/internal/services"
	twilio "github.com/twilio/twilio-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger        *slog.Logger
	Config        *config.Config
	MongoDBClient *mongo.Client
	WorkersRepo   *models.MongodbRepo
	WorkerService *services.WorkerService
	OTPService    *services.OTPService
	Relay         *realtime.Relay
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	cld *cloudinary.Cloudinary,
	twilioClient *twilio.RestClient,
	mongoDBClient *mongo.Client,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient)
	sink := services.NewCloudinarySink(cld)
	sender := services.NewTwilioSender(twilioClient, cfg.TwilioFromPhone)

	workerService := services.NewWorkerService(repo, sink, cfg.DefaultCountryCode)
	otpService := services.NewOTPService(services.NewMemoryCodeStore(), sender, cfg.DefaultCountryCode)
	relay := realtime.NewRelay(workerService, cfg.LocationFlushDelay, logger)

	return &Container{
		Logger:        logger,
		Config:        cfg,
		MongoDBClient: mongoDBClient,
		WorkersRepo:   repo,
		WorkerService: workerService,
		OTPService:    otpService,
		Relay:         relay,
	}
}
