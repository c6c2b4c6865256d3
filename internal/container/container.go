package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/seabay/internal/config"
	"github.com/joshua-takyi/seabay/internal/helpers"
	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/joshua-takyi/seabay/internal/payment"
	"github.com/joshua-takyi/seabay/internal/qr"
	"github.com/joshua-takyi/seabay/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger        *slog.Logger
	MongoDBClient *mongo.Client
	Repo          *models.MongodbRepo
	TokenVerifier *helpers.TokenVerifier

	BookingService  *services.BookingService
	TicketService   *services.TicketService
	RideService     *services.RideService
	TimeslotService *services.TimeslotService
	FleetService    *services.FleetService
	ReportService   *services.ReportService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	mongoDBClient *mongo.Client,
	cld *cloudinary.Cloudinary,
	verifier *helpers.TokenVerifier,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient)

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)

	var uploader qr.Uploader
	if cld != nil {
		uploader = qr.NewCloudinaryUploader(cld)
	}

	ticketService := services.NewTicketService(repo, repo, repo, qr.NewPNGRenderer(), uploader, logger)
	bookingService := services.NewBookingService(repo, repo, ticketService, gateway, logger, cfg.Currency, cfg.CancelCutoffHours)
	rideService := services.NewRideService(repo, logger, cfg.RideMaxDuration)
	timeslotService := services.NewTimeslotService(repo, repo, repo)
	fleetService := services.NewFleetService(repo, repo)
	reportService := services.NewReportService(repo)

	return &Container{
		Logger:          logger,
		MongoDBClient:   mongoDBClient,
		Repo:            repo,
		TokenVerifier:   verifier,
		BookingService:  bookingService,
		TicketService:   ticketService,
		RideService:     rideService,
		TimeslotService: timeslotService,
		FleetService:    fleetService,
		ReportService:   reportService,
	}
}
