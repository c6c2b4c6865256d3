package services

import (
	"context"

	"github.com/joshua-takyi/seabay/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FleetService manages the boats and piers the admin schedules timeslots
// against.
type FleetService struct {
	boats models.BoatRepo
	piers models.PierRepo
}

func NewFleetService(boats models.BoatRepo, piers models.PierRepo) *FleetService {
	return &FleetService{
		boats: boats,
		piers: piers,
	}
}

func (fs *FleetService) CreateBoat(ctx context.Context, boat *models.Boat) (*models.Boat, error) {
	if err := models.Validate.Struct(boat); err != nil {
		return nil, models.WrapAppError(models.KindInvalid, "invalid boat data provided", err)
	}
	return fs.boats.CreateBoat(ctx, boat)
}

func (fs *FleetService) GetBoat(ctx context.Context, id primitive.ObjectID) (*models.Boat, error) {
	return fs.boats.GetBoatByID(ctx, id)
}

func (fs *FleetService) ListBoats(ctx context.Context) ([]*models.Boat, error) {
	return fs.boats.ListBoats(ctx)
}

func (fs *FleetService) UpdateBoat(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.Boat, error) {
	if len(update) == 0 {
		return nil, models.NewAppError(models.KindInvalid, "no fields to update")
	}
	return fs.boats.UpdateBoat(ctx, id, update)
}

func (fs *FleetService) DeleteBoat(ctx context.Context, id primitive.ObjectID) error {
	return fs.boats.DeleteBoat(ctx, id)
}

func (fs *FleetService) CreatePier(ctx context.Context, pier *models.Pier) (*models.Pier, error) {
	if err := models.Validate.Struct(pier); err != nil {
		return nil, models.WrapAppError(models.KindInvalid, "invalid pier data provided", err)
	}
	return fs.piers.CreatePier(ctx, pier)
}

func (fs *FleetService) GetPier(ctx context.Context, id primitive.ObjectID) (*models.Pier, error) {
	return fs.piers.GetPierByID(ctx, id)
}

func (fs *FleetService) ListPiers(ctx context.Context) ([]*models.Pier, error) {
	return fs.piers.ListPiers(ctx)
}

func (fs *FleetService) UpdatePier(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.Pier, error) {
	if len(update) == 0 {
		return nil, models.NewAppError(models.KindInvalid, "no fields to update")
	}
	return fs.piers.UpdatePier(ctx, id, update)
}

func (fs *FleetService) DeletePier(ctx context.Context, id primitive.ObjectID) error {
	return fs.piers.DeletePier(ctx, id)
}
