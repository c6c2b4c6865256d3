package services

import (
	"context"
	"fmt"

	"github.com/joshua-takyi/seabay/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TimeslotService struct {
	timeslots models.TimeslotRepo
	boats     models.BoatRepo
	piers     models.PierRepo
}

func NewTimeslotService(timeslots models.TimeslotRepo, boats models.BoatRepo, piers models.PierRepo) *TimeslotService {
	return &TimeslotService{
		timeslots: timeslots,
		boats:     boats,
		piers:     piers,
	}
}

func (tss *TimeslotService) CreateTimeslot(ctx context.Context, slot *models.Timeslot) (*models.Timeslot, error) {
	if err := models.Validate.Struct(slot); err != nil {
		return nil, models.WrapAppError(models.KindInvalid, "invalid timeslot data provided", err)
	}

	boat, err := tss.boats.GetBoatByID(ctx, slot.BoatID)
	if err != nil {
		return nil, err
	}
	if boat.Status != models.BoatAvailable {
		return nil, models.NewAppError(models.KindNotAvailable, fmt.Sprintf("boat is %s", boat.Status))
	}
	if slot.MaxCapacity > boat.Capacity {
		return nil, models.NewAppError(models.KindInvalid,
			fmt.Sprintf("max capacity %d exceeds boat capacity %d", slot.MaxCapacity, boat.Capacity))
	}

	pier, err := tss.piers.GetPierByID(ctx, slot.PierID)
	if err != nil {
		return nil, err
	}
	if !pier.IsActive {
		return nil, models.NewAppError(models.KindNotAvailable, "pier is not active")
	}

	return tss.timeslots.CreateTimeslot(ctx, slot)
}

func (tss *TimeslotService) GetTimeslot(ctx context.Context, id primitive.ObjectID) (*models.Timeslot, error) {
	return tss.timeslots.GetTimeslotByID(ctx, id)
}

func (tss *TimeslotService) ListTimeslots(ctx context.Context, filter models.TimeslotFilter, offset, limit int) ([]*models.Timeslot, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, models.NewAppError(models.KindInvalid, "invalid offset or limit")
	}
	return tss.timeslots.ListTimeslots(ctx, filter, offset, limit)
}

// UpdateTimeslot only succeeds while the slot has no bookings; the repo
// enforces that atomically.
func (tss *TimeslotService) UpdateTimeslot(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.Timeslot, error) {
	if len(update) == 0 {
		return nil, models.NewAppError(models.KindInvalid, "no fields to update")
	}
	// Capacity bookkeeping and status are never edited directly.
	for _, field := range []string{"booked_capacity", "status", "_id", "created_at"} {
		delete(update, field)
	}
	if len(update) == 0 {
		return nil, models.NewAppError(models.KindInvalid, "no updatable fields provided")
	}
	return tss.timeslots.UpdateTimeslot(ctx, id, update)
}

func (tss *TimeslotService) DeleteTimeslot(ctx context.Context, id primitive.ObjectID) error {
	return tss.timeslots.DeleteTimeslot(ctx, id)
}
