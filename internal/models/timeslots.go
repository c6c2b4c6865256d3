package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TimeslotColName = "timeslots"
)

type TimeslotStatus string

const (
	TimeslotScheduled  TimeslotStatus = "scheduled"
	TimeslotInProgress TimeslotStatus = "in_progress"
	TimeslotCompleted  TimeslotStatus = "completed"
	TimeslotCancelled  TimeslotStatus = "cancelled"
)

type Timeslot struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PierID         primitive.ObjectID `bson:"pier_id" json:"pier_id" validate:"required"`
	BoatID         primitive.ObjectID `bson:"boat_id" json:"boat_id" validate:"required"`
	Date           time.Time          `bson:"date" json:"date" validate:"required"`
	StartTime      string             `bson:"start_time" json:"start_time" validate:"required"` // HH:MM (24h)
	EndTime        string             `bson:"end_time" json:"end_time" validate:"required"`     // HH:MM (24h)
	MaxCapacity    int                `bson:"max_capacity" json:"max_capacity" validate:"required,min=1"`
	BookedCapacity int                `bson:"booked_capacity" json:"booked_capacity"`
	Price          float64            `bson:"price" json:"price" validate:"min=0"`
	IsAvailable    bool               `bson:"is_available" json:"is_available"`
	Status         TimeslotStatus     `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt      time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// StartsAt combines the date with the HH:MM start time.
func (t *Timeslot) StartsAt() time.Time {
	day := t.Date.UTC()
	parsed, err := time.Parse("15:04", t.StartTime)
	if err != nil {
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
}

func (t *Timeslot) IsFullyBooked() bool {
	return t.BookedCapacity >= t.MaxCapacity
}

func (t *Timeslot) IsAvailableForBooking() bool {
	return t.IsAvailable && !t.IsFullyBooked() && t.Status == TimeslotScheduled
}

type TimeslotRepo interface {
	CreateTimeslot(ctx context.Context, slot *Timeslot) (*Timeslot, error)
	GetTimeslotByID(ctx context.Context, id primitive.ObjectID) (*Timeslot, error)
	ListTimeslots(ctx context.Context, filter TimeslotFilter, offset, limit int) ([]*Timeslot, int, error)
	UpdateTimeslot(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*Timeslot, error)
	DeleteTimeslot(ctx context.Context, id primitive.ObjectID) error
	ReserveCapacity(ctx context.Context, id primitive.ObjectID, seats int) (*Timeslot, error)
	ReleaseCapacity(ctx context.Context, id primitive.ObjectID, seats int) error
}

type TimeslotFilter struct {
	PierID        *primitive.ObjectID
	BoatID        *primitive.ObjectID
	Date          *time.Time
	OnlyAvailable bool
}

func (mdb *MongodbRepo) CreateTimeslot(ctx context.Context, slot *Timeslot) (*Timeslot, error) {
	col, err := mdb.GetCollection(ctx, DbName, TimeslotColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	if slot.ID.IsZero() {
		slot.ID = primitive.NewObjectID()
	}
	slot.BookedCapacity = 0
	slot.IsAvailable = true
	slot.Status = TimeslotScheduled
	slot.CreatedAt = now
	slot.UpdatedAt = now

	if _, err := col.InsertOne(ctx, slot); err != nil {
		return nil, fmt.Errorf("error inserting timeslot: %v", err)
	}
	return slot, nil
}

func (mdb *MongodbRepo) GetTimeslotByID(ctx context.Context, id primitive.ObjectID) (*Timeslot, error) {
	col, err := mdb.GetCollection(ctx, DbName, TimeslotColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var slot Timeslot
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, NewAppError(KindNotFound, "timeslot not found")
	}
	if err != nil {
		return nil, fmt.Errorf("error finding timeslot: %v", err)
	}
	return &slot, nil
}

func (mdb *MongodbRepo) ListTimeslots(ctx context.Context, filter TimeslotFilter, offset, limit int) ([]*Timeslot, int, error) {
	col, err := mdb.GetCollection(ctx, DbName, TimeslotColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	query := bson.M{}
	if filter.PierID != nil {
		query["pier_id"] = *filter.PierID
	}
	if filter.BoatID != nil {
		query["boat_id"] = *filter.BoatID
	}
	if filter.Date != nil {
		day := filter.Date.UTC()
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		query["date"] = bson.M{"$gte": start, "$lt": start.AddDate(0, 0, 1)}
	}
	if filter.OnlyAvailable {
		query["is_available"] = true
		query["status"] = TimeslotScheduled
		query["$expr"] = bson.M{"$lt": bson.A{"$booked_capacity", "$max_capacity"}}
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting timeslots: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding timeslots: %v", err)
	}
	defer cursor.Close(ctx)

	var slots []*Timeslot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, 0, fmt.Errorf("error decoding timeslots: %v", err)
	}
	return slots, int(total), nil
}

// UpdateTimeslot applies a partial update, but only while the slot has no
// bookings so already-sold capacity can never be edited away.
func (mdb *MongodbRepo) UpdateTimeslot(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*Timeslot, error) {
	col, err := mdb.GetCollection(ctx, DbName, TimeslotColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	setFields := bson.M{"updated_at": time.Now()}
	for key, value := range update {
		setFields[key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"_id": id, "booked_capacity": 0}

	var slot Timeslot
	err = col.FindOneAndUpdate(ctx, filter, bson.M{"$set": setFields}, opts).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		// Either missing or already has bookings; look again to tell which.
		if _, lookupErr := mdb.GetTimeslotByID(ctx, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, NewAppError(KindNotAvailable, "cannot update timeslot with existing bookings")
	}
	if err != nil {
		return nil, fmt.Errorf("error updating timeslot: %v", err)
	}
	return &slot, nil
}

func (mdb *MongodbRepo) DeleteTimeslot(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, TimeslotColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id, "booked_capacity": 0})
	if err != nil {
		return fmt.Errorf("error deleting timeslot: %v", err)
	}
	if res.DeletedCount == 0 {
		if _, lookupErr := mdb.GetTimeslotByID(ctx, id); lookupErr != nil {
			return lookupErr
		}
		return NewAppError(KindNotAvailable, "cannot delete timeslot with existing bookings")
	}
	return nil
}

// ReserveCapacity is the check-and-increment of the capacity ledger. The
// availability and capacity preconditions live inside a single conditional
// update so two concurrent reservations can never oversell a slot.
func (mdb *MongodbRepo) ReserveCapacity(ctx context.Context, id primitive.ObjectID, seats int) (*Timeslot, error) {
	col, err := mdb.GetCollection(ctx, DbName, TimeslotColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"_id":          id,
		"is_available": true,
		"status":       TimeslotScheduled,
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$booked_capacity", seats}},
				"$max_capacity",
			},
		},
	}
	update := bson.M{
		"$inc": bson.M{"booked_capacity": seats},
		"$set": bson.M{"updated_at": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var slot Timeslot
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		if _, lookupErr := mdb.GetTimeslotByID(ctx, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, NewAppError(KindNotAvailable, "timeslot is not available for booking")
	}
	if err != nil {
		return nil, fmt.Errorf("error reserving capacity: %v", err)
	}
	return &slot, nil
}

// ReleaseCapacity returns seats to the ledger, floored at zero via an
// aggregation-pipeline update.
func (mdb *MongodbRepo) ReleaseCapacity(ctx context.Context, id primitive.ObjectID, seats int) error {
	col, err := mdb.GetCollection(ctx, DbName, TimeslotColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.A{
		bson.M{"$set": bson.M{
			"booked_capacity": bson.M{
				"$max": bson.A{0, bson.M{"$subtract": bson.A{"$booked_capacity", seats}}},
			},
			"updated_at": time.Now(),
		}},
	}

	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("error releasing capacity: %v", err)
	}
	if res.MatchedCount == 0 {
		return NewAppError(KindNotFound, "timeslot not found")
	}
	return nil
}
