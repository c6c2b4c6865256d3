package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the secondary indexes the booking flow depends on.
// Called once at startup.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	timeslots, err := mdb.GetCollection(ctx, DbName, TimeslotColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = timeslots.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Calendar queries by pier and day
		{
			Keys: bson.D{
				{Key: "date", Value: 1},
				{Key: "pier_id", Value: 1},
			},
			Options: options.Index().SetName("date_pier_idx"),
		},
		{
			Keys:    bson.D{{Key: "boat_id", Value: 1}},
			Options: options.Index().SetName("boat_id_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("error creating timeslot indexes: %v", err)
	}

	bookings, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = bookings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "customer_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("customer_created_idx"),
		},
		{
			Keys: bson.D{
				{Key: "timeslot_id", Value: 1},
				{Key: "booking_status", Value: 1},
			},
			Options: options.Index().SetName("timeslot_status_idx"),
		},
		// Sweeper scan for overdue in-progress rides
		{
			Keys: bson.D{
				{Key: "booking_status", Value: 1},
				{Key: "ride_start_time", Value: 1},
			},
			Options: options.Index().SetName("status_ride_start_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("error creating booking indexes: %v", err)
	}

	tickets, err := mdb.GetCollection(ctx, DbName, TicketColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = tickets.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Gate lookup key; unique so a capability code maps to one ticket
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("code_unique"),
		},
		{
			Keys:    bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().SetName("booking_id_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("error creating ticket indexes: %v", err)
	}

	return nil
}
