package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookingStatusCount is one aggregation bucket of bookings grouped by
// lifecycle status.
type BookingStatusCount struct {
	Status BookingStatus `bson:"_id" json:"status"`
	Count  int64         `bson:"count" json:"count"`
	Seats  int64         `bson:"seats" json:"seats"`
}

// RevenueSummary aggregates paid bookings created inside a window.
// Refunded cancellations stay in the gross figures; TotalRefunded carries
// what went back out.
type RevenueSummary struct {
	TotalBookings       int64   `bson:"total_bookings" json:"total_bookings"`
	TotalRevenue        float64 `bson:"total_revenue" json:"total_revenue"`
	AverageBookingValue float64 `bson:"average_booking_value" json:"average_booking_value"`
	TotalRefunded       float64 `bson:"total_refunded" json:"total_refunded"`
}

type ReportRepo interface {
	CountBookingStatuses(ctx context.Context, from, to time.Time) ([]*BookingStatusCount, error)
	SummarizeRevenue(ctx context.Context, from, to time.Time) (*RevenueSummary, error)
}

func (mdb *MongodbRepo) CountBookingStatuses(ctx context.Context, from, to time.Time) ([]*BookingStatusCount, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"created_at": bson.M{"$gte": from, "$lt": to},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$booking_status",
			"count": bson.M{"$sum": 1},
			"seats": bson.M{"$sum": "$seat_count"},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating booking statuses: %v", err)
	}
	defer cursor.Close(ctx)

	var counts []*BookingStatusCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("error decoding booking status counts: %v", err)
	}
	return counts, nil
}

func (mdb *MongodbRepo) SummarizeRevenue(ctx context.Context, from, to time.Time) (*RevenueSummary, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"payment_status": bson.M{"$in": bson.A{PaymentCompleted, PaymentRefunded}},
			"created_at":     bson.M{"$gte": from, "$lt": to},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":                   nil,
			"total_bookings":        bson.M{"$sum": 1},
			"total_revenue":         bson.M{"$sum": "$total_amount"},
			"average_booking_value": bson.M{"$avg": "$total_amount"},
			"total_refunded":        bson.M{"$sum": "$refund_amount"},
		}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating revenue: %v", err)
	}
	defer cursor.Close(ctx)

	var summaries []RevenueSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("error decoding revenue summary: %v", err)
	}
	if len(summaries) == 0 {
		return &RevenueSummary{}, nil
	}
	return &summaries[0], nil
}
