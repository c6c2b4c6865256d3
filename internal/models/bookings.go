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
	BookingColName = "bookings"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Booking struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID string             `bson:"customer_id" json:"customer_id" validate:"required"`
	TimeslotID primitive.ObjectID `bson:"timeslot_id" json:"timeslot_id" validate:"required"`
	SeatCount  int                `bson:"seat_count" json:"seat_count" validate:"required,min=1"`
	// Price snapshot at creation time; never recomputed.
	TotalAmount   float64       `bson:"total_amount" json:"total_amount"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`
	BookingStatus BookingStatus `bson:"booking_status" json:"booking_status"`
	PaymentID     string        `bson:"payment_id" json:"payment_id"`
	// Set once by the issuance claim; guards against double-minting.
	TicketsIssued bool `bson:"tickets_issued" json:"tickets_issued"`

	RideStartTime *time.Time `bson:"ride_start_time,omitempty" json:"ride_start_time,omitempty"`
	RideEndTime   *time.Time `bson:"ride_end_time,omitempty" json:"ride_end_time,omitempty"`
	// Elapsed ride duration in seconds.
	Duration int64 `bson:"duration" json:"duration"`

	CancellationReason string  `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	RefundAmount       float64 `bson:"refund_amount" json:"refund_amount"`

	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	ListBookingsByCustomer(ctx context.Context, customerID string) ([]*Booking, error)
	ListAllBookings(ctx context.Context, offset, limit int) ([]*Booking, int, error)
	ConfirmBooking(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	ClaimTicketIssuance(ctx context.Context, id primitive.ObjectID) error
	ReleaseTicketIssuance(ctx context.Context, id primitive.ObjectID) error
	CancelBooking(ctx context.Context, id primitive.ObjectID, reason string, refundAmount float64) (*Booking, PaymentStatus, error)
	MarkPaymentFailed(ctx context.Context, id primitive.ObjectID) error
	StartRide(ctx context.Context, id primitive.ObjectID, startedAt time.Time) (*Booking, error)
	StopRide(ctx context.Context, id primitive.ObjectID, endedAt time.Time, elapsedSeconds int64) (*Booking, error)
	ListOverdueRides(ctx context.Context, startedBefore time.Time) ([]*Booking, error)
}

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.BookingStatus = BookingPending
	booking.PaymentStatus = PaymentPending
	booking.Duration = 0
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := col.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("error inserting booking: %v", err)
	}
	return booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var booking Booking
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, NewAppError(KindNotFound, "booking not found")
	}
	if err != nil {
		return nil, fmt.Errorf("error finding booking: %v", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) ListBookingsByCustomer(ctx context.Context, customerID string) ([]*Booking, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %v", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %v", err)
	}
	return bookings, nil
}

func (mdb *MongodbRepo) ListAllBookings(ctx context.Context, offset, limit int) ([]*Booking, int, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding bookings: %v", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("error decoding bookings: %v", err)
	}
	return bookings, int(total), nil
}

// ConfirmBooking moves pending -> confirmed. The status guard is part of
// the update filter so duplicate confirmations fail cleanly instead of
// re-minting tickets upstream.
func (mdb *MongodbRepo) ConfirmBooking(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id, "booking_status": BookingPending}
	update := bson.M{"$set": bson.M{
		"booking_status": BookingConfirmed,
		"payment_status": PaymentCompleted,
		"updated_at":     time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		existing, lookupErr := mdb.GetBookingByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing.BookingStatus == BookingConfirmed {
			return nil, NewAppError(KindAlreadyCompleted, "booking is already confirmed")
		}
		return nil, NewAppError(KindNotAvailable, fmt.Sprintf("booking is %s, not pending", existing.BookingStatus))
	}
	if err != nil {
		return nil, fmt.Errorf("error confirming booking: %v", err)
	}
	return &booking, nil
}

// ClaimTicketIssuance flips the booking's issuance flag exactly once.
// Whoever wins the flip mints the ticket set; everyone else loses the
// conditional update and must not insert.
func (mdb *MongodbRepo) ClaimTicketIssuance(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, "tickets_issued": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"tickets_issued": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("error claiming ticket issuance: %v", err)
	}
	if res.MatchedCount == 0 {
		return NewAppError(KindAlreadyCompleted, "tickets have already been issued for this booking")
	}
	return nil
}

// ReleaseTicketIssuance gives a claim back after a failed issuance so a
// retry can mint the set.
func (mdb *MongodbRepo) ReleaseTicketIssuance(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"tickets_issued": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("error releasing ticket issuance: %v", err)
	}
	return nil
}

// CancelBooking transitions pending/confirmed -> cancelled exactly once.
// A second cancel attempt loses the conditional update and is reported as
// already completed, which is what keeps refunds single-shot. The payment
// status the transition actually matched is returned so the refund
// decision cannot race a concurrent confirmation.
func (mdb *MongodbRepo) CancelBooking(ctx context.Context, id primitive.ObjectID, reason string, refundAmount float64) (*Booking, PaymentStatus, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, "", fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"_id":            id,
		"booking_status": bson.M{"$in": bson.A{BookingPending, BookingConfirmed}},
	}
	update := bson.M{"$set": bson.M{
		"booking_status":      BookingCancelled,
		"payment_status":      PaymentRefunded,
		"refund_amount":       refundAmount,
		"cancellation_reason": reason,
		"updated_at":          time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var prior Booking
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prior)
	if err == mongo.ErrNoDocuments {
		existing, lookupErr := mdb.GetBookingByID(ctx, id)
		if lookupErr != nil {
			return nil, "", lookupErr
		}
		if existing.BookingStatus == BookingCancelled {
			return nil, "", NewAppError(KindAlreadyCompleted, "booking is already cancelled")
		}
		return nil, "", NewAppError(KindNotAvailable, fmt.Sprintf("booking is %s and can no longer be cancelled", existing.BookingStatus))
	}
	if err != nil {
		return nil, "", fmt.Errorf("error cancelling booking: %v", err)
	}

	cancelled := prior
	cancelled.BookingStatus = BookingCancelled
	cancelled.PaymentStatus = PaymentRefunded
	cancelled.RefundAmount = refundAmount
	cancelled.CancellationReason = reason
	return &cancelled, prior.PaymentStatus, nil
}

func (mdb *MongodbRepo) MarkPaymentFailed(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = col.UpdateOne(ctx,
		bson.M{"_id": id, "payment_status": PaymentPending},
		bson.M{"$set": bson.M{"payment_status": PaymentFailed, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("error marking payment failed: %v", err)
	}
	return nil
}

// StartRide moves confirmed -> in_progress and stamps the start time. A
// booking that is already in progress or completed does not match the
// filter, which is the idempotency guard on start.
func (mdb *MongodbRepo) StartRide(ctx context.Context, id primitive.ObjectID, startedAt time.Time) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id, "booking_status": BookingConfirmed}
	update := bson.M{"$set": bson.M{
		"booking_status":  BookingInProgress,
		"ride_start_time": startedAt,
		"duration":        int64(0),
		"updated_at":      time.Now(),
	}, "$unset": bson.M{"ride_end_time": ""}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		existing, lookupErr := mdb.GetBookingByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		switch existing.BookingStatus {
		case BookingInProgress:
			return nil, NewAppError(KindAlreadyStarted, "ride has already started")
		case BookingCompleted:
			return nil, NewAppError(KindAlreadyCompleted, "ride has already completed")
		default:
			return nil, NewAppError(KindNotAvailable, fmt.Sprintf("booking is %s, not confirmed", existing.BookingStatus))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("error starting ride: %v", err)
	}
	return &booking, nil
}

// StopRide moves in_progress -> completed. Both the manual stop and the
// auto-timeout funnel through this; whichever update matches first wins
// and the loser observes ErrNoDocuments.
func (mdb *MongodbRepo) StopRide(ctx context.Context, id primitive.ObjectID, endedAt time.Time, elapsedSeconds int64) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id, "booking_status": BookingInProgress}
	update := bson.M{"$set": bson.M{
		"booking_status": BookingCompleted,
		"ride_end_time":  endedAt,
		"duration":       elapsedSeconds,
		"updated_at":     time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		existing, lookupErr := mdb.GetBookingByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing.BookingStatus == BookingCompleted {
			return nil, NewAppError(KindAlreadyCompleted, "ride has already completed")
		}
		return nil, NewAppError(KindNotAvailable, fmt.Sprintf("booking is %s, not in progress", existing.BookingStatus))
	}
	if err != nil {
		return nil, fmt.Errorf("error stopping ride: %v", err)
	}
	return &booking, nil
}

// ListOverdueRides picks up in-progress bookings whose start time has
// passed the ride ceiling; the sweeper completes them.
func (mdb *MongodbRepo) ListOverdueRides(ctx context.Context, startedBefore time.Time) ([]*Booking, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"booking_status":  BookingInProgress,
		"ride_start_time": bson.M{"$lte": startedBefore},
	}
	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding overdue rides: %v", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding overdue rides: %v", err)
	}
	return bookings, nil
}
