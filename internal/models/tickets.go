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
	TicketColName = "tickets"
)

type TicketStatus string

const (
	TicketValid     TicketStatus = "valid"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketExpired   TicketStatus = "expired"
)

type Ticket struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookingID primitive.ObjectID `bson:"booking_id" json:"booking_id" validate:"required"`
	// Capability code embedded in the QR payload; lookups at the gate go
	// through this, never through decoded QR contents.
	Code          string       `bson:"code" json:"code"`
	PassengerName string       `bson:"passenger_name,omitempty" json:"passenger_name,omitempty"`
	Status        TicketStatus `bson:"status" json:"status"`
	QRImage       string       `bson:"qr_image" json:"qr_image"`
	UsedAt        *time.Time   `bson:"used_at,omitempty" json:"used_at,omitempty"`
	ScannedBy     string       `bson:"scanned_by,omitempty" json:"scanned_by,omitempty"`
	CreatedAt     time.Time    `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt     time.Time    `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type TicketRepo interface {
	InsertTickets(ctx context.Context, tickets []*Ticket) error
	GetTicketByCode(ctx context.Context, code string) (*Ticket, error)
	ListTicketsByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*Ticket, error)
	MarkTicketUsed(ctx context.Context, code string, scannedBy string) (*Ticket, error)
	CancelTicketsByBooking(ctx context.Context, bookingID primitive.ObjectID) error
}

// InsertTickets writes the whole set in one ordered InsertMany so a
// booking never ends up with a partial ticket set.
func (mdb *MongodbRepo) InsertTickets(ctx context.Context, tickets []*Ticket) error {
	if len(tickets) == 0 {
		return fmt.Errorf("no tickets to insert")
	}
	col, err := mdb.GetCollection(ctx, DbName, TicketColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.ID.IsZero() {
			ticket.ID = primitive.NewObjectID()
		}
		ticket.CreatedAt = now
		ticket.UpdatedAt = now
		docs = append(docs, ticket)
	}

	if _, err := col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("error inserting tickets: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetTicketByCode(ctx context.Context, code string) (*Ticket, error) {
	col, err := mdb.GetCollection(ctx, DbName, TicketColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var ticket Ticket
	err = col.FindOne(ctx, bson.M{"code": code}).Decode(&ticket)
	if err == mongo.ErrNoDocuments {
		return nil, NewAppError(KindNotFound, "ticket not found")
	}
	if err != nil {
		return nil, fmt.Errorf("error finding ticket: %v", err)
	}
	return &ticket, nil
}

func (mdb *MongodbRepo) ListTicketsByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*Ticket, error) {
	col, err := mdb.GetCollection(ctx, DbName, TicketColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("error finding tickets: %v", err)
	}
	defer cursor.Close(ctx)

	var tickets []*Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("error decoding tickets: %v", err)
	}
	return tickets, nil
}

// MarkTicketUsed flips valid -> used in one conditional update; a ticket
// can burn its single use at most once no matter how many gates scan it
// concurrently.
func (mdb *MongodbRepo) MarkTicketUsed(ctx context.Context, code string, scannedBy string) (*Ticket, error) {
	col, err := mdb.GetCollection(ctx, DbName, TicketColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	filter := bson.M{"code": code, "status": TicketValid}
	update := bson.M{"$set": bson.M{
		"status":     TicketUsed,
		"used_at":    now,
		"scanned_by": scannedBy,
		"updated_at": now,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ticket Ticket
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ticket)
	if err == mongo.ErrNoDocuments {
		existing, lookupErr := mdb.GetTicketByCode(ctx, code)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing.Status == TicketUsed {
			return nil, NewAppError(KindAlreadyUsed, "ticket has already been used")
		}
		return nil, NewAppError(KindNotAvailable, fmt.Sprintf("ticket is %s", existing.Status))
	}
	if err != nil {
		return nil, fmt.Errorf("error marking ticket used: %v", err)
	}
	return &ticket, nil
}

func (mdb *MongodbRepo) CancelTicketsByBooking(ctx context.Context, bookingID primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, TicketColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = col.UpdateMany(ctx,
		bson.M{"booking_id": bookingID, "status": TicketValid},
		bson.M{"$set": bson.M{"status": TicketCancelled, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("error cancelling tickets: %v", err)
	}
	return nil
}
