package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/seabay/internal/helpers"
	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/joshua-takyi/seabay/internal/qr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketService mints per-seat tickets with QR codes and runs the
// boarding-time validation gate.
type TicketService struct {
	tickets   models.TicketRepo
	bookings  models.BookingRepo
	timeslots models.TimeslotRepo
	renderer  qr.Renderer
	uploader  qr.Uploader // optional hosted image storage
	logger    *slog.Logger
	now       func() time.Time
}

func NewTicketService(
	tickets models.TicketRepo,
	bookings models.BookingRepo,
	timeslots models.TimeslotRepo,
	renderer qr.Renderer,
	uploader qr.Uploader,
	logger *slog.Logger,
) *TicketService {
	return &TicketService{
		tickets:   tickets,
		bookings:  bookings,
		timeslots: timeslots,
		renderer:  renderer,
		uploader:  uploader,
		logger:    logger,
		now:       time.Now,
	}
}

// qrPayload is what a scanned code decodes to. The gate never trusts it;
// tickets are always looked up by code server-side.
type qrPayload struct {
	TicketID  string `json:"ticket_id"`
	BookingID string `json:"booking_id"`
	Code      string `json:"code"`
	IssuedAt  int64  `json:"issued_at"`
}

// IssueTickets creates one valid ticket per booked seat. Every QR is
// rendered before anything is written, so a render failure aborts the
// whole issuance with no partial set.
func (ts *TicketService) IssueTickets(ctx context.Context, booking *models.Booking) ([]*models.Ticket, error) {
	issuedAt := ts.now().Unix()
	tickets := make([]*models.Ticket, 0, booking.SeatCount)

	for i := 0; i < booking.SeatCount; i++ {
		ticketID := primitive.NewObjectID()
		code := uuid.New().String()

		payload, err := json.Marshal(qrPayload{
			TicketID:  ticketID.Hex(),
			BookingID: booking.ID.Hex(),
			Code:      code,
			IssuedAt:  issuedAt,
		})
		if err != nil {
			return nil, models.WrapAppError(models.KindInternal, "failed to encode QR payload", err)
		}

		png, err := ts.renderer.Render(string(payload))
		if err != nil {
			return nil, models.WrapAppError(models.KindInternal, "failed to generate QR code", err)
		}

		image := qr.DataURL(png)
		if ts.uploader != nil {
			url, upErr := ts.uploader.Upload(ctx, ticketID.Hex(), png)
			if upErr != nil {
				// Hosted storage is best-effort; the inline image still works.
				ts.logger.Error("QR upload failed, keeping data URL", "ticket_id", ticketID.Hex(), "error", upErr)
			} else {
				image = url
			}
		}

		tickets = append(tickets, &models.Ticket{
			ID:        ticketID,
			BookingID: booking.ID,
			Code:      code,
			Status:    models.TicketValid,
			QRImage:   image,
		})
	}

	if err := ts.tickets.InsertTickets(ctx, tickets); err != nil {
		return nil, models.WrapAppError(models.KindInternal, "failed to store tickets", err)
	}

	ts.logger.Info("Tickets issued", "booking_id", booking.ID.Hex(), "count", len(tickets))
	return tickets, nil
}

func (ts *TicketService) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.Ticket, error) {
	return ts.tickets.ListTicketsByBooking(ctx, bookingID)
}

func (ts *TicketService) CancelByBooking(ctx context.Context, bookingID primitive.ObjectID) error {
	return ts.tickets.CancelTicketsByBooking(ctx, bookingID)
}

type ValidationResult struct {
	Ticket  *models.Ticket  `json:"ticket"`
	Booking *BookingSummary `json:"booking"`
}

type BookingSummary struct {
	BookingID  string    `json:"booking_id"`
	CustomerID string    `json:"customer_id"`
	SeatCount  int       `json:"seat_count"`
	Date       time.Time `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
}

// ValidateTicket is the boarding gate. The scanned code must belong to a
// confirmed booking for a timeslot running today; on success the ticket
// burns its single use atomically.
func (ts *TicketService) ValidateTicket(ctx context.Context, principal *helpers.Principal, code string, gateTimeslotID *primitive.ObjectID) (*ValidationResult, error) {
	code = helpers.StringTrim(code)
	if code == "" {
		return nil, models.NewAppError(models.KindInvalid, "ticket code is required")
	}

	ticket, err := ts.tickets.GetTicketByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	booking, err := ts.bookings.GetBookingByID(ctx, ticket.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookingStatus != models.BookingConfirmed && booking.BookingStatus != models.BookingInProgress {
		return nil, models.NewAppError(models.KindNotAvailable,
			fmt.Sprintf("booking is %s, not confirmed", booking.BookingStatus))
	}

	if gateTimeslotID != nil && *gateTimeslotID != booking.TimeslotID {
		return nil, models.NewAppError(models.KindNotAvailable, "ticket is for a different ride")
	}

	slot, err := ts.timeslots.GetTimeslotByID(ctx, booking.TimeslotID)
	if err != nil {
		return nil, err
	}

	// Date-only comparison; boarding any time on the scheduled day is fine.
	today := ts.now().UTC()
	slotDay := slot.Date.UTC()
	if slotDay.Year() != today.Year() || slotDay.Month() != today.Month() || slotDay.Day() != today.Day() {
		return nil, models.NewAppError(models.KindTooLate, "ticket is not valid for today")
	}

	used, err := ts.tickets.MarkTicketUsed(ctx, code, principal.UserID)
	if err != nil {
		return nil, err
	}

	ts.logger.Info("Ticket validated",
		"ticket_id", used.ID.Hex(),
		"booking_id", booking.ID.Hex(),
		"scanned_by", principal.UserID,
	)

	return &ValidationResult{
		Ticket: used,
		Booking: &BookingSummary{
			BookingID:  booking.ID.Hex(),
			CustomerID: booking.CustomerID,
			SeatCount:  booking.SeatCount,
			Date:       slot.Date,
			StartTime:  slot.StartTime,
			EndTime:    slot.EndTime,
		},
	}, nil
}
