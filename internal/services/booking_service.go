package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/seabay/internal/helpers"
	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/joshua-takyi/seabay/internal/payment"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingService drives the booking lifecycle: reserve seats, take
// payment, confirm, cancel with a tiered refund.
type BookingService struct {
	bookings  models.BookingRepo
	timeslots models.TimeslotRepo
	tickets   *TicketService
	gateway   payment.Gateway
	logger    *slog.Logger

	currency     string
	cancelCutoff time.Duration
	now          func() time.Time
}

func NewBookingService(
	bookings models.BookingRepo,
	timeslots models.TimeslotRepo,
	tickets *TicketService,
	gateway payment.Gateway,
	logger *slog.Logger,
	currency string,
	cancelCutoffHours int,
) *BookingService {
	return &BookingService{
		bookings:     bookings,
		timeslots:    timeslots,
		tickets:      tickets,
		gateway:      gateway,
		logger:       logger,
		currency:     currency,
		cancelCutoff: time.Duration(cancelCutoffHours) * time.Hour,
		now:          time.Now,
	}
}

type CreateBookingResult struct {
	Booking      *models.Booking `json:"booking"`
	ClientSecret string          `json:"client_secret"`
}

// CreateBooking reserves capacity, opens a payment intent and persists a
// pending booking. Capacity is reserved before payment confirmation; if
// the intent cannot be created the reservation is rolled back so a
// gateway outage leaves no trace.
func (bs *BookingService) CreateBooking(ctx context.Context, principal *helpers.Principal, timeslotID primitive.ObjectID, seatCount int) (*CreateBookingResult, error) {
	if seatCount < 1 {
		return nil, models.NewAppError(models.KindInvalid, "seat count must be at least 1")
	}

	slot, err := bs.timeslots.ReserveCapacity(ctx, timeslotID, seatCount)
	if err != nil {
		return nil, err
	}

	totalAmount := slot.Price * float64(seatCount)

	intent, err := bs.gateway.CreateIntent(ctx, payment.MinorUnits(totalAmount), bs.currency)
	if err != nil {
		bs.rollbackReservation(ctx, timeslotID, seatCount)
		return nil, err
	}

	booking := &models.Booking{
		CustomerID:  principal.UserID,
		TimeslotID:  timeslotID,
		SeatCount:   seatCount,
		TotalAmount: totalAmount,
		PaymentID:   intent.ID,
	}

	created, err := bs.bookings.CreateBooking(ctx, booking)
	if err != nil {
		bs.rollbackReservation(ctx, timeslotID, seatCount)
		return nil, models.WrapAppError(models.KindInternal, "failed to persist booking", err)
	}

	bs.logger.Info("Booking created",
		"booking_id", created.ID.Hex(),
		"timeslot_id", timeslotID.Hex(),
		"seats", seatCount,
		"amount", totalAmount,
	)

	return &CreateBookingResult{
		Booking:      created,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (bs *BookingService) rollbackReservation(ctx context.Context, timeslotID primitive.ObjectID, seats int) {
	if err := bs.timeslots.ReleaseCapacity(ctx, timeslotID, seats); err != nil {
		bs.logger.Error("Failed to release capacity after aborted booking",
			"timeslot_id", timeslotID.Hex(),
			"seats", seats,
			"error", err,
		)
	}
}

// ConfirmBooking checks the payment intent and, once it has succeeded,
// moves the booking to confirmed and mints its tickets. A confirmed
// booking that somehow lost its tickets gets them re-issued here instead
// of erroring, so a crash between the two steps heals on retry.
func (bs *BookingService) ConfirmBooking(ctx context.Context, principal *helpers.Principal, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !principal.IsOwner(booking.CustomerID) {
		return nil, models.NewAppError(models.KindForbidden, "you do not have permission to confirm this booking")
	}

	intent, err := bs.gateway.RetrieveIntent(ctx, booking.PaymentID)
	if err != nil {
		return nil, err
	}

	switch intent.Status {
	case payment.IntentSucceeded:
		// fall through
	case payment.IntentFailed:
		if markErr := bs.bookings.MarkPaymentFailed(ctx, bookingID); markErr != nil {
			bs.logger.Error("Failed to record failed payment", "booking_id", bookingID.Hex(), "error", markErr)
		}
		return nil, models.NewAppError(models.KindGatewayRejected, "payment was not successful")
	default:
		return nil, models.NewAppError(models.KindNotAvailable, fmt.Sprintf("payment has not completed: %s", intent.Status))
	}

	confirmed, err := bs.bookings.ConfirmBooking(ctx, bookingID)
	if err != nil {
		if models.KindOf(err) == models.KindAlreadyCompleted {
			// A crash or a concurrent confirm may have confirmed the
			// booking without minting tickets; the issuance claim decides
			// whether this caller picks that work up.
			return bs.issueTicketsOnce(ctx, booking)
		}
		return nil, err
	}

	issued, err := bs.issueTicketsOnce(ctx, confirmed)
	if err != nil {
		bs.logger.Error("Ticket issuance failed for confirmed booking",
			"booking_id", bookingID.Hex(),
			"error", err,
		)
		return nil, err
	}

	bs.logger.Info("Booking confirmed", "booking_id", bookingID.Hex())
	return issued, nil
}

// issueTicketsOnce mints the booking's ticket set behind its issuance
// claim. The claim is a conditional update, so with any number of
// concurrent confirmations exactly one caller inserts tickets; the rest
// observe the booking as already confirmed.
func (bs *BookingService) issueTicketsOnce(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := bs.bookings.ClaimTicketIssuance(ctx, booking.ID); err != nil {
		return nil, err
	}

	if _, err := bs.tickets.IssueTickets(ctx, booking); err != nil {
		if relErr := bs.bookings.ReleaseTicketIssuance(ctx, booking.ID); relErr != nil {
			bs.logger.Error("Failed to release ticket issuance claim",
				"booking_id", booking.ID.Hex(),
				"error", relErr,
			)
		}
		return nil, err
	}

	return bs.bookings.GetBookingByID(ctx, booking.ID)
}

// RefundAmount applies the tiered policy to the time remaining before the
// ride starts: full refund a day out, half within a day, nothing under
// the cutoff (where cancellation is rejected anyway).
func RefundAmount(totalAmount float64, untilStart time.Duration) float64 {
	switch {
	case untilStart >= 24*time.Hour:
		return totalAmount
	case untilStart >= 12*time.Hour:
		return totalAmount * 0.5
	default:
		return 0
	}
}

// CancelBooking cancels a pending or confirmed booking, refunds per the
// tiered policy, cancels its tickets and releases the reserved seats.
// The status transition is conditional, so a duplicate cancel cannot
// refund twice.
func (bs *BookingService) CancelBooking(ctx context.Context, principal *helpers.Principal, bookingID primitive.ObjectID, reason string) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !principal.IsOwner(booking.CustomerID) {
		return nil, models.NewAppError(models.KindForbidden, "you do not have permission to cancel this booking")
	}

	slot, err := bs.timeslots.GetTimeslotByID(ctx, booking.TimeslotID)
	if err != nil {
		return nil, err
	}

	untilStart := slot.StartsAt().Sub(bs.now())
	if untilStart < bs.cancelCutoff {
		return nil, models.NewAppError(models.KindTooLate,
			fmt.Sprintf("booking can only be cancelled up to %.0f hours before the ride", bs.cancelCutoff.Hours()))
	}

	refund := RefundAmount(booking.TotalAmount, untilStart)

	// priorPayment is the payment status the cancel transition actually
	// observed, not the one read above; a confirm landing in between
	// would otherwise skip the refund.
	cancelled, priorPayment, err := bs.bookings.CancelBooking(ctx, bookingID, reason, refund)
	if err != nil {
		return nil, err
	}

	if priorPayment == models.PaymentCompleted && refund > 0 {
		if _, err := bs.gateway.RefundIntent(ctx, cancelled.PaymentID, payment.MinorUnits(refund)); err != nil {
			// The booking is cancelled either way; surface the gateway
			// failure so the caller can retry the refund out of band.
			bs.logger.Error("Refund failed for cancelled booking",
				"booking_id", bookingID.Hex(),
				"refund", refund,
				"error", err,
			)
			return nil, err
		}
	}

	if err := bs.tickets.CancelByBooking(ctx, bookingID); err != nil {
		bs.logger.Error("Failed to cancel tickets", "booking_id", bookingID.Hex(), "error", err)
	}

	if err := bs.timeslots.ReleaseCapacity(ctx, booking.TimeslotID, booking.SeatCount); err != nil {
		bs.logger.Error("Failed to release capacity", "timeslot_id", booking.TimeslotID.Hex(), "error", err)
	}

	bs.logger.Info("Booking cancelled",
		"booking_id", bookingID.Hex(),
		"refund", refund,
		"reason", reason,
	)
	return cancelled, nil
}

func (bs *BookingService) GetBooking(ctx context.Context, principal *helpers.Principal, bookingID primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !principal.IsRideManager() && !principal.IsOwner(booking.CustomerID) {
		return nil, models.NewAppError(models.KindForbidden, "you do not have permission to view this booking")
	}
	return booking, nil
}

func (bs *BookingService) ListUserBookings(ctx context.Context, principal *helpers.Principal) ([]*models.Booking, error) {
	return bs.bookings.ListBookingsByCustomer(ctx, principal.UserID)
}

func (bs *BookingService) ListAllBookings(ctx context.Context, offset, limit int) ([]*models.Booking, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, models.NewAppError(models.KindInvalid, "invalid offset or limit")
	}
	return bs.bookings.ListAllBookings(ctx, offset, limit)
}
