package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joshua-takyi/seabay/internal/helpers"
	"github.com/joshua-takyi/seabay/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ticketEnv struct {
	svc       *TicketService
	tickets   *fakeTicketRepo
	bookings  *fakeBookingRepo
	timeslots *fakeTimeslotRepo
	renderer  *fakeRenderer
	rideDay   time.Time
}

func newTicketEnv(t *testing.T) *ticketEnv {
	t.Helper()
	env := &ticketEnv{
		tickets:   newFakeTicketRepo(),
		bookings:  newFakeBookingRepo(),
		timeslots: newFakeTimeslotRepo(),
		renderer:  &fakeRenderer{},
		rideDay:   time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC),
	}
	env.svc = NewTicketService(env.tickets, env.bookings, env.timeslots, env.renderer, nil, testLogger())
	// The service clock sits mid-morning on the ride day.
	env.svc.now = func() time.Time { return env.rideDay.Add(10 * time.Hour) }
	return env
}

// seedConfirmed stores a timeslot on the ride day plus a confirmed
// booking with issued tickets, returning the booking and its tickets.
func (env *ticketEnv) seedConfirmed(t *testing.T, seats int) (*models.Booking, []*models.Ticket) {
	t.Helper()
	slot := &models.Timeslot{
		ID:          primitive.NewObjectID(),
		PierID:      primitive.NewObjectID(),
		BoatID:      primitive.NewObjectID(),
		Date:        env.rideDay,
		StartTime:   "14:00",
		EndTime:     "14:30",
		MaxCapacity: 10,
		Price:       25,
		IsAvailable: true,
		Status:      models.TimeslotScheduled,
	}
	env.timeslots.put(slot)

	booking, err := env.bookings.CreateBooking(context.Background(), &models.Booking{
		CustomerID: "cust-1",
		TimeslotID: slot.ID,
		SeatCount:  seats,
	})
	if err != nil {
		t.Fatalf("seeding booking failed: %v", err)
	}
	if _, err := env.bookings.ConfirmBooking(context.Background(), booking.ID); err != nil {
		t.Fatalf("confirming seeded booking failed: %v", err)
	}
	booking.BookingStatus = models.BookingConfirmed

	tickets, err := env.svc.IssueTickets(context.Background(), booking)
	if err != nil {
		t.Fatalf("IssueTickets failed: %v", err)
	}
	return booking, tickets
}

func manager() *helpers.Principal {
	return &helpers.Principal{UserID: "mgr-1", Role: helpers.RoleRideManager}
}

func TestIssueTicketsOnePerSeatWithUniqueCodes(t *testing.T) {
	env := newTicketEnv(t)
	_, tickets := env.seedConfirmed(t, 4)

	if len(tickets) != 4 {
		t.Fatalf("expected 4 tickets, got %d", len(tickets))
	}
	seen := make(map[string]bool)
	for _, ticket := range tickets {
		if ticket.Code == "" {
			t.Error("ticket has an empty code")
		}
		if seen[ticket.Code] {
			t.Errorf("duplicate ticket code %s", ticket.Code)
		}
		seen[ticket.Code] = true
		if ticket.Status != models.TicketValid {
			t.Errorf("expected valid ticket, got %s", ticket.Status)
		}
		if ticket.QRImage == "" {
			t.Error("ticket has no QR image")
		}
	}
}

func TestIssueTicketsRenderFailureWritesNothing(t *testing.T) {
	env := newTicketEnv(t)
	env.renderer.err = errors.New("encode failed")

	booking, _ := env.bookings.CreateBooking(context.Background(), &models.Booking{
		CustomerID: "cust-1",
		TimeslotID: primitive.NewObjectID(),
		SeatCount:  3,
	})

	_, err := env.svc.IssueTickets(context.Background(), booking)
	if models.KindOf(err) != models.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}

	stored, _ := env.tickets.ListTicketsByBooking(context.Background(), booking.ID)
	if len(stored) != 0 {
		t.Errorf("expected no tickets stored after render failure, got %d", len(stored))
	}
}

func TestValidateTicketBurnsSingleUse(t *testing.T) {
	env := newTicketEnv(t)
	booking, tickets := env.seedConfirmed(t, 2)
	code := tickets[0].Code

	result, err := env.svc.ValidateTicket(context.Background(), manager(), code, nil)
	if err != nil {
		t.Fatalf("ValidateTicket failed: %v", err)
	}
	if result.Ticket.Status != models.TicketUsed {
		t.Errorf("expected used ticket, got %s", result.Ticket.Status)
	}
	if result.Ticket.ScannedBy != "mgr-1" {
		t.Errorf("expected scanned_by mgr-1, got %s", result.Ticket.ScannedBy)
	}
	if result.Booking.BookingID != booking.ID.Hex() {
		t.Errorf("expected booking %s in summary, got %s", booking.ID.Hex(), result.Booking.BookingID)
	}

	// The second scan of the same code must be rejected.
	_, err = env.svc.ValidateTicket(context.Background(), manager(), code, nil)
	if models.KindOf(err) != models.KindAlreadyUsed {
		t.Fatalf("expected already-used error, got %v", err)
	}

	// Sibling tickets on the booking stay valid.
	if _, err := env.svc.ValidateTicket(context.Background(), manager(), tickets[1].Code, nil); err != nil {
		t.Errorf("sibling ticket validation failed: %v", err)
	}
}

func TestValidateTicketWrongRide(t *testing.T) {
	env := newTicketEnv(t)
	_, tickets := env.seedConfirmed(t, 1)

	otherSlot := primitive.NewObjectID()
	_, err := env.svc.ValidateTicket(context.Background(), manager(), tickets[0].Code, &otherSlot)
	if models.KindOf(err) != models.KindNotAvailable {
		t.Fatalf("expected not-available error for a different ride, got %v", err)
	}

	ticket, _ := env.tickets.GetTicketByCode(context.Background(), tickets[0].Code)
	if ticket.Status != models.TicketValid {
		t.Errorf("expected ticket left valid, got %s", ticket.Status)
	}
}

func TestValidateTicketOnlyOnRideDay(t *testing.T) {
	env := newTicketEnv(t)
	_, tickets := env.seedConfirmed(t, 1)

	// A day early.
	env.svc.now = func() time.Time { return env.rideDay.Add(-14 * time.Hour) }
	_, err := env.svc.ValidateTicket(context.Background(), manager(), tickets[0].Code, nil)
	if models.KindOf(err) != models.KindTooLate {
		t.Fatalf("expected too-late error the day before, got %v", err)
	}

	// A day late.
	env.svc.now = func() time.Time { return env.rideDay.Add(34 * time.Hour) }
	_, err = env.svc.ValidateTicket(context.Background(), manager(), tickets[0].Code, nil)
	if models.KindOf(err) != models.KindTooLate {
		t.Fatalf("expected too-late error the day after, got %v", err)
	}

	// Any hour on the ride day itself works.
	env.svc.now = func() time.Time { return env.rideDay.Add(22 * time.Hour) }
	if _, err := env.svc.ValidateTicket(context.Background(), manager(), tickets[0].Code, nil); err != nil {
		t.Errorf("validation on the ride day failed: %v", err)
	}
}

func TestValidateTicketRequiresConfirmedBooking(t *testing.T) {
	env := newTicketEnv(t)
	booking, tickets := env.seedConfirmed(t, 1)

	if _, _, err := env.bookings.CancelBooking(context.Background(), booking.ID, "", 0); err != nil {
		t.Fatalf("cancelling seeded booking failed: %v", err)
	}

	_, err := env.svc.ValidateTicket(context.Background(), manager(), tickets[0].Code, nil)
	if models.KindOf(err) != models.KindNotAvailable {
		t.Fatalf("expected not-available error for cancelled booking, got %v", err)
	}
}

func TestValidateTicketDuringRide(t *testing.T) {
	env := newTicketEnv(t)
	booking, tickets := env.seedConfirmed(t, 1)

	if _, err := env.bookings.StartRide(context.Background(), booking.ID, env.svc.now()); err != nil {
		t.Fatalf("starting seeded ride failed: %v", err)
	}

	// Late boarding while the ride is in progress is still allowed.
	if _, err := env.svc.ValidateTicket(context.Background(), manager(), tickets[0].Code, nil); err != nil {
		t.Errorf("validation during the ride failed: %v", err)
	}
}

func TestValidateTicketUnknownCode(t *testing.T) {
	env := newTicketEnv(t)

	_, err := env.svc.ValidateTicket(context.Background(), manager(), "no-such-code", nil)
	if models.KindOf(err) != models.KindNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestValidateTicketBlankCode(t *testing.T) {
	env := newTicketEnv(t)

	_, err := env.svc.ValidateTicket(context.Background(), manager(), "   ", nil)
	if models.KindOf(err) != models.KindInvalid {
		t.Fatalf("expected invalid error, got %v", err)
	}
}
