package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/joshua-takyi/seabay/internal/payment"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repos mirroring the conditional-update semantics of the
// Mongo implementations.

type fakeTimeslotRepo struct {
	mu    sync.Mutex
	slots map[primitive.ObjectID]*models.Timeslot
}

func newFakeTimeslotRepo() *fakeTimeslotRepo {
	return &fakeTimeslotRepo{slots: make(map[primitive.ObjectID]*models.Timeslot)}
}

func (f *fakeTimeslotRepo) put(slot *models.Timeslot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[slot.ID] = slot
}

func (f *fakeTimeslotRepo) CreateTimeslot(ctx context.Context, slot *models.Timeslot) (*models.Timeslot, error) {
	if slot.ID.IsZero() {
		slot.ID = primitive.NewObjectID()
	}
	slot.Status = models.TimeslotScheduled
	slot.IsAvailable = true
	f.put(slot)
	return slot, nil
}

func (f *fakeTimeslotRepo) GetTimeslotByID(ctx context.Context, id primitive.ObjectID) (*models.Timeslot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[id]
	if !ok {
		return nil, models.NewAppError(models.KindNotFound, "timeslot not found")
	}
	copied := *slot
	return &copied, nil
}

func (f *fakeTimeslotRepo) ListTimeslots(ctx context.Context, filter models.TimeslotFilter, offset, limit int) ([]*models.Timeslot, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Timeslot
	for _, slot := range f.slots {
		copied := *slot
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (f *fakeTimeslotRepo) UpdateTimeslot(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.Timeslot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[id]
	if !ok {
		return nil, models.NewAppError(models.KindNotFound, "timeslot not found")
	}
	if slot.BookedCapacity > 0 {
		return nil, models.NewAppError(models.KindNotAvailable, "cannot update timeslot with existing bookings")
	}
	copied := *slot
	return &copied, nil
}

func (f *fakeTimeslotRepo) DeleteTimeslot(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[id]
	if !ok {
		return models.NewAppError(models.KindNotFound, "timeslot not found")
	}
	if slot.BookedCapacity > 0 {
		return models.NewAppError(models.KindNotAvailable, "cannot delete timeslot with existing bookings")
	}
	delete(f.slots, id)
	return nil
}

func (f *fakeTimeslotRepo) ReserveCapacity(ctx context.Context, id primitive.ObjectID, seats int) (*models.Timeslot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[id]
	if !ok {
		return nil, models.NewAppError(models.KindNotFound, "timeslot not found")
	}
	if !slot.IsAvailable || slot.Status != models.TimeslotScheduled || slot.BookedCapacity+seats > slot.MaxCapacity {
		return nil, models.NewAppError(models.KindNotAvailable, "timeslot is not available for booking")
	}
	slot.BookedCapacity += seats
	copied := *slot
	return &copied, nil
}

func (f *fakeTimeslotRepo) ReleaseCapacity(ctx context.Context, id primitive.ObjectID, seats int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[id]
	if !ok {
		return models.NewAppError(models.KindNotFound, "timeslot not found")
	}
	slot.BookedCapacity -= seats
	if slot.BookedCapacity < 0 {
		slot.BookedCapacity = 0
	}
	return nil
}

func (f *fakeTimeslotRepo) booked(id primitive.ObjectID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[id].BookedCapacity
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.BookingStatus = models.BookingPending
	booking.PaymentStatus = models.PaymentPending
	booking.CreatedAt = time.Now()
	copied := *booking
	f.bookings[booking.ID] = &copied
	return booking, nil
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, models.NewAppError(models.KindNotFound, "booking not found")
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) ListBookingsByCustomer(ctx context.Context, customerID string) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, booking := range f.bookings {
		if booking.CustomerID == customerID {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListAllBookings(ctx context.Context, offset, limit int) ([]*models.Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, booking := range f.bookings {
		copied := *booking
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (f *fakeBookingRepo) ConfirmBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, models.NewAppError(models.KindNotFound, "booking not found")
	}
	if booking.BookingStatus != models.BookingPending {
		if booking.BookingStatus == models.BookingConfirmed {
			return nil, models.NewAppError(models.KindAlreadyCompleted, "booking is already confirmed")
		}
		return nil, models.NewAppError(models.KindNotAvailable, fmt.Sprintf("booking is %s, not pending", booking.BookingStatus))
	}
	booking.BookingStatus = models.BookingConfirmed
	booking.PaymentStatus = models.PaymentCompleted
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) ClaimTicketIssuance(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return models.NewAppError(models.KindNotFound, "booking not found")
	}
	if booking.TicketsIssued {
		return models.NewAppError(models.KindAlreadyCompleted, "tickets have already been issued for this booking")
	}
	booking.TicketsIssued = true
	return nil
}

func (f *fakeBookingRepo) ReleaseTicketIssuance(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking, ok := f.bookings[id]; ok {
		booking.TicketsIssued = false
	}
	return nil
}

func (f *fakeBookingRepo) CancelBooking(ctx context.Context, id primitive.ObjectID, reason string, refundAmount float64) (*models.Booking, models.PaymentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, "", models.NewAppError(models.KindNotFound, "booking not found")
	}
	if booking.BookingStatus != models.BookingPending && booking.BookingStatus != models.BookingConfirmed {
		if booking.BookingStatus == models.BookingCancelled {
			return nil, "", models.NewAppError(models.KindAlreadyCompleted, "booking is already cancelled")
		}
		return nil, "", models.NewAppError(models.KindNotAvailable, fmt.Sprintf("booking is %s and can no longer be cancelled", booking.BookingStatus))
	}
	prior := booking.PaymentStatus
	booking.BookingStatus = models.BookingCancelled
	booking.PaymentStatus = models.PaymentRefunded
	booking.RefundAmount = refundAmount
	booking.CancellationReason = reason
	copied := *booking
	return &copied, prior, nil
}

func (f *fakeBookingRepo) MarkPaymentFailed(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking, ok := f.bookings[id]; ok && booking.PaymentStatus == models.PaymentPending {
		booking.PaymentStatus = models.PaymentFailed
	}
	return nil
}

func (f *fakeBookingRepo) StartRide(ctx context.Context, id primitive.ObjectID, startedAt time.Time) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, models.NewAppError(models.KindNotFound, "booking not found")
	}
	if booking.BookingStatus != models.BookingConfirmed {
		switch booking.BookingStatus {
		case models.BookingInProgress:
			return nil, models.NewAppError(models.KindAlreadyStarted, "ride has already started")
		case models.BookingCompleted:
			return nil, models.NewAppError(models.KindAlreadyCompleted, "ride has already completed")
		default:
			return nil, models.NewAppError(models.KindNotAvailable, fmt.Sprintf("booking is %s, not confirmed", booking.BookingStatus))
		}
	}
	booking.BookingStatus = models.BookingInProgress
	start := startedAt
	booking.RideStartTime = &start
	booking.RideEndTime = nil
	booking.Duration = 0
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) StopRide(ctx context.Context, id primitive.ObjectID, endedAt time.Time, elapsedSeconds int64) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, models.NewAppError(models.KindNotFound, "booking not found")
	}
	if booking.BookingStatus != models.BookingInProgress {
		if booking.BookingStatus == models.BookingCompleted {
			return nil, models.NewAppError(models.KindAlreadyCompleted, "ride has already completed")
		}
		return nil, models.NewAppError(models.KindNotAvailable, fmt.Sprintf("booking is %s, not in progress", booking.BookingStatus))
	}
	booking.BookingStatus = models.BookingCompleted
	end := endedAt
	booking.RideEndTime = &end
	booking.Duration = elapsedSeconds
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) ListOverdueRides(ctx context.Context, startedBefore time.Time) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, booking := range f.bookings {
		if booking.BookingStatus == models.BookingInProgress &&
			booking.RideStartTime != nil && !booking.RideStartTime.After(startedBefore) {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*models.Ticket // by code

	// Widens the issuance window so tests can overlap concurrent confirms.
	insertDelay time.Duration
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*models.Ticket)}
}

func (f *fakeTicketRepo) InsertTickets(ctx context.Context, tickets []*models.Ticket) error {
	if f.insertDelay > 0 {
		time.Sleep(f.insertDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range tickets {
		copied := *ticket
		f.tickets[ticket.Code] = &copied
	}
	return nil
}

func (f *fakeTicketRepo) GetTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[code]
	if !ok {
		return nil, models.NewAppError(models.KindNotFound, "ticket not found")
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) ListTicketsByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ticket
	for _, ticket := range f.tickets {
		if ticket.BookingID == bookingID {
			copied := *ticket
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) MarkTicketUsed(ctx context.Context, code string, scannedBy string) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[code]
	if !ok {
		return nil, models.NewAppError(models.KindNotFound, "ticket not found")
	}
	if ticket.Status != models.TicketValid {
		if ticket.Status == models.TicketUsed {
			return nil, models.NewAppError(models.KindAlreadyUsed, "ticket has already been used")
		}
		return nil, models.NewAppError(models.KindNotAvailable, fmt.Sprintf("ticket is %s", ticket.Status))
	}
	now := time.Now()
	ticket.Status = models.TicketUsed
	ticket.UsedAt = &now
	ticket.ScannedBy = scannedBy
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) CancelTicketsByBooking(ctx context.Context, bookingID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range f.tickets {
		if ticket.BookingID == bookingID && ticket.Status == models.TicketValid {
			ticket.Status = models.TicketCancelled
		}
	}
	return nil
}

type fakeGateway struct {
	mu sync.Mutex

	createErr    error
	retrieveErr  error
	refundErr    error
	intentStatus payment.IntentStatus

	created []int64
	refunds []int64
	seq     int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intentStatus: payment.IntentSucceeded}
}

func (f *fakeGateway) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	f.created = append(f.created, amountMinorUnits)
	return &payment.Intent{
		ID:           fmt.Sprintf("pi_%d", f.seq),
		ClientSecret: fmt.Sprintf("pi_%d_secret", f.seq),
		Status:       payment.IntentRequiresAction,
	}, nil
}

func (f *fakeGateway) RetrieveIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	return &payment.Intent{ID: intentID, Status: f.intentStatus}, nil
}

func (f *fakeGateway) RefundIntent(ctx context.Context, intentID string, amountMinorUnits int64) (*payment.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	f.refunds = append(f.refunds, amountMinorUnits)
	return &payment.Refund{ID: "re_1"}, nil
}

func (f *fakeGateway) refundCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.refunds)
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(payload string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png-bytes"), nil
}
