package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/seabay/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideService tracks the live ride on a confirmed booking: manual
// start/stop plus an automatic completion when the ride ceiling passes.
// Both paths funnel through the same conditional update, so whichever
// fires first wins and the other is a no-op.
type RideService struct {
	bookings    models.BookingRepo
	logger      *slog.Logger
	maxDuration time.Duration
	now         func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewRideService(bookings models.BookingRepo, logger *slog.Logger, maxDuration time.Duration) *RideService {
	return &RideService{
		bookings:    bookings,
		logger:      logger,
		maxDuration: maxDuration,
		now:         time.Now,
		timers:      make(map[string]*time.Timer),
	}
}

// StartRide moves a confirmed booking into in_progress and arms the
// auto-completion timer.
func (rs *RideService) StartRide(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error) {
	startedAt := rs.now()
	booking, err := rs.bookings.StartRide(ctx, bookingID, startedAt)
	if err != nil {
		return nil, err
	}

	rs.scheduleAutoComplete(bookingID)

	rs.logger.Info("Ride started", "booking_id", bookingID.Hex(), "started_at", startedAt)
	return booking, nil
}

// StopRide completes an in-progress ride, clamping the recorded duration
// to the ceiling.
func (rs *RideService) StopRide(ctx context.Context, bookingID primitive.ObjectID) (*models.Booking, error) {
	current, err := rs.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.BookingStatus != models.BookingInProgress || current.RideStartTime == nil {
		return nil, models.NewAppError(models.KindNotAvailable, "ride is not in progress")
	}

	endedAt := rs.now()
	elapsed := endedAt.Sub(*current.RideStartTime)
	if elapsed > rs.maxDuration {
		elapsed = rs.maxDuration
		endedAt = current.RideStartTime.Add(rs.maxDuration)
	}
	if elapsed < 0 {
		elapsed = 0
	}

	booking, err := rs.bookings.StopRide(ctx, bookingID, endedAt, int64(elapsed.Seconds()))
	if err != nil {
		return nil, err
	}

	rs.cancelTimer(bookingID)

	rs.logger.Info("Ride stopped", "booking_id", bookingID.Hex(), "elapsed_seconds", booking.Duration)
	return booking, nil
}

func (rs *RideService) scheduleAutoComplete(bookingID primitive.ObjectID) {
	key := bookingID.Hex()

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if existing, ok := rs.timers[key]; ok {
		existing.Stop()
	}
	rs.timers[key] = time.AfterFunc(rs.maxDuration, func() {
		rs.autoComplete(bookingID)
	})
}

func (rs *RideService) cancelTimer(bookingID primitive.ObjectID) {
	key := bookingID.Hex()

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if timer, ok := rs.timers[key]; ok {
		timer.Stop()
		delete(rs.timers, key)
	}
}

// autoComplete fires when the ceiling elapses. A booking already stopped
// manually fails the conditional update and nothing is overwritten.
func (rs *RideService) autoComplete(bookingID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rs.mu.Lock()
	delete(rs.timers, bookingID.Hex())
	rs.mu.Unlock()

	rs.forceComplete(ctx, bookingID)
}

func (rs *RideService) forceComplete(ctx context.Context, bookingID primitive.ObjectID) {
	current, err := rs.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		rs.logger.Error("Auto-complete lookup failed", "booking_id", bookingID.Hex(), "error", err)
		return
	}
	if current.BookingStatus != models.BookingInProgress || current.RideStartTime == nil {
		return
	}

	endedAt := current.RideStartTime.Add(rs.maxDuration)
	_, err = rs.bookings.StopRide(ctx, bookingID, endedAt, int64(rs.maxDuration.Seconds()))
	if err != nil {
		// Lost the race with a manual stop; that is the expected outcome.
		if kind := models.KindOf(err); kind == models.KindAlreadyCompleted || kind == models.KindNotAvailable {
			return
		}
		rs.logger.Error("Auto-complete failed", "booking_id", bookingID.Hex(), "error", err)
		return
	}

	rs.logger.Info("Ride auto-completed", "booking_id", bookingID.Hex(), "elapsed_seconds", int64(rs.maxDuration.Seconds()))
}

// Sweep completes any in-progress booking whose start time has passed the
// ceiling. In-process timers die with the process; the sweep makes the
// timeout durable across restarts.
func (rs *RideService) Sweep(ctx context.Context) error {
	cutoff := rs.now().Add(-rs.maxDuration)
	overdue, err := rs.bookings.ListOverdueRides(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, booking := range overdue {
		rs.forceComplete(ctx, booking.ID)
	}
	return nil
}

// RunSweeper runs Sweep on the given interval until the context ends.
func (rs *RideService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := rs.Sweep(ctx); err != nil {
				rs.logger.Error("Ride sweep failed", "error", err)
			}
		}
	}
}

// Shutdown stops all pending auto-completion timers.
func (rs *RideService) Shutdown() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for key, timer := range rs.timers {
		timer.Stop()
		delete(rs.timers, key)
	}
}
