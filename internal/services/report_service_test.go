package services

import (
	"context"
	"testing"
	"time"

	"github.com/joshua-takyi/seabay/internal/models"
)

type fakeReportRepo struct {
	from, to time.Time
	counts   []*models.BookingStatusCount
	summary  *models.RevenueSummary
}

func (f *fakeReportRepo) CountBookingStatuses(ctx context.Context, from, to time.Time) ([]*models.BookingStatusCount, error) {
	f.from, f.to = from, to
	return f.counts, nil
}

func (f *fakeReportRepo) SummarizeRevenue(ctx context.Context, from, to time.Time) (*models.RevenueSummary, error) {
	f.from, f.to = from, to
	return f.summary, nil
}

func TestBookingStatusReportDefaultsToThirtyDays(t *testing.T) {
	repo := &fakeReportRepo{counts: []*models.BookingStatusCount{
		{Status: models.BookingConfirmed, Count: 3, Seats: 7},
	}}
	svc := NewReportService(repo)
	now := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	counts, err := svc.BookingStatusReport(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("BookingStatusReport failed: %v", err)
	}
	if len(counts) != 1 || counts[0].Count != 3 {
		t.Errorf("unexpected counts: %+v", counts)
	}
	if !repo.to.Equal(now) {
		t.Errorf("expected window to end now, got %v", repo.to)
	}
	if !repo.from.Equal(now.Add(-30 * 24 * time.Hour)) {
		t.Errorf("expected window to start 30 days back, got %v", repo.from)
	}
}

func TestRevenueReportPassesExplicitWindow(t *testing.T) {
	repo := &fakeReportRepo{summary: &models.RevenueSummary{TotalBookings: 5, TotalRevenue: 250}}
	svc := NewReportService(repo)

	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	summary, err := svc.RevenueReport(context.Background(), &from, &to)
	if err != nil {
		t.Fatalf("RevenueReport failed: %v", err)
	}
	if summary.TotalRevenue != 250 {
		t.Errorf("expected total revenue 250, got %.2f", summary.TotalRevenue)
	}
	if !repo.from.Equal(from) || !repo.to.Equal(to) {
		t.Errorf("expected window %v..%v, got %v..%v", from, to, repo.from, repo.to)
	}
}

func TestReportRejectsInvertedWindow(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{})

	from := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.BookingStatusReport(context.Background(), &from, &to); models.KindOf(err) != models.KindInvalid {
		t.Fatalf("expected invalid error for inverted window, got %v", err)
	}
	if _, err := svc.RevenueReport(context.Background(), &from, &from); models.KindOf(err) != models.KindInvalid {
		t.Fatalf("expected invalid error for empty window, got %v", err)
	}
}
