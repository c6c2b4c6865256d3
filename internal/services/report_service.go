package services

import (
	"context"
	"time"

	"github.com/joshua-takyi/seabay/internal/models"
)

const defaultReportWindow = 30 * 24 * time.Hour

// ReportService serves the admin aggregation endpoints.
type ReportService struct {
	reports models.ReportRepo
	now     func() time.Time
}

func NewReportService(reports models.ReportRepo) *ReportService {
	return &ReportService{reports: reports, now: time.Now}
}

// resolveWindow fills in defaults: a missing end means now, a missing
// start means thirty days before the end.
func (rps *ReportService) resolveWindow(from, to *time.Time) (time.Time, time.Time, error) {
	end := rps.now()
	if to != nil {
		end = *to
	}
	start := end.Add(-defaultReportWindow)
	if from != nil {
		start = *from
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, models.NewAppError(models.KindInvalid, "report window must start before it ends")
	}
	return start, end, nil
}

func (rps *ReportService) BookingStatusReport(ctx context.Context, from, to *time.Time) ([]*models.BookingStatusCount, error) {
	start, end, err := rps.resolveWindow(from, to)
	if err != nil {
		return nil, err
	}
	return rps.reports.CountBookingStatuses(ctx, start, end)
}

func (rps *ReportService) RevenueReport(ctx context.Context, from, to *time.Time) (*models.RevenueSummary, error) {
	start, end, err := rps.resolveWindow(from, to)
	if err != nil {
		return nil, err
	}
	return rps.reports.SummarizeRevenue(ctx, start, end)
}
