package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/joshua-takyi/seabay/internal/services"
)

// parseReportWindow reads the optional from/to query params (YYYY-MM-DD).
// The to date is inclusive; its whole day lands inside the window.
func parseReportWindow(c *gin.Context) (*time.Time, *time.Time, bool) {
	var from, to *time.Time

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "Invalid from date, expected YYYY-MM-DD"))
			return nil, nil, false
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "Invalid to date, expected YYYY-MM-DD"))
			return nil, nil, false
		}
		end := parsed.Add(24 * time.Hour)
		to = &end
	}
	return from, to, true
}

func BookingReport(rps *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, ok := parseReportWindow(c)
		if !ok {
			return
		}

		counts, err := rps.BookingStatusReport(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(counts, "Booking report generated"))
	}
}

func RevenueReport(rps *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, ok := parseReportWindow(c)
		if !ok {
			return
		}

		summary, err := rps.RevenueReport(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(summary, "Revenue report generated"))
	}
}
