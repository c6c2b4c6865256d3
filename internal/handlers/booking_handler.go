package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/joshua-takyi/seabay/internal/services"
)

func CreateBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := currentPrincipal(c)
		if !ok {
			return
		}

		var reqBody struct {
			TimeslotID string `json:"timeslot_id" binding:"required"`
			SeatCount  int    `json:"seat_count" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "Invalid request body: "+err.Error()))
			return
		}

		timeslotID, ok := parseObjectID(c, reqBody.TimeslotID)
		if !ok {
			return
		}

		result, err := bs.CreateBooking(c.Request.Context(), principal, timeslotID, reqBody.SeatCount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(result, "Booking created"))
	}
}

func GetBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := currentPrincipal(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		booking, err := bs.GetBooking(c.Request.Context(), principal, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, ""))
	}
}

func ListUserBookings(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := currentPrincipal(c)
		if !ok {
			return
		}

		bookings, err := bs.ListUserBookings(c.Request.Context(), principal)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(bookings, ""))
	}
}

func ListAllBookings(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		bookings, total, err := bs.ListAllBookings(c.Request.Context(), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, offset/max(limit, 1)+1, limit, total))
	}
}

func ConfirmBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := currentPrincipal(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		booking, err := bs.ConfirmBooking(c.Request.Context(), principal, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking confirmed"))
	}
}

func CancelBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := currentPrincipal(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		var reqBody struct {
			Reason string `json:"reason"`
		}
		// Reason is optional; an empty body is fine.
		_ = c.ShouldBindJSON(&reqBody)

		booking, err := bs.CancelBooking(c.Request.Context(), principal, id, reqBody.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking cancelled"))
	}
}
