package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/joshua-takyi/seabay/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ValidateTicket(ts *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := currentPrincipal(c)
		if !ok {
			return
		}

		var reqBody struct {
			Code       string `json:"code" binding:"required"`
			TimeslotID string `json:"timeslot_id"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "Invalid request body: "+err.Error()))
			return
		}

		var gateTimeslot *primitive.ObjectID
		if reqBody.TimeslotID != "" {
			id, ok := parseObjectID(c, reqBody.TimeslotID)
			if !ok {
				return
			}
			gateTimeslot = &id
		}

		result, err := ts.ValidateTicket(c.Request.Context(), principal, reqBody.Code, gateTimeslot)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(result, "Ticket validated"))
	}
}

func ListBookingTickets(bs *services.BookingService, ts *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := currentPrincipal(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		// Ownership check rides on GetBooking.
		if _, err := bs.GetBooking(c.Request.Context(), principal, id); err != nil {
			respondError(c, err)
			return
		}

		tickets, err := ts.ListByBooking(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(tickets, ""))
	}
}
