package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/joshua-takyi/seabay/internal/services"
)

func StartRide(rs *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reqBody struct {
			BookingID string `json:"booking_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "Invalid request body: "+err.Error()))
			return
		}

		id, ok := parseObjectID(c, reqBody.BookingID)
		if !ok {
			return
		}

		booking, err := rs.StartRide(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Ride started"))
	}
}

func StopRide(rs *services.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reqBody struct {
			BookingID string `json:"booking_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "Invalid request body: "+err.Error()))
			return
		}

		id, ok := parseObjectID(c, reqBody.BookingID)
		if !ok {
			return
		}

		booking, err := rs.StopRide(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Ride completed"))
	}
}
