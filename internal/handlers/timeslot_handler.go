package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/joshua-takyi/seabay/internal/services"
)

func CreateTimeslot(tss *services.TimeslotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reqBody struct {
			PierID      string  `json:"pier_id" binding:"required"`
			BoatID      string  `json:"boat_id" binding:"required"`
			Date        string  `json:"date" binding:"required"` // YYYY-MM-DD
			StartTime   string  `json:"start_time" binding:"required"`
			EndTime     string  `json:"end_time" binding:"required"`
			MaxCapacity int     `json:"max_capacity" binding:"required,min=1"`
			Price       float64 `json:"price" binding:"min=0"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "Invalid request body: "+err.Error()))
			return
		}

		pierID, ok := parseObjectID(c, reqBody.PierID)
		if !ok {
			return
		}
		boatID, ok := parseObjectID(c, reqBody.BoatID)
		if !ok {
			return
		}
		date, err := time.Parse("2006-01-02", reqBody.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "date must be YYYY-MM-DD"))
			return
		}
		for _, hhmm := range []string{reqBody.StartTime, reqBody.EndTime} {
			if _, err := time.Parse("15:04", hhmm); err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "times must be HH:MM (24h)"))
				return
			}
		}

		slot := &models.Timeslot{
			PierID:      pierID,
			BoatID:      boatID,
			Date:        date,
			StartTime:   reqBody.StartTime,
			EndTime:     reqBody.EndTime,
			MaxCapacity: reqBody.MaxCapacity,
			Price:       reqBody.Price,
		}

		created, err := tss.CreateTimeslot(c.Request.Context(), slot)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Timeslot created"))
	}
}

func GetTimeslot(tss *services.TimeslotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		slot, err := tss.GetTimeslot(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(slot, ""))
	}
}

func ListTimeslots(tss *services.TimeslotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		var filter models.TimeslotFilter
		if raw := c.Query("pier_id"); raw != "" {
			id, ok := parseObjectID(c, raw)
			if !ok {
				return
			}
			filter.PierID = &id
		}
		if raw := c.Query("boat_id"); raw != "" {
			id, ok := parseObjectID(c, raw)
			if !ok {
				return
			}
			filter.BoatID = &id
		}
		if raw := c.Query("date"); raw != "" {
			date, err := time.Parse("2006-01-02", raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "date must be YYYY-MM-DD"))
				return
			}
			filter.Date = &date
		}
		filter.OnlyAvailable = c.Query("available") == "true"

		slots, total, err := tss.ListTimeslots(c.Request.Context(), filter, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(slots, offset/max(limit, 1)+1, limit, total))
	}
}

func UpdateTimeslot(tss *services.TimeslotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		var update map[string]interface{}
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "Invalid request body: "+err.Error()))
			return
		}

		slot, err := tss.UpdateTimeslot(c.Request.Context(), id, update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(slot, "Timeslot updated"))
	}
}

func DeleteTimeslot(tss *services.TimeslotService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		if err := tss.DeleteTimeslot(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Timeslot deleted"))
	}
}
