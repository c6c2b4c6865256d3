package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/joshua-takyi/seabay/internal/services"
)

func CreateBoat(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var boat models.Boat
		if err := c.ShouldBindJSON(&boat); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "Invalid request body: "+err.Error()))
			return
		}

		created, err := fs.CreateBoat(c.Request.Context(), &boat)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Boat created"))
	}
}

func ListBoats(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		boats, err := fs.ListBoats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(boats, ""))
	}
}

func GetBoat(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		boat, err := fs.GetBoat(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(boat, ""))
	}
}

func UpdateBoat(fs *services.FleetService) gin.HandlerFunc {
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

		boat, err := fs.UpdateBoat(c.Request.Context(), id, update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(boat, "Boat updated"))
	}
}

func DeleteBoat(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		if err := fs.DeleteBoat(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Boat deleted"))
	}
}

func CreatePier(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pier models.Pier
		if err := c.ShouldBindJSON(&pier); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "Invalid request body: "+err.Error()))
			return
		}

		created, err := fs.CreatePier(c.Request.Context(), &pier)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Pier created"))
	}
}

func ListPiers(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		piers, err := fs.ListPiers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(piers, ""))
	}
}

func GetPier(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		pier, err := fs.GetPier(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(pier, ""))
	}
}

func UpdatePier(fs *services.FleetService) gin.HandlerFunc {
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

		pier, err := fs.UpdatePier(c.Request.Context(), id, update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(pier, "Pier updated"))
	}
}

func DeletePier(fs *services.FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, c.Param("id"))
		if !ok {
			return
		}

		if err := fs.DeletePier(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Pier deleted"))
	}
}
