package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/seabay/internal/helpers"
	"github.com/joshua-takyi/seabay/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindInvalid:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindNotAvailable, models.KindTooLate:
		return http.StatusBadRequest
	case models.KindAlreadyUsed, models.KindAlreadyStarted, models.KindAlreadyCompleted:
		return http.StatusConflict
	case models.KindGatewayRejected:
		return http.StatusPaymentRequired
	case models.KindGatewayUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error to its HTTP status and the standard
// envelope. Unknown errors are masked as internal.
func respondError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	message := "Internal server error"
	if ae, ok := err.(*models.AppError); ok {
		message = ae.Message
	}
	c.JSON(statusForKind(kind), models.ErrorResponse(kind, message))
}

// currentPrincipal pulls the authenticated principal set by the auth
// middleware. A missing principal means the route is miswired.
func currentPrincipal(c *gin.Context) (*helpers.Principal, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse(models.KindForbidden, "Unauthorized"))
		return nil, false
	}
	principal, ok := user.(*helpers.Principal)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(models.KindInternal, "Invalid user claims format"))
		return nil, false
	}
	return principal, true
}

func parseObjectID(c *gin.Context, raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(helpers.StringTrim(raw))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.KindInvalid, "invalid id"))
		return primitive.NilObjectID, false
	}
	return id, true
}
