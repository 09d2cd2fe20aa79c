package api

import (
	"errors"
	"net/http"

	"saxonmahar/yoga-ai/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalyticsHandler serves per-user practice analytics.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Me returns the caller's own analytics summary.
func (h *AnalyticsHandler) Me(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	h.respond(c, userID, userID)
}

// User returns an arbitrary user's analytics. The service enforces the
// self-or-admin rule.
func (h *AnalyticsHandler) User(c *gin.Context) {
	requesterID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid user ID")
		return
	}

	h.respond(c, requesterID, targetID)
}

func (h *AnalyticsHandler) respond(c *gin.Context, requesterID, targetID primitive.ObjectID) {
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	analytics, err := h.analyticsService.UserAnalytics(c.Request.Context(), requesterID, role, targetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnalyticsForbidden):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortServerError(c, err)
		}
		return
	}

	respondSuccess(c, http.StatusOK, "", analytics)
}
