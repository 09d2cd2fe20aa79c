package api

import (
	"errors"
	"net/http"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/service"

	"github.com/gin-gonic/gin"
)

// DietHandler serves diet recommendation endpoints.
type DietHandler struct {
	dietService service.DietService
}

// NewDietHandler creates a new DietHandler.
func NewDietHandler(dietService service.DietService) *DietHandler {
	return &DietHandler{dietService: dietService}
}

type RecommendDietRequest struct {
	Goal       string `json:"goal" binding:"omitempty,oneof=weight-loss muscle-gain maintenance"`
	Preference string `json:"preference" binding:"omitempty,oneof=omnivore vegetarian"`
}

// Recommend generates a fresh plan and makes it the active one.
func (h *DietHandler) Recommend(c *gin.Context) {
	var req RecommendDietRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	plan, err := h.dietService.Recommend(c.Request.Context(), userID, req.Goal, req.Preference)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidGoal):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortServerError(c, err)
		}
		return
	}

	respondSuccess(c, http.StatusCreated, "diet plan generated", plan)
}

// Plans lists the user's plan history, newest first.
func (h *DietHandler) Plans(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	plans, err := h.dietService.Plans(c.Request.Context(), userID)
	if err != nil {
		abortServerError(c, err)
		return
	}
	if plans == nil {
		plans = []domain.DietPlan{}
	}

	respondSuccess(c, http.StatusOK, "", plans)
}

// ActivePlan returns the currently active plan.
func (h *DietHandler) ActivePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	plan, err := h.dietService.ActivePlan(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePlan) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortServerError(c, err)
		}
		return
	}

	respondSuccess(c, http.StatusOK, "", plan)
}
