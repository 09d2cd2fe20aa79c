package api

import (
	"net/http"
	"strconv"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin dashboard endpoints. Routes using it must
// sit behind RoleMiddleware(domain.RoleAdmin).
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Stats returns the platform headline counters.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		abortServerError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", stats)
}

// Users pages through all accounts.
func (h *AdminHandler) Users(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := h.adminService.Users(c.Request.Context(), page, limit)
	if err != nil {
		abortServerError(c, err)
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, MapUserToResponse(&users[i]))
	}

	respondSuccess(c, http.StatusOK, "", gin.H{
		"users": responses,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// ServerStatus reports process and database health.
func (h *AdminHandler) ServerStatus(c *gin.Context) {
	respondSuccess(c, http.StatusOK, "", h.adminService.ServerStatus(c.Request.Context()))
}

// LoginLogs returns the recent authentication audit trail.
func (h *AdminHandler) LoginLogs(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	logs, err := h.adminService.LoginLogs(c.Request.Context(), limit)
	if err != nil {
		abortServerError(c, err)
		return
	}
	if logs == nil {
		logs = []domain.LoginLog{}
	}

	respondSuccess(c, http.StatusOK, "", logs)
}

// Analytics returns the 30-day platform trend lines.
func (h *AdminHandler) Analytics(c *gin.Context) {
	analytics, err := h.adminService.Analytics(c.Request.Context())
	if err != nil {
		abortServerError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", analytics)
}
