package api

import (
	"errors"
	"net/http"
	"time"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/repository"
	"saxonmahar/yoga-ai/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency plus the
// session-cookie parameters.
type AuthHandler struct {
	authService  service.AuthService
	cookieName   string
	cookieMaxAge int
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, cookieName string, cookieTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieName:   cookieName,
		cookieMaxAge: int(cookieTTL.Seconds()),
		secureCookie: secureCookie,
	}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name            string       `json:"name" binding:"required,min=2,max=50"`
	Email           string       `json:"email" binding:"required,email"`
	Password        string       `json:"password" binding:"required,min=6"`
	ConfirmPassword string       `json:"confirmPassword" binding:"required,eqfield=Password"`
	Level           domain.Level `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	OTP      string `json:"otp" binding:"omitempty,len=6"`
}

type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UserResponse excludes sensitive fields like the password hash.
type UserResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Level     domain.Level     `json:"level"`
	Role      domain.Role      `json:"role"`
	Stats     domain.UserStats `json:"stats"`
	IsPremium bool             `json:"isPremium"`
	Verified  bool             `json:"verified"`
	CreatedAt time.Time        `json:"createdAt"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Level:     user.Level,
		Role:      user.Role,
		Stats:     user.Stats,
		IsPremium: user.IsPremium,
		Verified:  user.Verification.Verified,
		CreatedAt: user.CreatedAt,
	}
}

// --- Handler Methods ---

// Register creates a new account in the pending-verification state.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Level)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortServerError(c, err)
		}
		return
	}

	respondSuccess(c, http.StatusCreated, "account created, verification code sent", MapUserToResponse(user))
}

// Login authenticates credentials (and optionally an OTP for pending
// accounts) and establishes the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		OTP:       req.OTP,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthenticationFailed):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrEmailNotVerified):
			// Distinct signal: the client must collect an OTP and resubmit.
			c.AbortWithStatusJSON(http.StatusForbidden, Envelope{
				Success:   false,
				Message:   err.Error(),
				Data:      gin.H{"code": "EMAIL_NOT_VERIFIED"},
				Timestamp: time.Now().UTC(),
			})
		case errors.Is(err, service.ErrInvalidOTP):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		default:
			abortServerError(c, err)
		}
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, h.cookieMaxAge, "/", "", h.secureCookie, true)

	respondSuccess(c, http.StatusOK, "login successful", gin.H{
		"token": token,
		"user":  MapUserToResponse(user),
	})
}

// Me rehydrates the current user from the session cookie.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID.Hex())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusUnauthorized, "account no longer exists")
		} else {
			abortServerError(c, err)
		}
		return
	}

	respondSuccess(c, http.StatusOK, "", MapUserToResponse(user))
}

// Logout clears the session cookie. Always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	respondSuccess(c, http.StatusOK, "logged out", nil)
}

// ResendOTP re-issues a verification code. The response is identical for
// unknown and known emails.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResendOTP(c.Request.Context(), req.Email); err != nil {
		abortServerError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "if the account exists and is unverified, a new code was sent", nil)
}
