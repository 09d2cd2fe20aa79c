package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testCookieName = "yoga_token"

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthService scripts the auth handler's dependency.
type fakeAuthService struct {
	registerUser *domain.User
	registerErr  error
	loginToken   string
	loginUser    *domain.User
	loginErr     error
	lastLogin    service.LoginInput
	resendErr    error
	meUser       *domain.User
	meErr        error
}

func (s *fakeAuthService) Register(ctx context.Context, name, email, password string, level domain.Level) (*domain.User, error) {
	return s.registerUser, s.registerErr
}

func (s *fakeAuthService) Login(ctx context.Context, input service.LoginInput) (string, *domain.User, error) {
	s.lastLogin = input
	return s.loginToken, s.loginUser, s.loginErr
}

func (s *fakeAuthService) ResendOTP(ctx context.Context, email string) error {
	return s.resendErr
}

func (s *fakeAuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.meUser, s.meErr
}

func (s *fakeAuthService) GetJWTSecret() string { return "secret" }

func newAuthRouter(svc service.AuthService) *gin.Engine {
	router := gin.New()
	handler := NewAuthHandler(svc, testCookieName, time.Hour, false)
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)
	router.POST("/resend-otp", handler.ResendOTP)
	router.POST("/logout", handler.Logout)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestRegisterAggregatesValidationErrors(t *testing.T) {
	router := newAuthRouter(&fakeAuthService{})

	rec := postJSON(t, router, "/register", gin.H{
		"name":            "A",           // too short
		"email":           "not-an-email",
		"password":        "123",         // too short
		"confirmPassword": "456",         // mismatch
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.GreaterOrEqual(t, len(env.Errors), 4, "every field error is reported, not just the first")
	assert.False(t, env.Timestamp.IsZero())
}

func TestRegisterSuccess(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com", Level: domain.LevelBeginner, Role: domain.RoleUser}
	router := newAuthRouter(&fakeAuthService{registerUser: user})

	rec := postJSON(t, router, "/register", gin.H{
		"name":            "Asha",
		"email":           "asha@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newAuthRouter(&fakeAuthService{registerErr: service.ErrUserAlreadyExists})

	rec := postJSON(t, router, "/register", gin.H{
		"name":            "Asha",
		"email":           "asha@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Email: "asha@example.com", Role: domain.RoleUser}
	svc := &fakeAuthService{loginToken: "jwt-token", loginUser: user}
	router := newAuthRouter(svc)

	rec := postJSON(t, router, "/login", gin.H{
		"email":    "asha@example.com",
		"password": "password123",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, "jwt-token", sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly, "token must be out of reach of page scripts")
}

func TestLoginForwardsClientMetadata(t *testing.T) {
	svc := &fakeAuthService{loginToken: "t", loginUser: &domain.User{}}
	router := newAuthRouter(svc)

	payload, _ := json.Marshal(gin.H{"email": "a@example.com", "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "yoga-test/1.0")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "yoga-test/1.0", svc.lastLogin.UserAgent)
}

func TestLoginUnverifiedSignalsOTPRequired(t *testing.T) {
	router := newAuthRouter(&fakeAuthService{loginErr: service.ErrEmailNotVerified})

	rec := postJSON(t, router, "/login", gin.H{
		"email":    "asha@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "EMAIL_NOT_VERIFIED", data["code"])
}

func TestLoginFailureStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"bad credentials", service.ErrAuthenticationFailed, http.StatusUnauthorized},
		{"bad otp", service.ErrInvalidOTP, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthRouter(&fakeAuthService{loginErr: tt.err})
			rec := postJSON(t, router, "/login", gin.H{"email": "a@example.com", "password": "password123"})
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newAuthRouter(&fakeAuthService{})

	rec := postJSON(t, router, "/logout", gin.H{})
	require.Equal(t, http.StatusOK, rec.Code)

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Empty(t, sessionCookie.Value)
	assert.Negative(t, sessionCookie.MaxAge)
}

func TestResendOTPGenericResponse(t *testing.T) {
	router := newAuthRouter(&fakeAuthService{})

	rec := postJSON(t, router, "/resend-otp", gin.H{"email": "anyone@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
}
