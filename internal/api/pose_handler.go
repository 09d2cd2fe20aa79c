package api

import (
	"errors"
	"net/http"
	"strconv"

	"saxonmahar/yoga-ai/internal/detector"
	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PoseHandler serves detection, attempt recording and the practice
// session lifecycle.
type PoseHandler struct {
	detectionService service.DetectionService
	sessionService   service.SessionService
}

// NewPoseHandler creates a new PoseHandler.
func NewPoseHandler(detectionService service.DetectionService, sessionService service.SessionService) *PoseHandler {
	return &PoseHandler{
		detectionService: detectionService,
		sessionService:   sessionService,
	}
}

// --- Request/Response Structs ---

type DetectRequest struct {
	Image string `json:"image"` // base64 data URI; checked manually for a 400 before any spawn
	Pose  string `json:"pose"`
	TTS   bool   `json:"tts"`
}

type RealtimeRequest struct {
	Pose string `json:"pose"`
}

type SaveSessionRequest struct {
	SessionID      string            `json:"sessionId" binding:"omitempty,len=24"`
	PoseName       string            `json:"poseName" binding:"required"`
	Confidence     float64           `json:"confidence" binding:"min=0,max=100"`
	Corrections    []string          `json:"corrections"`
	Landmarks      []domain.Landmark `json:"landmarks"`
	Duration       int               `json:"duration" binding:"min=0"`
	CaloriesBurned float64           `json:"caloriesBurned" binding:"min=0"`
	Score          float64           `json:"score" binding:"min=0,max=100"`
	SnapshotKey    string            `json:"snapshotKey"`
}

type StartSessionRequest struct {
	Name string `json:"name" binding:"omitempty,max=100"`
}

// --- Handler Methods ---

// Detect runs one captured frame through the pose analyzer.
func (h *PoseHandler) Detect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationErrors(c, formatValidationErrors(err))
		return
	}
	// Reject before any subprocess is spawned.
	if req.Image == "" {
		abortWithError(c, http.StatusBadRequest, "image data is required")
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	detection, err := h.detectionService.Detect(c.Request.Context(), userID, detector.AnalyzeRequest{
		ImageData: req.Image,
		Pose:      req.Pose,
		TTS:       req.TTS,
	})
	if err != nil {
		h.abortDetectorError(c, err)
		return
	}

	data := gin.H{"detection": detection.Result.Raw}
	if detection.SnapshotKey != "" {
		data["snapshotKey"] = detection.SnapshotKey
	}
	respondSuccess(c, http.StatusOK, "pose analyzed", data)
}

// Realtime asks the analyzer to begin a realtime capture loop.
func (h *PoseHandler) Realtime(c *gin.Context) {
	var req RealtimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationErrors(c, formatValidationErrors(err))
		return
	}

	result, err := h.detectionService.StartRealtime(c.Request.Context(), req.Pose)
	if err != nil {
		h.abortDetectorError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "realtime detection started", result.Raw)
}

func (h *PoseHandler) abortDetectorError(c *gin.Context, err error) {
	var scriptErr *detector.ScriptError
	switch {
	case errors.Is(err, detector.ErrBadImage):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, detector.ErrBusy):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, detector.ErrUnparsable):
		abortServerError(c, err)
	case errors.As(err, &scriptErr):
		abortServerError(c, err)
	default:
		abortServerError(c, err)
	}
}

// SaveSession records one pose attempt.
func (h *PoseHandler) SaveSession(c *gin.Context) {
	var req SaveSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	input := service.SaveAttemptInput{
		PoseName:       req.PoseName,
		Confidence:     req.Confidence,
		Corrections:    req.Corrections,
		Landmarks:      req.Landmarks,
		Duration:       req.Duration,
		CaloriesBurned: req.CaloriesBurned,
		Score:          req.Score,
		SnapshotKey:    req.SnapshotKey,
	}
	if req.SessionID != "" {
		sessionID, err := primitive.ObjectIDFromHex(req.SessionID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid session ID")
			return
		}
		input.PoseSessionID = sessionID
	}

	attempt, err := h.sessionService.SaveAttempt(c.Request.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortServerError(c, err)
		}
		return
	}

	respondSuccess(c, http.StatusCreated, "attempt saved", attempt)
}

// GetAttempts lists the user's recent attempts.
func (h *PoseHandler) GetAttempts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	attempts, err := h.sessionService.GetAttempts(c.Request.Context(), userID, limit)
	if err != nil {
		abortServerError(c, err)
		return
	}
	if attempts == nil {
		attempts = []domain.YogaSession{}
	}

	respondSuccess(c, http.StatusOK, "", attempts)
}

// GetSnapshotURL presigns a download link for an attempt's archived frame.
func (h *PoseHandler) GetSnapshotURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	attemptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid attempt ID")
		return
	}

	url, err := h.detectionService.SnapshotURL(c.Request.Context(), userID, attemptID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSnapshotNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSnapshotDisabled):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortServerError(c, err)
		}
		return
	}

	respondSuccess(c, http.StatusOK, "", gin.H{"url": url})
}

// StartSession opens a new practice sitting.
func (h *PoseHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	session, err := h.sessionService.StartSession(c.Request.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortServerError(c, err)
		}
		return
	}

	respondSuccess(c, http.StatusCreated, "session started", session)
}

// GetSessions lists the user's practice sittings.
func (h *PoseHandler) GetSessions(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	sessions, err := h.sessionService.GetSessions(c.Request.Context(), userID)
	if err != nil {
		abortServerError(c, err)
		return
	}
	if sessions == nil {
		sessions = []domain.PoseSession{}
	}

	respondSuccess(c, http.StatusOK, "", sessions)
}

// GetSession fetches one practice sitting.
func (h *PoseHandler) GetSession(c *gin.Context) {
	h.withSession(c, func(userID, sessionID primitive.ObjectID) {
		session, err := h.sessionService.GetSession(c.Request.Context(), userID, sessionID)
		if err != nil {
			h.abortSessionError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, "", session)
	})
}

// CompleteSession transitions a session to completed and returns the
// recomputed aggregates.
func (h *PoseHandler) CompleteSession(c *gin.Context) {
	h.withSession(c, func(userID, sessionID primitive.ObjectID) {
		session, err := h.sessionService.CompleteSession(c.Request.Context(), userID, sessionID)
		if err != nil {
			h.abortSessionError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, "session completed", session)
	})
}

// DeleteSession removes a practice sitting.
func (h *PoseHandler) DeleteSession(c *gin.Context) {
	h.withSession(c, func(userID, sessionID primitive.ObjectID) {
		if err := h.sessionService.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
			h.abortSessionError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, "session deleted", nil)
	})
}

func (h *PoseHandler) withSession(c *gin.Context, fn func(userID, sessionID primitive.ObjectID)) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid session ID")
		return
	}

	fn(userID, sessionID)
}

func (h *PoseHandler) abortSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionAlreadyCompleted):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortServerError(c, err)
	}
}
