package service

import (
	"context"
	"errors"
	"log"
	"time"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/repository"
	"saxonmahar/yoga-ai/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionAlreadyCompleted = errors.New("session is already completed")
	ErrUserNotFound            = errors.New("user not found")
	ErrAttemptValidation       = errors.New("attempt validation failed")
)

// defaultWeightKg stands in when the user never recorded body metrics.
const defaultWeightKg = 70.0

// SaveAttemptInput is the payload of one recorded pose attempt.
type SaveAttemptInput struct {
	PoseSessionID  primitive.ObjectID
	PoseName       string
	Confidence     float64
	Corrections    []string
	Landmarks      []domain.Landmark
	Duration       int // seconds
	CaloriesBurned float64
	Score          float64
	SnapshotKey    string
}

// SessionService owns pose attempts and the practice-session lifecycle.
type SessionService interface {
	SaveAttempt(ctx context.Context, userID primitive.ObjectID, input SaveAttemptInput) (*domain.YogaSession, error)
	GetAttempts(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.YogaSession, error)
	StartSession(ctx context.Context, userID primitive.ObjectID, name string) (*domain.PoseSession, error)
	GetSessions(ctx context.Context, userID primitive.ObjectID) ([]domain.PoseSession, error)
	GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.PoseSession, error)
	CompleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.PoseSession, error)
	DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error
}

type sessionService struct {
	userRepo        repository.UserRepository
	yogaRepo        repository.YogaSessionRepository
	poseSessionRepo repository.PoseSessionRepository
	fileStorage     storage.FileStorage // nil when snapshot archival is disabled
}

// NewSessionService creates a new instance of sessionService.
// fileStorage may be nil; deleted sessions then skip snapshot cleanup.
func NewSessionService(userRepo repository.UserRepository, yogaRepo repository.YogaSessionRepository, poseSessionRepo repository.PoseSessionRepository, fileStorage storage.FileStorage) SessionService {
	return &sessionService{
		userRepo:        userRepo,
		yogaRepo:        yogaRepo,
		poseSessionRepo: poseSessionRepo,
		fileStorage:     fileStorage,
	}
}

// SaveAttempt persists one pose attempt. Confidence and score are clamped
// to [0,100]; calories are estimated from duration and body weight when
// the client didn't supply them.
func (s *sessionService) SaveAttempt(ctx context.Context, userID primitive.ObjectID, input SaveAttemptInput) (*domain.YogaSession, error) {
	if input.PoseName == "" {
		return nil, ErrAttemptValidation
	}
	if input.Duration < 0 {
		return nil, ErrAttemptValidation
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	calories := input.CaloriesBurned
	if calories <= 0 {
		calories = EstimateCalories(input.Duration, user.Stats.Weight)
	}

	attempt := &domain.YogaSession{
		UserID:         userID,
		PoseSessionID:  input.PoseSessionID,
		PoseName:       input.PoseName,
		Confidence:     clampPercent(input.Confidence),
		Corrections:    input.Corrections,
		Landmarks:      input.Landmarks,
		Duration:       input.Duration,
		CaloriesBurned: calories,
		Score:          clampPercent(input.Score),
		SnapshotKey:    input.SnapshotKey,
		Date:           time.Now().UTC(),
	}

	attemptID, err := s.yogaRepo.Create(ctx, attempt)
	if err != nil {
		return nil, err
	}
	attempt.ID = attemptID

	if err := s.userRepo.IncrementTotalWorkouts(ctx, userID); err != nil {
		log.Printf("WARN: failed to bump workout count for %s: %v", userID.Hex(), err)
	}

	return attempt, nil
}

// GetAttempts lists the user's recent attempts.
func (s *sessionService) GetAttempts(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.YogaSession, error) {
	return s.yogaRepo.GetByUserID(ctx, userID, limit)
}

// StartSession opens a new in-progress practice sitting.
func (s *sessionService) StartSession(ctx context.Context, userID primitive.ObjectID, name string) (*domain.PoseSession, error) {
	if name == "" {
		name = "Practice session"
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	session := &domain.PoseSession{
		UserID:    userID,
		Name:      name,
		StartTime: time.Now().UTC(),
	}

	sessionID, err := s.poseSessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = sessionID
	return session, nil
}

// GetSessions lists all of the user's practice sittings.
func (s *sessionService) GetSessions(ctx context.Context, userID primitive.ObjectID) ([]domain.PoseSession, error) {
	return s.poseSessionRepo.GetByUserID(ctx, userID)
}

// GetSession fetches one session, reporting not-found for foreign sessions
// so ownership cannot be probed.
func (s *sessionService) GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.PoseSession, error) {
	session, err := s.poseSessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// CompleteSession transitions in-progress -> completed, recomputing the
// aggregates from the attempts recorded under this session.
func (s *sessionService) CompleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.PoseSession, error) {
	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.SessionCompleted {
		return nil, ErrSessionAlreadyCompleted
	}

	attempts, err := s.yogaRepo.GetByPoseSessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	avgAccuracy, calories := aggregateAttempts(attempts)

	endTime := time.Now().UTC()
	if endTime.Before(session.StartTime) {
		endTime = session.StartTime // endTime must never precede startTime
	}

	err = s.poseSessionRepo.Complete(ctx, sessionID, endTime, avgAccuracy, len(attempts), calories)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race against a concurrent completion.
			return nil, ErrSessionAlreadyCompleted
		}
		return nil, err
	}

	return s.poseSessionRepo.GetByID(ctx, sessionID)
}

// DeleteSession removes one of the user's sessions together with the
// attempts recorded under it. Snapshot cleanup is best-effort.
func (s *sessionService) DeleteSession(ctx context.Context, userID, sessionID primitive.ObjectID) error {
	attempts, err := s.yogaRepo.GetByPoseSessionID(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.poseSessionRepo.Delete(ctx, sessionID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if s.fileStorage != nil {
		for _, attempt := range attempts {
			if attempt.SnapshotKey == "" {
				continue
			}
			if err := s.fileStorage.DeleteObject(ctx, attempt.SnapshotKey); err != nil {
				log.Printf("WARN: failed to delete snapshot %s: %v", attempt.SnapshotKey, err)
			}
		}
	}

	if err := s.yogaRepo.DeleteByPoseSessionID(ctx, sessionID); err != nil {
		log.Printf("WARN: failed to delete attempts of session %s: %v", sessionID.Hex(), err)
	}
	return nil
}

// aggregateAttempts derives a session's summary from its attempts.
func aggregateAttempts(attempts []domain.YogaSession) (avgAccuracy, totalCalories float64) {
	if len(attempts) == 0 {
		return 0, 0
	}
	var confidenceSum float64
	for _, a := range attempts {
		confidenceSum += a.Confidence
		totalCalories += a.CaloriesBurned
	}
	return confidenceSum / float64(len(attempts)), totalCalories
}

// EstimateCalories approximates the energy cost of holding poses for the
// given duration, scaled by body weight (hatha yoga, ~2.5 MET).
func EstimateCalories(durationSeconds int, weightKg float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	if weightKg <= 0 {
		weightKg = defaultWeightKg
	}
	const met = 2.5
	hours := float64(durationSeconds) / 3600
	return met * weightKg * hours
}

// clampPercent keeps confidence/score inside [0,100].
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
