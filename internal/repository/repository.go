package repository

import (
	"context"
	"time"

	"saxonmahar/yoga-ai/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// DayCount is one bucket of a per-day aggregation (admin analytics).
type DayCount struct {
	Day   string `bson:"_id" json:"day"` // YYYY-MM-DD
	Count int64  `bson:"count" json:"count"`
}

// SessionTotals aggregates a user's recorded pose attempts.
type SessionTotals struct {
	TotalSessions int64   `bson:"totalSessions" json:"totalSessions"`
	TotalDuration int64   `bson:"totalDuration" json:"totalDuration"` // seconds
	TotalCalories float64 `bson:"totalCalories" json:"totalCalories"`
	AvgScore      float64 `bson:"avgScore" json:"avgScore"`
}

// PoseStat is the per-pose slice of a user's history.
type PoseStat struct {
	PoseName      string  `bson:"_id" json:"poseName"`
	Attempts      int64   `bson:"attempts" json:"attempts"`
	AvgConfidence float64 `bson:"avgConfidence" json:"avgConfidence"`
	BestScore     float64 `bson:"bestScore" json:"bestScore"`
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetOTP(ctx context.Context, id primitive.ObjectID, otpHash string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	UpdateLoginStats(ctx context.Context, id primitive.ObjectID, lastLogin time.Time, streak int) error
	IncrementTotalWorkouts(ctx context.Context, id primitive.ObjectID) error
	SetPremium(ctx context.Context, id primitive.ObjectID, premium bool) error
	List(ctx context.Context, page, limit int64) ([]domain.User, int64, error)
	Count(ctx context.Context) (int64, error)
	CountPremium(ctx context.Context) (int64, error)
	RegistrationsByDay(ctx context.Context, since time.Time) ([]DayCount, error)
}

// YogaSessionRepository persists individual pose attempts.
type YogaSessionRepository interface {
	Create(ctx context.Context, session *domain.YogaSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.YogaSession, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.YogaSession, error)
	GetByPoseSessionID(ctx context.Context, poseSessionID primitive.ObjectID) ([]domain.YogaSession, error)
	DeleteByPoseSessionID(ctx context.Context, poseSessionID primitive.ObjectID) error
	Totals(ctx context.Context, userID primitive.ObjectID) (*SessionTotals, error)
	PoseBreakdown(ctx context.Context, userID primitive.ObjectID) ([]PoseStat, error)
	DistinctPracticeDays(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]string, error)
	ActivityByDay(ctx context.Context, since time.Time) ([]DayCount, error)
	Count(ctx context.Context) (int64, error)
}

// DietPlanRepository persists generated diet recommendations.
type DietPlanRepository interface {
	Create(ctx context.Context, plan *domain.DietPlan) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error)
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error)
	DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// PoseSessionRepository persists practice sittings that group attempts.
type PoseSessionRepository interface {
	Create(ctx context.Context, session *domain.PoseSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PoseSession, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.PoseSession, error)
	// Complete transitions an in-progress session to completed. Returns
	// ErrNotFound when the session is missing or already completed.
	Complete(ctx context.Context, id primitive.ObjectID, endTime time.Time, avgAccuracy float64, totalPoses int, calories float64) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// LoginLogRepository records login attempts for the admin dashboard.
type LoginLogRepository interface {
	Create(ctx context.Context, entry *domain.LoginLog) error
	GetRecent(ctx context.Context, limit int64) ([]domain.LoginLog, error)
}
