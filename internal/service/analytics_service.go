package service

import (
	"context"
	"errors"
	"time"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrAnalyticsForbidden is returned when a user asks for someone else's
// analytics without the admin role.
var ErrAnalyticsForbidden = errors.New("not allowed to view this user's analytics")

// streakWindow bounds how far back practice days are fetched when
// recomputing the streak.
const streakWindow = 90 * 24 * time.Hour

// UserAnalytics is the dashboard summary for one user.
type UserAnalytics struct {
	UserID        string                `json:"userId"`
	TotalSessions int64                 `json:"totalSessions"`
	TotalMinutes  int64                 `json:"totalMinutes"`
	TotalCalories float64               `json:"totalCalories"`
	AvgScore      float64               `json:"avgScore"`
	CurrentStreak int                   `json:"currentStreak"`
	TotalWorkouts int                   `json:"totalWorkouts"`
	PoseBreakdown []repository.PoseStat `json:"poseBreakdown"`
}

// AnalyticsService computes per-user practice analytics.
type AnalyticsService interface {
	UserAnalytics(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, targetID primitive.ObjectID) (*UserAnalytics, error)
}

type analyticsService struct {
	userRepo repository.UserRepository
	yogaRepo repository.YogaSessionRepository
	now      func() time.Time
}

// NewAnalyticsService creates a new instance of analyticsService.
func NewAnalyticsService(userRepo repository.UserRepository, yogaRepo repository.YogaSessionRepository) AnalyticsService {
	return &analyticsService{
		userRepo: userRepo,
		yogaRepo: yogaRepo,
		now:      time.Now,
	}
}

// UserAnalytics aggregates one user's practice history. Users may only
// view their own analytics; admins may view anyone's.
func (s *analyticsService) UserAnalytics(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, targetID primitive.ObjectID) (*UserAnalytics, error) {
	if requesterID != targetID && requesterRole != domain.RoleAdmin {
		return nil, ErrAnalyticsForbidden
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	totals, err := s.yogaRepo.Totals(ctx, targetID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.yogaRepo.PoseBreakdown(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if breakdown == nil {
		breakdown = []repository.PoseStat{}
	}

	now := s.now().UTC()
	days, err := s.yogaRepo.DistinctPracticeDays(ctx, targetID, now.Add(-streakWindow))
	if err != nil {
		return nil, err
	}

	return &UserAnalytics{
		UserID:        targetID.Hex(),
		TotalSessions: totals.TotalSessions,
		TotalMinutes:  totals.TotalDuration / 60,
		TotalCalories: totals.TotalCalories,
		AvgScore:      totals.AvgScore,
		CurrentStreak: PracticeStreak(days, now),
		TotalWorkouts: user.Stats.TotalWorkouts,
		PoseBreakdown: breakdown,
	}, nil
}

// PracticeStreak counts consecutive practice days ending today or
// yesterday. days must be distinct YYYY-MM-DD strings, newest first.
func PracticeStreak(days []string, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	day := now.UTC().Truncate(24 * time.Hour)
	// A streak is still alive if the latest practice was yesterday.
	if days[0] != day.Format("2006-01-02") {
		day = day.Add(-24 * time.Hour)
		if days[0] != day.Format("2006-01-02") {
			return 0
		}
	}

	streak := 0
	for _, d := range days {
		if d != day.Format("2006-01-02") {
			break
		}
		streak++
		day = day.Add(-24 * time.Hour)
	}
	return streak
}
