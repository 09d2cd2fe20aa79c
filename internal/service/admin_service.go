package service

import (
	"context"
	"runtime"
	"time"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/repository"
)

// analyticsWindow is how far back the admin dashboards look.
const analyticsWindow = 30 * 24 * time.Hour

// PlatformStats is the admin dashboard headline block.
type PlatformStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	PremiumUsers  int64 `json:"premiumUsers"`
	TotalSessions int64 `json:"totalSessions"`
	TotalPlans    int64 `json:"totalPlans"`
}

// ServerStatus reports process and database health.
type ServerStatus struct {
	Uptime      string `json:"uptime"`
	Goroutines  int    `json:"goroutines"`
	AllocMB     uint64 `json:"allocMb"`
	SysMB       uint64 `json:"sysMb"`
	DatabaseOK  bool   `json:"databaseOk"`
	Environment string `json:"environment"`
}

// PlatformAnalytics holds the 30-day trend lines.
type PlatformAnalytics struct {
	Registrations []repository.DayCount `json:"registrations"`
	PoseActivity  []repository.DayCount `json:"poseActivity"`
}

// AdminService backs the admin dashboard endpoints.
type AdminService interface {
	Stats(ctx context.Context) (*PlatformStats, error)
	Users(ctx context.Context, page, limit int64) ([]domain.User, int64, error)
	ServerStatus(ctx context.Context) *ServerStatus
	LoginLogs(ctx context.Context, limit int64) ([]domain.LoginLog, error)
	Analytics(ctx context.Context) (*PlatformAnalytics, error)
}

type adminService struct {
	userRepo     repository.UserRepository
	yogaRepo     repository.YogaSessionRepository
	dietRepo     repository.DietPlanRepository
	loginLogRepo repository.LoginLogRepository
	pingDB       func(ctx context.Context) error
	environment  string
	startedAt    time.Time
}

// NewAdminService creates a new instance of adminService.
func NewAdminService(
	userRepo repository.UserRepository,
	yogaRepo repository.YogaSessionRepository,
	dietRepo repository.DietPlanRepository,
	loginLogRepo repository.LoginLogRepository,
	pingDB func(ctx context.Context) error,
	environment string,
) AdminService {
	return &adminService{
		userRepo:     userRepo,
		yogaRepo:     yogaRepo,
		dietRepo:     dietRepo,
		loginLogRepo: loginLogRepo,
		pingDB:       pingDB,
		environment:  environment,
		startedAt:    time.Now(),
	}
}

// Stats collects the headline counters.
func (s *adminService) Stats(ctx context.Context) (*PlatformStats, error) {
	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	premiumUsers, err := s.userRepo.CountPremium(ctx)
	if err != nil {
		return nil, err
	}
	totalSessions, err := s.yogaRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalPlans, err := s.dietRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &PlatformStats{
		TotalUsers:    totalUsers,
		PremiumUsers:  premiumUsers,
		TotalSessions: totalSessions,
		TotalPlans:    totalPlans,
	}, nil
}

// Users pages through all accounts. Password hashes are stripped.
func (s *adminService) Users(ctx context.Context, page, limit int64) ([]domain.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

// ServerStatus snapshots process health. Never fails; a database outage
// is reported in the payload instead.
func (s *adminService) ServerStatus(ctx context.Context) *ServerStatus {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	dbOK := true
	if s.pingDB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		dbOK = s.pingDB(pingCtx) == nil
	}

	return &ServerStatus{
		Uptime:      time.Since(s.startedAt).Round(time.Second).String(),
		Goroutines:  runtime.NumGoroutine(),
		AllocMB:     mem.Alloc / 1024 / 1024,
		SysMB:       mem.Sys / 1024 / 1024,
		DatabaseOK:  dbOK,
		Environment: s.environment,
	}
}

// LoginLogs returns the recent authentication audit trail.
func (s *adminService) LoginLogs(ctx context.Context, limit int64) ([]domain.LoginLog, error) {
	return s.loginLogRepo.GetRecent(ctx, limit)
}

// Analytics returns the 30-day registration and activity trends.
func (s *adminService) Analytics(ctx context.Context) (*PlatformAnalytics, error) {
	since := time.Now().UTC().Add(-analyticsWindow)

	registrations, err := s.userRepo.RegistrationsByDay(ctx, since)
	if err != nil {
		return nil, err
	}
	activity, err := s.yogaRepo.ActivityByDay(ctx, since)
	if err != nil {
		return nil, err
	}

	if registrations == nil {
		registrations = []repository.DayCount{}
	}
	if activity == nil {
		activity = []repository.DayCount{}
	}

	return &PlatformAnalytics{
		Registrations: registrations,
		PoseActivity:  activity,
	}, nil
}
