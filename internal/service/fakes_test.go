package service

import (
	"context"
	"sync"
	"time"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User

	premiumSet  []primitive.ObjectID
	workoutIncs int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) add(user *domain.User) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	r.users[user.ID] = &copied
	return user.ID
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			r.mu.Unlock()
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	r.mu.Unlock()
	return r.add(user), nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) SetOTP(ctx context.Context, id primitive.ObjectID, otpHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Verification.OTPHash = otpHash
	user.Verification.OTPExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Verification.Verified = true
	user.Verification.OTPHash = ""
	user.Verification.OTPExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) UpdateLoginStats(ctx context.Context, id primitive.ObjectID, lastLogin time.Time, streak int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Stats.LastLogin = &lastLogin
	user.Stats.CurrentStreak = streak
	return nil
}

func (r *fakeUserRepo) IncrementTotalWorkouts(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Stats.TotalWorkouts++
	r.workoutIncs++
	return nil
}

func (r *fakeUserRepo) SetPremium(ctx context.Context, id primitive.ObjectID, premium bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsPremium = premium
	r.premiumSet = append(r.premiumSet, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, page, limit int64) ([]domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) CountPremium(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, user := range r.users {
		if user.IsPremium {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) RegistrationsByDay(ctx context.Context, since time.Time) ([]repository.DayCount, error) {
	return nil, nil
}

type fakeLoginLogRepo struct {
	mu      sync.Mutex
	entries []domain.LoginLog
}

func (r *fakeLoginLogRepo) Create(ctx context.Context, entry *domain.LoginLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLoginLogRepo) GetRecent(ctx context.Context, limit int64) ([]domain.LoginLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.LoginLog(nil), r.entries...), nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string // codes, in send order
	to   []string
}

func (m *fakeMailer) SendOTP(to, name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, code)
	m.to = append(m.to, to)
	return nil
}

func (m *fakeMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

type fakeYogaRepo struct {
	mu       sync.Mutex
	attempts map[primitive.ObjectID]*domain.YogaSession

	totals    *repository.SessionTotals
	breakdown []repository.PoseStat
	days      []string
}

func newFakeYogaRepo() *fakeYogaRepo {
	return &fakeYogaRepo{attempts: make(map[primitive.ObjectID]*domain.YogaSession)}
}

func (r *fakeYogaRepo) Create(ctx context.Context, session *domain.YogaSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = primitive.NewObjectID()
	copied := *session
	r.attempts[session.ID] = &copied
	return session.ID, nil
}

func (r *fakeYogaRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.YogaSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt, ok := r.attempts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *attempt
	return &copied, nil
}

func (r *fakeYogaRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.YogaSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.YogaSession
	for _, attempt := range r.attempts {
		if attempt.UserID == userID {
			out = append(out, *attempt)
		}
	}
	return out, nil
}

func (r *fakeYogaRepo) GetByPoseSessionID(ctx context.Context, poseSessionID primitive.ObjectID) ([]domain.YogaSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.YogaSession
	for _, attempt := range r.attempts {
		if attempt.PoseSessionID == poseSessionID {
			out = append(out, *attempt)
		}
	}
	return out, nil
}

func (r *fakeYogaRepo) DeleteByPoseSessionID(ctx context.Context, poseSessionID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, attempt := range r.attempts {
		if attempt.PoseSessionID == poseSessionID {
			delete(r.attempts, id)
		}
	}
	return nil
}

func (r *fakeYogaRepo) Totals(ctx context.Context, userID primitive.ObjectID) (*repository.SessionTotals, error) {
	if r.totals != nil {
		return r.totals, nil
	}
	return &repository.SessionTotals{}, nil
}

func (r *fakeYogaRepo) PoseBreakdown(ctx context.Context, userID primitive.ObjectID) ([]repository.PoseStat, error) {
	return r.breakdown, nil
}

func (r *fakeYogaRepo) DistinctPracticeDays(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]string, error) {
	return r.days, nil
}

func (r *fakeYogaRepo) ActivityByDay(ctx context.Context, since time.Time) ([]repository.DayCount, error) {
	return nil, nil
}

func (r *fakeYogaRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.attempts)), nil
}

type fakePoseSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]*domain.PoseSession
}

func newFakePoseSessionRepo() *fakePoseSessionRepo {
	return &fakePoseSessionRepo{sessions: make(map[primitive.ObjectID]*domain.PoseSession)}
}

func (r *fakePoseSessionRepo) Create(ctx context.Context, session *domain.PoseSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = primitive.NewObjectID()
	if session.Status == "" {
		session.Status = domain.SessionInProgress
	}
	copied := *session
	r.sessions[session.ID] = &copied
	return session.ID, nil
}

func (r *fakePoseSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PoseSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakePoseSessionRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.PoseSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PoseSession
	for _, session := range r.sessions {
		if session.UserID == userID {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (r *fakePoseSessionRepo) Complete(ctx context.Context, id primitive.ObjectID, endTime time.Time, avgAccuracy float64, totalPoses int, calories float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.Status == domain.SessionCompleted {
		return repository.ErrNotFound
	}
	session.Status = domain.SessionCompleted
	session.EndTime = &endTime
	session.AvgAccuracy = avgAccuracy
	session.TotalPoses = totalPoses
	session.CaloriesBurned = calories
	return nil
}

func (r *fakePoseSessionRepo) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

type fakeDietRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]*domain.DietPlan
}

func newFakeDietRepo() *fakeDietRepo {
	return &fakeDietRepo{plans: make(map[primitive.ObjectID]*domain.DietPlan)}
}

func (r *fakeDietRepo) Create(ctx context.Context, plan *domain.DietPlan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan.ID = primitive.NewObjectID()
	copied := *plan
	r.plans[plan.ID] = &copied
	return plan.ID, nil
}

func (r *fakeDietRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DietPlan
	for _, plan := range r.plans {
		if plan.UserID == userID {
			out = append(out, *plan)
		}
	}
	return out, nil
}

func (r *fakeDietRepo) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, plan := range r.plans {
		if plan.UserID == userID && plan.IsActive {
			copied := *plan
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDietRepo) DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, plan := range r.plans {
		if plan.UserID == userID {
			plan.IsActive = false
		}
	}
	return nil
}

func (r *fakeDietRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.plans)), nil
}
