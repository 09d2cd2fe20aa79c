package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists = errors.New("an account with this email already exists")
	// ErrAuthenticationFailed deliberately covers both unknown-email and
	// wrong-password so responses never reveal whether an email is registered.
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrEmailNotVerified     = errors.New("email address is not verified")
	ErrInvalidOTP           = errors.New("verification code is invalid or expired")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

const otpValidity = 10 * time.Minute

// LoginInput carries everything a login attempt needs, including the
// request metadata recorded in the audit log.
type LoginInput struct {
	Email     string
	Password  string
	OTP       string // optional; verifies a pending account inline
	IP        string
	UserAgent string
}

// AuthService owns registration, verification and the session lifecycle.
type AuthService interface {
	Register(ctx context.Context, name, email, password string, level domain.Level) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (token string, user *domain.User, err error)
	ResendOTP(ctx context.Context, email string) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetJWTSecret() string
}

// Mailer is the slice of the mail package the auth service needs.
type Mailer interface {
	SendOTP(to, name, code string) error
}

type authService struct {
	userRepo      repository.UserRepository
	loginLogRepo  repository.LoginLogRepository
	mailer        Mailer
	jwtSecret     string
	jwtExpiration time.Duration
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, loginLogRepo repository.LoginLogRepository, mailer Mailer, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		loginLogRepo:  loginLogRepo,
		mailer:        mailer,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		now:           time.Now,
	}
}

// Register creates an unverified account and sends its verification code.
func (s *authService) Register(ctx context.Context, name, email, password string, level domain.Level) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password cannot be empty")
	}
	if level == "" {
		level = domain.LevelBeginner
	}
	if !domain.ValidLevel(level) {
		return nil, fmt.Errorf("invalid experience level %q", level)
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	code, otpHash, err := s.newOTP()
	if err != nil {
		return nil, err
	}
	otpExpiry := s.now().Add(otpValidity).UTC()

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Level:        level,
		Role:         domain.RoleUser,
		IsPremium:    false,
		Verification: domain.Verification{
			Verified:     false,
			OTPHash:      otpHash,
			OTPExpiresAt: &otpExpiry,
		},
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// The unique email index catches registrations racing past the
		// GetByEmail check above.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID

	// Email delivery is best-effort; the code can be re-requested.
	if err := s.mailer.SendOTP(user.Email, user.Name, code); err != nil {
		log.Printf("ERROR: failed to send verification code to %s: %v", user.Email, err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login authenticates a user and issues a session token. Unverified
// accounts are signalled distinctly so the client can collect an OTP;
// supplying a valid OTP together with correct credentials verifies the
// account in the same call.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *domain.User, error) {
	if input.Email == "" || input.Password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordLogin(ctx, nil, input, false)
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.recordLogin(ctx, user, input, false)
		return "", nil, ErrAuthenticationFailed
	}

	if !user.Verification.Verified {
		if input.OTP == "" {
			return "", nil, ErrEmailNotVerified
		}
		if !s.otpMatches(user, input.OTP) {
			return "", nil, ErrInvalidOTP
		}
		if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
			return "", nil, err
		}
		user.Verification.Verified = true
	}

	now := s.now().UTC()
	streak := NextStreak(user.Stats.LastLogin, user.Stats.CurrentStreak, now)
	if err := s.userRepo.UpdateLoginStats(ctx, user.ID, now, streak); err != nil {
		log.Printf("WARN: failed to update login stats for %s: %v", user.ID.Hex(), err)
	} else {
		user.Stats.LastLogin = &now
		user.Stats.CurrentStreak = streak
	}

	s.recordLogin(ctx, user, input, true)

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// ResendOTP issues a fresh verification code for a pending account.
// It succeeds silently for unknown or already-verified emails to avoid
// account enumeration.
func (s *authService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.Verification.Verified {
		return nil
	}

	code, otpHash, err := s.newOTP()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetOTP(ctx, user.ID, otpHash, s.now().Add(otpValidity)); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(user.Email, user.Name, code); err != nil {
		log.Printf("ERROR: failed to resend verification code to %s: %v", user.Email, err)
	}
	return nil
}

// GetUserByID rehydrates the current user for /me.
func (s *authService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	user, err := s.userRepo.GetByID(ctx, objectID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}

// NextStreak computes the consecutive-day practice streak given the
// previous login time.
func NextStreak(lastLogin *time.Time, current int, now time.Time) int {
	if lastLogin == nil || current <= 0 {
		return 1
	}
	lastDay := lastLogin.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)
	switch today.Sub(lastDay) {
	case 0:
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}

func (s *authService) recordLogin(ctx context.Context, user *domain.User, input LoginInput, success bool) {
	if s.loginLogRepo == nil {
		return
	}
	entry := &domain.LoginLog{
		Email:     input.Email,
		IP:        input.IP,
		UserAgent: input.UserAgent,
		Success:   success,
	}
	if user != nil {
		entry.UserID = user.ID
	}
	if err := s.loginLogRepo.Create(ctx, entry); err != nil {
		log.Printf("WARN: failed to record login attempt for %s: %v", input.Email, err)
	}
}

// newOTP generates a 6-digit code and its bcrypt hash for storage.
func (s *authService) newOTP() (code, hash string, err error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	code = fmt.Sprintf("%06d", n.Int64())

	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", ErrHashingFailed
	}
	return code, string(hashed), nil
}

func (s *authService) otpMatches(user *domain.User, otp string) bool {
	v := user.Verification
	if v.OTPHash == "" || v.OTPExpiresAt == nil || s.now().After(*v.OTPExpiresAt) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(v.OTPHash), []byte(otp)) == nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := s.now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			Issuer:    "yoga-ai",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
