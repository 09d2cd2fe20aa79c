package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Level describes a user's self-reported yoga experience.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// UserStats holds body metrics and practice aggregates kept on the user
// document. Aggregates are updated on login and session completion.
type UserStats struct {
	Weight        float64    `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	Height        float64    `bson:"height,omitempty" json:"height,omitempty"` // cm
	Age           int        `bson:"age,omitempty" json:"age,omitempty"`
	Goal          string     `bson:"goal,omitempty" json:"goal,omitempty"`
	CurrentStreak int        `bson:"currentStreak" json:"currentStreak"` // consecutive practice days
	TotalWorkouts int        `bson:"totalWorkouts" json:"totalWorkouts"`
	LastLogin     *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
}

// Verification tracks the email OTP state for a freshly registered account.
// The OTP itself is stored hashed, never in the clear.
type Verification struct {
	Verified     bool       `bson:"verified" json:"verified"`
	OTPHash      string     `bson:"otpHash,omitempty" json:"-"`
	OTPExpiresAt *time.Time `bson:"otpExpiresAt,omitempty" json:"-"`
}

// User represents a registered account.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // never expose via JSON
	Level        Level              `bson:"level" json:"level"`
	Role         Role               `bson:"role" json:"role"`
	Stats        UserStats          `bson:"stats" json:"stats"`
	IsPremium    bool               `bson:"isPremium" json:"isPremium"`
	Verification Verification       `bson:"verification" json:"verification"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ValidLevel reports whether l is one of the accepted experience levels.
func ValidLevel(l Level) bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}
