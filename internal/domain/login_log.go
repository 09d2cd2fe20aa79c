package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginLog is an audit record of a login attempt, surfaced on the
// admin dashboard.
type LoginLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Email     string             `bson:"email" json:"email"`
	IP        string             `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string             `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	Success   bool               `bson:"success" json:"success"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
