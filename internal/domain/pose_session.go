package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus is the lifecycle state of a practice session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in-progress"
	SessionCompleted  SessionStatus = "completed"
)

// PoseSession groups the pose attempts of one practice sitting.
// avgAccuracy and totalPoses are recomputed from the recorded attempts
// when the session is completed. EndTime, when set, is never before
// StartTime.
type PoseSession struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Name           string             `bson:"name" json:"name"`
	Status         SessionStatus      `bson:"status" json:"status"`
	StartTime      time.Time          `bson:"startTime" json:"startTime"`
	EndTime        *time.Time         `bson:"endTime,omitempty" json:"endTime,omitempty"`
	AvgAccuracy    float64            `bson:"avgAccuracy" json:"avgAccuracy"`
	TotalPoses     int                `bson:"totalPoses" json:"totalPoses"`
	CaloriesBurned float64            `bson:"caloriesBurned" json:"caloriesBurned"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
