package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Landmark is a single body keypoint reported by the pose detector,
// normalized to the image frame.
type Landmark struct {
	X          float64 `bson:"x" json:"x"`
	Y          float64 `bson:"y" json:"y"`
	Z          float64 `bson:"z" json:"z"`
	Visibility float64 `bson:"visibility" json:"visibility"`
}

// YogaSession records a single detected pose attempt. Documents are
// immutable after creation; aggregates are recomputed elsewhere.
type YogaSession struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	PoseSessionID  primitive.ObjectID `bson:"poseSessionId,omitempty" json:"poseSessionId,omitempty"`
	PoseName       string             `bson:"poseName" json:"poseName"`
	Confidence     float64            `bson:"confidence" json:"confidence"` // 0-100
	Corrections    []string           `bson:"corrections,omitempty" json:"corrections,omitempty"`
	Landmarks      []Landmark         `bson:"landmarks,omitempty" json:"landmarks,omitempty"`
	Duration       int                `bson:"duration" json:"duration"` // seconds
	CaloriesBurned float64            `bson:"caloriesBurned" json:"caloriesBurned"`
	Score          float64            `bson:"score" json:"score"` // 0-100
	SnapshotKey    string             `bson:"snapshotKey,omitempty" json:"snapshotKey,omitempty"`
	Date           time.Time          `bson:"date" json:"date"`
}
