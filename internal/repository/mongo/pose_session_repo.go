package mongo

import (
	"context"
	"errors"
	"time"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const poseSessionCollectionName = "pose_sessions"

// mongoPoseSessionRepository implements repository.PoseSessionRepository.
type mongoPoseSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoPoseSessionRepository creates a new pose session repository.
func NewMongoPoseSessionRepository(db *mongo.Database) repository.PoseSessionRepository {
	return &mongoPoseSessionRepository{
		collection: db.Collection(poseSessionCollectionName),
	}
}

// Create starts a new practice sitting in the in-progress state.
func (r *mongoPoseSessionRepository) Create(ctx context.Context, session *domain.PoseSession) (primitive.ObjectID, error) {
	if session.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session user ID is required")
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if session.StartTime.IsZero() {
		session.StartTime = now
	}
	session.Status = domain.SessionInProgress
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID fetches a single session.
func (r *mongoPoseSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PoseSession, error) {
	var session domain.PoseSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByUserID returns all sessions of a user, newest first.
func (r *mongoPoseSessionRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.PoseSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.PoseSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Complete transitions in-progress -> completed and stores the aggregates.
// The status filter makes the transition race-safe: a second completion
// matches nothing and reports ErrNotFound.
func (r *mongoPoseSessionRepository) Complete(ctx context.Context, id primitive.ObjectID, endTime time.Time, avgAccuracy float64, totalPoses int, calories float64) error {
	filter := bson.M{"_id": id, "status": domain.SessionInProgress}
	update := bson.M{
		"$set": bson.M{
			"status":         domain.SessionCompleted,
			"endTime":        endTime.UTC(),
			"avgAccuracy":    avgAccuracy,
			"totalPoses":     totalPoses,
			"caloriesBurned": calories,
			"updatedAt":      time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a session, scoped to its owner.
func (r *mongoPoseSessionRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePoseSessionIndexes creates necessary indexes for the pose_sessions collection.
func EnsurePoseSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "startTime", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
