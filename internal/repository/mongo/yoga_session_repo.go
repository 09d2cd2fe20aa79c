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

const yogaSessionCollectionName = "yoga_sessions"

// mongoYogaSessionRepository implements repository.YogaSessionRepository.
type mongoYogaSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoYogaSessionRepository creates a new yoga session repository.
func NewMongoYogaSessionRepository(db *mongo.Database) repository.YogaSessionRepository {
	return &mongoYogaSessionRepository{
		collection: db.Collection(yogaSessionCollectionName),
	}
}

// Create inserts a single pose attempt. Attempts are immutable afterwards.
func (r *mongoYogaSessionRepository) Create(ctx context.Context, session *domain.YogaSession) (primitive.ObjectID, error) {
	if session.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session user ID is required")
	}

	session.ID = primitive.NewObjectID()
	if session.Date.IsZero() {
		session.Date = time.Now().UTC()
	}

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

// GetByID fetches a single attempt.
func (r *mongoYogaSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.YogaSession, error) {
	var session domain.YogaSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByUserID returns the user's most recent attempts, newest first.
func (r *mongoYogaSessionRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.YogaSession, error) {
	if limit < 1 || limit > 500 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.YogaSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetByPoseSessionID returns all attempts recorded within one practice sitting.
func (r *mongoYogaSessionRepository) GetByPoseSessionID(ctx context.Context, poseSessionID primitive.ObjectID) ([]domain.YogaSession, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"poseSessionId": poseSessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.YogaSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteByPoseSessionID removes every attempt recorded within one
// practice sitting. Used when the sitting itself is deleted.
func (r *mongoYogaSessionRepository) DeleteByPoseSessionID(ctx context.Context, poseSessionID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"poseSessionId": poseSessionID})
	return err
}

// Totals aggregates lifetime counters for one user.
func (r *mongoYogaSessionRepository) Totals(ctx context.Context, userID primitive.ObjectID) (*repository.SessionTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalSessions": bson.M{"$sum": 1},
			"totalDuration": bson.M{"$sum": "$duration"},
			"totalCalories": bson.M{"$sum": "$caloriesBurned"},
			"avgScore":      bson.M{"$avg": "$score"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []repository.SessionTotals
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &repository.SessionTotals{}, nil
	}
	return &results[0], nil
}

// PoseBreakdown aggregates attempts per pose name for one user.
func (r *mongoYogaSessionRepository) PoseBreakdown(ctx context.Context, userID primitive.ObjectID) ([]repository.PoseStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$poseName",
			"attempts":      bson.M{"$sum": 1},
			"avgConfidence": bson.M{"$avg": "$confidence"},
			"bestScore":     bson.M{"$max": "$score"},
		}}},
		{{Key: "$sort", Value: bson.M{"attempts": -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []repository.PoseStat
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// DistinctPracticeDays lists the distinct calendar days (YYYY-MM-DD, newest
// first) on which the user recorded at least one attempt. Feeds the streak
// computation.
func (r *mongoYogaSessionRepository) DistinctPracticeDays(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"userId": userID,
			"date":   bson.M{"$gte": since.UTC()},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$date"}},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Day string `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	days := make([]string, len(rows))
	for i, row := range rows {
		days[i] = row.Day
	}
	return days, nil
}

// ActivityByDay buckets all attempts per calendar day (admin analytics).
func (r *mongoYogaSessionRepository) ActivityByDay(ctx context.Context, since time.Time) ([]repository.DayCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": since.UTC()}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$date"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []repository.DayCount
	if err = cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

func (r *mongoYogaSessionRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// EnsureYogaSessionIndexes creates necessary indexes for the yoga_sessions collection.
func EnsureYogaSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "poseSessionId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
