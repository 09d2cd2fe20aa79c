package mongo

import (
	"context"
	"time"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const loginLogCollectionName = "login_logs"

// mongoLoginLogRepository implements repository.LoginLogRepository.
type mongoLoginLogRepository struct {
	collection *mongo.Collection
}

// NewMongoLoginLogRepository creates a new login log repository.
func NewMongoLoginLogRepository(db *mongo.Database) repository.LoginLogRepository {
	return &mongoLoginLogRepository{
		collection: db.Collection(loginLogCollectionName),
	}
}

// Create appends one audit entry. Best-effort from the caller's view.
func (r *mongoLoginLogRepository) Create(ctx context.Context, entry *domain.LoginLog) error {
	entry.ID = primitive.NewObjectID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// GetRecent returns the latest entries, newest first.
func (r *mongoLoginLogRepository) GetRecent(ctx context.Context, limit int64) ([]domain.LoginLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.LoginLog
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureLoginLogIndexes creates necessary indexes for the login_logs collection.
func EnsureLoginLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
