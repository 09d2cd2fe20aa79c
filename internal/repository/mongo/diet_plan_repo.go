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

const dietPlanCollectionName = "diet_plans"

// mongoDietPlanRepository implements repository.DietPlanRepository.
type mongoDietPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoDietPlanRepository creates a new diet plan repository.
func NewMongoDietPlanRepository(db *mongo.Database) repository.DietPlanRepository {
	return &mongoDietPlanRepository{
		collection: db.Collection(dietPlanCollectionName),
	}
}

// Create inserts a newly generated plan.
func (r *mongoDietPlanRepository) Create(ctx context.Context, plan *domain.DietPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan user ID is required")
	}

	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByUserID returns all of a user's plans, newest first.
func (r *mongoDietPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.DietPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// GetActiveByUserID returns the user's currently active plan.
func (r *mongoDietPlanRepository) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error) {
	var plan domain.DietPlan
	filter := bson.M{"userId": userID, "isActive": true}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, opts).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// DeactivateAllForUser supersedes prior plans before a regeneration.
func (r *mongoDietPlanRepository) DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"isActive":  false,
			"updatedAt": time.Now().UTC(),
		},
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"userId": userID, "isActive": true}, update)
	return err
}

func (r *mongoDietPlanRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// EnsureDietPlanIndexes creates necessary indexes for the diet_plans collection.
func EnsureDietPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
