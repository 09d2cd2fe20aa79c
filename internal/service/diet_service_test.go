package service

import (
	"context"
	"math"
	"testing"

	"saxonmahar/yoga-ai/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestDietService() (DietService, *fakeUserRepo, *fakeDietRepo) {
	userRepo := newFakeUserRepo()
	dietRepo := newFakeDietRepo()
	return NewDietService(userRepo, dietRepo), userRepo, dietRepo
}

func TestRecommendBuildsPlanFromStats(t *testing.T) {
	svc, userRepo, _ := newTestDietService()
	userID := userRepo.add(&domain.User{Email: "u@example.com", Stats: domain.UserStats{Weight: 80}})

	plan, err := svc.Recommend(context.Background(), userID, "weight-loss", "vegetarian")
	require.NoError(t, err)

	assert.Equal(t, DailyCalorieTarget(80, GoalWeightLoss), plan.CaloriesPerDay)
	assert.True(t, plan.IsActive)
	assert.Equal(t, planDurationDays, plan.Duration)
	require.Len(t, plan.Meals, 4)

	// 25/35/30/10 split, integer-truncated per slot.
	assert.Equal(t, int(float64(plan.CaloriesPerDay)*0.25), plan.Meals[0].Calories)
	assert.Equal(t, int(float64(plan.CaloriesPerDay)*0.35), plan.Meals[1].Calories)
	assert.Equal(t, int(float64(plan.CaloriesPerDay)*0.30), plan.Meals[2].Calories)
	assert.Equal(t, int(float64(plan.CaloriesPerDay)*0.10), plan.Meals[3].Calories)

	assert.Equal(t, domain.MealBreakfast, plan.Meals[0].MealType)
	assert.Equal(t, domain.MealLunch, plan.Meals[1].MealType)
	assert.Equal(t, domain.MealDinner, plan.Meals[2].MealType)
	assert.Equal(t, domain.MealSnack, plan.Meals[3].MealType)
}

func TestRecommendSupersedesOldPlan(t *testing.T) {
	svc, userRepo, _ := newTestDietService()
	userID := userRepo.add(&domain.User{Email: "u@example.com", Stats: domain.UserStats{Weight: 70}})

	first, err := svc.Recommend(context.Background(), userID, "maintenance", "")
	require.NoError(t, err)
	second, err := svc.Recommend(context.Background(), userID, "muscle-gain", "")
	require.NoError(t, err)

	active, err := svc.ActivePlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	// History keeps both.
	plans, err := svc.Plans(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, plans, 2)

	var firstNow *domain.DietPlan
	for i := range plans {
		if plans[i].ID == first.ID {
			firstNow = &plans[i]
		}
	}
	require.NotNil(t, firstNow)
	assert.False(t, firstNow.IsActive)
}

func TestRecommendGoalValidation(t *testing.T) {
	svc, userRepo, _ := newTestDietService()
	userID := userRepo.add(&domain.User{Email: "u@example.com"})

	_, err := svc.Recommend(context.Background(), userID, "get-shredded", "")
	assert.ErrorIs(t, err, ErrInvalidGoal)

	// Empty goal defaults to maintenance.
	plan, err := svc.Recommend(context.Background(), userID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Balanced Living", plan.PlanName)

	_, err = svc.Recommend(context.Background(), primitive.NewObjectID(), "maintenance", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestActivePlanMissing(t *testing.T) {
	svc, userRepo, _ := newTestDietService()
	userID := userRepo.add(&domain.User{Email: "u@example.com"})

	_, err := svc.ActivePlan(context.Background(), userID)
	assert.ErrorIs(t, err, ErrNoActivePlan)
}

func TestDailyCalorieTarget(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		goal   string
		want   int
	}{
		{"maintenance 70kg", 70, GoalMaintenance, 2170},
		{"weight loss 70kg", 70, GoalWeightLoss, int(math.Trunc(31.0 * 70 * 0.85))},
		{"muscle gain 70kg", 70, GoalMuscleGain, int(math.Trunc(31.0 * 70 * 1.15))},
		{"missing weight uses default", 0, GoalMaintenance, int(31.0 * defaultWeightKg)},
		{"floor protects very light users", 40, GoalWeightLoss, caloriesFloor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyCalorieTarget(tt.weight, tt.goal)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, caloriesFloor)
		})
	}
}

func TestVegetarianMenuSelection(t *testing.T) {
	svc, userRepo, _ := newTestDietService()
	userID := userRepo.add(&domain.User{Email: "u@example.com", Stats: domain.UserStats{Weight: 65}})

	plan, err := svc.Recommend(context.Background(), userID, "maintenance", "vegetarian")
	require.NoError(t, err)

	for _, meal := range plan.Meals {
		assert.NotContains(t, meal.Ingredients, "chicken breast")
		assert.NotContains(t, meal.Ingredients, "salmon")
	}
}
