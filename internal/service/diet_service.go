package service

import (
	"context"
	"errors"
	"strings"

	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoActivePlan = errors.New("no active diet plan")
	ErrInvalidGoal  = errors.New("invalid diet goal")
)

const (
	planDurationDays = 7
	caloriesFloor    = 1200
)

// Recognized goals for plan generation.
const (
	GoalWeightLoss  = "weight-loss"
	GoalMuscleGain  = "muscle-gain"
	GoalMaintenance = "maintenance"
)

// DietService generates and serves diet recommendations.
type DietService interface {
	Recommend(ctx context.Context, userID primitive.ObjectID, goal, preference string) (*domain.DietPlan, error)
	Plans(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error)
	ActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error)
}

type dietService struct {
	userRepo repository.UserRepository
	dietRepo repository.DietPlanRepository
}

// NewDietService creates a new instance of dietService.
func NewDietService(userRepo repository.UserRepository, dietRepo repository.DietPlanRepository) DietService {
	return &dietService{
		userRepo: userRepo,
		dietRepo: dietRepo,
	}
}

// Recommend generates a new plan from the user's stats and goal, and
// supersedes any previously active plan.
func (s *dietService) Recommend(ctx context.Context, userID primitive.ObjectID, goal, preference string) (*domain.DietPlan, error) {
	goal = strings.ToLower(strings.TrimSpace(goal))
	switch goal {
	case GoalWeightLoss, GoalMuscleGain, GoalMaintenance:
	case "":
		goal = GoalMaintenance
	default:
		return nil, ErrInvalidGoal
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	calories := DailyCalorieTarget(user.Stats.Weight, goal)
	vegetarian := strings.EqualFold(strings.TrimSpace(preference), "vegetarian")

	plan := &domain.DietPlan{
		UserID:         userID,
		PlanName:       planName(goal),
		CaloriesPerDay: calories,
		Meals:          buildMeals(calories, vegetarian),
		Duration:       planDurationDays,
		IsActive:       true,
	}

	// Supersede, don't delete: old plans stay readable in history.
	if err := s.dietRepo.DeactivateAllForUser(ctx, userID); err != nil {
		return nil, err
	}

	planID, err := s.dietRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	return plan, nil
}

// Plans lists the user's plan history, newest first.
func (s *dietService) Plans(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error) {
	return s.dietRepo.GetByUserID(ctx, userID)
}

// ActivePlan returns the current plan.
func (s *dietService) ActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error) {
	plan, err := s.dietRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, err
	}
	return plan, nil
}

// DailyCalorieTarget derives a calorie budget from body weight and goal.
// Rough maintenance estimate of 31 kcal/kg/day, adjusted ±15% by goal,
// floored so a generated plan is never dangerously low.
func DailyCalorieTarget(weightKg float64, goal string) int {
	if weightKg <= 0 {
		weightKg = defaultWeightKg
	}
	maintenance := 31.0 * weightKg

	switch goal {
	case GoalWeightLoss:
		maintenance *= 0.85
	case GoalMuscleGain:
		maintenance *= 1.15
	}

	calories := int(maintenance)
	if calories < caloriesFloor {
		calories = caloriesFloor
	}
	return calories
}

func planName(goal string) string {
	switch goal {
	case GoalWeightLoss:
		return "Lean & Light"
	case GoalMuscleGain:
		return "Strength Fuel"
	default:
		return "Balanced Living"
	}
}

// buildMeals splits the daily budget 25/35/30/10 across the four slots.
func buildMeals(caloriesPerDay int, vegetarian bool) []domain.Meal {
	type slot struct {
		mealType domain.MealType
		share    float64
	}
	slots := []slot{
		{domain.MealBreakfast, 0.25},
		{domain.MealLunch, 0.35},
		{domain.MealDinner, 0.30},
		{domain.MealSnack, 0.10},
	}

	menu := omnivoreMenu
	if vegetarian {
		menu = vegetarianMenu
	}

	meals := make([]domain.Meal, 0, len(slots))
	for _, sl := range slots {
		entry := menu[sl.mealType]
		meals = append(meals, domain.Meal{
			MealType:    sl.mealType,
			Name:        entry.name,
			Calories:    int(float64(caloriesPerDay) * sl.share),
			Ingredients: entry.ingredients,
		})
	}
	return meals
}

type menuEntry struct {
	name        string
	ingredients []string
}

var omnivoreMenu = map[domain.MealType]menuEntry{
	domain.MealBreakfast: {"Greek yogurt bowl", []string{"greek yogurt", "oats", "banana", "honey"}},
	domain.MealLunch:     {"Grilled chicken & quinoa", []string{"chicken breast", "quinoa", "spinach", "olive oil"}},
	domain.MealDinner:    {"Baked salmon with vegetables", []string{"salmon", "broccoli", "sweet potato", "lemon"}},
	domain.MealSnack:     {"Nuts & fruit", []string{"almonds", "apple"}},
}

var vegetarianMenu = map[domain.MealType]menuEntry{
	domain.MealBreakfast: {"Overnight oats", []string{"oats", "soy milk", "chia seeds", "berries"}},
	domain.MealLunch:     {"Chickpea buddha bowl", []string{"chickpeas", "brown rice", "avocado", "kale"}},
	domain.MealDinner:    {"Paneer stir-fry", []string{"paneer", "bell pepper", "tofu", "basmati rice"}},
	domain.MealSnack:     {"Hummus & veggies", []string{"hummus", "carrot", "cucumber"}},
}
