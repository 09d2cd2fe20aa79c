package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealType enumerates the slots a meal can occupy in a daily plan.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Meal is one entry of a diet plan's daily menu.
type Meal struct {
	MealType    MealType `bson:"mealType" json:"mealType"`
	Name        string   `bson:"name" json:"name"`
	Calories    int      `bson:"calories" json:"calories"`
	Ingredients []string `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
}

// DietPlan is a generated recommendation owned by a single user.
// Regeneration supersedes (deactivates) earlier plans rather than
// deleting them.
type DietPlan struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	PlanName       string             `bson:"planName" json:"planName"`
	CaloriesPerDay int                `bson:"caloriesPerDay" json:"caloriesPerDay"`
	Meals          []Meal             `bson:"meals" json:"meals"`
	Duration       int                `bson:"duration" json:"duration"` // days
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
