package nutrition

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists meal types in the order summaries present them.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

type Source string

const (
	SourceManual Source = "manual"
	SourceAI     Source = "ai"
)

// FoodEntry is one logged food item.
type FoodEntry struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	FoodName            string    `json:"food_name"`
	Calories            int       `json:"calories"`
	ProteinG            float64   `json:"protein_g"`
	CarbsG              float64   `json:"carbs_g"`
	FatG                float64   `json:"fat_g"`
	MealType            MealType  `json:"meal_type"`
	EntryDate           Date      `json:"entry_date"`
	Source              Source    `json:"source"`
	AIConfidence        *float64  `json:"ai_confidence"`
	OriginalDescription *string   `json:"original_description"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// FavoriteFood is a saved food template that can be replayed into the log.
type FavoriteFood struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Calories    int        `json:"calories"`
	ProteinG    float64    `json:"protein_g"`
	CarbsG      float64    `json:"carbs_g"`
	FatG        float64    `json:"fat_g"`
	ServingSize *string    `json:"serving_size"`
	Category    *string    `json:"category"`
	UsageCount  int        `json:"usage_count"`
	LastUsedAt  *time.Time `json:"last_used_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserProfile holds the physical attributes used for BMR/TDEE. One per user.
type UserProfile struct {
	UserID        string        `json:"user_id"`
	HeightCm      float64       `json:"height_cm"`
	Age           int           `json:"age"`
	Gender        Gender        `json:"gender"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ProfileTracking is one body measurement. BMRCalories and TDEECalories are a
// snapshot taken at insert time and are never recomputed.
type ProfileTracking struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	WeightKg          *float64  `json:"weight_kg"`
	MuscleMassKg      *float64  `json:"muscle_mass_kg"`
	BodyFatPercentage *float64  `json:"body_fat_percentage"`
	BMRCalories       *int      `json:"bmr_calories"`
	TDEECalories      *int      `json:"tdee_calories"`
	RecordedDate      Date      `json:"recorded_date"`
	CreatedAt         time.Time `json:"created_at"`
}

// Clock returns the current time. Services resolve "today" through it.
type Clock func() time.Time
