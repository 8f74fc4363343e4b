package store

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

// dateOnly scans PostgreSQL date columns (OID 1082).
type dateOnly struct{ time.Time }

// ScanDate implements pgtype.DateScanner. NULL zeroes the time.
func (d *dateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

func (d dateOnly) date() nutrition.Date { return nutrition.DateOf(d.Time) }

// dateArg renders an optional date as a query argument; nil stays NULL.
func dateArg(d *nutrition.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// stringArg converts an optional named string type to *string for pgx.
func stringArg[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

/* ─── Row structs ─────────────────────────────────────────────────────── */

// Row structs mirror the tables column for column; pointer fields are the
// nullable columns.

type foodEntryRow struct {
	ID                  string    `db:"id"`
	UserID              string    `db:"user_id"`
	FoodName            string    `db:"food_name"`
	Calories            int       `db:"calories"`
	ProteinG            float64   `db:"protein_g"`
	CarbsG              float64   `db:"carbs_g"`
	FatG                float64   `db:"fat_g"`
	MealType            string    `db:"meal_type"`
	EntryDate           dateOnly  `db:"entry_date"`
	Source              string    `db:"source"`
	AIConfidence        *float64  `db:"ai_confidence"`
	OriginalDescription *string   `db:"original_description"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (r foodEntryRow) toDomain() nutrition.FoodEntry {
	return nutrition.FoodEntry{
		ID:                  r.ID,
		UserID:              r.UserID,
		FoodName:            r.FoodName,
		Calories:            r.Calories,
		ProteinG:            r.ProteinG,
		CarbsG:              r.CarbsG,
		FatG:                r.FatG,
		MealType:            nutrition.MealType(r.MealType),
		EntryDate:           r.EntryDate.date(),
		Source:              nutrition.Source(r.Source),
		AIConfidence:        r.AIConfidence,
		OriginalDescription: r.OriginalDescription,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

type favoriteFoodRow struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Name        string     `db:"name"`
	Calories    int        `db:"calories"`
	ProteinG    float64    `db:"protein_g"`
	CarbsG      float64    `db:"carbs_g"`
	FatG        float64    `db:"fat_g"`
	ServingSize *string    `db:"serving_size"`
	Category    *string    `db:"category"`
	UsageCount  int        `db:"usage_count"`
	LastUsedAt  *time.Time `db:"last_used_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r favoriteFoodRow) toDomain() nutrition.FavoriteFood {
	return nutrition.FavoriteFood{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Calories:    r.Calories,
		ProteinG:    r.ProteinG,
		CarbsG:      r.CarbsG,
		FatG:        r.FatG,
		ServingSize: r.ServingSize,
		Category:    r.Category,
		UsageCount:  r.UsageCount,
		LastUsedAt:  r.LastUsedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type userProfileRow struct {
	UserID        string    `db:"user_id"`
	HeightCm      float64   `db:"height_cm"`
	Age           int       `db:"age"`
	Gender        string    `db:"gender"`
	ActivityLevel string    `db:"activity_level"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r userProfileRow) toDomain() nutrition.UserProfile {
	return nutrition.UserProfile{
		UserID:        r.UserID,
		HeightCm:      r.HeightCm,
		Age:           r.Age,
		Gender:        nutrition.Gender(r.Gender),
		ActivityLevel: nutrition.ActivityLevel(r.ActivityLevel),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type trackingRow struct {
	ID                string    `db:"id"`
	UserID            string    `db:"user_id"`
	WeightKg          *float64  `db:"weight_kg"`
	MuscleMassKg      *float64  `db:"muscle_mass_kg"`
	BodyFatPercentage *float64  `db:"body_fat_percentage"`
	BMRCalories       *int      `db:"bmr_calories"`
	TDEECalories      *int      `db:"tdee_calories"`
	RecordedDate      dateOnly  `db:"recorded_date"`
	CreatedAt         time.Time `db:"created_at"`
}

func (r trackingRow) toDomain() nutrition.ProfileTracking {
	return nutrition.ProfileTracking{
		ID:                r.ID,
		UserID:            r.UserID,
		WeightKg:          r.WeightKg,
		MuscleMassKg:      r.MuscleMassKg,
		BodyFatPercentage: r.BodyFatPercentage,
		BMRCalories:       r.BMRCalories,
		TDEECalories:      r.TDEECalories,
		RecordedDate:      r.RecordedDate.date(),
		CreatedAt:         r.CreatedAt,
	}
}

// dateRow is the shape of single-column date queries.
type dateRow struct {
	Date dateOnly `db:"date"`
}

func mapRows[R, D any](rows []R, convert func(R) D) []D {
	out := make([]D, len(rows))
	for i, r := range rows {
		out[i] = convert(r)
	}
	return out
}

func dates(rows []dateRow) []nutrition.Date {
	out := make([]nutrition.Date, len(rows))
	for i, r := range rows {
		out[i] = r.Date.date()
	}
	return out
}
