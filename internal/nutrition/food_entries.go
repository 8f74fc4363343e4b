package nutrition

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// FoodEntryInput is the body of a create request. Pointer fields may be
// omitted; macros default to 0 and the date to today.
type FoodEntryInput struct {
	FoodName            string   `json:"food_name" validate:"required,max=200"`
	Calories            *int     `json:"calories" validate:"required,gte=0,lte=10000"`
	ProteinG            *float64 `json:"protein_g" validate:"omitempty,gte=0,lte=1000"`
	CarbsG              *float64 `json:"carbs_g" validate:"omitempty,gte=0,lte=1000"`
	FatG                *float64 `json:"fat_g" validate:"omitempty,gte=0,lte=1000"`
	MealType            MealType `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	EntryDate           *Date    `json:"entry_date"`
	Source              Source   `json:"source" validate:"omitempty,oneof=manual ai"`
	AIConfidence        *float64 `json:"ai_confidence" validate:"omitempty,gte=0,lte=1"`
	OriginalDescription *string  `json:"original_description" validate:"omitempty,max=500"`
}

// FoodEntryPatch lists the fields a partial update may change. Nil fields
// keep their stored value.
type FoodEntryPatch struct {
	FoodName            *string   `json:"food_name" validate:"omitempty,min=1,max=200"`
	Calories            *int      `json:"calories" validate:"omitempty,gte=0,lte=10000"`
	ProteinG            *float64  `json:"protein_g" validate:"omitempty,gte=0,lte=1000"`
	CarbsG              *float64  `json:"carbs_g" validate:"omitempty,gte=0,lte=1000"`
	FatG                *float64  `json:"fat_g" validate:"omitempty,gte=0,lte=1000"`
	MealType            *MealType `json:"meal_type" validate:"omitempty,oneof=breakfast lunch dinner snack"`
	EntryDate           *Date     `json:"entry_date"`
	AIConfidence        *float64  `json:"ai_confidence" validate:"omitempty,gte=0,lte=1"`
	OriginalDescription *string   `json:"original_description" validate:"omitempty,max=500"`
}

func (p FoodEntryPatch) empty() bool {
	return p.FoodName == nil && p.Calories == nil && p.ProteinG == nil && p.CarbsG == nil &&
		p.FatG == nil && p.MealType == nil && p.EntryDate == nil && p.AIConfidence == nil &&
		p.OriginalDescription == nil
}

// FoodEntryService owns validation and defaults for logged food.
type FoodEntryService struct {
	store Store
	now   Clock
}

func NewFoodEntryService(store Store, now Clock) *FoodEntryService {
	return &FoodEntryService{store: store, now: now}
}

func (s *FoodEntryService) Create(ctx context.Context, userID string, in FoodEntryInput) (FoodEntry, error) {
	in.FoodName = strings.TrimSpace(in.FoodName)
	if err := validateStruct(in); err != nil {
		return FoodEntry{}, err
	}
	source := in.Source
	if source == "" {
		source = SourceManual
	}
	if in.AIConfidence != nil && source != SourceAI {
		return FoodEntry{}, invalid("ai_confidence", "source", "is only allowed when source is ai")
	}

	now := s.now()
	entry := FoodEntry{
		ID:                  uuid.NewString(),
		UserID:              userID,
		FoodName:            in.FoodName,
		Calories:            *in.Calories,
		ProteinG:            valueOr(in.ProteinG, 0),
		CarbsG:              valueOr(in.CarbsG, 0),
		FatG:                valueOr(in.FatG, 0),
		MealType:            in.MealType,
		EntryDate:           DateOf(now),
		Source:              source,
		AIConfidence:        in.AIConfidence,
		OriginalDescription: in.OriginalDescription,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if in.EntryDate != nil && !in.EntryDate.IsZero() {
		entry.EntryDate = *in.EntryDate
	}
	return s.store.Entries().Insert(ctx, entry)
}

// List returns the user's entries, newest first.
func (s *FoodEntryService) List(ctx context.Context, userID string, f FoodEntryFilter) ([]FoodEntry, error) {
	if err := checkPage(&f.Limit, f.Offset); err != nil {
		return nil, err
	}
	if err := checkRange(f.From, f.To); err != nil {
		return nil, err
	}
	if f.MealType != nil {
		if err := validate.Var(string(*f.MealType), "oneof=breakfast lunch dinner snack"); err != nil {
			return nil, invalid("meal_type", "oneof", "must be one of: breakfast, lunch, dinner, snack")
		}
	}
	return s.store.Entries().List(ctx, userID, f)
}

func (s *FoodEntryService) Get(ctx context.Context, userID, id string) (FoodEntry, error) {
	return s.store.Entries().Get(ctx, id, userID)
}

// Update applies p on top of the stored entry.
func (s *FoodEntryService) Update(ctx context.Context, userID, id string, p FoodEntryPatch) (FoodEntry, error) {
	if p.FoodName != nil {
		trimmed := strings.TrimSpace(*p.FoodName)
		p.FoodName = &trimmed
	}
	if err := validateStruct(p); err != nil {
		return FoodEntry{}, err
	}
	if p.EntryDate != nil && p.EntryDate.IsZero() {
		p.EntryDate = nil
	}
	if p.empty() {
		return FoodEntry{}, invalid("body", "required", "must contain at least one field to update")
	}
	if p.AIConfidence != nil {
		current, err := s.store.Entries().Get(ctx, id, userID)
		if err != nil {
			return FoodEntry{}, err
		}
		if current.Source != SourceAI {
			return FoodEntry{}, invalid("ai_confidence", "source", "is only allowed when source is ai")
		}
	}
	return s.store.Entries().Update(ctx, id, userID, p, s.now())
}

// Delete reports whether a row was removed. Deleting a missing or foreign
// entry is a no-op, not an error.
func (s *FoodEntryService) Delete(ctx context.Context, userID, id string) (bool, error) {
	return s.store.Entries().Delete(ctx, id, userID)
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// checkPage defaults a zero limit and bounds pagination parameters.
func checkPage(limit *int, offset int) error {
	if *limit == 0 {
		*limit = defaultPageSize
	}
	if *limit < 1 || *limit > maxPageSize {
		return invalid("limit", "range", "must be between 1 and 100")
	}
	if offset < 0 {
		return invalid("offset", "gte", "must be at least 0")
	}
	return nil
}

func checkRange(from, to *Date) error {
	if from != nil && to != nil && from.After(to.Time) {
		return invalid("start", "order", "must not be after end")
	}
	return nil
}
