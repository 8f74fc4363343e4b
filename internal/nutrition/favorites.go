package nutrition

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type FavoriteFoodInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Calories    *int     `json:"calories" validate:"required,gte=0,lte=10000"`
	ProteinG    *float64 `json:"protein_g" validate:"omitempty,gte=0,lte=1000"`
	CarbsG      *float64 `json:"carbs_g" validate:"omitempty,gte=0,lte=1000"`
	FatG        *float64 `json:"fat_g" validate:"omitempty,gte=0,lte=1000"`
	ServingSize *string  `json:"serving_size" validate:"omitempty,max=100"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
}

type FavoriteFoodPatch struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Calories    *int     `json:"calories" validate:"omitempty,gte=0,lte=10000"`
	ProteinG    *float64 `json:"protein_g" validate:"omitempty,gte=0,lte=1000"`
	CarbsG      *float64 `json:"carbs_g" validate:"omitempty,gte=0,lte=1000"`
	FatG        *float64 `json:"fat_g" validate:"omitempty,gte=0,lte=1000"`
	ServingSize *string  `json:"serving_size" validate:"omitempty,max=100"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
}

func (p FavoriteFoodPatch) empty() bool {
	return p.Name == nil && p.Calories == nil && p.ProteinG == nil && p.CarbsG == nil &&
		p.FatG == nil && p.ServingSize == nil && p.Category == nil
}

// AddToLogInput selects where a favorite lands in the log. EntryDate
// defaults to today.
type AddToLogInput struct {
	MealType  MealType `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	EntryDate *Date    `json:"entry_date"`
}

// LoggedFavorite is the result of AddToLog: the new entry and the favorite
// with its usage bumped.
type LoggedFavorite struct {
	Entry    FoodEntry    `json:"entry"`
	Favorite FavoriteFood `json:"favorite"`
}

type FavoriteFoodService struct {
	store Store
	now   Clock
}

func NewFavoriteFoodService(store Store, now Clock) *FavoriteFoodService {
	return &FavoriteFoodService{store: store, now: now}
}

func (s *FavoriteFoodService) Create(ctx context.Context, userID string, in FavoriteFoodInput) (FavoriteFood, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return FavoriteFood{}, err
	}
	now := s.now()
	return s.store.Favorites().Insert(ctx, FavoriteFood{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		Calories:    *in.Calories,
		ProteinG:    valueOr(in.ProteinG, 0),
		CarbsG:      valueOr(in.CarbsG, 0),
		FatG:        valueOr(in.FatG, 0),
		ServingSize: trimOptional(in.ServingSize),
		Category:    trimOptional(in.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// List orders by usage count, then most recent use, then name.
func (s *FavoriteFoodService) List(ctx context.Context, userID string, f FavoriteFoodFilter) ([]FavoriteFood, error) {
	if err := checkPage(&f.Limit, f.Offset); err != nil {
		return nil, err
	}
	f.Category = trimOptional(f.Category)
	return s.store.Favorites().List(ctx, userID, f)
}

func (s *FavoriteFoodService) Get(ctx context.Context, userID, id string) (FavoriteFood, error) {
	return s.store.Favorites().Get(ctx, id, userID)
}

func (s *FavoriteFoodService) Update(ctx context.Context, userID, id string, p FavoriteFoodPatch) (FavoriteFood, error) {
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
	}
	if err := validateStruct(p); err != nil {
		return FavoriteFood{}, err
	}
	if p.empty() {
		return FavoriteFood{}, invalid("body", "required", "must contain at least one field to update")
	}
	return s.store.Favorites().Update(ctx, id, userID, p, s.now())
}

func (s *FavoriteFoodService) Delete(ctx context.Context, userID, id string) (bool, error) {
	return s.store.Favorites().Delete(ctx, id, userID)
}

// AddToLog copies the favorite's nutrition into a new manual food entry and
// bumps the favorite's usage. Both writes share one transaction, so the
// usage count never advances without the entry existing.
func (s *FavoriteFoodService) AddToLog(ctx context.Context, userID, favoriteID string, in AddToLogInput) (LoggedFavorite, error) {
	if err := validateStruct(in); err != nil {
		return LoggedFavorite{}, err
	}
	now := s.now()
	entryDate := DateOf(now)
	if in.EntryDate != nil && !in.EntryDate.IsZero() {
		entryDate = *in.EntryDate
	}

	var out LoggedFavorite
	err := s.store.WithinTx(ctx, func(tx Repositories) error {
		fav, err := tx.Favorites().GetForUpdate(ctx, favoriteID, userID)
		if err != nil {
			return err
		}
		entry, err := tx.Entries().Insert(ctx, FoodEntry{
			ID:        uuid.NewString(),
			UserID:    userID,
			FoodName:  fav.Name,
			Calories:  fav.Calories,
			ProteinG:  fav.ProteinG,
			CarbsG:    fav.CarbsG,
			FatG:      fav.FatG,
			MealType:  in.MealType,
			EntryDate: entryDate,
			Source:    SourceManual,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		used, err := tx.Favorites().MarkUsed(ctx, fav.ID, userID, now)
		if err != nil {
			return err
		}
		out = LoggedFavorite{Entry: entry, Favorite: used}
		return nil
	})
	if err != nil {
		return LoggedFavorite{}, err
	}
	return out, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
