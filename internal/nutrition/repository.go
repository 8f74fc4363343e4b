package nutrition

import (
	"context"
	"time"
)

// FoodEntryFilter narrows a food entry listing. From and To are inclusive.
// Limit 0 means no limit.
type FoodEntryFilter struct {
	From     *Date
	To       *Date
	MealType *MealType
	Limit    int
	Offset   int
}

type FavoriteFoodFilter struct {
	Category *string
	Limit    int
	Offset   int
}

type TrackingFilter struct {
	From   *Date
	To     *Date
	Limit  int
	Offset int
}

// Every repository method is scoped by userID; a row owned by someone else
// behaves exactly like a missing row (ErrNotFound, or false from Delete).

type FoodEntryRepository interface {
	Insert(ctx context.Context, e FoodEntry) (FoodEntry, error)
	List(ctx context.Context, userID string, f FoodEntryFilter) ([]FoodEntry, error)
	Get(ctx context.Context, id, userID string) (FoodEntry, error)
	// Update writes only the non-nil patch fields.
	Update(ctx context.Context, id, userID string, p FoodEntryPatch, now time.Time) (FoodEntry, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
	// LoggedDates returns the distinct dates with at least one entry, ascending.
	LoggedDates(ctx context.Context, userID string) ([]Date, error)
}

type FavoriteFoodRepository interface {
	Insert(ctx context.Context, f FavoriteFood) (FavoriteFood, error)
	List(ctx context.Context, userID string, f FavoriteFoodFilter) ([]FavoriteFood, error)
	Get(ctx context.Context, id, userID string) (FavoriteFood, error)
	// GetForUpdate is Get plus a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id, userID string) (FavoriteFood, error)
	Update(ctx context.Context, id, userID string, p FavoriteFoodPatch, now time.Time) (FavoriteFood, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
	// MarkUsed increments usage_count and sets last_used_at to at.
	MarkUsed(ctx context.Context, id, userID string, at time.Time) (FavoriteFood, error)
}

type ProfileRepository interface {
	// InsertProfile fails with ErrConflict when the user already has a profile.
	InsertProfile(ctx context.Context, p UserProfile) (UserProfile, error)
	GetProfile(ctx context.Context, userID string) (UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, p UserProfilePatch, now time.Time) (UserProfile, error)
	InsertTracking(ctx context.Context, t ProfileTracking) (ProfileTracking, error)
	// ListTracking orders newest first.
	ListTracking(ctx context.Context, userID string, f TrackingFilter) ([]ProfileTracking, error)
	// LatestWeightTracking returns the newest row carrying a weight.
	LatestWeightTracking(ctx context.Context, userID string) (ProfileTracking, error)
	DeleteTracking(ctx context.Context, id, userID string) (bool, error)
}

// FreezeRepository stores freeze credits and the dates they were spent on.
type FreezeRepository interface {
	FrozenDates(ctx context.Context, userID string) ([]Date, error)
	RemainingCredits(ctx context.Context, userID string) (int, error)
	// ConsumeCredit decrements the user's credits; false when none are left.
	ConsumeCredit(ctx context.Context, userID string) (bool, error)
	// InsertFrozenDate fails with ErrConflict when the date is already frozen.
	InsertFrozenDate(ctx context.Context, userID string, d Date, at time.Time) error
}

// Repositories groups the repositories reachable inside one unit of work.
type Repositories interface {
	Entries() FoodEntryRepository
	Favorites() FavoriteFoodRepository
	Profiles() ProfileRepository
	Freezes() FreezeRepository
}

// Store is the persistence collaborator. WithinTx runs fn against
// repositories bound to a single transaction; fn returning an error rolls
// back every write made through them.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(tx Repositories) error) error
}
