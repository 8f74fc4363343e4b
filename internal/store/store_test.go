package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr("op", nil))
	assert.ErrorIs(t, mapErr("op", pgx.ErrNoRows), nutrition.ErrNotFound)

	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "user_profiles_pkey"}
	err := mapErr("profiles.insert", dup)
	assert.ErrorIs(t, err, nutrition.ErrConflict)
	assert.Contains(t, err.Error(), "user_profiles_pkey")

	boom := errors.New("connection reset")
	var pe *nutrition.PersistenceError
	require.ErrorAs(t, mapErr("entries.list", boom), &pe)
	assert.Equal(t, "entries.list", pe.Op)
	assert.ErrorIs(t, pe, boom)
}

func TestPageClause(t *testing.T) {
	args := pgx.NamedArgs{}
	assert.Equal(t, "", pageClause(0, 0, args))
	assert.Empty(t, args)

	assert.Equal(t, " LIMIT @limit OFFSET @offset", pageClause(20, 40, args))
	assert.Equal(t, 20, args["limit"])
	assert.Equal(t, 40, args["offset"])
}

// newTestStore connects to TEST_DB_URL, which must point at a migrated
// database. Each test gets its own user, removed (with cascades) afterwards.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	url := os.Getenv("TEST_DB_URL")
	if url == "" {
		t.Skip("TEST_DB_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool, zap.NewNop())
	usr, err := s.Users().Create(ctx, User{
		ID:            uuid.NewString(),
		Username:      "test-" + uuid.NewString()[:8],
		Email:         uuid.NewString() + "@example.test",
		PasswordHash:  "x",
		FreezeCredits: 1,
		CreatedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM users WHERE id = $1", usr.ID)
	})
	return s, usr.ID
}

func TestStore_FoodEntryRoundTrip(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	day := nutrition.NewDate(2026, 3, 11)
	confidence := 0.75

	in := nutrition.FoodEntry{
		ID: uuid.NewString(), UserID: userID, FoodName: "Pad thai", Calories: 640,
		ProteinG: 22.5, CarbsG: 80, FatG: 24, MealType: nutrition.MealDinner,
		EntryDate: day, Source: nutrition.SourceAI, AIConfidence: &confidence,
		CreatedAt: now, UpdatedAt: now,
	}
	created, err := s.Entries().Insert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, day, created.EntryDate)
	assert.Equal(t, 0.75, *created.AIConfidence)

	later := now.Add(time.Minute)
	updated, err := s.Entries().Update(ctx, in.ID, userID, nutrition.FoodEntryPatch{Calories: ptr(700)}, later)
	require.NoError(t, err)
	assert.Equal(t, 700, updated.Calories)
	assert.Equal(t, "Pad thai", updated.FoodName)
	assert.True(t, later.Equal(updated.UpdatedAt))

	_, err = s.Entries().Get(ctx, in.ID, uuid.NewString())
	assert.ErrorIs(t, err, nutrition.ErrNotFound)

	dates, err := s.Entries().LoggedDates(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []nutrition.Date{day}, dates)

	removed, err := s.Entries().Delete(ctx, in.ID, userID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.Entries().Delete(ctx, in.ID, userID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_AddToLogRollsBack(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	svc := nutrition.NewFavoriteFoodService(s, func() time.Time { return now })

	fav, err := svc.Create(ctx, userID, nutrition.FavoriteFoodInput{Name: "Oats", Calories: ptr(300)})
	require.NoError(t, err)

	logged, err := svc.AddToLog(ctx, userID, fav.ID, nutrition.AddToLogInput{MealType: nutrition.MealBreakfast})
	require.NoError(t, err)
	assert.Equal(t, 1, logged.Favorite.UsageCount)

	errStop := errors.New("stop")
	err = s.WithinTx(ctx, func(tx nutrition.Repositories) error {
		if _, err := tx.Favorites().MarkUsed(ctx, fav.ID, userID, now); err != nil {
			return err
		}
		return errStop
	})
	assert.ErrorIs(t, err, errStop)

	got, err := s.Favorites().Get(ctx, fav.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsageCount, "rolled back increment is not visible")
}

func TestStore_ProfileConflictAndFreeze(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	p := nutrition.UserProfile{UserID: userID, HeightCm: 170, Age: 25, Gender: nutrition.GenderMale,
		ActivityLevel: nutrition.ActivityModerate, CreatedAt: now, UpdatedAt: now}
	_, err := s.Profiles().InsertProfile(ctx, p)
	require.NoError(t, err)
	_, err = s.Profiles().InsertProfile(ctx, p)
	assert.ErrorIs(t, err, nutrition.ErrConflict)

	day := nutrition.NewDate(2026, 3, 10)
	ok, err := s.Freezes().ConsumeCredit(ctx, userID)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, s.Freezes().InsertFrozenDate(ctx, userID, day, now))
	assert.ErrorIs(t, s.Freezes().InsertFrozenDate(ctx, userID, day, now), nutrition.ErrConflict)

	ok, err = s.Freezes().ConsumeCredit(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok, "credits never go negative")

	frozen, err := s.Freezes().FrozenDates(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []nutrition.Date{day}, frozen)
}

func ptr[T any](v T) *T { return &v }
