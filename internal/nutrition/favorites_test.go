package nutrition_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
	"github.com/thitiph0n/second-brain-sub001/internal/nutrition/memstore"
)

type favoriteFixture struct {
	store     *memstore.Store
	now       *time.Time
	favorites *nutrition.FavoriteFoodService
	entries   *nutrition.FoodEntryService
}

func newFavoriteFixture(t *testing.T) *favoriteFixture {
	t.Helper()
	now := fixedNow
	store := newStore()
	return &favoriteFixture{
		store:     store,
		now:       &now,
		favorites: nutrition.NewFavoriteFoodService(store, clock(&now)),
		entries:   nutrition.NewFoodEntryService(store, clock(&now)),
	}
}

func (f *favoriteFixture) create(t *testing.T, name string, kcal int) nutrition.FavoriteFood {
	t.Helper()
	fav, err := f.favorites.Create(context.Background(), alice, nutrition.FavoriteFoodInput{
		Name:        name,
		Calories:    ptr(kcal),
		ProteinG:    ptr(30.0),
		CarbsG:      ptr(5.0),
		FatG:        ptr(8.0),
		ServingSize: ptr("1 bowl"),
		Category:    ptr(" protein "),
	})
	require.NoError(t, err)
	return fav
}

func TestFavoriteCreate(t *testing.T) {
	f := newFavoriteFixture(t)
	fav := f.create(t, " Greek yogurt ", 220)

	assert.NotEmpty(t, fav.ID)
	assert.Equal(t, "Greek yogurt", fav.Name)
	assert.Equal(t, "protein", *fav.Category)
	assert.Zero(t, fav.UsageCount)
	assert.Nil(t, fav.LastUsedAt)

	_, err := f.favorites.Create(context.Background(), alice, nutrition.FavoriteFoodInput{Name: "x"})
	assert.Contains(t, fieldNames(err), "calories")
}

func TestFavoriteAddToLog(t *testing.T) {
	f := newFavoriteFixture(t)
	ctx := context.Background()
	fav := f.create(t, "Chicken salad", 450)
	for i := 0; i < 3; i++ {
		_, err := f.favorites.AddToLog(ctx, alice, fav.ID, nutrition.AddToLogInput{MealType: nutrition.MealLunch})
		require.NoError(t, err)
	}

	*f.now = fixedNow.Add(2 * time.Hour)
	yesterday := today.AddDays(-1)
	got, err := f.favorites.AddToLog(ctx, alice, fav.ID, nutrition.AddToLogInput{
		MealType:  nutrition.MealDinner,
		EntryDate: &yesterday,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, got.Favorite.UsageCount)
	require.NotNil(t, got.Favorite.LastUsedAt)
	assert.Equal(t, *f.now, *got.Favorite.LastUsedAt)

	e := got.Entry
	assert.Equal(t, "Chicken salad", e.FoodName)
	assert.Equal(t, 450, e.Calories)
	assert.Equal(t, 30.0, e.ProteinG)
	assert.Equal(t, nutrition.MealDinner, e.MealType)
	assert.Equal(t, yesterday, e.EntryDate)
	assert.Equal(t, nutrition.SourceManual, e.Source)

	stored, err := f.entries.Get(ctx, alice, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, stored)
}

func TestFavoriteAddToLog_RollsBack(t *testing.T) {
	f := newFavoriteFixture(t)
	ctx := context.Background()
	fav := f.create(t, "Protein shake", 180)
	f.store.FailOn("favorites.mark_used", errBoom)

	_, err := f.favorites.AddToLog(ctx, alice, fav.ID, nutrition.AddToLogInput{MealType: nutrition.MealSnack})
	require.ErrorIs(t, err, errBoom)

	entries, err := f.entries.List(ctx, alice, nutrition.FoodEntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries, "entry insert must roll back")

	stored, err := f.favorites.Get(ctx, alice, fav.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.UsageCount)
}

func TestFavoriteAddToLog_Errors(t *testing.T) {
	f := newFavoriteFixture(t)
	ctx := context.Background()
	fav := f.create(t, "Rice", 200)

	_, err := f.favorites.AddToLog(ctx, bob, fav.ID, nutrition.AddToLogInput{MealType: nutrition.MealLunch})
	assert.ErrorIs(t, err, nutrition.ErrNotFound)

	_, err = f.favorites.AddToLog(ctx, alice, fav.ID, nutrition.AddToLogInput{MealType: "elevenses"})
	assert.Contains(t, fieldNames(err), "meal_type")

	entries, err := f.entries.List(ctx, alice, nutrition.FoodEntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFavoriteList_Ordering(t *testing.T) {
	f := newFavoriteFixture(t)
	ctx := context.Background()
	banana := f.create(t, "banana", 100)
	f.create(t, "apple", 80)
	eggs := f.create(t, "eggs", 150)
	f.create(t, "cereal", 300)

	logAt := func(id string, at time.Time) {
		*f.now = at
		_, err := f.favorites.AddToLog(ctx, alice, id, nutrition.AddToLogInput{MealType: nutrition.MealBreakfast})
		require.NoError(t, err)
	}
	logAt(banana.ID, fixedNow.Add(time.Minute))
	logAt(eggs.ID, fixedNow.Add(2*time.Minute))
	logAt(eggs.ID, fixedNow.Add(3*time.Minute))
	logAt(banana.ID, fixedNow.Add(4*time.Minute))

	list, err := f.favorites.List(ctx, alice, nutrition.FavoriteFoodFilter{})
	require.NoError(t, err)
	names := make([]string, len(list))
	for i, fav := range list {
		names[i] = fav.Name
	}
	// equal counts: banana used last; unused fall back to name order
	assert.Equal(t, []string{"banana", "eggs", "apple", "cereal"}, names)

	other, err := f.favorites.List(ctx, alice, nutrition.FavoriteFoodFilter{Category: ptr("snacks")})
	require.NoError(t, err)
	assert.Empty(t, other)

	protein, err := f.favorites.List(ctx, alice, nutrition.FavoriteFoodFilter{Category: ptr(" protein")})
	require.NoError(t, err)
	assert.Len(t, protein, 4)
}

func TestFavoriteUpdateAndDelete(t *testing.T) {
	f := newFavoriteFixture(t)
	ctx := context.Background()
	fav := f.create(t, "Toast", 120)

	_, err := f.favorites.Update(ctx, alice, fav.ID, nutrition.FavoriteFoodPatch{})
	assert.True(t, nutrition.IsValidation(err))

	*f.now = fixedNow.Add(time.Hour)
	got, err := f.favorites.Update(ctx, alice, fav.ID, nutrition.FavoriteFoodPatch{Calories: ptr(140), Name: ptr("Rye toast")})
	require.NoError(t, err)
	assert.Equal(t, 140, got.Calories)
	assert.Equal(t, "Rye toast", got.Name)
	assert.Equal(t, 30.0, got.ProteinG)
	assert.Equal(t, *f.now, got.UpdatedAt)

	_, err = f.favorites.Update(ctx, bob, fav.ID, nutrition.FavoriteFoodPatch{Calories: ptr(1)})
	assert.ErrorIs(t, err, nutrition.ErrNotFound)

	removed, err := f.favorites.Delete(ctx, alice, fav.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = f.favorites.Delete(ctx, alice, fav.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
