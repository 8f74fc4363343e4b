package nutrition_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

func newEntryService(t *testing.T) (*nutrition.FoodEntryService, *time.Time) {
	t.Helper()
	now := fixedNow
	return nutrition.NewFoodEntryService(newStore(), clock(&now)), &now
}

func oatmeal() nutrition.FoodEntryInput {
	return nutrition.FoodEntryInput{
		FoodName: "  Oatmeal ",
		Calories: ptr(350),
		ProteinG: ptr(12.5),
		MealType: nutrition.MealBreakfast,
	}
}

func TestFoodEntryCreate_Defaults(t *testing.T) {
	svc, _ := newEntryService(t)

	got, err := svc.Create(context.Background(), alice, oatmeal())
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, alice, got.UserID)
	assert.Equal(t, "Oatmeal", got.FoodName)
	assert.Equal(t, 350, got.Calories)
	assert.Equal(t, 12.5, got.ProteinG)
	assert.Zero(t, got.CarbsG)
	assert.Zero(t, got.FatG)
	assert.Equal(t, nutrition.SourceManual, got.Source)
	assert.Equal(t, today, got.EntryDate)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, fixedNow, got.UpdatedAt)
	assert.Nil(t, got.AIConfidence)
}

func TestFoodEntryCreate_AIEntry(t *testing.T) {
	svc, _ := newEntryService(t)
	in := oatmeal()
	in.Source = nutrition.SourceAI
	in.AIConfidence = ptr(0.8)
	in.OriginalDescription = ptr("a bowl of oats with honey")
	in.EntryDate = ptr(today.AddDays(-2))

	got, err := svc.Create(context.Background(), alice, in)
	require.NoError(t, err)
	assert.Equal(t, nutrition.SourceAI, got.Source)
	assert.Equal(t, 0.8, *got.AIConfidence)
	assert.Equal(t, "2026-03-09", got.EntryDate.String())
}

func TestFoodEntryCreate_Validation(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*nutrition.FoodEntryInput)
		field string
	}{
		{"blank name", func(in *nutrition.FoodEntryInput) { in.FoodName = "   " }, "food_name"},
		{"missing calories", func(in *nutrition.FoodEntryInput) { in.Calories = nil }, "calories"},
		{"negative calories", func(in *nutrition.FoodEntryInput) { in.Calories = ptr(-1) }, "calories"},
		{"huge calories", func(in *nutrition.FoodEntryInput) { in.Calories = ptr(10001) }, "calories"},
		{"negative fat", func(in *nutrition.FoodEntryInput) { in.FatG = ptr(-0.5) }, "fat_g"},
		{"bad meal", func(in *nutrition.FoodEntryInput) { in.MealType = "brunch" }, "meal_type"},
		{"bad source", func(in *nutrition.FoodEntryInput) { in.Source = "scanner" }, "source"},
		{"confidence above one", func(in *nutrition.FoodEntryInput) {
			in.Source = nutrition.SourceAI
			in.AIConfidence = ptr(1.2)
		}, "ai_confidence"},
		{"confidence on manual entry", func(in *nutrition.FoodEntryInput) { in.AIConfidence = ptr(0.5) }, "ai_confidence"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newEntryService(t)
			in := oatmeal()
			tc.edit(&in)

			_, err := svc.Create(context.Background(), alice, in)
			require.Error(t, err)
			assert.True(t, nutrition.IsValidation(err))
			assert.Contains(t, fieldNames(err), tc.field)

			list, err := svc.List(context.Background(), alice, nutrition.FoodEntryFilter{})
			require.NoError(t, err)
			assert.Empty(t, list, "nothing persisted on validation failure")
		})
	}
}

func TestFoodEntryCreate_ZeroCaloriesAllowed(t *testing.T) {
	svc, _ := newEntryService(t)
	in := oatmeal()
	in.Calories = ptr(0)

	got, err := svc.Create(context.Background(), alice, in)
	require.NoError(t, err)
	assert.Zero(t, got.Calories)
}

func TestFoodEntryList_FiltersAndOrder(t *testing.T) {
	svc, now := newEntryService(t)
	ctx := context.Background()

	mk := func(name string, daysAgo int, meal nutrition.MealType) nutrition.FoodEntry {
		*now = now.Add(time.Minute)
		in := nutrition.FoodEntryInput{
			FoodName:  name,
			Calories:  ptr(100),
			MealType:  meal,
			EntryDate: ptr(today.AddDays(-daysAgo)),
		}
		e, err := svc.Create(ctx, alice, in)
		require.NoError(t, err)
		return e
	}
	mk("old lunch", 5, nutrition.MealLunch)
	mk("toast", 1, nutrition.MealBreakfast)
	mk("soup", 1, nutrition.MealLunch)
	mk("apple", 0, nutrition.MealSnack)
	_, err := svc.Create(ctx, bob, oatmeal())
	require.NoError(t, err)

	all, err := svc.List(ctx, alice, nutrition.FoodEntryFilter{})
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.FoodName
	}
	assert.Equal(t, []string{"apple", "soup", "toast", "old lunch"}, names)

	from, to := today.AddDays(-1), today.AddDays(-1)
	window, err := svc.List(ctx, alice, nutrition.FoodEntryFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	lunch := nutrition.MealLunch
	lunches, err := svc.List(ctx, alice, nutrition.FoodEntryFilter{MealType: &lunch})
	require.NoError(t, err)
	assert.Len(t, lunches, 2)

	paged, err := svc.List(ctx, alice, nutrition.FoodEntryFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Equal(t, "soup", paged[0].FoodName)
}

func TestFoodEntryList_BadQuery(t *testing.T) {
	svc, _ := newEntryService(t)
	ctx := context.Background()
	from, to := today, today.AddDays(-1)
	brunch := nutrition.MealType("brunch")

	for name, f := range map[string]nutrition.FoodEntryFilter{
		"limit too large": {Limit: 101},
		"negative limit":  {Limit: -1},
		"negative offset": {Offset: -3},
		"reversed range":  {From: &from, To: &to},
		"unknown meal":    {MealType: &brunch},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.List(ctx, alice, f)
			assert.True(t, nutrition.IsValidation(err), "got %v", err)
		})
	}
}

func TestFoodEntryGet_Ownership(t *testing.T) {
	svc, _ := newEntryService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, alice, oatmeal())
	require.NoError(t, err)

	got, err := svc.Get(ctx, alice, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	_, err = svc.Get(ctx, bob, e.ID)
	assert.ErrorIs(t, err, nutrition.ErrNotFound)
	_, err = svc.Get(ctx, alice, "missing")
	assert.ErrorIs(t, err, nutrition.ErrNotFound)
}

func TestFoodEntryUpdate(t *testing.T) {
	svc, now := newEntryService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, alice, oatmeal())
	require.NoError(t, err)

	*now = fixedNow.Add(time.Hour)
	got, err := svc.Update(ctx, alice, e.ID, nutrition.FoodEntryPatch{
		Calories: ptr(420),
		MealType: ptr(nutrition.MealSnack),
	})
	require.NoError(t, err)
	assert.Equal(t, 420, got.Calories)
	assert.Equal(t, nutrition.MealSnack, got.MealType)
	assert.Equal(t, "Oatmeal", got.FoodName, "unspecified fields keep their value")
	assert.Equal(t, 12.5, got.ProteinG)
	assert.Equal(t, e.CreatedAt, got.CreatedAt)
	assert.Equal(t, *now, got.UpdatedAt)
}

func TestFoodEntryUpdate_Errors(t *testing.T) {
	svc, _ := newEntryService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, alice, oatmeal())
	require.NoError(t, err)

	_, err = svc.Update(ctx, alice, e.ID, nutrition.FoodEntryPatch{})
	assert.True(t, nutrition.IsValidation(err), "empty patch")

	_, err = svc.Update(ctx, alice, e.ID, nutrition.FoodEntryPatch{FoodName: ptr("  ")})
	assert.Contains(t, fieldNames(err), "food_name")

	_, err = svc.Update(ctx, alice, e.ID, nutrition.FoodEntryPatch{AIConfidence: ptr(0.4)})
	assert.Contains(t, fieldNames(err), "ai_confidence")

	_, err = svc.Update(ctx, bob, e.ID, nutrition.FoodEntryPatch{Calories: ptr(1)})
	assert.ErrorIs(t, err, nutrition.ErrNotFound)

	got, err := svc.Get(ctx, alice, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got, "failed updates leave the entry unchanged")
}

func TestFoodEntryDelete_Idempotent(t *testing.T) {
	svc, _ := newEntryService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, alice, oatmeal())
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, bob, e.ID)
	require.NoError(t, err)
	assert.False(t, removed, "other users cannot delete")

	removed, err = svc.Delete(ctx, alice, e.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Delete(ctx, alice, e.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = svc.Get(ctx, alice, e.ID)
	assert.ErrorIs(t, err, nutrition.ErrNotFound)
}

func TestFoodEntryCreate_PersistenceError(t *testing.T) {
	store := newStore()
	store.FailOn("entries.insert", errBoom)
	svc := nutrition.NewFoodEntryService(store, func() time.Time { return fixedNow })

	_, err := svc.Create(context.Background(), alice, oatmeal())
	var pe *nutrition.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "entries.insert", pe.Op)
	assert.ErrorIs(t, err, errBoom)
}
