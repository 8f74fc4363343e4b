package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

const favoriteFoodColumns = `id, user_id, name, calories, protein_g, carbs_g, fat_g,
	serving_size, category, usage_count, last_used_at, created_at, updated_at`

type favoriteFoods struct{ c conn }

func (r favoriteFoods) Insert(ctx context.Context, f nutrition.FavoriteFood) (nutrition.FavoriteFood, error) {
	row, err := queryOne[favoriteFoodRow](ctx, r.c, "favorites.insert",
		`INSERT INTO favorite_foods (id, user_id, name, calories, protein_g, carbs_g, fat_g,
			serving_size, category, usage_count, last_used_at, created_at, updated_at)
		 VALUES (@id, @userID, @name, @calories, @proteinG, @carbsG, @fatG,
			@servingSize, @category, 0, NULL, @createdAt, @updatedAt)
		 RETURNING `+favoriteFoodColumns,
		pgx.NamedArgs{
			"id": f.ID, "userID": f.UserID, "name": f.Name,
			"calories": f.Calories, "proteinG": f.ProteinG, "carbsG": f.CarbsG, "fatG": f.FatG,
			"servingSize": f.ServingSize, "category": f.Category,
			"createdAt": f.CreatedAt, "updatedAt": f.UpdatedAt,
		})
	if err != nil {
		return nutrition.FavoriteFood{}, err
	}
	return row.toDomain(), nil
}

// List returns the most used favorites first; never-used ones sort last.
func (r favoriteFoods) List(ctx context.Context, userID string, f nutrition.FavoriteFoodFilter) ([]nutrition.FavoriteFood, error) {
	query := "SELECT " + favoriteFoodColumns + " FROM favorite_foods WHERE user_id = @userID"
	args := pgx.NamedArgs{"userID": userID}
	if f.Category != nil {
		query += " AND category = @category"
		args["category"] = *f.Category
	}
	query += " ORDER BY usage_count DESC, last_used_at DESC NULLS LAST, name ASC" +
		pageClause(f.Limit, f.Offset, args)

	rows, err := queryMany[favoriteFoodRow](ctx, r.c, "favorites.list", query, args)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, favoriteFoodRow.toDomain), nil
}

func (r favoriteFoods) Get(ctx context.Context, id, userID string) (nutrition.FavoriteFood, error) {
	return r.get(ctx, "favorites.get", id, userID, "")
}

// GetForUpdate locks the row until the surrounding transaction ends, so
// concurrent AddToLog calls serialize on the usage counter.
func (r favoriteFoods) GetForUpdate(ctx context.Context, id, userID string) (nutrition.FavoriteFood, error) {
	return r.get(ctx, "favorites.get_for_update", id, userID, " FOR UPDATE")
}

func (r favoriteFoods) get(ctx context.Context, op, id, userID, suffix string) (nutrition.FavoriteFood, error) {
	row, err := queryOne[favoriteFoodRow](ctx, r.c, op,
		"SELECT "+favoriteFoodColumns+" FROM favorite_foods WHERE id = @id AND user_id = @userID"+suffix,
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		return nutrition.FavoriteFood{}, err
	}
	return row.toDomain(), nil
}

func (r favoriteFoods) Update(ctx context.Context, id, userID string, p nutrition.FavoriteFoodPatch, now time.Time) (nutrition.FavoriteFood, error) {
	row, err := queryOne[favoriteFoodRow](ctx, r.c, "favorites.update",
		`UPDATE favorite_foods SET
			name         = COALESCE(@name, name),
			calories     = COALESCE(@calories, calories),
			protein_g    = COALESCE(@proteinG, protein_g),
			carbs_g      = COALESCE(@carbsG, carbs_g),
			fat_g        = COALESCE(@fatG, fat_g),
			serving_size = COALESCE(@servingSize, serving_size),
			category     = COALESCE(@category, category),
			updated_at   = @now
		 WHERE id = @id AND user_id = @userID
		 RETURNING `+favoriteFoodColumns,
		pgx.NamedArgs{
			"id": id, "userID": userID, "now": now,
			"name": p.Name, "calories": p.Calories,
			"proteinG": p.ProteinG, "carbsG": p.CarbsG, "fatG": p.FatG,
			"servingSize": p.ServingSize, "category": p.Category,
		})
	if err != nil {
		return nutrition.FavoriteFood{}, err
	}
	return row.toDomain(), nil
}

func (r favoriteFoods) Delete(ctx context.Context, id, userID string) (bool, error) {
	n, err := exec(ctx, r.c, "favorites.delete",
		"DELETE FROM favorite_foods WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	return n > 0, err
}

// MarkUsed increments in SQL rather than writing back a value read earlier,
// so the count stays exact even without the row lock.
func (r favoriteFoods) MarkUsed(ctx context.Context, id, userID string, at time.Time) (nutrition.FavoriteFood, error) {
	row, err := queryOne[favoriteFoodRow](ctx, r.c, "favorites.mark_used",
		`UPDATE favorite_foods SET
			usage_count  = usage_count + 1,
			last_used_at = @at,
			updated_at   = @at
		 WHERE id = @id AND user_id = @userID
		 RETURNING `+favoriteFoodColumns,
		pgx.NamedArgs{"id": id, "userID": userID, "at": at})
	if err != nil {
		return nutrition.FavoriteFood{}, err
	}
	return row.toDomain(), nil
}
