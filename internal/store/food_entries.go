package store

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

const foodEntryColumns = `id, user_id, food_name, calories, protein_g, carbs_g, fat_g,
	meal_type, entry_date, source, ai_confidence, original_description, created_at, updated_at`

type foodEntries struct{ c conn }

func (r foodEntries) Insert(ctx context.Context, e nutrition.FoodEntry) (nutrition.FoodEntry, error) {
	row, err := queryOne[foodEntryRow](ctx, r.c, "entries.insert",
		`INSERT INTO food_entries (id, user_id, food_name, calories, protein_g, carbs_g, fat_g,
			meal_type, entry_date, source, ai_confidence, original_description, created_at, updated_at)
		 VALUES (@id, @userID, @foodName, @calories, @proteinG, @carbsG, @fatG,
			@mealType, @entryDate, @source, @aiConfidence, @originalDescription, @createdAt, @updatedAt)
		 RETURNING `+foodEntryColumns,
		pgx.NamedArgs{
			"id": e.ID, "userID": e.UserID, "foodName": e.FoodName,
			"calories": e.Calories, "proteinG": e.ProteinG, "carbsG": e.CarbsG, "fatG": e.FatG,
			"mealType": string(e.MealType), "entryDate": e.EntryDate.String(), "source": string(e.Source),
			"aiConfidence": e.AIConfidence, "originalDescription": e.OriginalDescription,
			"createdAt": e.CreatedAt, "updatedAt": e.UpdatedAt,
		})
	if err != nil {
		return nutrition.FoodEntry{}, err
	}
	return row.toDomain(), nil
}

// List builds the WHERE clause from whichever filters are set. Entries come
// back newest date first, then newest created first.
func (r foodEntries) List(ctx context.Context, userID string, f nutrition.FoodEntryFilter) ([]nutrition.FoodEntry, error) {
	where := []string{"user_id = @userID"}
	args := pgx.NamedArgs{"userID": userID}
	if f.From != nil {
		where = append(where, "entry_date >= @from")
		args["from"] = f.From.String()
	}
	if f.To != nil {
		where = append(where, "entry_date <= @to")
		args["to"] = f.To.String()
	}
	if f.MealType != nil {
		where = append(where, "meal_type = @mealType")
		args["mealType"] = string(*f.MealType)
	}

	query := "SELECT " + foodEntryColumns + " FROM food_entries WHERE " +
		strings.Join(where, " AND ") +
		" ORDER BY entry_date DESC, created_at DESC, id DESC" +
		pageClause(f.Limit, f.Offset, args)

	rows, err := queryMany[foodEntryRow](ctx, r.c, "entries.list", query, args)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, foodEntryRow.toDomain), nil
}

func (r foodEntries) Get(ctx context.Context, id, userID string) (nutrition.FoodEntry, error) {
	row, err := queryOne[foodEntryRow](ctx, r.c, "entries.get",
		"SELECT "+foodEntryColumns+" FROM food_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		return nutrition.FoodEntry{}, err
	}
	return row.toDomain(), nil
}

// Update uses COALESCE so omitted fields keep their current value.
func (r foodEntries) Update(ctx context.Context, id, userID string, p nutrition.FoodEntryPatch, now time.Time) (nutrition.FoodEntry, error) {
	row, err := queryOne[foodEntryRow](ctx, r.c, "entries.update",
		`UPDATE food_entries SET
			food_name            = COALESCE(@foodName, food_name),
			calories             = COALESCE(@calories, calories),
			protein_g            = COALESCE(@proteinG, protein_g),
			carbs_g              = COALESCE(@carbsG, carbs_g),
			fat_g                = COALESCE(@fatG, fat_g),
			meal_type            = COALESCE(@mealType, meal_type),
			entry_date           = COALESCE(@entryDate::date, entry_date),
			ai_confidence        = COALESCE(@aiConfidence, ai_confidence),
			original_description = COALESCE(@originalDescription, original_description),
			updated_at           = @now
		 WHERE id = @id AND user_id = @userID
		 RETURNING `+foodEntryColumns,
		pgx.NamedArgs{
			"id": id, "userID": userID, "now": now,
			"foodName": p.FoodName, "calories": p.Calories,
			"proteinG": p.ProteinG, "carbsG": p.CarbsG, "fatG": p.FatG,
			"mealType": stringArg(p.MealType), "entryDate": dateArg(p.EntryDate),
			"aiConfidence": p.AIConfidence, "originalDescription": p.OriginalDescription,
		})
	if err != nil {
		return nutrition.FoodEntry{}, err
	}
	return row.toDomain(), nil
}

// Delete enforces ownership by requiring both id and user_id to match.
func (r foodEntries) Delete(ctx context.Context, id, userID string) (bool, error) {
	n, err := exec(ctx, r.c, "entries.delete",
		"DELETE FROM food_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	return n > 0, err
}

func (r foodEntries) LoggedDates(ctx context.Context, userID string) ([]nutrition.Date, error) {
	rows, err := queryMany[dateRow](ctx, r.c, "entries.logged_dates",
		`SELECT DISTINCT entry_date AS date FROM food_entries
		 WHERE user_id = @userID
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, err
	}
	return dates(rows), nil
}

// pageClause appends LIMIT/OFFSET placeholders; a zero limit means no limit.
func pageClause(limit, offset int, args pgx.NamedArgs) string {
	clause := ""
	if limit > 0 {
		clause += " LIMIT @limit"
		args["limit"] = limit
	}
	if offset > 0 {
		clause += " OFFSET @offset"
		args["offset"] = offset
	}
	return clause
}
