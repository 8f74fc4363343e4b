package store

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

const (
	profileColumns  = "user_id, height_cm, age, gender, activity_level, created_at, updated_at"
	trackingColumns = `id, user_id, weight_kg, muscle_mass_kg, body_fat_percentage,
	bmr_calories, tdee_calories, recorded_date, created_at`
)

type profiles struct{ c conn }

// InsertProfile relies on the user_profiles primary key; a second profile
// for the same user surfaces as nutrition.ErrConflict.
func (r profiles) InsertProfile(ctx context.Context, p nutrition.UserProfile) (nutrition.UserProfile, error) {
	row, err := queryOne[userProfileRow](ctx, r.c, "profiles.insert",
		`INSERT INTO user_profiles (user_id, height_cm, age, gender, activity_level, created_at, updated_at)
		 VALUES (@userID, @heightCm, @age, @gender, @activityLevel, @createdAt, @updatedAt)
		 RETURNING `+profileColumns,
		pgx.NamedArgs{
			"userID": p.UserID, "heightCm": p.HeightCm, "age": p.Age,
			"gender": string(p.Gender), "activityLevel": string(p.ActivityLevel),
			"createdAt": p.CreatedAt, "updatedAt": p.UpdatedAt,
		})
	if err != nil {
		return nutrition.UserProfile{}, err
	}
	return row.toDomain(), nil
}

func (r profiles) GetProfile(ctx context.Context, userID string) (nutrition.UserProfile, error) {
	row, err := queryOne[userProfileRow](ctx, r.c, "profiles.get",
		"SELECT "+profileColumns+" FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nutrition.UserProfile{}, err
	}
	return row.toDomain(), nil
}

// UpdateProfile builds the SET clause dynamically; only fields the client
// actually sent are written.
func (r profiles) UpdateProfile(ctx context.Context, userID string, p nutrition.UserProfilePatch, now time.Time) (nutrition.UserProfile, error) {
	setClauses := []string{"updated_at = @now"}
	args := pgx.NamedArgs{"userID": userID, "now": now}

	if p.HeightCm != nil {
		setClauses = append(setClauses, "height_cm = @heightCm")
		args["heightCm"] = *p.HeightCm
	}
	if p.Age != nil {
		setClauses = append(setClauses, "age = @age")
		args["age"] = *p.Age
	}
	if p.Gender != nil {
		setClauses = append(setClauses, "gender = @gender")
		args["gender"] = string(*p.Gender)
	}
	if p.ActivityLevel != nil {
		setClauses = append(setClauses, "activity_level = @activityLevel")
		args["activityLevel"] = string(*p.ActivityLevel)
	}

	query := "UPDATE user_profiles SET " +
		strings.Join(setClauses, ", ") +
		" WHERE user_id = @userID RETURNING " + profileColumns

	row, err := queryOne[userProfileRow](ctx, r.c, "profiles.update", query, args)
	if err != nil {
		return nutrition.UserProfile{}, err
	}
	return row.toDomain(), nil
}

func (r profiles) InsertTracking(ctx context.Context, t nutrition.ProfileTracking) (nutrition.ProfileTracking, error) {
	row, err := queryOne[trackingRow](ctx, r.c, "tracking.insert",
		`INSERT INTO profile_tracking (id, user_id, weight_kg, muscle_mass_kg, body_fat_percentage,
			bmr_calories, tdee_calories, recorded_date, created_at)
		 VALUES (@id, @userID, @weightKg, @muscleMassKg, @bodyFatPercentage,
			@bmrCalories, @tdeeCalories, @recordedDate, @createdAt)
		 RETURNING `+trackingColumns,
		pgx.NamedArgs{
			"id": t.ID, "userID": t.UserID,
			"weightKg": t.WeightKg, "muscleMassKg": t.MuscleMassKg, "bodyFatPercentage": t.BodyFatPercentage,
			"bmrCalories": t.BMRCalories, "tdeeCalories": t.TDEECalories,
			"recordedDate": t.RecordedDate.String(), "createdAt": t.CreatedAt,
		})
	if err != nil {
		return nutrition.ProfileTracking{}, err
	}
	return row.toDomain(), nil
}

// ListTracking returns measurements newest first.
func (r profiles) ListTracking(ctx context.Context, userID string, f nutrition.TrackingFilter) ([]nutrition.ProfileTracking, error) {
	where := []string{"user_id = @userID"}
	args := pgx.NamedArgs{"userID": userID}
	if f.From != nil {
		where = append(where, "recorded_date >= @from")
		args["from"] = f.From.String()
	}
	if f.To != nil {
		where = append(where, "recorded_date <= @to")
		args["to"] = f.To.String()
	}
	query := "SELECT " + trackingColumns + " FROM profile_tracking WHERE " +
		strings.Join(where, " AND ") +
		" ORDER BY recorded_date DESC, created_at DESC, id DESC" +
		pageClause(f.Limit, f.Offset, args)

	rows, err := queryMany[trackingRow](ctx, r.c, "tracking.list", query, args)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, trackingRow.toDomain), nil
}

func (r profiles) LatestWeightTracking(ctx context.Context, userID string) (nutrition.ProfileTracking, error) {
	row, err := queryOne[trackingRow](ctx, r.c, "tracking.latest",
		`SELECT `+trackingColumns+` FROM profile_tracking
		 WHERE user_id = @userID AND weight_kg IS NOT NULL
		 ORDER BY recorded_date DESC, created_at DESC, id DESC
		 LIMIT 1`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nutrition.ProfileTracking{}, err
	}
	return row.toDomain(), nil
}

func (r profiles) DeleteTracking(ctx context.Context, id, userID string) (bool, error) {
	n, err := exec(ctx, r.c, "tracking.delete",
		"DELETE FROM profile_tracking WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	return n > 0, err
}
