package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thitiph0n/second-brain-sub001/internal/nutrition"
)

// Freeze credits live on the users row; spent credits become rows in
// streak_freezes keyed by (user_id, frozen_date).
type freezes struct{ c conn }

func (r freezes) FrozenDates(ctx context.Context, userID string) ([]nutrition.Date, error) {
	rows, err := queryMany[dateRow](ctx, r.c, "freezes.list",
		`SELECT frozen_date AS date FROM streak_freezes
		 WHERE user_id = @userID
		 ORDER BY frozen_date ASC`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, err
	}
	return dates(rows), nil
}

func (r freezes) RemainingCredits(ctx context.Context, userID string) (int, error) {
	row, err := queryOne[struct {
		Credits int `db:"freeze_credits"`
	}](ctx, r.c, "freezes.credits",
		"SELECT freeze_credits FROM users WHERE id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, nutrition.ErrNotFound) {
		return 0, nil
	}
	return row.Credits, err
}

// ConsumeCredit decrements only while credits remain, so two concurrent
// freezes can never take the balance below zero.
func (r freezes) ConsumeCredit(ctx context.Context, userID string) (bool, error) {
	n, err := exec(ctx, r.c, "freezes.consume",
		`UPDATE users SET freeze_credits = freeze_credits - 1
		 WHERE id = @userID AND freeze_credits > 0`,
		pgx.NamedArgs{"userID": userID})
	return n > 0, err
}

func (r freezes) InsertFrozenDate(ctx context.Context, userID string, d nutrition.Date, at time.Time) error {
	_, err := exec(ctx, r.c, "freezes.insert",
		`INSERT INTO streak_freezes (user_id, frozen_date, created_at)
		 VALUES (@userID, @date, @at)`,
		pgx.NamedArgs{"userID": userID, "date": d.String(), "at": at})
	return err
}
