package nutrition

import (
	"context"
	"errors"
	"sort"
)

// Streak is the derived logging streak for a user.
type Streak struct {
	CurrentStreak          int    `json:"current_streak"`
	LongestStreak          int    `json:"longest_streak"`
	TotalLoggedDays        int    `json:"total_logged_days"`
	LastLoggedDate         *Date  `json:"last_logged_date"`
	FrozenDates            []Date `json:"frozen_dates"`
	FreezeCreditsRemaining int    `json:"freeze_credits_remaining"`
}

// ComputeStreak derives streak lengths from the distinct logged dates.
//
// The current streak counts back from today; when today has nothing logged
// yet it counts back from yesterday, so an unfinished day does not break the
// streak. Frozen dates bridge a gap without adding to any length or to
// TotalLoggedDays. The longest streak applies the same bridging.
func ComputeStreak(logged, frozen []Date, today Date) Streak {
	loggedSet := make(map[string]bool, len(logged))
	for _, d := range logged {
		loggedSet[d.String()] = true
	}
	frozenSet := make(map[string]bool, len(frozen))
	for _, d := range frozen {
		if !loggedSet[d.String()] {
			frozenSet[d.String()] = true
		}
	}
	covered := func(d Date) bool {
		return loggedSet[d.String()] || frozenSet[d.String()]
	}

	days := make([]Date, 0, len(loggedSet))
	seen := make(map[string]bool, len(loggedSet))
	for _, d := range logged {
		if !seen[d.String()] {
			seen[d.String()] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j].Time) })

	out := Streak{TotalLoggedDays: len(days), FrozenDates: []Date{}}
	for _, d := range frozen {
		if frozenSet[d.String()] {
			out.FrozenDates = append(out.FrozenDates, d)
		}
	}
	if len(days) == 0 {
		return out
	}
	last := days[len(days)-1]
	out.LastLoggedDate = &last

	start := today
	if !covered(today) {
		start = today.AddDays(-1)
	}
	for d := start; covered(d); d = d.AddDays(-1) {
		if loggedSet[d.String()] {
			out.CurrentStreak++
		}
	}

	run := 1
	out.LongestStreak = 1
	for i := 1; i < len(days); i++ {
		if bridged(days[i-1], days[i], frozenSet) {
			run++
		} else {
			run = 1
		}
		if run > out.LongestStreak {
			out.LongestStreak = run
		}
	}
	return out
}

// bridged reports whether every day strictly between a and b is frozen.
func bridged(a, b Date, frozen map[string]bool) bool {
	for d := a.AddDays(1); d.Before(b.Time); d = d.AddDays(1) {
		if !frozen[d.String()] {
			return false
		}
	}
	return true
}

type StreakService struct {
	store Store
	now   Clock
}

func NewStreakService(store Store, now Clock) *StreakService {
	return &StreakService{store: store, now: now}
}

func (s *StreakService) Current(ctx context.Context, userID string) (Streak, error) {
	logged, err := s.store.Entries().LoggedDates(ctx, userID)
	if err != nil {
		return Streak{}, err
	}
	frozen, err := s.store.Freezes().FrozenDates(ctx, userID)
	if err != nil {
		return Streak{}, err
	}
	credits, err := s.store.Freezes().RemainingCredits(ctx, userID)
	if err != nil {
		return Streak{}, err
	}
	out := ComputeStreak(logged, frozen, DateOf(s.now()))
	out.FreezeCreditsRemaining = credits
	return out, nil
}

// Freeze spends one freeze credit to mark date as covered. The credit is
// only consumed if the frozen date is recorded.
func (s *StreakService) Freeze(ctx context.Context, userID string, date Date) (Streak, error) {
	if date.IsZero() {
		return Streak{}, invalid("date", "required", "is required")
	}
	now := s.now()
	if date.After(DateOf(now).Time) {
		return Streak{}, invalid("date", "lte", "must not be in the future")
	}
	err := s.store.WithinTx(ctx, func(tx Repositories) error {
		logged, err := tx.Entries().LoggedDates(ctx, userID)
		if err != nil {
			return err
		}
		for _, d := range logged {
			if d.Equal(date.Time) {
				return conflict(date.String() + " already has logged food")
			}
		}
		ok, err := tx.Freezes().ConsumeCredit(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return conflict("no freeze credits remaining")
		}
		err = tx.Freezes().InsertFrozenDate(ctx, userID, date, now)
		if errors.Is(err, ErrConflict) {
			return conflict(date.String() + " is already frozen")
		}
		return err
	})
	if err != nil {
		return Streak{}, err
	}
	return s.Current(ctx, userID)
}
