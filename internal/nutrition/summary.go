package nutrition

import (
	"context"
	"errors"
	"time"
)

// maxTrendDays bounds explicit trend ranges.
const maxTrendDays = 366

// Periods maps the named trend windows to their length in days.
var Periods = map[string]int{"7d": 7, "14d": 14, "30d": 30, "90d": 90}

// TrendQuery selects a window either by Period (ending today) or by an
// explicit From/To range. TargetCalories overrides the user's latest TDEE
// snapshot as the daily goal.
type TrendQuery struct {
	Period         string
	From           *Date
	To             *Date
	TargetCalories *int
}

type TrendReport struct {
	From  Date           `json:"from"`
	To    Date           `json:"to"`
	Days  []DailySummary `json:"days"`
	Stats TrendStats     `json:"stats"`
}

type DailyReport struct {
	DailySummary
	Entries []FoodEntry `json:"entries"`
}

// SummaryService computes derived nutrition views on demand; nothing it
// returns is stored.
type SummaryService struct {
	store Store
	now   Clock
}

func NewSummaryService(store Store, now Clock) *SummaryService {
	return &SummaryService{store: store, now: now}
}

// Daily totals the user's entries for date, defaulting to today.
func (s *SummaryService) Daily(ctx context.Context, userID string, date *Date) (DailyReport, error) {
	day := DateOf(s.now())
	if date != nil && !date.IsZero() {
		day = *date
	}
	entries, err := s.store.Entries().List(ctx, userID, FoodEntryFilter{From: &day, To: &day})
	if err != nil {
		return DailyReport{}, err
	}
	if entries == nil {
		entries = []FoodEntry{}
	}
	return DailyReport{DailySummary: SummarizeDay(day, entries), Entries: entries}, nil
}

// Trends builds the per-day series and statistics for q.
func (s *SummaryService) Trends(ctx context.Context, userID string, q TrendQuery) (TrendReport, error) {
	from, to, err := s.resolveWindow(q)
	if err != nil {
		return TrendReport{}, err
	}
	return s.report(ctx, userID, from, to, q.TargetCalories)
}

// Weekly reports the Monday-to-Sunday week containing weekOf (default today).
func (s *SummaryService) Weekly(ctx context.Context, userID string, weekOf *Date, target *int) (TrendReport, error) {
	day := DateOf(s.now())
	if weekOf != nil && !weekOf.IsZero() {
		day = *weekOf
	}
	start := MondayOf(day)
	return s.report(ctx, userID, start, start.AddDays(6), target)
}

// Monthly reports every day of the given calendar month.
func (s *SummaryService) Monthly(ctx context.Context, userID string, year int, month time.Month, target *int) (TrendReport, error) {
	if month < time.January || month > time.December {
		return TrendReport{}, invalid("month", "range", "must be between 1 and 12")
	}
	start := NewDate(year, month, 1)
	end := NewDate(year, month+1, 1).AddDays(-1)
	return s.report(ctx, userID, start, end, target)
}

func (s *SummaryService) report(ctx context.Context, userID string, from, to Date, target *int) (TrendReport, error) {
	if target != nil && *target <= 0 {
		return TrendReport{}, invalid("target", "gt", "must be greater than 0")
	}
	entries, err := s.store.Entries().List(ctx, userID, FoodEntryFilter{From: &from, To: &to})
	if err != nil {
		return TrendReport{}, err
	}
	if target == nil {
		target, err = s.snapshotTarget(ctx, userID)
		if err != nil {
			return TrendReport{}, err
		}
	}
	days := SummarizeRange(from, to, entries)
	return TrendReport{From: from, To: to, Days: days, Stats: ComputeTrendStats(days, target)}, nil
}

// snapshotTarget falls back to the TDEE stored with the latest weight.
func (s *SummaryService) snapshotTarget(ctx context.Context, userID string) (*int, error) {
	latest, err := s.store.Profiles().LatestWeightTracking(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return latest.TDEECalories, nil
}

func (s *SummaryService) resolveWindow(q TrendQuery) (Date, Date, error) {
	if q.From != nil || q.To != nil {
		if q.From == nil || q.To == nil {
			return Date{}, Date{}, invalid("start", "required_with", "start and end must be given together")
		}
		if q.From.After(q.To.Time) {
			return Date{}, Date{}, invalid("start", "order", "must not be after end")
		}
		if q.From.DaysUntil(*q.To)+1 > maxTrendDays {
			return Date{}, Date{}, invalid("end", "range", "range must not exceed 366 days")
		}
		return *q.From, *q.To, nil
	}
	period := q.Period
	if period == "" {
		period = "7d"
	}
	n, ok := Periods[period]
	if !ok {
		return Date{}, Date{}, invalid("period", "oneof", "must be one of: 7d, 14d, 30d, 90d")
	}
	today := DateOf(s.now())
	return today.AddDays(-(n - 1)), today, nil
}

// MondayOf returns the Monday on or before d.
func MondayOf(d Date) Date {
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return d.AddDays(-(weekday - 1))
}
