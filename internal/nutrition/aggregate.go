package nutrition

import "math"

const (
	// goalTolerance is how far (kcal) a day may land from the target and
	// still count as achieved.
	goalTolerance = 200
	// trendThreshold is the relative change between the first and second half
	// of a window needed to call a trend increasing or decreasing.
	trendThreshold = 0.05
)

type Totals struct {
	Calories   int     `json:"calories"`
	ProteinG   float64 `json:"protein_g"`
	CarbsG     float64 `json:"carbs_g"`
	FatG       float64 `json:"fat_g"`
	EntryCount int     `json:"entry_count"`
}

func (t *Totals) add(e FoodEntry) {
	t.Calories += e.Calories
	t.ProteinG += e.ProteinG
	t.CarbsG += e.CarbsG
	t.FatG += e.FatG
	t.EntryCount++
}

func (t *Totals) round() {
	t.ProteinG = round2(t.ProteinG)
	t.CarbsG = round2(t.CarbsG)
	t.FatG = round2(t.FatG)
}

type MealBreakdown struct {
	MealType MealType `json:"meal_type"`
	Totals
}

// DailySummary is one day's totals. Meals always holds all four meal types
// in MealTypes order, zero-valued when nothing was logged.
type DailySummary struct {
	Date  Date            `json:"date"`
	Total Totals          `json:"total"`
	Meals []MealBreakdown `json:"meals"`
}

// SummarizeDay totals the entries dated day; entries for other dates are
// ignored.
func SummarizeDay(day Date, entries []FoodEntry) DailySummary {
	out := DailySummary{Date: day, Meals: make([]MealBreakdown, len(MealTypes))}
	index := make(map[MealType]int, len(MealTypes))
	for i, m := range MealTypes {
		out.Meals[i].MealType = m
		index[m] = i
	}
	for _, e := range entries {
		if !e.EntryDate.Equal(day.Time) {
			continue
		}
		out.Total.add(e)
		if i, ok := index[e.MealType]; ok {
			out.Meals[i].add(e)
		}
	}
	out.Total.round()
	for i := range out.Meals {
		out.Meals[i].round()
	}
	return out
}

// SummarizeRange returns one DailySummary per day in [from, to], including
// days with no entries.
func SummarizeRange(from, to Date, entries []FoodEntry) []DailySummary {
	byDate := make(map[string][]FoodEntry)
	for _, e := range entries {
		key := e.EntryDate.String()
		byDate[key] = append(byDate[key], e)
	}
	n := from.DaysUntil(to) + 1
	if n < 0 {
		n = 0
	}
	days := make([]DailySummary, 0, n)
	for d := from; !d.After(to.Time); d = d.AddDays(1) {
		days = append(days, SummarizeDay(d, byDate[d.String()]))
	}
	return days
}

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

type MacroTrends struct {
	Calories TrendDirection `json:"calories"`
	Protein  TrendDirection `json:"protein"`
	Carbs    TrendDirection `json:"carbs"`
	Fat      TrendDirection `json:"fat"`
}

// TrendStats summarizes a window of days. Averages include zero days, so
// unlogged days pull them down.
type TrendStats struct {
	Days             int         `json:"days"`
	LoggedDays       int         `json:"logged_days"`
	AverageCalories  float64     `json:"average_calories"`
	AverageProteinG  float64     `json:"average_protein_g"`
	AverageCarbsG    float64     `json:"average_carbs_g"`
	AverageFatG      float64     `json:"average_fat_g"`
	TotalCalories    int         `json:"total_calories"`
	TotalProteinG    float64     `json:"total_protein_g"`
	TargetCalories   *int        `json:"target_calories"`
	HasTarget        bool        `json:"has_target"`
	GoalAchievement  float64     `json:"goal_achievement_rate"`
	ConsistencyScore float64     `json:"consistency_score"`
	Trends           MacroTrends `json:"trends"`
}

// ComputeTrendStats derives window statistics from a gap-filled day series.
// Without a target, GoalAchievement is 0 and HasTarget false.
func ComputeTrendStats(days []DailySummary, target *int) TrendStats {
	stats := TrendStats{Days: len(days), TargetCalories: target, HasTarget: target != nil}
	if len(days) == 0 {
		stats.Trends = MacroTrends{TrendStable, TrendStable, TrendStable, TrendStable}
		return stats
	}

	calories := make([]float64, len(days))
	protein := make([]float64, len(days))
	carbs := make([]float64, len(days))
	fat := make([]float64, len(days))
	achieved := 0
	for i, d := range days {
		calories[i] = float64(d.Total.Calories)
		protein[i] = d.Total.ProteinG
		carbs[i] = d.Total.CarbsG
		fat[i] = d.Total.FatG

		stats.TotalCalories += d.Total.Calories
		stats.TotalProteinG += d.Total.ProteinG
		if d.Total.EntryCount > 0 {
			stats.LoggedDays++
		}
		if target != nil && abs(d.Total.Calories-*target) <= goalTolerance {
			achieved++
		}
	}

	n := float64(len(days))
	stats.AverageCalories = round2(mean(calories))
	stats.AverageProteinG = round2(mean(protein))
	stats.AverageCarbsG = round2(mean(carbs))
	stats.AverageFatG = round2(mean(fat))
	stats.TotalProteinG = round2(stats.TotalProteinG)
	stats.ConsistencyScore = round2(100 * float64(stats.LoggedDays) / n)
	if target != nil {
		stats.GoalAchievement = round2(100 * float64(achieved) / n)
	}
	stats.Trends = MacroTrends{
		Calories: Trend(calories),
		Protein:  Trend(protein),
		Carbs:    Trend(carbs),
		Fat:      Trend(fat),
	}
	return stats
}

// Trend compares the mean of the first half of values with the mean of the
// second half; the middle value of an odd-length series belongs to neither.
// A relative change above 5% is directional, anything else is stable.
func Trend(values []float64) TrendDirection {
	half := len(values) / 2
	if half == 0 {
		return TrendStable
	}
	early := mean(values[:half])
	late := mean(values[len(values)-half:])
	if early == 0 {
		if late > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}
	change := (late - early) / early
	switch {
	case change > trendThreshold:
		return TrendIncreasing
	case change < -trendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
