package nutrition

import (
	"math"
	"strings"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// ActivityLevels is the canonical scale, least to most active.
var ActivityLevels = []ActivityLevel{
	ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive,
}

// activityMultipliers maps each canonical activity level to its TDEE
// multiplier. It is the single source of truth for valid levels.
var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// activityAliases maps the long-form labels some clients send onto the
// canonical scale.
var activityAliases = map[string]ActivityLevel{
	"lightly_active":    ActivityLight,
	"moderately_active": ActivityModerate,
	"extremely_active":  ActivityVeryActive,
}

// ParseActivityLevel normalizes s to a canonical activity level.
func ParseActivityLevel(s string) (ActivityLevel, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := activityMultipliers[ActivityLevel(s)]; ok {
		return ActivityLevel(s), true
	}
	level, ok := activityAliases[s]
	return level, ok
}

// Multiplier returns the TDEE multiplier for level.
func (level ActivityLevel) Multiplier() (float64, bool) {
	m, ok := activityMultipliers[level]
	return m, ok
}

// CalculateBMR estimates basal metabolic rate with the Mifflin-St Jeor
// equation. Inputs are not validated.
func CalculateBMR(weightKg, heightCm float64, age int, gender Gender) int {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	return int(math.Round(bmr))
}

// CalculateTDEE scales bmr by the activity multiplier. Unknown levels yield 0.
func CalculateTDEE(bmr int, level ActivityLevel) int {
	m, ok := level.Multiplier()
	if !ok {
		return 0
	}
	return int(math.Round(float64(bmr) * m))
}

// MacroTargets is a daily protein/carb/fat split in grams.
type MacroTargets struct {
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// CalculateMacroTargets splits tdee into macros: 2 g protein per kg of body
// weight, 30% (male) or 35% (female) of calories from fat, carbs take the rest.
// Each macro is rounded independently so the calorie total may drift from
// tdee by a few kcal.
func CalculateMacroTargets(tdee int, weightKg float64, gender Gender) MacroTargets {
	proteinG := int(math.Round(2 * weightKg))

	fatShare := 0.35
	if gender == GenderMale {
		fatShare = 0.30
	}
	fatCalories := float64(tdee) * fatShare
	fatG := int(math.Round(fatCalories / 9))

	remaining := float64(tdee) - float64(proteinG*4) - fatCalories
	carbsG := int(math.Round(remaining / 4))

	return MacroTargets{ProteinG: proteinG, CarbsG: carbsG, FatG: fatG}
}

// MacroCalories converts gram amounts to kcal at 4/4/9 per gram.
func MacroCalories(proteinG, carbsG, fatG float64) float64 {
	return proteinG*4 + carbsG*4 + fatG*9
}
