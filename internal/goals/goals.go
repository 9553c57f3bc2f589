// Package goals computes daily calorie and water targets and workout burn.
// All functions are pure.
package goals

import (
	"math"
	"strings"

	"github.com/and161185/fittrack/internal/model"
)

const (
	// HotThresholdC is the temperature above which the heat bonus applies.
	HotThresholdC = 25.0

	heatBonusMl       = 500
	defaultMET        = 5.0
	extraWaterPer30Ml = 200
)

// ActivityFactor maps daily active minutes to a TDEE multiplier.
// Bounds are half-open: [0,30) → 1.2, [30,60) → 1.375 and so on.
func ActivityFactor(minutes int) float64 {
	switch {
	case minutes < 30:
		return 1.2
	case minutes < 60:
		return 1.375
	case minutes < 90:
		return 1.55
	case minutes < 120:
		return 1.725
	default:
		return 1.9
	}
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day.
func BMR(weight, height, age int, gender model.Gender) float64 {
	bmr := 10*float64(weight) + 6.25*float64(height) - 5*float64(age)
	if gender == model.GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// CalorieGoal returns BMR scaled by the activity factor. Not rounded.
func CalorieGoal(weight, height, age int, gender model.Gender, activity int) float64 {
	return BMR(weight, height, age, gender) * ActivityFactor(activity)
}

// WaterGoal returns the daily water target in ml, truncated.
// Callers with no temperature data pass any value <= HotThresholdC.
func WaterGoal(weight, activity int, temperatureC float64) int {
	goal := 30*float64(weight) + 500*(float64(activity)/30)
	if temperatureC > HotThresholdC {
		goal += heatBonusMl
	}
	return int(goal)
}

// workout is one MET table row, keyed by its English and Russian names.
type workout struct {
	name  string
	alias string
	met   float64
}

var workouts = []workout{
	{"run", "бег", 8.0},
	{"walk", "ходьба", 3.5},
	{"cycling", "велосипед", 6.0},
	{"swimming", "плавание", 6.0},
	{"yoga", "йога", 3.0},
	{"strength", "силовая", 5.0},
	{"cardio", "кардио", 7.0},
	{"dance", "танцы", 5.0},
	{"soccer", "футбол", 7.0},
	{"basketball", "баскетбол", 6.5},
}

var metByName = func() map[string]float64 {
	m := make(map[string]float64, len(workouts)*2)
	for _, w := range workouts {
		m[w.name] = w.met
		m[w.alias] = w.met
	}
	return m
}()

// MET returns the metabolic equivalent for a workout type and whether it is known.
// Matching is case-insensitive and exact.
func MET(workoutType string) (float64, bool) {
	met, ok := metByName[strings.ToLower(workoutType)]
	if !ok {
		return defaultMET, false
	}
	return met, true
}

// WorkoutCalories estimates kcal burned, rounded to one decimal place.
// Unknown workout types use a MET of 5.0.
func WorkoutCalories(workoutType string, minutes, weight int) float64 {
	met, _ := MET(workoutType)
	kcal := met * float64(weight) * (float64(minutes) / 60)
	return math.Round(kcal*10) / 10
}

// ExtraWater is the ml added to the water goal for a workout of the given length.
func ExtraWater(minutes int) int {
	return int(math.Floor(float64(minutes) / 30 * extraWaterPer30Ml))
}

// WorkoutTypes lists the canonical workout names in display order.
func WorkoutTypes() []string {
	out := make([]string, 0, len(workouts))
	for _, w := range workouts {
		out = append(out, w.name)
	}
	return out
}
