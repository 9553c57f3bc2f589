// Package model defines domain entities used by services, stores and transports.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/and161185/fittrack/internal/errs"
)

// Gender selects the BMR offset.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender accepts the choice payloads and common spellings (en/ru).
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "м", "муж", "мужской":
		return GenderMale, nil
	case "female", "f", "ж", "жен", "женский":
		return GenderFemale, nil
	}
	return "", fmt.Errorf("gender %q: %w", s, errs.ErrInvalidInput)
}

// Profile is the durable per-user record: physical attributes plus derived goals.
type Profile struct {
	UserID      int64     `json:"user_id" validate:"required"`
	Weight      int       `json:"weight" validate:"gt=0"`             // kg
	Height      int       `json:"height" validate:"gt=0"`             // cm
	Age         int       `json:"age" validate:"min=1,max=120"`       // years
	Gender      Gender    `json:"gender" validate:"oneof=male female"`
	Activity    int       `json:"activity" validate:"min=1,max=1440"` // minutes/day
	City        string    `json:"city" validate:"required"`
	CalorieGoal float64   `json:"calorie_goal" validate:"gt=0"` // kcal/day
	WaterGoal   int       `json:"water_goal" validate:"gte=0"`  // ml/day
	UpdatedAt   time.Time `json:"updated_at"`
}

// DailyLog accumulates one user's intake and burn for one calendar day.
type DailyLog struct {
	UserID         int64     `json:"user_id"`
	Day            time.Time `json:"day"`
	LoggedWater    int       `json:"logged_water"`    // ml
	LoggedCalories float64   `json:"logged_calories"` // kcal
	BurnedCalories float64   `json:"burned_calories"` // kcal
}

// FoodInfo is nutrition data found for a product.
type FoodInfo struct {
	Name            string  `json:"name"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
}

// DayOf returns t's calendar date (in t's location) as UTC midnight, the key used by log stores.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the first day of the 7-day window ending on today.
func WeekStart(today time.Time) time.Time {
	return DayOf(today).AddDate(0, 0, -6)
}
