// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/fittrack/internal/model"
)

// ProfileRepository stores one profile per user.
type ProfileRepository interface {
	// SaveProfile replaces the user's profile and zeroes the log of day, atomically.
	SaveProfile(ctx context.Context, p *model.Profile, day time.Time) error
	// GetProfile loads a profile; errs.ErrNotFound when absent.
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
	// SetWaterGoal overwrites the stored water goal.
	SetWaterGoal(ctx context.Context, userID int64, goal int) error
}

// LogRepository stores per-user, per-day accumulators. Days are calendar dates
// normalized with model.DayOf.
type LogRepository interface {
	// GetDailyLog returns the day's row, creating a zeroed one if missing.
	GetDailyLog(ctx context.Context, userID int64, day time.Time) (*model.DailyLog, error)
	// SetLoggedWater sets the absolute water total for the day.
	SetLoggedWater(ctx context.Context, userID int64, day time.Time, total int) error
	// SetLoggedCalories sets the absolute consumed calories for the day.
	SetLoggedCalories(ctx context.Context, userID int64, day time.Time, total float64) error
	// SetBurnedCalories sets the absolute burned calories for the day.
	SetBurnedCalories(ctx context.Context, userID int64, day time.Time, total float64) error
	// GetWeeklyLogs returns existing rows in [today-6, today], ascending by day.
	GetWeeklyLogs(ctx context.Context, userID int64, today time.Time) ([]model.DailyLog, error)
}
