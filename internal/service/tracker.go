// Package service contains the application service behind every tracker command.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/goals"
	"github.com/and161185/fittrack/internal/model"
	"github.com/and161185/fittrack/internal/repository"
)

// Tracker defines the operations on a user's profile and daily log.
// Every operation except SaveProfile fails with errs.ErrNoProfile for unknown users.
type Tracker interface {
	// Profile returns the stored profile.
	Profile(ctx context.Context, userID int64) (*model.Profile, error)
	// SaveProfile validates and replaces the profile, zeroing today's log.
	SaveProfile(ctx context.Context, p *model.Profile) error
	// LogWater adds a positive amount of water to today's total.
	LogWater(ctx context.Context, userID int64, amount int) (model.WaterEntry, error)
	// AddCalories adds consumed kcal to today's total.
	AddCalories(ctx context.Context, userID int64, kcal float64) (model.CaloriesEntry, error)
	// LogWorkout records burned kcal and permanently raises the water goal.
	LogWorkout(ctx context.Context, userID int64, workoutType string, minutes int) (model.WorkoutEntry, error)
	// Progress reports today's standing against the goals.
	Progress(ctx context.Context, userID int64) (model.Progress, error)
	// Weekly returns exactly 7 days ending today, oldest first, missing days zeroed.
	Weekly(ctx context.Context, userID int64) ([]model.DailyLog, error)
}

type TrackerServiceImpl struct {
	profiles repository.ProfileRepository
	logs     repository.LogRepository
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
}

// Option customizes TrackerServiceImpl.
type Option func(*TrackerServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *TrackerServiceImpl) { s.now = now }
}

// WithLocation sets the timezone that decides where a calendar day starts.
func WithLocation(loc *time.Location) Option {
	return func(s *TrackerServiceImpl) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewTrackerService constructs the service over the given stores.
func NewTrackerService(profiles repository.ProfileRepository, logs repository.LogRepository, opts ...Option) *TrackerServiceImpl {
	s := &TrackerServiceImpl{
		profiles: profiles,
		logs:     logs,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today is the current calendar day in the configured location.
func (s *TrackerServiceImpl) Today() time.Time {
	return model.DayOf(s.now().In(s.loc))
}

func (s *TrackerServiceImpl) Profile(ctx context.Context, userID int64) (*model.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrNoProfile
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *TrackerServiceImpl) SaveProfile(ctx context.Context, p *model.Profile) error {
	if err := s.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return fmt.Errorf("profile %s: %w", strings.Join(fields, ", "), errs.ErrInvalidInput)
		}
		return fmt.Errorf("validate profile: %w", err)
	}
	p.UpdatedAt = s.now()
	if err := s.profiles.SaveProfile(ctx, p, s.Today()); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *TrackerServiceImpl) LogWater(ctx context.Context, userID int64, amount int) (model.WaterEntry, error) {
	if amount <= 0 {
		return model.WaterEntry{}, fmt.Errorf("water amount %d: %w", amount, errs.ErrInvalidInput)
	}
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return model.WaterEntry{}, err
	}
	day := s.Today()
	l, err := s.logs.GetDailyLog(ctx, userID, day)
	if err != nil {
		return model.WaterEntry{}, fmt.Errorf("get daily log: %w", err)
	}
	total := l.LoggedWater + amount
	if err := s.logs.SetLoggedWater(ctx, userID, day, total); err != nil {
		return model.WaterEntry{}, fmt.Errorf("set logged water: %w", err)
	}
	return model.WaterEntry{
		Amount:    amount,
		Total:     total,
		Goal:      p.WaterGoal,
		Remaining: p.WaterGoal - total,
	}, nil
}

func (s *TrackerServiceImpl) AddCalories(ctx context.Context, userID int64, kcal float64) (model.CaloriesEntry, error) {
	if kcal < 0 {
		return model.CaloriesEntry{}, fmt.Errorf("calories %v: %w", kcal, errs.ErrInvalidInput)
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return model.CaloriesEntry{}, err
	}
	day := s.Today()
	l, err := s.logs.GetDailyLog(ctx, userID, day)
	if err != nil {
		return model.CaloriesEntry{}, fmt.Errorf("get daily log: %w", err)
	}
	total := l.LoggedCalories + kcal
	if err := s.logs.SetLoggedCalories(ctx, userID, day, total); err != nil {
		return model.CaloriesEntry{}, fmt.Errorf("set logged calories: %w", err)
	}
	return model.CaloriesEntry{Consumed: kcal, Total: total}, nil
}

func (s *TrackerServiceImpl) LogWorkout(ctx context.Context, userID int64, workoutType string, minutes int) (model.WorkoutEntry, error) {
	if strings.TrimSpace(workoutType) == "" || minutes <= 0 {
		return model.WorkoutEntry{}, fmt.Errorf("workout %q %d min: %w", workoutType, minutes, errs.ErrInvalidInput)
	}
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return model.WorkoutEntry{}, err
	}
	day := s.Today()
	l, err := s.logs.GetDailyLog(ctx, userID, day)
	if err != nil {
		return model.WorkoutEntry{}, fmt.Errorf("get daily log: %w", err)
	}

	burned := goals.WorkoutCalories(workoutType, minutes, p.Weight)
	total := l.BurnedCalories + burned
	if err := s.logs.SetBurnedCalories(ctx, userID, day, total); err != nil {
		return model.WorkoutEntry{}, fmt.Errorf("set burned calories: %w", err)
	}

	extra := goals.ExtraWater(minutes)
	newGoal := p.WaterGoal + extra
	if err := s.profiles.SetWaterGoal(ctx, userID, newGoal); err != nil {
		return model.WorkoutEntry{}, fmt.Errorf("set water goal: %w", err)
	}
	return model.WorkoutEntry{
		Type:        workoutType,
		Minutes:     minutes,
		Burned:      burned,
		TotalBurned: total,
		ExtraWater:  extra,
		WaterGoal:   newGoal,
	}, nil
}

func (s *TrackerServiceImpl) Progress(ctx context.Context, userID int64) (model.Progress, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return model.Progress{}, err
	}
	l, err := s.logs.GetDailyLog(ctx, userID, s.Today())
	if err != nil {
		return model.Progress{}, fmt.Errorf("get daily log: %w", err)
	}
	return model.Progress{
		Profile:           *p,
		Log:               *l,
		RemainingWater:    p.WaterGoal - l.LoggedWater,
		RemainingCalories: p.CalorieGoal - l.LoggedCalories + l.BurnedCalories,
	}, nil
}

func (s *TrackerServiceImpl) Weekly(ctx context.Context, userID int64) ([]model.DailyLog, error) {
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	today := s.Today()
	rows, err := s.logs.GetWeeklyLogs(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("get weekly logs: %w", err)
	}
	byDay := make(map[time.Time]model.DailyLog, len(rows))
	for _, r := range rows {
		byDay[model.DayOf(r.Day)] = r
	}
	out := make([]model.DailyLog, 0, 7)
	for d := model.WeekStart(today); !d.After(today); d = d.AddDate(0, 0, 1) {
		l, ok := byDay[d]
		if !ok {
			l = model.DailyLog{UserID: userID}
		}
		l.Day = d
		out = append(out, l)
	}
	return out, nil
}
