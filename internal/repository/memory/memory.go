// Package memory provides in-process implementations of the repository interfaces.
// Data is lost on restart; used for single-instance runs without a database and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/model"
)

type logKey struct {
	userID int64
	day    time.Time
}

// Store keeps profiles and daily logs in maps guarded by one mutex.
// It implements both ProfileRepository and LogRepository.
type Store struct {
	mu       sync.RWMutex
	profiles map[int64]model.Profile
	logs     map[logKey]model.DailyLog
}

// New returns an empty store.
func New() *Store {
	return &Store{
		profiles: make(map[int64]model.Profile),
		logs:     make(map[logKey]model.DailyLog),
	}
}

// SaveProfile replaces the profile and zeroes the day's log.
func (s *Store) SaveProfile(_ context.Context, p *model.Profile, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = *p
	d := model.DayOf(day)
	s.logs[logKey{p.UserID, d}] = model.DailyLog{UserID: p.UserID, Day: d}
	return nil
}

// GetProfile returns a copy of the stored profile.
func (s *Store) GetProfile(_ context.Context, userID int64) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &p, nil
}

// SetWaterGoal overwrites the water goal.
func (s *Store) SetWaterGoal(_ context.Context, userID int64, goal int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return errs.ErrNotFound
	}
	p.WaterGoal = goal
	p.UpdatedAt = time.Now()
	s.profiles[userID] = p
	return nil
}

// GetDailyLog returns the day's log, creating a zeroed one if missing.
func (s *Store) GetDailyLog(_ context.Context, userID int64, day time.Time) (*model.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.rowLocked(userID, day)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// SetLoggedWater sets the absolute water total.
func (s *Store) SetLoggedWater(_ context.Context, userID int64, day time.Time, total int) error {
	return s.update(userID, day, func(l *model.DailyLog) { l.LoggedWater = total })
}

// SetLoggedCalories sets the absolute consumed calories.
func (s *Store) SetLoggedCalories(_ context.Context, userID int64, day time.Time, total float64) error {
	return s.update(userID, day, func(l *model.DailyLog) { l.LoggedCalories = total })
}

// SetBurnedCalories sets the absolute burned calories.
func (s *Store) SetBurnedCalories(_ context.Context, userID int64, day time.Time, total float64) error {
	return s.update(userID, day, func(l *model.DailyLog) { l.BurnedCalories = total })
}

// GetWeeklyLogs returns stored rows in [today-6, today], oldest first.
func (s *Store) GetWeeklyLogs(_ context.Context, userID int64, today time.Time) ([]model.DailyLog, error) {
	from, to := model.WeekStart(today), model.DayOf(today)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.DailyLog
	for k, l := range s.logs {
		if k.userID != userID || k.day.Before(from) || k.day.After(to) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (s *Store) update(userID int64, day time.Time, fn func(*model.DailyLog)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.rowLocked(userID, day)
	if err != nil {
		return err
	}
	fn(&l)
	s.logs[logKey{userID, l.Day}] = l
	return nil
}

// rowLocked mirrors the foreign key of the SQL schema: logs need a profile.
func (s *Store) rowLocked(userID int64, day time.Time) (model.DailyLog, error) {
	if _, ok := s.profiles[userID]; !ok {
		return model.DailyLog{}, errs.ErrNoProfile
	}
	d := model.DayOf(day)
	k := logKey{userID, d}
	l, ok := s.logs[k]
	if !ok {
		l = model.DailyLog{UserID: userID, Day: d}
		s.logs[k] = l
	}
	return l, nil
}
