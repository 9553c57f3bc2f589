package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/model"
	"github.com/and161185/fittrack/internal/repository"
	"github.com/and161185/fittrack/internal/repository/memory"
)

// fakeLogs wraps the memory store and injects failures.
type fakeLogs struct {
	*memory.Store
	setWaterErr  error
	setBurnedErr error
	weeklyErr    error
}

var _ repository.LogRepository = (*fakeLogs)(nil)

func (f *fakeLogs) SetLoggedWater(ctx context.Context, userID int64, day time.Time, total int) error {
	if f.setWaterErr != nil {
		return f.setWaterErr
	}
	return f.Store.SetLoggedWater(ctx, userID, day, total)
}

func (f *fakeLogs) SetBurnedCalories(ctx context.Context, userID int64, day time.Time, total float64) error {
	if f.setBurnedErr != nil {
		return f.setBurnedErr
	}
	return f.Store.SetBurnedCalories(ctx, userID, day, total)
}

func (f *fakeLogs) GetWeeklyLogs(ctx context.Context, userID int64, today time.Time) ([]model.DailyLog, error) {
	if f.weeklyErr != nil {
		return nil, f.weeklyErr
	}
	return f.Store.GetWeeklyLogs(ctx, userID, today)
}

type brokenProfiles struct{ repository.ProfileRepository }

func (brokenProfiles) GetProfile(context.Context, int64) (*model.Profile, error) {
	return nil, errors.New("db down")
}

var fixedNow = time.Date(2026, 4, 10, 21, 30, 0, 0, time.UTC)

func newTracker(t *testing.T) (*TrackerServiceImpl, *memory.Store, *fakeLogs) {
	t.Helper()
	st := memory.New()
	logs := &fakeLogs{Store: st}
	return NewTrackerService(st, logs, WithClock(func() time.Time { return fixedNow })), st, logs
}

func validProfile(userID int64) *model.Profile {
	return &model.Profile{
		UserID: userID, Weight: 70, Height: 175, Age: 30, Gender: model.GenderMale,
		Activity: 45, City: "Moscow", CalorieGoal: 2000, WaterGoal: 3350,
	}
}

func TestTracker_NoProfile(t *testing.T) {
	svc, _, _ := newTracker(t)
	ctx := context.Background()

	_, err := svc.LogWater(ctx, 1, 100)
	require.ErrorIs(t, err, errs.ErrNoProfile)
	_, err = svc.AddCalories(ctx, 1, 100)
	require.ErrorIs(t, err, errs.ErrNoProfile)
	_, err = svc.LogWorkout(ctx, 1, "run", 30)
	require.ErrorIs(t, err, errs.ErrNoProfile)
	_, err = svc.Progress(ctx, 1)
	require.ErrorIs(t, err, errs.ErrNoProfile)
	_, err = svc.Weekly(ctx, 1)
	require.ErrorIs(t, err, errs.ErrNoProfile)
}

func TestTracker_ProfileStoreFailureIsNotNoProfile(t *testing.T) {
	st := memory.New()
	svc := NewTrackerService(brokenProfiles{st}, st)
	_, err := svc.Progress(context.Background(), 1)
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNoProfile)
}

func TestTracker_SaveProfile_Validation(t *testing.T) {
	svc, _, _ := newTracker(t)
	ctx := context.Background()

	for _, mut := range []func(*model.Profile){
		func(p *model.Profile) { p.Weight = 0 },
		func(p *model.Profile) { p.Age = 121 },
		func(p *model.Profile) { p.Activity = 1441 },
		func(p *model.Profile) { p.Gender = "other" },
		func(p *model.Profile) { p.City = "" },
		func(p *model.Profile) { p.CalorieGoal = 0 },
	} {
		p := validProfile(1)
		mut(p)
		require.ErrorIs(t, svc.SaveProfile(ctx, p), errs.ErrInvalidInput)
	}

	_, err := svc.Profile(ctx, 1)
	require.ErrorIs(t, err, errs.ErrNoProfile)

	p := validProfile(1)
	require.NoError(t, svc.SaveProfile(ctx, p))
	got, err := svc.Profile(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, fixedNow, got.UpdatedAt)
}

func TestTracker_SaveProfileResetsTodaysLog(t *testing.T) {
	svc, _, _ := newTracker(t)
	ctx := context.Background()
	require.NoError(t, svc.SaveProfile(ctx, validProfile(1)))
	_, err := svc.LogWater(ctx, 1, 900)
	require.NoError(t, err)

	require.NoError(t, svc.SaveProfile(ctx, validProfile(1)))
	pr, err := svc.Progress(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, pr.Log.LoggedWater)
}

func TestTracker_LogWater_Accumulates(t *testing.T) {
	svc, _, _ := newTracker(t)
	ctx := context.Background()
	require.NoError(t, svc.SaveProfile(ctx, validProfile(1)))

	_, err := svc.LogWater(ctx, 1, 500)
	require.NoError(t, err)
	e, err := svc.LogWater(ctx, 1, 300)
	require.NoError(t, err)
	require.Equal(t, 800, e.Total)
	require.Equal(t, 3350-800, e.Remaining)

	_, err = svc.LogWater(ctx, 1, 0)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = svc.LogWater(ctx, 1, -5)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestTracker_LogWater_StoreFailure(t *testing.T) {
	svc, _, logs := newTracker(t)
	ctx := context.Background()
	require.NoError(t, svc.SaveProfile(ctx, validProfile(1)))
	logs.setWaterErr = errors.New("write failed")

	_, err := svc.LogWater(ctx, 1, 100)
	require.Error(t, err)
	pr, err := svc.Progress(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, pr.Log.LoggedWater)
}

func TestTracker_AddCalories(t *testing.T) {
	svc, _, _ := newTracker(t)
	ctx := context.Background()
	require.NoError(t, svc.SaveProfile(ctx, validProfile(1)))

	_, err := svc.AddCalories(ctx, 1, 89)
	require.NoError(t, err)
	e, err := svc.AddCalories(ctx, 1, 10.5)
	require.NoError(t, err)
	require.Equal(t, 99.5, e.Total)

	_, err = svc.AddCalories(ctx, 1, -1)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestTracker_LogWorkout_RaisesWaterGoalPermanently(t *testing.T) {
	svc, st, _ := newTracker(t)
	ctx := context.Background()
	require.NoError(t, svc.SaveProfile(ctx, validProfile(1)))

	e, err := svc.LogWorkout(ctx, 1, "БЕГ", 60)
	require.NoError(t, err)
	require.Equal(t, 560.0, e.Burned)
	require.Equal(t, 400, e.ExtraWater)
	require.Equal(t, 3750, e.WaterGoal)

	e, err = svc.LogWorkout(ctx, 1, "unknown", 30)
	require.NoError(t, err)
	require.Equal(t, 175.0, e.Burned)
	require.Equal(t, 735.0, e.TotalBurned)

	p, err := st.GetProfile(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3950, p.WaterGoal)

	_, err = svc.LogWorkout(ctx, 1, "run", 0)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestTracker_LogWorkout_BurnFailureKeepsGoal(t *testing.T) {
	svc, st, logs := newTracker(t)
	ctx := context.Background()
	require.NoError(t, svc.SaveProfile(ctx, validProfile(1)))
	logs.setBurnedErr = errors.New("write failed")

	_, err := svc.LogWorkout(ctx, 1, "run", 30)
	require.Error(t, err)
	p, _ := st.GetProfile(ctx, 1)
	require.Equal(t, 3350, p.WaterGoal)
}

func TestTracker_Progress_BurnedAddsBack(t *testing.T) {
	svc, st, _ := newTracker(t)
	ctx := context.Background()
	require.NoError(t, svc.SaveProfile(ctx, validProfile(1)))
	day := svc.Today()
	require.NoError(t, st.SetLoggedCalories(ctx, 1, day, 1500))
	require.NoError(t, st.SetBurnedCalories(ctx, 1, day, 200))
	require.NoError(t, st.SetLoggedWater(ctx, 1, day, 3500))

	pr, err := svc.Progress(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 700.0, pr.RemainingCalories)
	require.Equal(t, -150, pr.RemainingWater)
}

func TestTracker_TodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	svc := NewTrackerService(memory.New(), memory.New(),
		WithClock(func() time.Time { return fixedNow }), WithLocation(loc))
	// 21:30 UTC is already the next day at UTC+5
	require.Equal(t, time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC), svc.Today())
}

func TestTracker_Weekly_GapFilled(t *testing.T) {
	svc, st, logs := newTracker(t)
	ctx := context.Background()
	require.NoError(t, svc.SaveProfile(ctx, validProfile(1)))
	today := svc.Today()
	require.NoError(t, st.SetLoggedWater(ctx, 1, today.AddDate(0, 0, -4), 1200))
	require.NoError(t, st.SetLoggedWater(ctx, 1, today.AddDate(0, 0, -10), 999))

	week, err := svc.Weekly(ctx, 1)
	require.NoError(t, err)
	require.Len(t, week, 7)
	require.Equal(t, today.AddDate(0, 0, -6), week[0].Day)
	require.Equal(t, today, week[6].Day)
	require.Equal(t, 1200, week[2].LoggedWater)
	for i, d := range week {
		require.Equal(t, int64(1), d.UserID)
		if i != 2 {
			require.Zero(t, d.LoggedWater, "day %d", i)
		}
	}

	logs.weeklyErr = errors.New("q-fail")
	_, err = svc.Weekly(ctx, 1)
	require.Error(t, err)
}
