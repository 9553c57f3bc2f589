package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/model"
)

// LogRepo implements LogRepository using PostgreSQL.
type LogRepo struct{ db *DB }

// NewLogRepo constructs a daily log repository.
func NewLogRepo(db *DB) *LogRepo { return &LogRepo{db: db} }

// GetDailyLog returns the row for (user, day), inserting a zeroed one first if needed.
// The no-op update makes RETURNING yield the existing row on conflict.
func (r *LogRepo) GetDailyLog(ctx context.Context, userID int64, day time.Time) (*model.DailyLog, error) {
	const q = `
INSERT INTO daily_logs (user_id, day) VALUES ($1, $2)
ON CONFLICT (user_id, day) DO UPDATE SET user_id=EXCLUDED.user_id
RETURNING user_id, day, logged_water, logged_calories, burned_calories`
	var l model.DailyLog
	err := r.db.Pool.QueryRow(ctx, q, userID, model.DayOf(day)).Scan(
		&l.UserID, &l.Day, &l.LoggedWater, &l.LoggedCalories, &l.BurnedCalories,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, errs.ErrNoProfile
		}
		return nil, err
	}
	return &l, nil
}

// SetLoggedWater stores the absolute water total for the day.
func (r *LogRepo) SetLoggedWater(ctx context.Context, userID int64, day time.Time, total int) error {
	return r.set(ctx, "logged_water", userID, day, total)
}

// SetLoggedCalories stores the absolute consumed calories for the day.
func (r *LogRepo) SetLoggedCalories(ctx context.Context, userID int64, day time.Time, total float64) error {
	return r.set(ctx, "logged_calories", userID, day, total)
}

// SetBurnedCalories stores the absolute burned calories for the day.
func (r *LogRepo) SetBurnedCalories(ctx context.Context, userID int64, day time.Time, total float64) error {
	return r.set(ctx, "burned_calories", userID, day, total)
}

// set upserts a single counter column. column is always one of the constants above.
func (r *LogRepo) set(ctx context.Context, column string, userID int64, day time.Time, value any) error {
	q := fmt.Sprintf(`
INSERT INTO daily_logs (user_id, day, %[1]s) VALUES ($1, $2, $3)
ON CONFLICT (user_id, day) DO UPDATE SET %[1]s=EXCLUDED.%[1]s`, column)
	_, err := r.db.Pool.Exec(ctx, q, userID, model.DayOf(day), value)
	if isForeignKeyViolation(err) {
		return errs.ErrNoProfile
	}
	return err
}

// GetWeeklyLogs returns stored rows of the 7 days ending on today, oldest first.
func (r *LogRepo) GetWeeklyLogs(ctx context.Context, userID int64, today time.Time) ([]model.DailyLog, error) {
	const q = `
SELECT user_id, day, logged_water, logged_calories, burned_calories
FROM daily_logs
WHERE user_id=$1 AND day BETWEEN $2 AND $3
ORDER BY day ASC`
	rows, err := r.db.Pool.Query(ctx, q, userID, model.WeekStart(today), model.DayOf(today))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DailyLog
	for rows.Next() {
		var l model.DailyLog
		if err = rows.Scan(&l.UserID, &l.Day, &l.LoggedWater, &l.LoggedCalories, &l.BurnedCalories); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
