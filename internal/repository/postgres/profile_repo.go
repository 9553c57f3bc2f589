package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/model"
	"github.com/jackc/pgx/v5"
)

// ProfileRepo implements ProfileRepository using PostgreSQL.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

// SaveProfile upserts the profile and resets the day's log in one transaction.
func (r *ProfileRepo) SaveProfile(ctx context.Context, p *model.Profile, day time.Time) error {
	const upsert = `
INSERT INTO profiles (user_id, weight, height, age, gender, activity, city, calorie_goal, water_goal, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id) DO UPDATE SET
  weight=EXCLUDED.weight, height=EXCLUDED.height, age=EXCLUDED.age, gender=EXCLUDED.gender,
  activity=EXCLUDED.activity, city=EXCLUDED.city, calorie_goal=EXCLUDED.calorie_goal,
  water_goal=EXCLUDED.water_goal, updated_at=EXCLUDED.updated_at`
	const reset = `
INSERT INTO daily_logs (user_id, day) VALUES ($1, $2)
ON CONFLICT (user_id, day) DO UPDATE SET logged_water=0, logged_calories=0, burned_calories=0`

	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsert,
			p.UserID, p.Weight, p.Height, p.Age, string(p.Gender), p.Activity, p.City,
			p.CalorieGoal, p.WaterGoal, p.UpdatedAt,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, reset, p.UserID, model.DayOf(day))
		return err
	})
}

// GetProfile selects a profile by user id.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	const q = `
SELECT user_id, weight, height, age, gender, activity, city, calorie_goal, water_goal, updated_at
FROM profiles WHERE user_id=$1`
	var (
		p      model.Profile
		gender string
	)
	err := r.db.Pool.QueryRow(ctx, q, userID).Scan(
		&p.UserID, &p.Weight, &p.Height, &p.Age, &gender, &p.Activity, &p.City,
		&p.CalorieGoal, &p.WaterGoal, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	p.Gender = model.Gender(gender)
	return &p, nil
}

// SetWaterGoal overwrites the water goal of an existing profile.
func (r *ProfileRepo) SetWaterGoal(ctx context.Context, userID int64, goal int) error {
	const q = `UPDATE profiles SET water_goal=$2, updated_at=now() WHERE user_id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, userID, goal)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
