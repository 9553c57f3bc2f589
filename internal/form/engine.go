// Package form drives the per-user conversational flows: profile collection
// and food amount collection. Each answer is validated before the flow
// advances; a rejected answer leaves the stored state untouched.
package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/lookup"
	"github.com/and161185/fittrack/internal/model"
	"github.com/and161185/fittrack/internal/session"
)

// Recorder persists the results of completed flows.
type Recorder interface {
	SaveProfile(ctx context.Context, p *model.Profile) error
	AddCalories(ctx context.Context, userID int64, kcal float64) (model.CaloriesEntry, error)
}

// Engine runs flows over a session store.
type Engine struct {
	sessions session.Store
	weather  lookup.Weather
	rec      Recorder
	now      func() time.Time
	log      *zap.Logger
}

// NewEngine constructs an Engine.
func NewEngine(sessions session.Store, weather lookup.Weather, rec Recorder, log *zap.Logger) *Engine {
	return &Engine{sessions: sessions, weather: weather, rec: rec, now: time.Now, log: log}
}

// load returns the user's session or nil when none exists.
func (e *Engine) load(ctx context.Context, userID int64) (*model.Session, error) {
	s, err := e.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

func (e *Engine) save(ctx context.Context, s *model.Session) error {
	s.UpdatedAt = e.now()
	if err := e.sessions.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Active reports whether the user is inside any flow.
func (e *Engine) Active(ctx context.Context, userID int64) (bool, error) {
	s, err := e.load(ctx, userID)
	if err != nil {
		return false, err
	}
	return !s.Empty(), nil
}

// Cancel drops any flow of the user and reports whether one was active.
func (e *Engine) Cancel(ctx context.Context, userID int64) (bool, error) {
	active, err := e.Active(ctx, userID)
	if err != nil {
		return false, err
	}
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return active, nil
}

// StartProfile discards any previous state of the user and asks for the weight.
func (e *Engine) StartProfile(ctx context.Context, userID int64) (model.Reply, error) {
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return model.Reply{}, fmt.Errorf("delete session: %w", err)
	}
	s := &model.Session{
		UserID:  userID,
		Profile: &model.ProfileForm{Step: model.StepAwaitingWeight},
	}
	if err := e.save(ctx, s); err != nil {
		return model.Reply{}, err
	}
	e.log.Debug("profile flow started", zap.Int64("user_id", userID))
	return model.TextReply(promptWeight), nil
}

// StartFood begins food logging for product. info is nil when nutrition data
// is unknown. Fails with errs.ErrFlowActive while a profile flow is in progress;
// an unfinished food flow is replaced.
func (e *Engine) StartFood(ctx context.Context, userID int64, product string, info *model.FoodInfo) (model.Reply, error) {
	s, err := e.load(ctx, userID)
	if err != nil {
		return model.Reply{}, err
	}
	if s == nil {
		s = &model.Session{UserID: userID}
	}
	if s.Profile != nil {
		return model.Reply{}, errs.ErrFlowActive
	}

	f := &model.FoodForm{Product: product}
	var reply model.Reply
	if info != nil {
		kcal := info.CaloriesPer100g
		f.CaloriesPer100g = &kcal
		f.Step = model.StepAwaitingAmount
		reply = model.TextReply(fmt.Sprintf(
			"%s: %s kcal per 100 g. How much did you eat, in g (ml)?", info.Name, FormatKcal(kcal)))
	} else {
		f.Step = model.StepAwaitingCaloriesIfUnknown
		reply = model.TextReply(promptUnknownFood)
	}
	s.Food = f
	if err := e.save(ctx, s); err != nil {
		return model.Reply{}, err
	}
	return reply, nil
}

// Handle feeds one answer into the active flow. It returns an error wrapping
// errs.ErrNotFound when the user has no flow in progress; other errors are
// infrastructure failures, after which the stored state is unchanged.
func (e *Engine) Handle(ctx context.Context, in model.Input) (model.Reply, error) {
	s, err := e.load(ctx, in.UserID)
	if err != nil {
		return model.Reply{}, err
	}
	switch {
	case s == nil || s.Empty():
		return model.Reply{}, fmt.Errorf("no active flow: %w", errs.ErrNotFound)
	case s.Profile != nil:
		return e.handleProfile(ctx, s, in)
	default:
		return e.handleFood(ctx, s, in)
	}
}

// finish clears a completed slot, deleting the session once both are empty.
func (e *Engine) finish(ctx context.Context, s *model.Session) error {
	if s.Empty() {
		if err := e.sessions.Delete(ctx, s.UserID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	}
	return e.save(ctx, s)
}
