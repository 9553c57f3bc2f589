package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/fittrack/internal/goals"
	"github.com/and161185/fittrack/internal/model"
)

func (d *Dispatcher) start(ctx context.Context, log *zap.Logger, userID int64, _ string) model.Reply {
	if _, err := d.flows.Cancel(ctx, userID); err != nil {
		return d.fail(log, err)
	}
	return model.TextReply(msgWelcome)
}

func (d *Dispatcher) help(context.Context, *zap.Logger, int64, string) model.Reply {
	return model.TextReply(msgHelp)
}

func (d *Dispatcher) cancel(ctx context.Context, log *zap.Logger, userID int64, _ string) model.Reply {
	was, err := d.flows.Cancel(ctx, userID)
	if err != nil {
		return d.fail(log, err)
	}
	if !was {
		return model.TextReply("Nothing to cancel")
	}
	return model.TextReply("Cancelled")
}

func (d *Dispatcher) setProfile(ctx context.Context, log *zap.Logger, userID int64, _ string) model.Reply {
	r, err := d.flows.StartProfile(ctx, userID)
	if err != nil {
		return d.fail(log, err)
	}
	return r
}

// requireProfile returns a reply when the user cannot run tracking commands yet.
func (d *Dispatcher) requireProfile(ctx context.Context, log *zap.Logger, userID int64) (model.Reply, bool) {
	if _, err := d.tracker.Profile(ctx, userID); err != nil {
		return d.fail(log, err), false
	}
	return model.Reply{}, true
}

func (d *Dispatcher) logWater(ctx context.Context, log *zap.Logger, userID int64, args string) model.Reply {
	if r, ok := d.requireProfile(ctx, log, userID); !ok {
		return r
	}
	amount, err := strconv.Atoi(args)
	if err != nil || amount <= 0 {
		return model.TextReply(usageLogWater)
	}
	e, err := d.tracker.LogWater(ctx, userID, amount)
	if err != nil {
		return d.fail(log, err)
	}
	return model.TextReply(fmt.Sprintf("Recorded: %d ml, Total: %d ml, %s", e.Amount, e.Total, waterStatus(e.Remaining)))
}

func (d *Dispatcher) logFood(ctx context.Context, log *zap.Logger, userID int64, args string) model.Reply {
	if r, ok := d.requireProfile(ctx, log, userID); !ok {
		return r
	}
	if args == "" {
		return model.TextReply(usageLogFood)
	}
	info, ok := d.nutrition.Lookup(ctx, args)
	if !ok {
		info = nil
	}
	r, err := d.flows.StartFood(ctx, userID, args, info)
	if err != nil {
		return d.fail(log, err)
	}
	return r
}

func (d *Dispatcher) logWorkout(ctx context.Context, log *zap.Logger, userID int64, args string) model.Reply {
	if r, ok := d.requireProfile(ctx, log, userID); !ok {
		return r
	}
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return model.TextReply(usageLogWorkout())
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes <= 0 {
		return model.TextReply("Enter the workout duration as a positive whole number of minutes")
	}
	e, err := d.tracker.LogWorkout(ctx, userID, parts[0], minutes)
	if err != nil {
		return d.fail(log, err)
	}
	return model.TextReply(fmt.Sprintf("%s %d min: burned %s kcal\nExtra: drink %d ml of water\nWater goal: %d ml/day",
		capitalize(e.Type), e.Minutes, fmtKcal(e.Burned), e.ExtraWater, e.WaterGoal))
}

func (d *Dispatcher) checkProgress(ctx context.Context, log *zap.Logger, userID int64, _ string) model.Reply {
	p, err := d.tracker.Progress(ctx, userID)
	if err != nil {
		return d.fail(log, err)
	}
	var b strings.Builder
	b.WriteString("Progress:\nWater:\n")
	fmt.Fprintf(&b, "- Drank: %d ml of %d ml\n", p.Log.LoggedWater, p.Profile.WaterGoal)
	fmt.Fprintf(&b, "- %s\n\nCalories:\n", waterStatus(p.RemainingWater))
	fmt.Fprintf(&b, "- Consumed: %s kcal of %s kcal\n", fmtKcal(p.Log.LoggedCalories), fmtKcal(p.Profile.CalorieGoal))
	fmt.Fprintf(&b, "- Burned: %s kcal\n", fmtKcal(p.Log.BurnedCalories))
	fmt.Fprintf(&b, "- %s", caloriesStatus(p.RemainingCalories))
	return model.TextReply(b.String())
}

func (d *Dispatcher) weekly(ctx context.Context, log *zap.Logger, userID int64, _ string) model.Reply {
	days, err := d.tracker.Weekly(ctx, userID)
	if err != nil {
		return d.fail(log, err)
	}
	var b strings.Builder
	b.WriteString("Last 7 days:")
	for _, l := range days {
		fmt.Fprintf(&b, "\n%s: water %d ml, food %s kcal, burned %s kcal",
			l.Day.Format("Mon 02.01"), l.LoggedWater, fmtKcal(l.LoggedCalories), fmtKcal(l.BurnedCalories))
	}
	return model.TextReply(b.String())
}

func usageLogWorkout() string {
	return "Usage: /log_workout <type> <minutes>\nWorkout types: " + strings.Join(goals.WorkoutTypes(), ", ")
}
