// Package bot routes user input to commands or to the active conversational
// flow and renders the replies. It is transport independent.
package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/lookup"
	"github.com/and161185/fittrack/internal/metrics"
	"github.com/and161185/fittrack/internal/model"
	"github.com/and161185/fittrack/internal/service"
)

// Flows is the conversational form engine as seen by the dispatcher.
type Flows interface {
	StartProfile(ctx context.Context, userID int64) (model.Reply, error)
	StartFood(ctx context.Context, userID int64, product string, info *model.FoodInfo) (model.Reply, error)
	Handle(ctx context.Context, in model.Input) (model.Reply, error)
	Cancel(ctx context.Context, userID int64) (bool, error)
	Active(ctx context.Context, userID int64) (bool, error)
}

// Command names.
const (
	CmdStart         = "start"
	CmdHelp          = "help"
	CmdSetProfile    = "set_profile"
	CmdLogWater      = "log_water"
	CmdLogFood       = "log_food"
	CmdLogWorkout    = "log_workout"
	CmdCheckProgress = "check_progress"
	CmdWeekly        = "weekly"
	CmdCancel        = "cancel"

	flowLabel = "flow"
)

type handlerFunc func(ctx context.Context, log *zap.Logger, userID int64, args string) model.Reply

// Dispatcher is safe for concurrent use across users. Inputs of one user must
// be delivered sequentially.
type Dispatcher struct {
	tracker   service.Tracker
	flows     Flows
	nutrition lookup.Nutrition
	metrics   *metrics.Metrics
	log       *zap.Logger

	handlers map[string]handlerFunc
	// commands allowed while a flow is in progress
	flowSafe map[string]bool
}

// NewDispatcher wires the command table.
func NewDispatcher(tracker service.Tracker, flows Flows, nutrition lookup.Nutrition, m *metrics.Metrics, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		tracker:   tracker,
		flows:     flows,
		nutrition: nutrition,
		metrics:   m,
		log:       log,
	}
	d.handlers = map[string]handlerFunc{
		CmdStart:         d.start,
		CmdHelp:          d.help,
		CmdSetProfile:    d.setProfile,
		CmdCancel:        d.cancel,
		CmdLogWater:      d.logWater,
		CmdLogFood:       d.logFood,
		CmdLogWorkout:    d.logWorkout,
		CmdCheckProgress: d.checkProgress,
		CmdWeekly:        d.weekly,
	}
	d.flowSafe = map[string]bool{CmdStart: true, CmdHelp: true, CmdSetProfile: true, CmdCancel: true}
	return d
}

// ParseCommand splits "/name@bot args" into a lowercase name and the
// trimmed argument string. ok is false for text that is not a command.
func ParseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") || len(text) == 1 {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	if i := strings.IndexByte(head, '@'); i >= 0 {
		head = head[:i]
	}
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// Handle processes one input and returns the reply to send. It never fails:
// errors are logged and rendered as a generic message.
func (d *Dispatcher) Handle(ctx context.Context, in model.Input) model.Reply {
	trace := uuid.Must(uuid.NewV4()).String()
	log := d.log.With(zap.Int64("user_id", in.UserID), zap.String("trace", trace))

	name, args, isCmd := ParseCommand(in.Text)
	if in.Choice || !isCmd {
		started := time.Now()
		defer d.metrics.ObserveCommand(flowLabel, started)
		return d.handleFlow(ctx, log, in)
	}

	h, known := d.handlers[name]
	if !known {
		d.metrics.IncError("unknown_command")
		return model.TextReply(msgUnknownCommand)
	}
	started := time.Now()
	defer d.metrics.ObserveCommand(name, started)
	log = log.With(zap.String("command", name))

	if !d.flowSafe[name] {
		active, err := d.flows.Active(ctx, in.UserID)
		if err != nil {
			return d.fail(log, err)
		}
		if active {
			return model.TextReply(msgFinishFlow)
		}
	}
	log.Debug("command")
	return h(ctx, log, in.UserID, args)
}

func (d *Dispatcher) handleFlow(ctx context.Context, log *zap.Logger, in model.Input) model.Reply {
	r, err := d.flows.Handle(ctx, in)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.TextReply(msgNoFlow)
		}
		return d.fail(log, err)
	}
	return r
}

// fail maps an error to a reply. Expected domain errors get a specific
// message; anything else is a persistence or infrastructure failure.
func (d *Dispatcher) fail(log *zap.Logger, err error) model.Reply {
	switch {
	case errors.Is(err, errs.ErrNoProfile):
		return model.TextReply(msgNoProfile)
	case errors.Is(err, errs.ErrFlowActive):
		return model.TextReply(msgFinishFlow)
	case errors.Is(err, errs.ErrInvalidInput):
		d.metrics.IncError("invalid_input")
		return model.TextReply(msgInvalidInput)
	}
	d.metrics.IncError("internal")
	log.Error("request failed", zap.Error(err))
	return model.TextReply(msgInternal)
}
