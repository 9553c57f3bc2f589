// Package telegram delivers Telegram updates to the dispatcher and sends the
// replies back. Updates of one user are processed in arrival order; different
// users are served concurrently.
package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/and161185/fittrack/internal/metrics"
	"github.com/and161185/fittrack/internal/model"
)

const (
	transportName = "telegram"
	queueSize     = 64
	drainTimeout  = 5 * time.Second
)

// Handler turns one input into one reply.
type Handler interface {
	Handle(ctx context.Context, in model.Input) model.Reply
}

// API is the subset of *tgbotapi.BotAPI used for replies.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api     API
	handler Handler
	workers int
	metrics *metrics.Metrics
	log     *zap.Logger
}

// New constructs a Bot with the given number of workers (at least one).
func New(api API, h Handler, workers int, m *metrics.Metrics, log *zap.Logger) *Bot {
	if workers < 1 {
		workers = 1
	}
	return &Bot{api: api, handler: h, workers: workers, metrics: m, log: log}
}

// NewAPI connects to the Bot API with a token.
func NewAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	return api, nil
}

// Run consumes updates until ctx is done or the channel is closed, then waits
// for queued updates to finish. Queued updates are handled with a context that
// outlives ctx by at most drainTimeout.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWork()

	shards := make([]chan tgbotapi.Update, b.workers)
	var wg sync.WaitGroup
	for i := range shards {
		shards[i] = make(chan tgbotapi.Update, queueSize)
		wg.Add(1)
		go func(in <-chan tgbotapi.Update) {
			defer wg.Done()
			for upd := range in {
				b.process(workCtx, upd)
			}
		}(shards[i])
	}
	defer func() {
		for _, s := range shards {
			close(s)
		}
		drained := make(chan struct{})
		go func() {
			wg.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-time.After(drainTimeout):
			b.log.Warn("drain timeout, cancelling in-flight updates")
			cancelWork()
			<-drained
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			in, _, ok := toInput(upd)
			if !ok {
				continue
			}
			shard := shards[uint64(in.UserID)%uint64(len(shards))]
			select {
			case shard <- upd:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (b *Bot) process(ctx context.Context, upd tgbotapi.Update) {
	in, chatID, ok := toInput(upd)
	if !ok {
		return
	}
	b.metrics.IncUpdate(transportName)

	if cq := upd.CallbackQuery; cq != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			b.log.Warn("answer callback", zap.Int64("user_id", in.UserID), zap.Error(err))
		}
	}

	reply := b.handler.Handle(ctx, in)
	if reply.Text == "" {
		return
	}
	if _, err := b.api.Send(buildMessage(chatID, reply)); err != nil {
		b.metrics.IncError("send")
		b.log.Error("send reply", zap.Int64("user_id", in.UserID), zap.Error(err))
	}
}

// toInput extracts the user input and target chat from an update.
func toInput(upd tgbotapi.Update) (model.Input, int64, bool) {
	switch {
	case upd.Message != nil:
		m := upd.Message
		if m.Chat == nil {
			return model.Input{}, 0, false
		}
		userID := m.Chat.ID
		if m.From != nil {
			userID = m.From.ID
		}
		return model.Input{UserID: userID, Text: m.Text}, m.Chat.ID, true

	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		if cq.From == nil {
			return model.Input{}, 0, false
		}
		chatID := cq.From.ID
		if cq.Message != nil && cq.Message.Chat != nil {
			chatID = cq.Message.Chat.ID
		}
		return model.Input{UserID: cq.From.ID, Text: cq.Data, Choice: true}, chatID, true
	}
	return model.Input{}, 0, false
}

func buildMessage(chatID int64, r model.Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, r.Text)
	if len(r.Choices) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(r.Choices))
		for _, c := range r.Choices {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data)))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	return msg
}
