package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lawyer-bot/internal/flow"
)

const reportCmd = "report"

// Handler runs one inbound event through the dialog engine.
type Handler interface {
	Handle(ctx context.Context, ev flow.Event) flow.Reply
}

// Reporter builds the admin digest for the day containing t.
type Reporter interface {
	Build(ctx context.Context, t time.Time) (string, error)
}

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	engine      Handler
	reporter    Reporter
	adminUserID int64
	now         func() time.Time
	log         *zap.Logger
	queue       *dispatcher
}

func New(botToken string, adminUserID int64, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram api: %w", err)
	}
	b := newBot(botAPISender{api: api}, adminUserID, log)
	b.api = api
	b.log.Info("authorized on telegram", zap.String("username", api.Self.UserName))
	return b, nil
}

func newBot(s sender, adminUserID int64, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		s:           s,
		adminUserID: adminUserID,
		now:         time.Now,
		log:         log,
		queue:       newDispatcher(log),
	}
}

// SetHandler wires the dialog engine. It must be called before Start.
func (b *Bot) SetHandler(h Handler) { b.engine = h }

// SetReporter enables the admin /report command.
func (b *Bot) SetReporter(r Reporter) { b.reporter = r }

// Start long-polls for updates until ctx is cancelled, then waits for
// in-flight updates to finish.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("polling for updates")
	defer b.queue.wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.route(ctx, update)
		}
	}
}

// route queues an update on its sender's queue so that one user's updates
// are handled in order while different users proceed concurrently.
func (b *Bot) route(ctx context.Context, update tgbotapi.Update) {
	userID, ok := updateUserID(update)
	if !ok {
		return
	}
	b.queue.dispatch(userID, func() { b.handleUpdate(ctx, update) })
}

func updateUserID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID, true
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	}
	return 0, false
}
