package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lawyer-bot/internal/flow"
	"lawyer-bot/internal/submission"
)

const (
	maxMessageLen       = 4096
	keyboardRemovedText = "Принято 👌"
	shareContactLabel   = "📱 Отправить номер"
	shareLocationLabel  = "📍 Отправить геолокацию"
)

// incoming is an update converted for the engine plus where to answer.
type incoming struct {
	event     flow.Event
	chatID    int64
	messageID int
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if cb := update.CallbackQuery; cb != nil {
		b.answerCallback(cb.ID)
	}
	in, ok := toIncoming(update)
	if !ok {
		return
	}
	ev := in.event
	log := b.log.With(zap.Int64("user_id", ev.User.ID), zap.Int64("chat_id", in.chatID))

	if ev.Kind == flow.EventCommand && ev.Command == reportCmd && b.isAdmin(ev.User.ID) {
		b.handleReportCommand(ctx, in.chatID)
		return
	}
	if b.engine == nil {
		log.Error("no handler configured, dropping update")
		return
	}
	r := b.engine.Handle(ctx, ev)
	if r.Completion != nil {
		log.Info("request submitted", zap.String("flow", r.Completion.Flow), zap.String("ref", r.Completion.Ref()))
	}
	b.render(in.chatID, in.messageID, r)
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserID != 0 && userID == b.adminUserID
}

// handleReportCommand sends today's digest to the admin on demand.
func (b *Bot) handleReportCommand(ctx context.Context, chatID int64) {
	if b.reporter == nil {
		b.sendMessage(chatID, "❌ Отчёты не настроены.")
		return
	}
	text, err := b.reporter.Build(ctx, b.now())
	if err != nil {
		b.log.Error("report generation failed", zap.Error(err))
		b.sendMessage(chatID, fmt.Sprintf("❌ Ошибка генерации отчёта: %v", err))
		return
	}
	b.sendMessage(chatID, text)
}

func toIncoming(update tgbotapi.Update) (incoming, bool) {
	if cb := update.CallbackQuery; cb != nil {
		if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
			return incoming{}, false
		}
		return incoming{
			event: flow.Event{
				Kind:   flow.EventCallback,
				User:   toUser(cb.From),
				Action: flow.DecodeAction(cb.Data),
			},
			chatID:    cb.Message.Chat.ID,
			messageID: cb.Message.MessageID,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return incoming{}, false
	}
	in := incoming{event: flow.Event{User: toUser(msg.From)}, chatID: msg.Chat.ID}
	switch {
	case msg.IsCommand():
		in.event.Kind = flow.EventCommand
		in.event.Command = msg.Command()
	case msg.Contact != nil:
		in.event.Kind = flow.EventContact
		in.event.Text = normalizePhone(msg.Contact.PhoneNumber)
	case msg.Location != nil:
		in.event.Kind = flow.EventLocation
		in.event.Text = fmt.Sprintf("%.6f, %.6f", msg.Location.Latitude, msg.Location.Longitude)
	default:
		// navigation buttons of a reply keyboard arrive as plain text
		if a, ok := flow.NavAction(strings.TrimSpace(msg.Text)); ok {
			in.event.Kind = flow.EventCallback
			in.event.Action = a
			break
		}
		in.event.Kind = flow.EventText
		in.event.Text = msg.Text
	}
	return in, true
}

func toUser(u *tgbotapi.User) submission.User {
	return submission.User{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Username: u.UserName}
}

// normalizePhone adds the leading plus Telegram omits for some clients.
func normalizePhone(p string) string {
	p = strings.TrimSpace(p)
	if p != "" && !strings.HasPrefix(p, "+") {
		return "+" + p
	}
	return p
}

// render sends a reply. Callback replies edit the originating message when
// possible; share requests use a reply keyboard since inline keyboards
// cannot ask for a contact or location.
func (b *Bot) render(chatID int64, messageID int, r flow.Reply) {
	if r.Empty() {
		return
	}
	if r.Edit && messageID != 0 && r.Request == flow.KindNone && !r.ClearKeyboard {
		if b.edit(chatID, messageID, r) {
			return
		}
	}

	msg := tgbotapi.NewMessage(chatID, r.Text)
	switch {
	case r.Request != flow.KindNone:
		msg.ReplyMarkup = requestKeyboard(r.Request, r.Buttons)
	case r.ClearKeyboard && len(r.Buttons) > 0:
		// one message cannot both remove the reply keyboard and carry inline buttons
		rm := tgbotapi.NewMessage(chatID, keyboardRemovedText)
		rm.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
		b.send(rm)
		msg.ReplyMarkup = inlineKeyboard(r.Buttons)
	case r.ClearKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	case len(r.Buttons) > 0:
		msg.ReplyMarkup = inlineKeyboard(r.Buttons)
	}
	b.send(msg)
}

func (b *Bot) edit(chatID int64, messageID int, r flow.Reply) bool {
	var cfg tgbotapi.EditMessageTextConfig
	if len(r.Buttons) > 0 {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, r.Text, inlineKeyboard(r.Buttons))
	} else {
		cfg = tgbotapi.NewEditMessageText(chatID, messageID, r.Text)
	}
	_, err := b.s.Send(cfg)
	if err == nil || strings.Contains(err.Error(), "message is not modified") {
		return true
	}
	b.log.Warn("edit failed, sending a new message", zap.Int64("chat_id", chatID), zap.Error(err))
	return false
}

func inlineKeyboard(rows [][]flow.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, flow.EncodeAction(btn.Action)))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

func requestKeyboard(kind flow.InputKind, rows [][]flow.Button) tgbotapi.ReplyKeyboardMarkup {
	share := tgbotapi.NewKeyboardButtonContact(shareContactLabel)
	if kind == flow.KindLocation {
		share = tgbotapi.NewKeyboardButtonLocation(shareLocationLabel)
	}
	keyboard := [][]tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButtonRow(share)}
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(btn.Label))
		}
		keyboard = append(keyboard, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	kb := tgbotapi.NewReplyKeyboard(keyboard...)
	kb.ResizeKeyboard = true
	return kb
}

func (b *Bot) answerCallback(id string) {
	if _, err := b.s.Request(tgbotapi.NewCallback(id, "")); err != nil {
		b.log.Warn("failed to answer callback", zap.Error(err))
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.s.Send(c); err != nil {
		b.log.Error("failed to send message", zap.Error(err))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// Notify delivers text to a chat, splitting it at Telegram's length limit.
// It returns when ctx expires even if the API call is still in flight.
func (b *Bot) Notify(ctx context.Context, recipientID int64, text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		done := make(chan error, 1)
		msg := tgbotapi.NewMessage(recipientID, part)
		go func() {
			_, err := b.s.Send(msg)
			done <- err
		}()
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("send to %d: %w", recipientID, err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit runes, preferring
// line breaks in the second half of a chunk.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(parts, string(runes))
}
