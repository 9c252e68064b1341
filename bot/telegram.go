package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// menuRowWidth is the number of buttons per keyboard row.
const menuRowWidth = 2

// webhookSettleDelay gives Telegram time to drop the previous webhook.
const webhookSettleDelay = 500 * time.Millisecond

// Sender is the part of *tgbotapi.BotAPI used for delivery.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramMessenger delivers replies through the Bot API.
type TelegramMessenger struct {
	api Sender
}

func NewTelegramMessenger(api Sender) *TelegramMessenger {
	return &TelegramMessenger{api: api}
}

func (m *TelegramMessenger) SendText(chatID int64, text string, markdown bool) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	return m.send(msg)
}

func (m *TelegramMessenger) SendMenu(chatID int64, prompt string, buttons []string) error {
	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = MenuKeyboard(buttons)
	return m.send(msg)
}

func (m *TelegramMessenger) SendPhoto(chatID int64, image []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "chart.png", Bytes: image})
	photo.Caption = caption

	if _, err := m.api.Send(photo); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

func (m *TelegramMessenger) send(msg tgbotapi.MessageConfig) error {
	_, err := m.api.Send(msg)
	if err == nil {
		return nil
	}
	if msg.ParseMode == "" {
		return fmt.Errorf("send message: %w", err)
	}

	// Retry without markdown if parsing fails
	logrus.WithError(err).Warn("Markdown parsing failed, retrying as plain text")
	msg.ParseMode = ""
	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// MenuKeyboard lays the buttons out two per row.
func MenuKeyboard(buttons []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for start := 0; start < len(buttons); start += menuRowWidth {
		end := min(start+menuRowWidth, len(buttons))
		row := make([]tgbotapi.KeyboardButton, 0, menuRowWidth)
		for _, label := range buttons[start:end] {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// LogMessenger stands in for Telegram when no bot token is configured.
type LogMessenger struct {
	log *logrus.Entry
}

func NewLogMessenger() *LogMessenger {
	return &LogMessenger{log: logrus.WithField("component", "log-messenger")}
}

func (m *LogMessenger) SendText(chatID int64, text string, markdown bool) error {
	m.log.WithFields(logrus.Fields{"chat_id": chatID, "markdown": markdown}).Info(text)
	return nil
}

func (m *LogMessenger) SendMenu(chatID int64, prompt string, buttons []string) error {
	m.log.WithFields(logrus.Fields{"chat_id": chatID, "buttons": buttons}).Info(prompt)
	return nil
}

func (m *LogMessenger) SendPhoto(chatID int64, image []byte, caption string) error {
	m.log.WithFields(logrus.Fields{"chat_id": chatID, "bytes": len(image)}).Info(caption)
	return nil
}

// EventFromUpdate extracts the routable part of an update. Updates without a
// message (edits, callbacks, channel posts) are not routable.
func EventFromUpdate(update tgbotapi.Update) (Event, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return Event{}, false
	}

	ev := Event{
		ChatID:    msg.Chat.ID,
		Text:      msg.Text,
		NewMember: len(msg.NewChatMembers) > 0,
	}
	if msg.From != nil {
		ev.Username = msg.From.UserName
	}
	return ev, true
}

// RegisterWebhook replaces any existing webhook with url.
func RegisterWebhook(api *tgbotapi.BotAPI, url string) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("remove webhook: %w", err)
	}
	time.Sleep(webhookSettleDelay)

	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	logrus.WithField("url", url).Info("Webhook registered")
	return nil
}

// Poll receives updates by long polling and handles them one at a time
// until ctx is cancelled.
func Poll(ctx context.Context, api *tgbotapi.BotAPI, router *Router) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("remove webhook: %w", err)
	}

	logrus.Infof("Bot authorized: %s, polling for updates", api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			ev, routable := EventFromUpdate(update)
			if !routable {
				continue
			}
			router.Handle(ctx, ev)
		}
	}
}
