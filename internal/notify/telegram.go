// Package notify delivers due-review reminders over the Telegram Bot API.
// Outbound messages only; inbound update handling belongs to the bot layer.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier implements scheduler.Notifier by sending a plain text
// message to the user's chat. User IDs are Telegram chat IDs.
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

// NewTelegramNotifier authorizes against the Bot API with the given token.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}
	return &TelegramNotifier{api: api}, nil
}

// SendReminder tells the user how many words await review.
func (n *TelegramNotifier) SendReminder(userID int64, dueCount int) error {
	word := "words"
	if dueCount == 1 {
		word = "word"
	}
	msg := tgbotapi.NewMessage(userID, fmt.Sprintf("You have %d %s due for review!", dueCount, word))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send reminder to %d: %w", userID, err)
	}
	return nil
}
