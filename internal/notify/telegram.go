package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data carried by the lunch prompt's inline buttons.
const (
	CallbackLunchYes = "lunch_yes"
	CallbackLunchNo  = "lunch_no"
)

// Notifier delivers messages to a chat recipient.
type Notifier interface {
	// Send delivers a plain text message.
	Send(chatID int64, text string) error
	// SendPrompt delivers a message with yes/no action buttons attached.
	SendPrompt(chatID int64, text string) error
}

// MessageSender abstracts the Telegram API call so tests can fake delivery.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram is the production Notifier backed by the Bot API.
type Telegram struct {
	sender MessageSender
}

// NewTelegram creates a Notifier on top of a message sender, normally a
// *tgbotapi.BotAPI.
func NewTelegram(sender MessageSender) *Telegram {
	return &Telegram{sender: sender}
}

func (t *Telegram) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.sender.Send(msg); err != nil {
		return fmt.Errorf("telegram send to %d failed: %w", chatID, err)
	}
	return nil
}

func (t *Telegram) SendPrompt(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = PromptKeyboard()
	if _, err := t.sender.Send(msg); err != nil {
		return fmt.Errorf("telegram prompt to %d failed: %w", chatID, err)
	}
	return nil
}

// PromptKeyboard builds the yes/no inline keyboard for lunch prompts.
func PromptKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👍 Yes", CallbackLunchYes),
			tgbotapi.NewInlineKeyboardButtonData("👎 No", CallbackLunchNo),
		),
	)
}
