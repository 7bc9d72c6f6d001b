package bot

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lunchbuddy-backend/internal/messages"
	"lunchbuddy-backend/internal/model"
)

// Callback data used by the enrollment keyboards.
const (
	callbackDietVeg    = "diet_veg"
	callbackDietNonVeg = "diet_non_veg"
	callbackDayPrefix  = "day_"
	callbackDaysDone   = "days_done"
)

type enrollStep int

const (
	stepName enrollStep = iota
	stepEmail
	stepDiet
	stepDays
)

// enrollment is the in-memory state of one user's enrollment conversation.
type enrollment struct {
	step     enrollStep
	fullName string
	email    string
	diet     model.DietaryPreference
	days     []string
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (h *Handler) conversation(userID int64) *enrollment {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conversations[userID]
}

func (h *Handler) setConversation(userID int64, e *enrollment) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e == nil {
		delete(h.conversations, userID)
	} else {
		h.conversations[userID] = e
	}
}

func (h *Handler) handleEnroll(ctx context.Context, msg *tgbotapi.Message) {
	existing, err := h.store.GetUser(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Error checking enrollment for user %d: %v", msg.From.ID, err)
		return
	}
	if existing != nil {
		h.reply(msg.Chat.ID, messages.AlreadyEnrolled)
		return
	}

	h.setConversation(msg.From.ID, &enrollment{step: stepName})
	h.reply(msg.Chat.ID, messages.EnrollmentWelcome)
}

func (h *Handler) handleCancel(chatID, userID int64) {
	if h.conversation(userID) == nil {
		return
	}
	h.setConversation(userID, nil)
	h.reply(chatID, messages.EnrollmentCancelled)
}

// handleConversationInput consumes free-text messages belonging to the name
// and email steps of an active enrollment.
func (h *Handler) handleConversationInput(msg *tgbotapi.Message) {
	conv := h.conversation(msg.From.ID)
	if conv == nil {
		return
	}

	text := strings.TrimSpace(msg.Text)

	switch conv.step {
	case stepName:
		if len(text) < 2 {
			h.reply(msg.Chat.ID, messages.InvalidName)
			return
		}
		conv.fullName = text
		conv.step = stepEmail
		h.reply(msg.Chat.ID, fmt.Sprintf(messages.NameAcceptedTemplate, text))

	case stepEmail:
		email := strings.ToLower(text)
		if !emailPattern.MatchString(email) {
			h.reply(msg.Chat.ID, messages.InvalidEmail)
			return
		}
		conv.email = email
		conv.step = stepDiet

		reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(messages.EmailAcceptedTemplate, email))
		reply.ReplyMarkup = dietKeyboard()
		if _, err := h.api.Send(reply); err != nil {
			log.Printf("Failed to send diet prompt to %d: %v", msg.Chat.ID, err)
		}
	}
}

// handleEnrollCallback consumes inline button presses for the diet and
// preferred-day steps.
func (h *Handler) handleEnrollCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	conv := h.conversation(q.From.ID)
	if conv == nil {
		return
	}

	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID

	switch {
	case q.Data == callbackDietVeg || q.Data == callbackDietNonVeg:
		if conv.step != stepDiet {
			return
		}
		conv.diet = model.DietVeg
		if q.Data == callbackDietNonVeg {
			conv.diet = model.DietNonVeg
		}
		conv.step = stepDays

		text := fmt.Sprintf(messages.DietAcceptedTemplate, string(conv.diet))
		h.editMessageWithKeyboard(chatID, messageID, text, h.daysKeyboard(conv.days))

	case q.Data == callbackDaysDone:
		if conv.step != stepDays {
			return
		}
		if len(conv.days) == 0 {
			h.editMessageWithKeyboard(chatID, messageID, messages.NoDaysSelected, h.daysKeyboard(conv.days))
			return
		}
		h.finishEnrollment(ctx, q.From.ID, chatID, messageID, conv)

	case strings.HasPrefix(q.Data, callbackDayPrefix):
		if conv.step != stepDays {
			return
		}
		day := strings.TrimPrefix(q.Data, callbackDayPrefix)
		conv.days = toggleDay(conv.days, day)
		h.editMessageWithKeyboard(chatID, messageID, q.Message.Text, h.daysKeyboard(conv.days))
	}
}

func (h *Handler) finishEnrollment(ctx context.Context, userID, chatID int64, messageID int, conv *enrollment) {
	user := model.User{
		TelegramID:        userID,
		FullName:          conv.fullName,
		Email:             conv.email,
		DietaryPreference: conv.diet,
		PreferredDays:     model.JoinDays(conv.days),
	}

	if err := h.store.UpsertUser(ctx, user); err != nil {
		log.Printf("Error enrolling user %d: %v", userID, err)
		h.editMessage(chatID, messageID, messages.EnrollFailed)
		h.setConversation(userID, nil)
		return
	}

	days := make([]string, len(conv.days))
	for i, d := range conv.days {
		days[i] = titleDay(d)
	}
	h.editMessage(chatID, messageID, fmt.Sprintf(messages.EnrollSuccessTemplate,
		user.FullName, user.Email, string(user.DietaryPreference), strings.Join(days, ", ")))
	h.setConversation(userID, nil)
}

// toggleDay adds the day to the selection, or removes it if already present.
func toggleDay(selected []string, day string) []string {
	for i, d := range selected {
		if d == day {
			return append(selected[:i], selected[i+1:]...)
		}
	}
	return append(selected, day)
}

func dietKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🥬 Vegetarian", callbackDietVeg),
			tgbotapi.NewInlineKeyboardButtonData("🍗 Non-Vegetarian", callbackDietNonVeg),
		),
	)
}

// daysKeyboard builds the multi-select keyboard over the configured lunch
// days, three per row, with selected days check-marked.
func (h *Handler) daysKeyboard(selected []string) tgbotapi.InlineKeyboardMarkup {
	isSelected := make(map[string]bool, len(selected))
	for _, d := range selected {
		isSelected[d] = true
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, day := range h.cfg.Lunch.Days {
		day = strings.ToLower(strings.TrimSpace(day))
		label := titleDay(day)
		if isSelected[day] {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, callbackDayPrefix+day))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Done", callbackDaysDone),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *Handler) editMessageWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

// titleDay capitalizes a lowercase weekday name for display.
func titleDay(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
