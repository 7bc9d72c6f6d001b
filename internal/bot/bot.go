// Package bot is the Telegram front end: command handling, the enrollment
// conversation, and the wiring of lunch prompt button presses into the
// booking cycle.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lunchbuddy-backend/config"
	"lunchbuddy-backend/internal/cycle"
	"lunchbuddy-backend/internal/messages"
	"lunchbuddy-backend/internal/notify"
	"lunchbuddy-backend/internal/store"
	"lunchbuddy-backend/internal/window"
)

// Handler owns the bot API connection and dispatches incoming updates.
type Handler struct {
	api    *tgbotapi.BotAPI
	cfg    *config.Config
	store  store.Store
	driver *cycle.Driver

	mu            sync.Mutex
	conversations map[int64]*enrollment
}

// NewHandler wires the bot front end.
func NewHandler(api *tgbotapi.BotAPI, cfg *config.Config, s store.Store, d *cycle.Driver) *Handler {
	return &Handler{
		api:           api,
		cfg:           cfg,
		store:         s,
		driver:        d,
		conversations: make(map[int64]*enrollment),
	}
}

// Run consumes updates via long polling until the context is cancelled.
func (h *Handler) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = h.cfg.Telegram.UpdateTimeoutSeconds
	updates := h.api.GetUpdatesChan(u)

	log.Printf("LunchBuddy started as @%s", h.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			log.Println("Bot update loop shutting down.")
			return
		case upd := <-updates:
			h.HandleUpdate(ctx, upd)
		}
	}
}

// HandleUpdate routes a single update.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		h.handleCallback(ctx, upd.CallbackQuery)
		return
	}

	if upd.Message == nil {
		return
	}

	msg := upd.Message
	if !msg.Chat.IsPrivate() {
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	switch {
	case strings.HasPrefix(text, "/start"):
		h.reply(msg.Chat.ID, messages.Welcome)
	case strings.HasPrefix(text, "/help"):
		h.handleHelp(msg.Chat.ID)
	case strings.HasPrefix(text, "/status"):
		h.handleStatus(ctx, msg)
	case strings.HasPrefix(text, "/enroll"):
		h.handleEnroll(ctx, msg)
	case strings.HasPrefix(text, "/unenroll"):
		h.handleUnenroll(ctx, msg)
	case strings.HasPrefix(text, "/cancel"):
		h.handleCancel(msg.Chat.ID, msg.From.ID)
	default:
		h.handleConversationInput(msg)
	}
}

func (h *Handler) handleHelp(chatID int64) {
	days := make([]string, len(h.cfg.Lunch.Days))
	for i, d := range h.cfg.Lunch.Days {
		days[i] = titleDay(strings.ToLower(strings.TrimSpace(d)))
	}
	when := fmt.Sprintf("%s (%s)", h.cfg.Lunch.ReminderTime, h.cfg.Lunch.Timezone)
	h.reply(chatID, fmt.Sprintf(messages.HelpTemplate, strings.Join(days, "\n• "), when))
}

func (h *Handler) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	user, err := h.store.GetUser(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Error fetching user %d for status: %v", msg.From.ID, err)
		return
	}
	if user == nil {
		h.reply(msg.Chat.ID, messages.StatusNotEnrolled)
		return
	}

	days := make([]string, 0, 7)
	for _, d := range user.PreferredDayList() {
		days = append(days, titleDay(d))
	}
	h.reply(msg.Chat.ID, fmt.Sprintf(messages.StatusTemplate,
		user.FullName, user.Email, string(user.DietaryPreference),
		strings.Join(days, ", "), user.IsEnrolled))
}

func (h *Handler) handleUnenroll(ctx context.Context, msg *tgbotapi.Message) {
	removed, err := h.store.RemoveUser(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Error unenrolling user %d: %v", msg.From.ID, err)
		return
	}
	if removed {
		h.reply(msg.Chat.ID, messages.UnenrollSuccess)
	} else {
		h.reply(msg.Chat.ID, messages.UnenrollFailure)
	}
}

// handleCallback routes inline button presses: lunch responses go to the
// cycle driver, everything else belongs to the enrollment conversation.
func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Callbacks on messages that are too old or inaccessible arrive without
	// the originating message; there is nothing to edit, so drop them.
	if q.Message == nil {
		return
	}

	// Acknowledge the press so the client stops its spinner.
	if _, err := h.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		log.Printf("Failed to answer callback query: %v", err)
	}

	switch q.Data {
	case notify.CallbackLunchYes:
		h.handleLunchResponse(q, window.ChoiceYes, messages.LunchConfirmationYes)
	case notify.CallbackLunchNo:
		h.handleLunchResponse(q, window.ChoiceNo, messages.LunchConfirmationNo)
	default:
		h.handleEnrollCallback(ctx, q)
	}
}

func (h *Handler) handleLunchResponse(q *tgbotapi.CallbackQuery, c window.Choice, confirmation string) {
	outcome := h.driver.HandleResponse(q.From.ID, c)

	text := confirmation
	if outcome == window.OutcomeExpired {
		text = messages.LunchConfirmationExpired
	}
	h.editMessage(q.Message.Chat.ID, q.Message.MessageID, text)
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message to %d: %v", chatID, err)
	}
}

func (h *Handler) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}
