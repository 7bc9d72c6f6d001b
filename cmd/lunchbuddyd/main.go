package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lunchbuddy-backend/config"
	"lunchbuddy-backend/internal/api"
	"lunchbuddy-backend/internal/bot"
	"lunchbuddy-backend/internal/cycle"
	"lunchbuddy-backend/internal/db"
	"lunchbuddy-backend/internal/form"
	"lunchbuddy-backend/internal/notify"
	"lunchbuddy-backend/internal/schedule"
	"lunchbuddy-backend/internal/store"
	"lunchbuddy-backend/internal/window"
)

func main() {
	logger := log.New(os.Stdout, "lunchbuddy ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	loc, err := time.LoadLocation(cfg.Lunch.Timezone)
	if err != nil {
		logger.Fatalf("failed to load timezone %q: %v", cfg.Lunch.Timezone, err)
	}

	hour, minute, err := schedule.ParseTimeOfDay(cfg.Lunch.ReminderTime)
	if err != nil {
		logger.Fatalf("invalid lunch.reminder_time: %v", err)
	}
	reminderDays, err := schedule.ReminderDays(cfg.Lunch.Days)
	if err != nil {
		logger.Fatalf("invalid lunch.days: %v", err)
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Telegram transport
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Fatalf("failed to initialize bot API: %v", err)
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Booking cycle: shared window, notifier, form client, driver.
	win := window.New()
	notifier := notify.NewTelegram(botAPI)
	submitter := form.NewClient(&cfg.Form)
	driver := cycle.NewDriver(appStore, notifier, submitter, win, cfg.Lunch.Timeout, loc)

	daily := &schedule.Daily{
		Hour:     hour,
		Minute:   minute,
		Days:     reminderDays,
		Location: loc,
		Task:     driver.RunCycle,
	}
	go daily.Run(ctx)

	// Bot update loop
	handler := bot.NewHandler(botAPI, cfg, appStore, driver)
	go handler.Run(ctx)

	// Ops API
	router := api.NewRouter(&cfg.Server, appStore, win)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()
	botAPI.StopReceivingUpdates()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
