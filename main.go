package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"process_bot/ai"
	"process_bot/bot"
	"process_bot/charts"
	"process_bot/config"
	"process_bot/database"
	"process_bot/dataset"
	"process_bot/server"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Configure logging
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	setLogLevel(os.Getenv("LOG_LEVEL"))
	if envErr != nil {
		logrus.Warn("No .env file found")
	}

	cfg := config.Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			logrus.WithError(err).Fatal("Failed to load config file")
		}
	}
	// the config file may override LOG_LEVEL
	setLogLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := dataset.NewLoader(cfg.DataPaths)
	logrus.WithField("paths", loader.Paths()).Info("Dataset candidates")

	var completer ai.Completer
	if cfg.OpenAIKey != "" {
		completer = ai.NewProvider(cfg.OpenAIKey, cfg.LLMBaseURL)
	} else {
		logrus.Warn("OPENAI_API_KEY is not set, insights will use the fallback text")
	}
	insights := ai.NewInsightGenerator(completer, cfg.TextModel, cfg.MaxTokens, cfg.LLMTimeout)

	deps := bot.Deps{
		Data:     loader,
		Charts:   charts.NewPNGRenderer(),
		Insights: insights,
		Contact:  cfg.Contact,
	}

	var stats server.StatsSource
	if cfg.DBPath != "" {
		journal, err := database.New(cfg.DBPath)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to open command journal")
		}
		defer journal.Close()
		deps.Journal = journal
		stats = journal
		logrus.WithField("path", cfg.DBPath).Info("✅ Command journal enabled")
	}

	var api *tgbotapi.BotAPI
	if cfg.Degraded() {
		logrus.Warn("TELEGRAM_TOKEN is not set, running in test mode without Telegram")
		deps.Out = bot.NewLogMessenger()
	} else {
		var err error
		api, err = tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize bot")
		}
		api.Debug = false
		deps.Out = bot.NewTelegramMessenger(api)
	}

	router := bot.NewRouter(deps)

	var limiter gin.HandlerFunc
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("Redis unreachable, webhook rate limiting passes requests through")
		}
		limiter = server.NewRateLimiter(server.RateLimiterConfig{
			RedisClient: rdb,
			Limit:       cfg.RateLimit,
			Window:      cfg.RateWindow,
			KeyPrefix:   "process_bot:rl:",
		})
	}

	srv := server.New(server.Options{
		WebhookPath: cfg.WebhookPath(),
		Handler:     router,
		Data:        loader,
		Stats:       stats,
		Limiter:     limiter,
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Handler(),
	}

	go func() {
		logrus.WithField("addr", httpServer.Addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("HTTP server failed")
		}
	}()

	switch {
	case api == nil:
		logrus.Info("No Telegram connection, only HTTP endpoints are served")
	case cfg.IsProduction():
		if err := bot.RegisterWebhook(api, cfg.WebhookURL()); err != nil {
			logrus.WithError(err).Fatal("Failed to register webhook")
		}
	default:
		go func() {
			if err := bot.Poll(ctx, api, router); err != nil {
				logrus.WithError(err).Error("❌ Polling stopped")
			}
		}()
	}

	logrus.Info("Process Analyst Bot is running. Press CTRL+C to exit.")

	// Wait for interrupt signal
	<-ctx.Done()

	logrus.Info("Shutting down bot...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("❌ HTTP server shutdown failed")
	}
}

func setLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
