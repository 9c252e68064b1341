package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"process_bot/bot"
	"process_bot/database"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EventHandler processes one routable chat event.
type EventHandler interface {
	Handle(ctx context.Context, ev bot.Event)
}

// StatsSource reads the command journal.
type StatsSource interface {
	DailyStats() (int, error)
	RecentCommands(chatID int64, limit int) ([]database.Command, error)
}

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

type Options struct {
	// WebhookPath is the path Telegram posts updates to, normally "/<token>".
	WebhookPath string
	Handler     EventHandler
	Data        bot.DataSource
	// Stats enables GET /stats when set.
	Stats StatsSource
	// Limiter guards the webhook route when set.
	Limiter gin.HandlerFunc
}

type Server struct {
	engine  *gin.Engine
	handler EventHandler
	data    bot.DataSource
	stats   StatsSource
	log     *logrus.Entry
}

func New(opts Options) *Server {
	s := &Server{
		engine:  gin.New(),
		handler: opts.Handler,
		data:    opts.Data,
		stats:   opts.Stats,
		log:     logrus.WithField("component", "server"),
	}

	s.engine.Use(gin.Recovery(), RequestID(), AccessLog())

	webhook := []gin.HandlerFunc{DecodeUpdate()}
	if opts.Limiter != nil {
		webhook = append(webhook, opts.Limiter)
	}
	s.engine.POST(opts.WebhookPath, append(webhook, s.webhook)...)

	s.engine.GET("/", s.index)
	s.engine.GET("/health", s.health)
	s.engine.GET("/test-data", s.testData)
	if s.stats != nil {
		s.engine.GET("/stats", s.dailyStats)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// webhook runs after DecodeUpdate, which already answered malformed requests.
func (s *Server) webhook(c *gin.Context) {
	ev, ok := eventFrom(c)
	if !ok {
		c.Status(http.StatusOK)
		return
	}

	s.log.WithFields(logrus.Fields{
		"request_id": c.GetString(ctxRequestID),
		"chat_id":    ev.ChatID,
	}).Info("Received webhook update")

	// The event is finished even if Telegram drops the connection.
	s.handler.Handle(context.WithoutCancel(c.Request.Context()), ev)
	c.Status(http.StatusOK)
}

func (s *Server) index(c *gin.Context) {
	c.String(http.StatusOK, "Telegram Bot is running!")
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "Bot is running!")
}

func (s *Server) testData(c *gin.Context) {
	table, err := s.data.Load()
	if err != nil {
		c.String(http.StatusOK, fmt.Sprintf("Error loading data: %v", err))
		return
	}
	rows, cols := table.Shape()
	c.String(http.StatusOK, fmt.Sprintf("CSV loaded successfully: %d rows, %d columns", rows, cols))
}

// dailyStats reports today's command count, or with ?chat_id=N the latest
// commands of that chat (?limit=M, default 10).
func (s *Server) dailyStats(c *gin.Context) {
	if raw := c.Query("chat_id"); raw != "" {
		s.recentCommands(c, raw)
		return
	}

	count, err := s.stats.DailyStats()
	if err != nil {
		s.log.WithError(err).Error("❌ Failed to read daily stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"commands_today": count})
}

func (s *Server) recentCommands(c *gin.Context, rawChatID string) {
	chatID, err := strconv.ParseInt(rawChatID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id must be an integer"})
		return
	}

	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(limit, maxRecentLimit)
	}

	commands, err := s.stats.RecentCommands(chatID, limit)
	if err != nil {
		s.log.WithError(err).WithField("chat_id", chatID).Error("❌ Failed to read recent commands")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if commands == nil {
		commands = []database.Command{}
	}
	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "commands": commands})
}
