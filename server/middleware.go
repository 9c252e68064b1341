package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"process_bot/bot"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxEvent        = "event"
)

// RequestID tags every request with an id, reusing the caller's header when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// AccessLog writes one logrus line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(ctxRequestID),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("Request failed")
			return
		}
		entry.Debug("Request served")
	}
}

// RateStore is the subset of the Redis client the limiter needs.
type RateStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

type RateLimiterConfig struct {
	RedisClient RateStore
	Limit       int
	Window      time.Duration
	KeyPrefix   string
	Extractor   func(c *gin.Context) string
}

// ChatKey keys a webhook request by the chat its update came from. It relies
// on DecodeUpdate having run first; requests without a chat share one key.
func ChatKey(c *gin.Context) string {
	ev, ok := eventFrom(c)
	if !ok {
		return ""
	}
	return strconv.FormatInt(ev.ChatID, 10)
}

// NewRateLimiter counts requests per key in fixed windows stored in Redis.
// Requests pass through when Redis is unavailable.
func NewRateLimiter(cfg RateLimiterConfig) gin.HandlerFunc {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rl:"
	}
	if cfg.Extractor == nil {
		cfg.Extractor = ChatKey
	}
	if cfg.RedisClient == nil || cfg.Limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	log := logrus.WithField("component", "rate-limit")

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := cfg.Extractor(c)
		if id == "" {
			id = "anonymous"
		}
		key := cfg.KeyPrefix + id

		count, err := cfg.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			log.WithError(err).Debug("Rate limit store unavailable, passing request")
			c.Next()
			return
		}
		if count == 1 {
			cfg.RedisClient.Expire(ctx, key, cfg.Window)
		}

		ttl, _ := cfg.RedisClient.TTL(ctx, key).Result()
		reset := max(int(ttl.Seconds()), 0)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.Limit))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", reset))

		if count > int64(cfg.Limit) {
			log.WithField("key", key).Warn("Rate limit exceeded")
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "rate limit exceeded",
				"rate_limit":        cfg.Limit,
				"rate_limit_window": cfg.Window.String(),
				"retry_after_sec":   reset,
			})
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", cfg.Limit-int(count)))
		c.Next()
	}
}

// DecodeUpdate validates and decodes a Telegram update once, storing the
// routable event (if any) for the limiter and the webhook handler.
func DecodeUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logrus.WithFields(logrus.Fields{
			"component":  "server",
			"request_id": c.GetString(ctxRequestID),
		})

		if c.ContentType() != gin.MIMEJSON {
			log.WithField("content_type", c.ContentType()).Warn("Rejected webhook with wrong content type")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			log.WithError(err).Error("❌ Failed to decode update")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		if ev, ok := bot.EventFromUpdate(update); ok {
			c.Set(ctxEvent, ev)
		} else {
			log.WithField("update_id", update.UpdateID).Debug("Update carries no message, ignoring")
		}
		c.Next()
	}
}

func eventFrom(c *gin.Context) (bot.Event, bool) {
	v, ok := c.Get(ctxEvent)
	if !ok {
		return bot.Event{}, false
	}
	ev, ok := v.(bot.Event)
	return ev, ok
}
