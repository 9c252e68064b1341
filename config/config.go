package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DegradedToken is used in place of a missing bot token so the HTTP
	// endpoints still come up for testing.
	DegradedToken = "test"

	ModeProduction = "production"
)

type Config struct {
	BotToken    string        `yaml:"bot_token"`
	OpenAIKey   string        `yaml:"openai_api_key"`
	LLMBaseURL  string        `yaml:"openai_base_url"`
	TextModel   string        `yaml:"text_model"`
	MaxTokens   int           `yaml:"max_tokens"`
	LLMTimeout  time.Duration `yaml:"llm_timeout"`
	Environment string        `yaml:"environment"`
	AppURL      string        `yaml:"app_url"`
	Port        int           `yaml:"port"`
	DataPaths   []string      `yaml:"data_paths"`
	DBPath      string        `yaml:"db_path"`
	RedisAddr   string        `yaml:"redis_addr"`
	RateLimit   int           `yaml:"rate_limit"`
	RateWindow  time.Duration `yaml:"rate_window"`
	LogLevel    string        `yaml:"log_level"`
	// Contact is shown at the end of the help text when set.
	Contact string `yaml:"support_contact"`
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		BotToken:    os.Getenv("TELEGRAM_TOKEN"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		LLMBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		TextModel:   getEnv("TEXT_MODEL", "gpt-4"),
		MaxTokens:   getEnvInt("MAX_TOKENS", 1500),
		LLMTimeout:  getEnvDuration("LLM_TIMEOUT", 90*time.Second),
		Environment: os.Getenv("ENVIRONMENT"),
		AppURL:      strings.TrimRight(os.Getenv("APP_URL"), "/"),
		Port:        getEnvInt("PORT", 5000),
		DataPaths:   splitList(os.Getenv("DATA_PATHS")),
		DBPath:      os.Getenv("DB_PATH"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RateLimit:   getEnvInt("RATE_LIMIT", 30),
		RateWindow:  getEnvDuration("RATE_WINDOW", time.Minute),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Contact:     os.Getenv("SUPPORT_CONTACT"),
	}
}

// LoadFile overlays the non-empty values of a YAML file on top of c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.merge(&file)
	return nil
}

func (c *Config) merge(o *Config) {
	setString(&c.BotToken, o.BotToken)
	setString(&c.OpenAIKey, o.OpenAIKey)
	setString(&c.LLMBaseURL, o.LLMBaseURL)
	setString(&c.TextModel, o.TextModel)
	setString(&c.Environment, o.Environment)
	setString(&c.AppURL, strings.TrimRight(o.AppURL, "/"))
	setString(&c.DBPath, o.DBPath)
	setString(&c.RedisAddr, o.RedisAddr)
	setString(&c.LogLevel, o.LogLevel)
	setString(&c.Contact, o.Contact)
	if o.MaxTokens != 0 {
		c.MaxTokens = o.MaxTokens
	}
	if o.LLMTimeout != 0 {
		c.LLMTimeout = o.LLMTimeout
	}
	if o.Port != 0 {
		c.Port = o.Port
	}
	if o.RateLimit != 0 {
		c.RateLimit = o.RateLimit
	}
	if o.RateWindow != 0 {
		c.RateWindow = o.RateWindow
	}
	if len(o.DataPaths) > 0 {
		c.DataPaths = o.DataPaths
	}
}

// Validate checks the values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.IsProduction() && c.AppURL == "" && !c.Degraded() {
		return fmt.Errorf("APP_URL is required in production mode")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("invalid MAX_TOKENS %d", c.MaxTokens)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid RATE_LIMIT %d", c.RateLimit)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == ModeProduction
}

// Degraded reports whether the bot runs without a real Telegram token.
func (c *Config) Degraded() bool {
	return c.BotToken == "" || c.BotToken == DegradedToken
}

// Token returns the bot token, or DegradedToken when none is configured.
func (c *Config) Token() string {
	if c.BotToken == "" {
		return DegradedToken
	}
	return c.BotToken
}

// WebhookPath is the secret path Telegram posts updates to.
func (c *Config) WebhookPath() string {
	return "/" + c.Token()
}

// WebhookURL is the externally visible webhook address.
func (c *Config) WebhookURL() string {
	return c.AppURL + c.WebhookPath()
}

func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// surfaced by Validate
		return -1
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
