package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"process_bot/instructions"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Completer is the chat completion capability the insight generator needs.
type Completer interface {
	Generate(ctx context.Context, messages []openai.ChatCompletionMessage, model string, maxTokens int) (string, error)
}

type InsightGenerator struct {
	completer Completer
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewInsightGenerator returns a generator over completer. A nil completer
// (no API key configured) makes every request return the fallback text.
func NewInsightGenerator(completer Completer, model string, maxTokens int, timeout time.Duration) *InsightGenerator {
	return &InsightGenerator{
		completer: completer,
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
	}
}

// Messages builds the persona + user prompt pair for a data summary.
func Messages(summary string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions.InsightPersona,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf(instructions.InsightRequest, summary),
		},
	}
}

// Generate asks the model to interpret the summary. Failures never escape:
// they are logged and replaced by the localized fallback text.
func (g *InsightGenerator) Generate(ctx context.Context, summary string) string {
	log := logrus.WithField("component", "insight")

	if g.completer == nil {
		log.Warn("No language model configured, returning fallback")
		return instructions.InsightFallback
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.completer.Generate(ctx, Messages(summary), g.model, g.maxTokens)
	if err != nil {
		log.WithError(err).Error("❌ Insight generation failed")
		return instructions.InsightFallback
	}
	if strings.TrimSpace(text) == "" {
		log.Error("❌ Insight generation returned empty text")
		return instructions.InsightFallback
	}

	return text
}
