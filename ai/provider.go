package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

type Provider struct {
	client *openai.Client
}

// NewProvider creates a chat completion client. An empty baseURL keeps the
// OpenAI default; any OpenAI-compatible endpoint (e.g. OpenRouter) works.
func NewProvider(apiKey, baseURL string) *Provider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	client := openai.NewClientWithConfig(config)

	return &Provider{
		client: client,
	}
}

func (p *Provider) Generate(ctx context.Context, messages []openai.ChatCompletionMessage, model string, maxTokens int) (string, error) {
	logrus.WithFields(logrus.Fields{
		"model":      model,
		"max_tokens": maxTokens,
		"msg_count":  len(messages),
	}).Info("Sending request to AI model")

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
		Stream:    false,
	})

	if err != nil {
		logrus.WithError(err).WithField("model", model).Error("❌ Chat completion request failed")
		return "", fmt.Errorf("chat completion API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		logrus.WithField("model", model).Error("❌ No response choices returned")
		return "", fmt.Errorf("no response choices returned")
	}

	content := resp.Choices[0].Message.Content

	logrus.WithFields(logrus.Fields{
		"model":             model,
		"content_length":    len(content),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
		"finish_reason":     resp.Choices[0].FinishReason,
	}).Info("✅ AI response received successfully")

	return content, nil
}
