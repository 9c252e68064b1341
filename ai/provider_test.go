package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestProviderGenerate(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Səmərəlilik yüksəkdir."},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	p := NewProvider("sk-test", srv.URL+"/v1")
	text, err := p.Generate(context.Background(), Messages("Ümumi Məlumat Təhlili:"), "gpt-4", 1500)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Səmərəlilik yüksəkdir." {
		t.Errorf("Generate() = %q", text)
	}
	if got.Model != "gpt-4" || got.MaxTokens != 1500 || len(got.Messages) != 2 {
		t.Errorf("request = model %q, max_tokens %d, %d messages", got.Model, got.MaxTokens, len(got.Messages))
	}
}

func TestProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`},
		{"no choices", http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewProvider("sk-test", srv.URL)
			if _, err := p.Generate(context.Background(), Messages("x"), "gpt-4", 10); err == nil {
				t.Error("Generate() error = nil")
			}
		})
	}
}
