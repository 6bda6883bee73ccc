package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cropify/cropify/ai/core/llm"
)

// Title generation parameters.
const (
	titleTimeout      = 15 * time.Second
	titleMaxLen       = 500
	titleMaxRuneCount = 50
)

// TitleGenerator generates meaningful titles for conversations after the
// first exchange completes.
type TitleGenerator struct {
	llm llm.Service
}

// NewTitleGenerator creates a new title generator on top of the shared LLM
// service.
func NewTitleGenerator(service llm.Service) *TitleGenerator {
	return &TitleGenerator{llm: service}
}

// Generate generates a title based on the first user message and response.
func (tg *TitleGenerator) Generate(ctx context.Context, userMessage, aiResponse string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, titleTimeout)
	defer cancel()

	if len(userMessage) > titleMaxLen {
		userMessage = userMessage[:titleMaxLen] + "..."
	}
	if len(aiResponse) > titleMaxLen {
		aiResponse = aiResponse[:titleMaxLen] + "..."
	}
	prompt := fmt.Sprintf("User message: %s\n\nAssistant reply: %s\n\nGenerate a short title for this conversation.", userMessage, aiResponse)

	start := time.Now()
	content, err := tg.llm.Chat(ctx, []llm.Message{
		llm.SystemPrompt(titleSystemPrompt),
		llm.UserMessage(prompt),
	})
	latency := time.Since(start)

	if err != nil {
		slog.Error("title_generation_failed",
			"error", err,
			"latency_ms", latency.Milliseconds())
		return "", fmt.Errorf("LLM request failed: %w", err)
	}

	title := parseTitle(content)
	if title == "" {
		slog.Warn("title_generation_parse_failed", "content", content)
		return "", fmt.Errorf("empty title in response")
	}

	// Truncate to max length (rune-aware for UTF-8)
	runes := []rune(title)
	if len(runes) > titleMaxRuneCount {
		title = string(runes[:titleMaxRuneCount])
	}

	slog.Debug("title_generation_success",
		"title", title,
		"latency_ms", latency.Milliseconds())
	return title, nil
}

// parseTitle accepts either the requested {"title": "..."} object or a bare
// text line, since smaller models drift between the two.
func parseTitle(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(content), &result); err == nil && result.Title != "" {
		return strings.TrimSpace(result.Title)
	}

	// Bare text: take the first line, stripped of surrounding quotes.
	line, _, _ := strings.Cut(content, "\n")
	return strings.Trim(strings.TrimSpace(line), `"'`)
}
