package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/cropify/cropify/ai/core/llm"
)

const chatSystemPrompt = `You are AgriBot, an expert AI assistant for farmers. Your knowledge covers all aspects of agriculture, including crop management, soil science, pest and disease control, market trends, sustainable farming practices, and weather patterns.

Your tone should be helpful, clear, and encouraging. Provide practical, actionable advice. If a question is outside the scope of agriculture, politely state that you are an agricultural assistant and cannot answer it.

When a question depends on current weather, market prices, or a term definition, call the matching tool instead of guessing.`

// ChatRequest is one chatbot turn.
type ChatRequest struct {
	// Query is the user's latest message.
	Query string

	// History is the prior conversation, oldest first, excluding Query.
	History []llm.Message

	// FarmContext optionally describes the farmer's registered farm
	// (location, soil) so the model can personalize its answer.
	FarmContext string
}

// SubmitChat runs one chat turn, executing tool calls in a bounded loop, and
// returns the assistant's final response.
func (g *Gateway) SubmitChat(ctx context.Context, req *ChatRequest) (string, error) {
	if req == nil || req.Query == "" {
		return "", errors.New("empty chat query")
	}

	start := time.Now()
	if g.exporter != nil {
		g.exporter.ChatStarted()
		defer g.exporter.ChatFinished()
	}

	content, err := g.chat(ctx, req)
	if g.exporter != nil {
		g.exporter.ObserveChat(time.Since(start), err)
	}
	return content, err
}

func (g *Gateway) chat(ctx context.Context, req *ChatRequest) (string, error) {
	system := chatSystemPrompt
	if req.FarmContext != "" {
		system += "\n\nThe farmer's registered farm:\n" + req.FarmContext
	}

	messages := []llm.Message{llm.SystemPrompt(system)}
	messages = append(messages, req.History...)
	messages = append(messages, llm.UserMessage(req.Query))

	descriptors := g.registry.Descriptors()
	for round := 0; ; round++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", errors.Wrap(err, "rate limiter")
		}

		// Last round goes out without tools to force a final answer.
		if round >= maxToolRounds || len(descriptors) == 0 {
			content, err := g.llm.Chat(ctx, messages)
			if err != nil {
				return "", err
			}
			return content, nil
		}

		resp, err := g.llm.ChatWithTools(ctx, messages, descriptors)
		if err != nil {
			return "", err
		}
		if len(resp.ToolCalls) == 0 {
			if resp.Content == "" {
				return "", errors.New("empty response from model")
			}
			return resp.Content, nil
		}

		if resp.Content != "" {
			messages = append(messages, llm.AssistantMessage(resp.Content))
		}
		for _, call := range resp.ToolCalls {
			messages = append(messages, g.runToolCall(ctx, call))
		}
	}
}

// runToolCall executes one tool call and renders its outcome as a message the
// model can consume on the next round. Tool failures are reported to the
// model rather than aborting the turn.
func (g *Gateway) runToolCall(ctx context.Context, call llm.ToolCall) llm.Message {
	name := call.Function.Name
	tool := g.registry.Get(name)
	if tool == nil {
		slog.Warn("gateway: model requested unknown tool", "tool", name)
		return llm.UserMessage(fmt.Sprintf("Tool %q does not exist. Answer without it.", name))
	}

	start := time.Now()
	result, err := tool.Run(ctx, call.Function.Arguments)
	if g.exporter != nil {
		g.exporter.ObserveToolCall(name, time.Since(start), err)
	}
	if err != nil {
		slog.Warn("gateway: tool call failed", "tool", name, "error", err)
		return llm.UserMessage(fmt.Sprintf("Tool %q failed: %v. Answer without it.", name, err))
	}

	slog.Debug("gateway: tool call succeeded",
		"tool", name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return llm.UserMessage(fmt.Sprintf("Result of tool %q: %s", name, result))
}
