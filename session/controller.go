package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cropify/cropify/ai"
	"github.com/cropify/cropify/ai/core/llm"
	"github.com/cropify/cropify/ai/gateway"
	"github.com/cropify/cropify/plugin/markdown"
	"github.com/cropify/cropify/store"
)

// State is the submission state of one channel.
type State string

const (
	// StateIdle means the channel accepts a new request.
	StateIdle State = "idle"

	// StateSubmitting means a request is in flight to the gateway.
	StateSubmitting State = "submitting"

	// StateQueued means a request is parked waiting for connectivity.
	StateQueued State = "queued"
)

// ErrBusy is returned when a channel already has a request in flight.
// Clients retry after the current request settles.
var ErrBusy = errors.New("a request is already in flight")

// ErrStale is returned when a response arrives for a superseded submission
// and is dropped.
var ErrStale = errors.New("response superseded by a newer request")

// ChatGateway is the inference dependency of the chat controller.
// *gateway.Gateway satisfies it; tests substitute fakes.
type ChatGateway interface {
	SubmitChat(ctx context.Context, req *gateway.ChatRequest) (string, error)
}

// chatPayload is the persisted form of a queued chat request. UserMessageID
// points at the optimistically appended user message so a failed replay can
// roll it back. RequestID ties the enqueue log line to its eventual replay.
type chatPayload struct {
	RequestID       string `json:"requestId"`
	ConversationUID string `json:"conversationUid"`
	Query           string `json:"query"`
	UserMessageID   int64  `json:"userMessageId"`
}

// ChatSubmit is one chat request from a client.
type ChatSubmit struct {
	ConversationUID string
	Query           string
}

// ChatResult is the outcome of a chat submission.
type ChatResult struct {
	// Queued is true when the request was parked offline; Message and HTML
	// are empty in that case.
	Queued  bool           `json:"queued"`
	Message *store.Message `json:"message,omitempty"`
	HTML    string         `json:"html,omitempty"`
}

// ChatControllerConfig wires a chat controller.
type ChatControllerConfig struct {
	Store   *store.Store
	Gateway ChatGateway
	Monitor *Monitor
	Queue   *Queue

	// Titles generates conversation titles after the first exchange.
	// Optional.
	Titles *ai.TitleGenerator

	// Renderer converts model markdown to HTML for clients. Optional.
	Renderer *markdown.Service

	// FarmContext returns a short description of the farmer's registered
	// farm for prompt personalization. Optional.
	FarmContext func(ctx context.Context) string
}

// ChatController owns the chat channel: one request at a time, optimistic
// message append, offline queueing, and automatic replay on reconnect.
type ChatController struct {
	store       *store.Store
	gateway     ChatGateway
	monitor     *Monitor
	queue       *Queue
	titles      *ai.TitleGenerator
	renderer    *markdown.Service
	farmContext func(ctx context.Context) string

	mu    sync.Mutex
	state State
	// gen increments on every submission that takes the channel. A response
	// whose generation no longer matches is stale and gets dropped.
	gen uint64
}

// NewChatController creates the chat controller and subscribes it to
// connectivity transitions.
func NewChatController(cfg ChatControllerConfig) (*ChatController, error) {
	if cfg.Store == nil || cfg.Gateway == nil || cfg.Monitor == nil || cfg.Queue == nil {
		return nil, errors.New("store, gateway, monitor and queue are required")
	}
	c := &ChatController{
		store:       cfg.Store,
		gateway:     cfg.Gateway,
		monitor:     cfg.Monitor,
		queue:       cfg.Queue,
		titles:      cfg.Titles,
		renderer:    cfg.Renderer,
		farmContext: cfg.FarmContext,
		state:       StateIdle,
	}
	cfg.Monitor.Subscribe(func(online bool) {
		if online {
			go c.ResumePending(context.Background())
		}
	})
	return c, nil
}

// State returns the channel state.
func (c *ChatController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit handles one chat turn. Offline submissions are persisted and
// replayed after reconnect; ErrBusy is returned while a prior request is
// unsettled.
func (c *ChatController) Submit(ctx context.Context, submit *ChatSubmit) (*ChatResult, error) {
	if submit == nil || strings.TrimSpace(submit.Query) == "" {
		return nil, errors.New("empty query")
	}

	conversation, err := c.store.GetConversation(ctx, &store.FindConversation{UID: &submit.ConversationUID})
	if err != nil {
		return nil, errors.Wrap(err, "find conversation")
	}
	if conversation == nil {
		return nil, errors.Errorf("conversation %q not found", submit.ConversationUID)
	}

	online := c.monitor.Online()

	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.state == StateQueued && online {
		// Connectivity returned but the replay has not started yet. Let it
		// run; the client retries once the queued request settles.
		c.mu.Unlock()
		go c.ResumePending(context.Background())
		return nil, ErrBusy
	}
	// Idle, or Queued while still offline: a newer offline submission
	// overwrites the queued one (last request wins).
	c.gen++
	gen := c.gen
	if online {
		c.state = StateSubmitting
	} else {
		c.state = StateQueued
	}
	c.mu.Unlock()

	// Optimistic append: the user message is visible immediately and rolled
	// back only if the model call ultimately fails.
	userMessage, err := c.store.CreateMessage(ctx, &store.Message{
		ConversationID: conversation.ID,
		Role:           store.RoleUser,
		Content:        submit.Query,
	})
	if err != nil {
		c.settle(gen)
		return nil, errors.Wrap(err, "append user message")
	}

	if !online {
		payload := chatPayload{
			RequestID:       uuid.New().String()[:8],
			ConversationUID: submit.ConversationUID,
			Query:           submit.Query,
			UserMessageID:   userMessage.ID,
		}
		if err := c.queue.Enqueue(ctx, store.SlotChat, payload); err != nil {
			c.rollback(ctx, userMessage.ID)
			c.settle(gen)
			return nil, err
		}
		slog.Info("chat request queued while offline",
			"request", payload.RequestID,
			"conversation", submit.ConversationUID,
		)
		// Connectivity may have returned between the check and the enqueue;
		// a transition would have fired before our state was Queued, so kick
		// the replay ourselves.
		if c.monitor.Online() {
			go c.ResumePending(context.Background())
		}
		return &ChatResult{Queued: true}, nil
	}

	return c.perform(ctx, gen, conversation, userMessage)
}

// ResumePending replays the queued chat request, if any. Called on
// connectivity transitions and once at startup. The replay happens at most
// once per queued request.
func (c *ChatController) ResumePending(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.state = StateSubmitting
	c.mu.Unlock()

	raw, err := c.queue.Take(ctx, store.SlotChat)
	if err != nil {
		slog.Error("chat resume: reading queue failed", "error", err)
		c.settle(gen)
		return
	}
	if raw == nil {
		c.settle(gen)
		return
	}

	var payload chatPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		slog.Warn("chat resume: malformed queued payload dropped", "error", err)
		c.settle(gen)
		return
	}

	conversation, err := c.store.GetConversation(ctx, &store.FindConversation{UID: &payload.ConversationUID})
	if err != nil || conversation == nil {
		slog.Warn("chat resume: conversation gone, dropping queued request",
			"conversation", payload.ConversationUID, "error", err)
		c.settle(gen)
		return
	}

	userMessage := &store.Message{
		ID:             payload.UserMessageID,
		ConversationID: conversation.ID,
		Role:           store.RoleUser,
		Content:        payload.Query,
	}
	slog.Info("replaying queued chat request",
		"request", payload.RequestID,
		"conversation", payload.ConversationUID,
	)
	_, err = c.perform(ctx, gen, conversation, userMessage)
	if c.queue.exporter != nil {
		c.queue.exporter.ObserveQueueFlush(store.SlotChat, err)
	}
	if err != nil && !errors.Is(err, ErrStale) {
		slog.Error("replaying queued chat request failed", "error", err)
	}
}

// perform runs the gateway call and settles the channel. The user message
// must already be persisted.
func (c *ChatController) perform(ctx context.Context, gen uint64, conversation *store.Conversation, userMessage *store.Message) (*ChatResult, error) {
	history, err := c.history(ctx, conversation.ID, userMessage.ID)
	if err != nil {
		c.rollback(ctx, userMessage.ID)
		c.settle(gen)
		return nil, err
	}

	req := &gateway.ChatRequest{
		Query:   userMessage.Content,
		History: history,
	}
	if c.farmContext != nil {
		req.FarmContext = c.farmContext(ctx)
	}

	content, err := c.gateway.SubmitChat(ctx, req)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		slog.Warn("dropping stale chat response", "conversation", conversation.UID)
		return nil, ErrStale
	}
	c.state = StateIdle
	c.mu.Unlock()

	if err != nil {
		c.rollback(ctx, userMessage.ID)
		return nil, errors.Wrap(err, "chat inference")
	}

	reply, err := c.store.CreateMessage(ctx, &store.Message{
		ConversationID: conversation.ID,
		Role:           store.RoleModel,
		Content:        content,
	})
	if err != nil {
		return nil, errors.Wrap(err, "append model message")
	}

	c.maybeGenerateTitle(conversation, userMessage.Content, content)

	result := &ChatResult{Message: reply}
	if c.renderer != nil {
		result.HTML = c.renderer.Render(content)
	}
	return result, nil
}

// history loads the conversation transcript up to (excluding) the message
// being answered.
func (c *ChatController) history(ctx context.Context, conversationID int32, beforeMessageID int64) ([]llm.Message, error) {
	messages, err := c.store.ListMessages(ctx, &store.FindMessage{ConversationID: &conversationID})
	if err != nil {
		return nil, errors.Wrap(err, "load history")
	}
	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if m.ID == beforeMessageID {
			continue
		}
		role := "user"
		if m.Role == store.RoleModel {
			role = "assistant"
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}
	return history, nil
}

// maybeGenerateTitle auto-titles a conversation after its first completed
// exchange. Best effort, runs detached from the request.
func (c *ChatController) maybeGenerateTitle(conversation *store.Conversation, userMessage, aiResponse string) {
	if c.titles == nil || conversation.TitleSource != store.TitleSourceDefault {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		title, err := c.titles.Generate(ctx, userMessage, aiResponse)
		if err != nil {
			slog.Warn("conversation title generation failed", "conversation", conversation.UID, "error", err)
			return
		}
		titleSource := store.TitleSourceAuto
		if _, err := c.store.UpdateConversation(ctx, &store.UpdateConversation{
			ID:          conversation.ID,
			Title:       &title,
			TitleSource: &titleSource,
		}); err != nil {
			slog.Warn("conversation title update failed", "conversation", conversation.UID, "error", err)
		}
	}()
}

// rollback removes an optimistically appended user message after a failure.
func (c *ChatController) rollback(ctx context.Context, messageID int64) {
	if err := c.store.DeleteMessage(ctx, &store.DeleteMessage{ID: messageID}); err != nil {
		slog.Warn("rollback of user message failed", "message_id", messageID, "error", err)
	}
}

// settle returns the channel to idle unless a newer submission took over.
func (c *ChatController) settle(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.state = StateIdle
	}
}
