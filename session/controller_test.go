package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/cropify/cropify/ai/gateway"
	"github.com/cropify/cropify/store"
)

// fakeChatGateway records calls and delegates to fn.
type fakeChatGateway struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, req *gateway.ChatRequest) (string, error)
}

func (f *fakeChatGateway) SubmitChat(ctx context.Context, req *gateway.ChatRequest) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(ctx, req)
}

func (f *fakeChatGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newChatFixture(t *testing.T, gw ChatGateway, online bool) (*ChatController, *store.Store, *Monitor) {
	t.Helper()

	s := newTestStore(t)
	monitor := NewMonitor()
	monitor.SetOnline(online)
	controller, err := NewChatController(ChatControllerConfig{
		Store:   s,
		Gateway: gw,
		Monitor: monitor,
		Queue:   NewQueue(s, nil),
	})
	require.NoError(t, err)
	return controller, s, monitor
}

func TestChatSubmitOnline(t *testing.T) {
	ctx := context.Background()
	gw := &fakeChatGateway{fn: func(_ context.Context, req *gateway.ChatRequest) (string, error) {
		require.Equal(t, "how do I treat leaf rust?", req.Query)
		require.Empty(t, req.History)
		return "Use a fungicide.", nil
	}}
	controller, s, _ := newChatFixture(t, gw, true)
	conversation := newTestConversation(t, s)

	result, err := controller.Submit(ctx, &ChatSubmit{
		ConversationUID: conversation.UID,
		Query:           "how do I treat leaf rust?",
	})
	require.NoError(t, err)
	require.False(t, result.Queued)
	require.Equal(t, store.RoleModel, result.Message.Role)
	require.Equal(t, "Use a fungicide.", result.Message.Content)
	require.Equal(t, StateIdle, controller.State())

	messages, err := s.ListMessages(ctx, &store.FindMessage{ConversationID: &conversation.ID})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, store.RoleUser, messages[0].Role)
	require.Equal(t, store.RoleModel, messages[1].Role)
}

func TestChatSubmitFailureRollsBackUserMessage(t *testing.T) {
	ctx := context.Background()
	gw := &fakeChatGateway{fn: func(context.Context, *gateway.ChatRequest) (string, error) {
		return "", errors.New("model unavailable")
	}}
	controller, s, _ := newChatFixture(t, gw, true)
	conversation := newTestConversation(t, s)

	_, err := controller.Submit(ctx, &ChatSubmit{ConversationUID: conversation.UID, Query: "hello"})
	require.Error(t, err)
	require.Equal(t, StateIdle, controller.State())

	// The optimistic user message must not survive the failure.
	messages, err := s.ListMessages(ctx, &store.FindMessage{ConversationID: &conversation.ID})
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestChatSubmitOfflineQueues(t *testing.T) {
	ctx := context.Background()
	gw := &fakeChatGateway{fn: func(context.Context, *gateway.ChatRequest) (string, error) {
		t.Fatal("gateway must not be called while offline")
		return "", nil
	}}
	controller, s, _ := newChatFixture(t, gw, false)
	conversation := newTestConversation(t, s)

	result, err := controller.Submit(ctx, &ChatSubmit{ConversationUID: conversation.UID, Query: "hello"})
	require.NoError(t, err)
	require.True(t, result.Queued)
	require.Equal(t, StateQueued, controller.State())

	// The user message is visible immediately even though nothing was sent.
	messages, err := s.ListMessages(ctx, &store.FindMessage{ConversationID: &conversation.ID})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, store.RoleUser, messages[0].Role)

	pending, err := s.GetPendingRequest(ctx, store.SlotChat)
	require.NoError(t, err)
	require.NotNil(t, pending)
}

func TestChatOfflineResubmitOverwritesQueued(t *testing.T) {
	ctx := context.Background()
	gw := &fakeChatGateway{fn: func(context.Context, *gateway.ChatRequest) (string, error) {
		return "", nil
	}}
	controller, s, _ := newChatFixture(t, gw, false)
	conversation := newTestConversation(t, s)

	_, err := controller.Submit(ctx, &ChatSubmit{ConversationUID: conversation.UID, Query: "first"})
	require.NoError(t, err)
	_, err = controller.Submit(ctx, &ChatSubmit{ConversationUID: conversation.UID, Query: "second"})
	require.NoError(t, err)

	// One slot per channel: only the newest request survives.
	pending, err := s.GetPendingRequest(ctx, store.SlotChat)
	require.NoError(t, err)
	require.NotNil(t, pending)

	var payload chatPayload
	require.NoError(t, json.Unmarshal(pending.Payload, &payload))
	require.Equal(t, "second", payload.Query)
}

func TestChatResumeOnReconnect(t *testing.T) {
	ctx := context.Background()
	gw := &fakeChatGateway{fn: func(_ context.Context, req *gateway.ChatRequest) (string, error) {
		return "answered after reconnect: " + req.Query, nil
	}}
	controller, s, monitor := newChatFixture(t, gw, false)
	conversation := newTestConversation(t, s)

	result, err := controller.Submit(ctx, &ChatSubmit{ConversationUID: conversation.UID, Query: "ping"})
	require.NoError(t, err)
	require.True(t, result.Queued)

	monitor.SetOnline(true)

	require.Eventually(t, func() bool {
		messages, err := s.ListMessages(ctx, &store.FindMessage{ConversationID: &conversation.ID})
		return err == nil && len(messages) == 2
	}, 5*time.Second, 10*time.Millisecond, "queued request was not replayed")

	require.Equal(t, 1, gw.callCount())
	require.Equal(t, StateIdle, controller.State())

	pending, err := s.GetPendingRequest(ctx, store.SlotChat)
	require.NoError(t, err)
	require.Nil(t, pending, "replayed request must leave the queue")

	// A second transition must not replay anything: the slot is empty.
	monitor.SetOnline(false)
	monitor.SetOnline(true)
	require.Eventually(t, func() bool {
		return controller.State() == StateIdle
	}, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, 1, gw.callCount())
}

func TestChatBusyWhileInFlight(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeChatGateway{fn: func(context.Context, *gateway.ChatRequest) (string, error) {
		close(entered)
		<-release
		return "done", nil
	}}
	controller, s, _ := newChatFixture(t, gw, true)
	conversation := newTestConversation(t, s)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := controller.Submit(ctx, &ChatSubmit{ConversationUID: conversation.UID, Query: "slow"})
		require.NoError(t, err)
	}()

	<-entered
	require.Equal(t, StateSubmitting, controller.State())

	_, err := controller.Submit(ctx, &ChatSubmit{ConversationUID: conversation.UID, Query: "rejected"})
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()
	require.Equal(t, StateIdle, controller.State())
}

func TestChatHistoryExcludesCurrentMessage(t *testing.T) {
	ctx := context.Background()
	var got []string
	gw := &fakeChatGateway{fn: func(_ context.Context, req *gateway.ChatRequest) (string, error) {
		got = nil
		for _, m := range req.History {
			got = append(got, m.Role+": "+m.Content)
		}
		return "reply", nil
	}}
	controller, s, _ := newChatFixture(t, gw, true)
	conversation := newTestConversation(t, s)

	_, err := controller.Submit(ctx, &ChatSubmit{ConversationUID: conversation.UID, Query: "first question"})
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = controller.Submit(ctx, &ChatSubmit{ConversationUID: conversation.UID, Query: "second question"})
	require.NoError(t, err)
	require.Equal(t, []string{"user: first question", "assistant: reply"}, got)
}

func TestChatSubmitUnknownConversation(t *testing.T) {
	gw := &fakeChatGateway{fn: func(context.Context, *gateway.ChatRequest) (string, error) {
		return "", nil
	}}
	controller, _, _ := newChatFixture(t, gw, true)

	_, err := controller.Submit(context.Background(), &ChatSubmit{ConversationUID: "missing", Query: "hi"})
	require.Error(t, err)
	require.Equal(t, StateIdle, controller.State())
}
