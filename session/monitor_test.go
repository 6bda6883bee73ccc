package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cropify/cropify/store"
)

func TestMonitorStartsOnline(t *testing.T) {
	require.True(t, NewMonitor().Online())
}

func TestMonitorNotifiesOnTransitionsOnly(t *testing.T) {
	m := NewMonitor()
	var seen []bool
	m.Subscribe(func(online bool) { seen = append(seen, online) })

	m.SetOnline(true) // no transition
	m.SetOnline(false)
	m.SetOnline(false) // repeated report, ignored
	m.SetOnline(true)

	require.Equal(t, []bool{false, true}, seen)
	require.True(t, m.Online())
}

func TestMonitorNotifiesSubscribersInOrder(t *testing.T) {
	m := NewMonitor()
	var order []int
	m.Subscribe(func(bool) { order = append(order, 1) })
	m.Subscribe(func(bool) { order = append(order, 2) })

	m.SetOnline(false)
	require.Equal(t, []int{1, 2}, order)
}

func TestQueueTakeIsDestructive(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(newTestStore(t), nil)

	raw, err := q.Take(ctx, store.SlotChat)
	require.NoError(t, err)
	require.Nil(t, raw, "empty slot yields nil payload")

	require.NoError(t, q.Enqueue(ctx, store.SlotChat, map[string]string{"query": "hello"}))

	pending, err := q.IsPending(ctx, store.SlotChat)
	require.NoError(t, err)
	require.True(t, pending)

	raw, err = q.Take(ctx, store.SlotChat)
	require.NoError(t, err)
	require.JSONEq(t, `{"query":"hello"}`, string(raw))

	// The row is gone before the payload is handed out, so a second take
	// cannot replay the same request.
	raw, err = q.Take(ctx, store.SlotChat)
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestQueueSlotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(newTestStore(t), nil)

	require.NoError(t, q.Enqueue(ctx, store.SlotChat, "chat-payload"))
	require.NoError(t, q.Enqueue(ctx, store.SlotAnalysis, "analysis-payload"))
	require.NoError(t, q.Clear(ctx, store.SlotChat))

	pending, err := q.IsPending(ctx, store.SlotChat)
	require.NoError(t, err)
	require.False(t, pending)

	pending, err = q.IsPending(ctx, store.SlotAnalysis)
	require.NoError(t, err)
	require.True(t, pending)
}
