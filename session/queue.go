package session

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/cropify/cropify/ai/metrics"
	"github.com/cropify/cropify/store"
)

// Queue persists requests that arrive while offline, one slot per channel.
// A newer request for the same slot overwrites the older one: only the most
// recent attempt is worth replaying once connectivity returns.
type Queue struct {
	store    *store.Store
	exporter *metrics.PrometheusExporter
}

// NewQueue creates the offline queue. exporter may be nil.
func NewQueue(s *store.Store, exporter *metrics.PrometheusExporter) *Queue {
	return &Queue{store: s, exporter: exporter}
}

// Enqueue stores payload under slot, replacing any queued predecessor.
func (q *Queue) Enqueue(ctx context.Context, slot string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal queued payload")
	}
	if _, err := q.store.UpsertPendingRequest(ctx, &store.PendingRequest{
		Slot:    slot,
		Payload: raw,
	}); err != nil {
		return errors.Wrapf(err, "enqueue %s", slot)
	}
	q.reportDepth(ctx)
	return nil
}

// Take removes and returns the queued payload for slot, or (nil, nil) when
// the slot is empty. The row is deleted before the payload is returned so a
// replay happens at most once.
func (q *Queue) Take(ctx context.Context, slot string) ([]byte, error) {
	pending, err := q.store.GetPendingRequest(ctx, slot)
	if err != nil {
		return nil, errors.Wrapf(err, "read pending %s", slot)
	}
	if pending == nil {
		return nil, nil
	}
	if err := q.store.DeletePendingRequest(ctx, slot); err != nil {
		return nil, errors.Wrapf(err, "clear pending %s", slot)
	}
	q.reportDepth(ctx)
	return pending.Payload, nil
}

// IsPending reports whether slot holds a queued request.
func (q *Queue) IsPending(ctx context.Context, slot string) (bool, error) {
	pending, err := q.store.GetPendingRequest(ctx, slot)
	if err != nil {
		return false, errors.Wrapf(err, "read pending %s", slot)
	}
	return pending != nil, nil
}

// Clear drops any queued request for slot.
func (q *Queue) Clear(ctx context.Context, slot string) error {
	if err := q.store.DeletePendingRequest(ctx, slot); err != nil {
		return errors.Wrapf(err, "clear pending %s", slot)
	}
	q.reportDepth(ctx)
	return nil
}

func (q *Queue) reportDepth(ctx context.Context) {
	if q.exporter == nil {
		return
	}
	depth := 0
	for _, slot := range []string{store.SlotChat, store.SlotAnalysis} {
		pending, err := q.store.GetPendingRequest(ctx, slot)
		if err == nil && pending != nil {
			depth++
		}
	}
	q.exporter.SetQueueDepth(depth)
}
