package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cropify/cropify/ai/gateway"
	"github.com/cropify/cropify/store"
	"github.com/cropify/cropify/store/kv"
)

// analysisSnapshotKey is the snapshot namespace for the disease detector.
const analysisSnapshotKey = "disease-detector"

// AnalysisSnapshot is the persisted state of the single analysis slot.
// Replaced wholesale on every new image selection or reset.
type AnalysisSnapshot struct {
	// ImageRef is the selected image as a data URL.
	ImageRef string `json:"imageRef"`

	Result  *gateway.DiseaseReport `json:"result,omitempty"`
	Pending bool                   `json:"pending"`

	UpdatedTs int64 `json:"updatedTs"`
}

// analysisPayload is the persisted form of a queued analysis request.
type analysisPayload struct {
	RequestID string `json:"requestId"`
	MimeType  string `json:"mimeType"`
	Image     []byte `json:"image"`
}

// AnalysisResult is the outcome of one analysis submission.
type AnalysisResult struct {
	Queued bool                   `json:"queued"`
	Report *gateway.DiseaseReport `json:"report,omitempty"`
}

// AnalysisGateway is the inference dependency of the analysis controller.
// *gateway.Gateway satisfies it; tests substitute fakes.
type AnalysisGateway interface {
	IdentifyDisease(ctx context.Context, mimeType string, image []byte) (*gateway.DiseaseReport, error)
}

// AnalysisControllerConfig wires an analysis controller.
type AnalysisControllerConfig struct {
	Gateway   AnalysisGateway
	Monitor   *Monitor
	Queue     *Queue
	Snapshots kv.Store
}

// AnalysisController owns the single image-analysis slot. Unlike chat there
// is no history: each submission replaces the previous session entirely, and
// a failed submission keeps the image in place so the user can retry without
// re-uploading.
type AnalysisController struct {
	gateway   AnalysisGateway
	monitor   *Monitor
	queue     *Queue
	snapshots kv.Store

	mu    sync.Mutex
	state State
	gen   uint64
}

// NewAnalysisController creates the analysis controller and subscribes it to
// connectivity transitions.
func NewAnalysisController(cfg AnalysisControllerConfig) (*AnalysisController, error) {
	if cfg.Gateway == nil || cfg.Monitor == nil || cfg.Queue == nil || cfg.Snapshots == nil {
		return nil, errors.New("gateway, monitor, queue and snapshots are required")
	}
	c := &AnalysisController{
		gateway:   cfg.Gateway,
		monitor:   cfg.Monitor,
		queue:     cfg.Queue,
		snapshots: cfg.Snapshots,
		state:     StateIdle,
	}
	cfg.Monitor.Subscribe(func(online bool) {
		if online {
			go c.ResumePending(context.Background())
		}
	})
	return c, nil
}

// State returns the channel state.
func (c *AnalysisController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the persisted analysis session, if any.
func (c *AnalysisController) Snapshot(ctx context.Context) (*AnalysisSnapshot, bool) {
	return kv.Load[AnalysisSnapshot](ctx, c.snapshots, analysisSnapshotKey)
}

// Analyze submits a crop photo for disease identification. A new image
// replaces the previous session wholesale. Offline submissions are queued and
// replayed on reconnect.
func (c *AnalysisController) Analyze(ctx context.Context, mimeType string, image []byte) (*AnalysisResult, error) {
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}

	online := c.monitor.Online()

	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.state == StateQueued && online {
		c.mu.Unlock()
		go c.ResumePending(context.Background())
		return nil, ErrBusy
	}
	c.gen++
	gen := c.gen
	if online {
		c.state = StateSubmitting
	} else {
		c.state = StateQueued
	}
	c.mu.Unlock()

	snapshot := &AnalysisSnapshot{
		ImageRef:  imageDataURL(mimeType, image),
		Pending:   !online,
		UpdatedTs: time.Now().Unix(),
	}
	kv.Save(ctx, c.snapshots, analysisSnapshotKey, snapshot)

	if !online {
		payload := analysisPayload{
			RequestID: uuid.New().String()[:8],
			MimeType:  mimeType,
			Image:     image,
		}
		if err := c.queue.Enqueue(ctx, store.SlotAnalysis, payload); err != nil {
			c.settle(gen)
			return nil, err
		}
		slog.Info("analysis request queued while offline", "request", payload.RequestID)
		if c.monitor.Online() {
			go c.ResumePending(context.Background())
		}
		return &AnalysisResult{Queued: true}, nil
	}

	return c.perform(ctx, gen, snapshot.ImageRef, mimeType, image)
}

// Reset clears the analysis session: queued request, snapshot, and results.
// Idempotent; an in-flight response is dropped when it eventually arrives.
func (c *AnalysisController) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	c.state = StateIdle
	c.mu.Unlock()

	if err := c.queue.Clear(ctx, store.SlotAnalysis); err != nil {
		return err
	}
	kv.Clear(ctx, c.snapshots, analysisSnapshotKey)
	return nil
}

// ResumePending replays the queued analysis request, if any.
func (c *AnalysisController) ResumePending(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.state = StateSubmitting
	c.mu.Unlock()

	raw, err := c.queue.Take(ctx, store.SlotAnalysis)
	if err != nil {
		slog.Error("analysis resume: reading queue failed", "error", err)
		c.settle(gen)
		return
	}
	if raw == nil {
		c.settle(gen)
		return
	}

	var payload analysisPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		slog.Warn("analysis resume: malformed queued payload dropped", "error", err)
		c.settle(gen)
		return
	}

	slog.Info("replaying queued analysis request", "request", payload.RequestID)
	_, err = c.perform(ctx, gen, imageDataURL(payload.MimeType, payload.Image), payload.MimeType, payload.Image)
	if c.queue.exporter != nil {
		c.queue.exporter.ObserveQueueFlush(store.SlotAnalysis, err)
	}
	if err != nil && !errors.Is(err, ErrStale) {
		slog.Error("replaying queued analysis request failed", "error", err)
	}
}

func (c *AnalysisController) perform(ctx context.Context, gen uint64, imageRef, mimeType string, image []byte) (*AnalysisResult, error) {
	report, err := c.gateway.IdentifyDisease(ctx, mimeType, image)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		slog.Warn("dropping stale analysis response")
		return nil, ErrStale
	}
	c.state = StateIdle
	c.mu.Unlock()

	snapshot := &AnalysisSnapshot{
		ImageRef:  imageRef,
		UpdatedTs: time.Now().Unix(),
	}
	if err != nil {
		// The image stays in place so the user can retry without
		// re-uploading.
		kv.Save(ctx, c.snapshots, analysisSnapshotKey, snapshot)
		return nil, errors.Wrap(err, "disease analysis")
	}

	snapshot.Result = report
	kv.Save(ctx, c.snapshots, analysisSnapshotKey, snapshot)
	return &AnalysisResult{Report: report}, nil
}

func (c *AnalysisController) settle(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.state = StateIdle
	}
}

func imageDataURL(mimeType string, image []byte) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
}
