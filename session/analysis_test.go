package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/cropify/cropify/ai/gateway"
	"github.com/cropify/cropify/store"
	"github.com/cropify/cropify/store/kv"
)

type fakeAnalysisGateway struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, mimeType string, image []byte) (*gateway.DiseaseReport, error)
}

func (f *fakeAnalysisGateway) IdentifyDisease(ctx context.Context, mimeType string, image []byte) (*gateway.DiseaseReport, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(ctx, mimeType, image)
}

func (f *fakeAnalysisGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newAnalysisFixture(t *testing.T, gw AnalysisGateway, online bool) (*AnalysisController, kv.Store, *Monitor) {
	t.Helper()

	s := newTestStore(t)
	monitor := NewMonitor()
	monitor.SetOnline(online)
	snapshots := kv.NewMemory()
	controller, err := NewAnalysisController(AnalysisControllerConfig{
		Gateway:   gw,
		Monitor:   monitor,
		Queue:     NewQueue(s, nil),
		Snapshots: snapshots,
	})
	require.NoError(t, err)
	return controller, snapshots, monitor
}

func leafBlightReport() *gateway.DiseaseReport {
	return &gateway.DiseaseReport{
		CropDetected: true,
		Findings: []gateway.Finding{{
			DiseaseName:     "Leaf Blight",
			ConfidenceScore: 88,
			Treatment:       []string{"Apply an appropriate fungicide every 7-10 days."},
			Prevention:      []string{"Plant disease-resistant varieties."},
		}},
	}
}

func TestAnalyzeOnlineSuccess(t *testing.T) {
	ctx := context.Background()
	gw := &fakeAnalysisGateway{fn: func(_ context.Context, mimeType string, image []byte) (*gateway.DiseaseReport, error) {
		require.Equal(t, "image/png", mimeType)
		require.Equal(t, []byte("fake-png"), image)
		return leafBlightReport(), nil
	}}
	controller, _, _ := newAnalysisFixture(t, gw, true)

	result, err := controller.Analyze(ctx, "image/png", []byte("fake-png"))
	require.NoError(t, err)
	require.False(t, result.Queued)
	require.Equal(t, "Leaf Blight", result.Report.Findings[0].DiseaseName)
	require.Equal(t, StateIdle, controller.State())

	snapshot, ok := controller.Snapshot(ctx)
	require.True(t, ok)
	require.NotNil(t, snapshot.Result)
	require.True(t, strings.HasPrefix(snapshot.ImageRef, "data:image/png;base64,"))
	require.False(t, snapshot.Pending)
}

func TestAnalyzeFailureKeepsImage(t *testing.T) {
	ctx := context.Background()
	gw := &fakeAnalysisGateway{fn: func(context.Context, string, []byte) (*gateway.DiseaseReport, error) {
		return nil, errors.New("vision model unavailable")
	}}
	controller, _, _ := newAnalysisFixture(t, gw, true)

	_, err := controller.Analyze(ctx, "image/jpeg", []byte("photo"))
	require.Error(t, err)
	require.Equal(t, StateIdle, controller.State())

	// The image must stay selected so the user can retry without re-uploading.
	snapshot, ok := controller.Snapshot(ctx)
	require.True(t, ok)
	require.NotEmpty(t, snapshot.ImageRef)
	require.Nil(t, snapshot.Result)
}

func TestAnalyzeOfflineQueuesAndResumes(t *testing.T) {
	ctx := context.Background()
	gw := &fakeAnalysisGateway{fn: func(context.Context, string, []byte) (*gateway.DiseaseReport, error) {
		return leafBlightReport(), nil
	}}
	controller, _, monitor := newAnalysisFixture(t, gw, false)

	result, err := controller.Analyze(ctx, "image/jpeg", []byte("photo"))
	require.NoError(t, err)
	require.True(t, result.Queued)
	require.Equal(t, StateQueued, controller.State())
	require.Equal(t, 0, gw.callCount())

	snapshot, ok := controller.Snapshot(ctx)
	require.True(t, ok)
	require.True(t, snapshot.Pending)

	monitor.SetOnline(true)

	require.Eventually(t, func() bool {
		snapshot, ok := controller.Snapshot(ctx)
		return ok && snapshot.Result != nil
	}, 5*time.Second, 10*time.Millisecond, "queued analysis was not replayed")
	require.Equal(t, 1, gw.callCount())
	require.Equal(t, StateIdle, controller.State())
}

func TestAnalyzeBusyWhileInFlight(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeAnalysisGateway{fn: func(context.Context, string, []byte) (*gateway.DiseaseReport, error) {
		close(entered)
		<-release
		return leafBlightReport(), nil
	}}
	controller, _, _ := newAnalysisFixture(t, gw, true)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := controller.Analyze(ctx, "image/jpeg", []byte("slow"))
		require.NoError(t, err)
	}()

	<-entered
	_, err := controller.Analyze(ctx, "image/jpeg", []byte("rejected"))
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()
}

func TestResetClearsSessionAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gw := &fakeAnalysisGateway{fn: func(context.Context, string, []byte) (*gateway.DiseaseReport, error) {
		return leafBlightReport(), nil
	}}
	controller, _, _ := newAnalysisFixture(t, gw, true)

	_, err := controller.Analyze(ctx, "image/jpeg", []byte("photo"))
	require.NoError(t, err)

	require.NoError(t, controller.Reset(ctx))
	_, ok := controller.Snapshot(ctx)
	require.False(t, ok)
	require.Equal(t, StateIdle, controller.State())

	// Resetting an already-empty session is a no-op, not an error.
	require.NoError(t, controller.Reset(ctx))
}

func TestResetDropsInFlightResponse(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeAnalysisGateway{fn: func(context.Context, string, []byte) (*gateway.DiseaseReport, error) {
		close(entered)
		<-release
		return leafBlightReport(), nil
	}}
	controller, _, _ := newAnalysisFixture(t, gw, true)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := controller.Analyze(ctx, "image/jpeg", []byte("photo"))
		require.ErrorIs(t, err, ErrStale)
	}()

	<-entered
	require.NoError(t, controller.Reset(ctx))
	close(release)
	wg.Wait()

	// The late response must not resurrect the cleared session.
	_, ok := controller.Snapshot(ctx)
	require.False(t, ok)
	require.Equal(t, StateIdle, controller.State())
}

func TestAnalyzeRejectsEmptyImage(t *testing.T) {
	gw := &fakeAnalysisGateway{fn: func(context.Context, string, []byte) (*gateway.DiseaseReport, error) {
		return nil, nil
	}}
	controller, _, _ := newAnalysisFixture(t, gw, true)

	_, err := controller.Analyze(context.Background(), "image/jpeg", nil)
	require.Error(t, err)
	_, err = controller.Analyze(context.Background(), "image/jpeg", []byte{})
	require.Error(t, err)
}

func TestPendingRequestSurvivesRestart(t *testing.T) {
	// A queued request is durable: a fresh controller over the same store picks
	// it up on the next connectivity transition.
	ctx := context.Background()
	s := newTestStore(t)
	queue := NewQueue(s, nil)

	offline := NewMonitor()
	offline.SetOnline(false)
	snapshots := kv.NewMemory()
	first, err := NewAnalysisController(AnalysisControllerConfig{
		Gateway: &fakeAnalysisGateway{fn: func(context.Context, string, []byte) (*gateway.DiseaseReport, error) {
			return nil, errors.New("offline")
		}},
		Monitor:   offline,
		Queue:     queue,
		Snapshots: snapshots,
	})
	require.NoError(t, err)
	_, err = first.Analyze(ctx, "image/jpeg", []byte("photo"))
	require.NoError(t, err)

	pending, err := s.GetPendingRequest(ctx, store.SlotAnalysis)
	require.NoError(t, err)
	require.NotNil(t, pending)

	// "Restart": a brand new controller replays the persisted request.
	gw := &fakeAnalysisGateway{fn: func(context.Context, string, []byte) (*gateway.DiseaseReport, error) {
		return leafBlightReport(), nil
	}}
	second, err := NewAnalysisController(AnalysisControllerConfig{
		Gateway:   gw,
		Monitor:   NewMonitor(),
		Queue:     queue,
		Snapshots: snapshots,
	})
	require.NoError(t, err)
	second.ResumePending(ctx)

	require.Equal(t, 1, gw.callCount())
	snapshot, ok := second.Snapshot(ctx)
	require.True(t, ok)
	require.NotNil(t, snapshot.Result)
}
