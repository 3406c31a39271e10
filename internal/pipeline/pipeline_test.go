package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/adapter/memory"
	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/couchcryptid/breathing-rivers/internal/observability"
	"github.com/couchcryptid/breathing-rivers/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, a domain.UserActivity) (domain.OutputEvent, error) {
	if m.err != nil {
		return domain.OutputEvent{}, m.err
	}
	return domain.OutputEvent{Key: []byte(a.UserID), Value: []byte(a.Type)}, nil
}

// mockLoader fails the first failures calls, then records batches.
type mockLoader struct {
	failures int
	calls    int
	loaded   []domain.OutputEvent
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.calls++
	if m.calls <= m.failures {
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedOutbox(t *testing.T, n int) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, domain.NewUser("u1", "Zara", "zara@example.com", domain.RoleAdult, domain.Nile)))
	for range n {
		_, err := store.AddActivity(ctx, domain.NewActivity("u1", domain.ActivityQuiz, 10, nil))
		require.NoError(t, err)
	}
	return store
}

func newPipeline(store *memory.Store, tfm pipeline.Transformer, ldr pipeline.BatchLoader) *pipeline.Pipeline {
	ext := pipeline.NewOutboxExtractor(store, 10*time.Millisecond)
	return pipeline.New(ext, ext, tfm, ldr, discardLogger(), observability.NewMetricsForTesting(), 2)
}

func unpublished(t *testing.T, store *memory.Store) int {
	t.Helper()
	acts, err := store.UnpublishedActivities(context.Background(), 100)
	require.NoError(t, err)
	return len(acts)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	store := seedOutbox(t, 3)
	ldr := &mockLoader{}
	p := newPipeline(store, &mockTransformer{}, ldr)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Len(t, ldr.loaded, 3)
	assert.Equal(t, 2, ldr.calls, "batches are capped at the batch size")
	assert.Equal(t, 0, unpublished(t, store))
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	store := seedOutbox(t, 1)
	ldr := &mockLoader{}
	p := newPipeline(store, &mockTransformer{}, ldr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorIsCommitted(t *testing.T) {
	store := seedOutbox(t, 1)
	ldr := &mockLoader{}
	p := newPipeline(store, &mockTransformer{err: errors.New("bad data")}, ldr)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.Equal(t, 0, ldr.calls)
	assert.Equal(t, 0, unpublished(t, store), "poison activities must not block the outbox")
}

func TestPipeline_Run_RetriesAfterLoadFailure(t *testing.T) {
	store := seedOutbox(t, 1)
	ldr := &mockLoader{failures: 1}
	p := newPipeline(store, &mockTransformer{}, ldr)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Len(t, ldr.loaded, 1)
	assert.Equal(t, 2, ldr.calls)
	assert.Equal(t, 0, unpublished(t, store))
}

func TestPipeline_Run_LoadFailureLeavesOutbox(t *testing.T) {
	store := seedOutbox(t, 2)
	ldr := &mockLoader{failures: 1000}
	p := newPipeline(store, &mockTransformer{}, ldr)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.Equal(t, 2, unpublished(t, store))
}

func TestActivityTransformer_Transform(t *testing.T) {
	ts := time.Date(2025, time.March, 2, 8, 15, 0, 0, time.UTC)
	a := domain.UserActivity{
		ID:        7,
		UserID:    "u-42",
		Type:      domain.ActivityCleanup,
		Points:    50,
		Timestamp: ts,
		Details:   map[string]any{"qrCode": "BR_EVENT_1_CLEANUP_1"},
	}

	out, err := pipeline.NewTransformer().Transform(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, []byte("u-42"), out.Key)
	assert.Equal(t, map[string]string{
		pipeline.HeaderActivityType: "cleanup",
		pipeline.HeaderRecordedAt:   "2025-03-02T08:15:00Z",
	}, out.Headers)

	var decoded domain.UserActivity
	require.NoError(t, json.Unmarshal(out.Value, &decoded))
	assert.Equal(t, a.ID, decoded.ID)
	assert.Equal(t, a.Type, decoded.Type)
	assert.Equal(t, 50, decoded.Points)
	assert.Equal(t, "BR_EVENT_1_CLEANUP_1", decoded.Details["qrCode"])
}

func TestActivityTransformer_RejectsMissingUser(t *testing.T) {
	_, err := pipeline.NewTransformer().Transform(context.Background(), domain.UserActivity{ID: 1})
	assert.Error(t, err)
}

func TestOutboxExtractor_WaitsWhenEmpty(t *testing.T) {
	ext := pipeline.NewOutboxExtractor(memory.NewStore(), 50*time.Millisecond)

	start := time.Now()
	batch, err := ext.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ext.ExtractBatch(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, ext.Commit(context.Background(), nil))
}
