// Package pipeline publishes recorded user activities from the repository
// outbox to the activity topic.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/couchcryptid/breathing-rivers/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize unpublished activities.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.UserActivity, error)
}

// Committer marks activities as published so they are not extracted again.
type Committer interface {
	Commit(ctx context.Context, ids []int64) error
}

// Transformer converts an activity into an output event.
type Transformer interface {
	Transform(ctx context.Context, a domain.UserActivity) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	committer   Committer
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, c Committer, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		committer:   c,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has read the outbox
// successfully at least once.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("activity publisher has not reached the outbox yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("activity publisher started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("activity publisher stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}
	p.ready.Store(true)

	if len(batch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.ActivitiesExtracted.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	loaded, ok := p.transformAndLoad(ctx, batch, backoff)
	if !ok {
		return false
	}
	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		*backoff = initialBackoff
	}
	return true
}

// transformAndLoad transforms each activity, loads the successes and marks
// them published. Activities that cannot be transformed are marked published
// immediately so they do not block the outbox. Returns the number of loaded
// activities and false if the pipeline should stop.
func (p *Pipeline) transformAndLoad(ctx context.Context, batch []domain.UserActivity, backoff *time.Duration) (int, bool) {
	out := make([]domain.OutputEvent, 0, len(batch))
	ids := make([]int64, 0, len(batch))

	for _, a := range batch {
		ev, err := p.transformer.Transform(ctx, a)
		if err != nil {
			p.logger.Warn("transform failed, skipping activity",
				"error", err,
				"activity_id", a.ID,
				"user_id", a.UserID,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, []int64{a.ID})
			continue
		}
		out = append(out, ev)
		ids = append(ids, a.ID)
	}

	if len(out) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, out); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(out))
		return 0, p.backoffOrStop(ctx, backoff)
	}

	p.metrics.ActivitiesPublished.Add(float64(len(out)))
	p.commit(ctx, ids)
	return len(out), true
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func (p *Pipeline) commit(ctx context.Context, ids []int64) {
	if err := p.committer.Commit(ctx, ids); err != nil {
		p.logger.Warn("mark activities published failed", "error", err, "count", len(ids))
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
