package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
)

// ActivityOutbox is the slice of the repository the publisher needs.
type ActivityOutbox interface {
	UnpublishedActivities(ctx context.Context, limit int) ([]domain.UserActivity, error)
	MarkActivitiesPublished(ctx context.Context, ids []int64) error
}

// OutboxExtractor reads unpublished activities from the repository. It
// implements both BatchExtractor and Committer.
type OutboxExtractor struct {
	outbox        ActivityOutbox
	flushInterval time.Duration
}

// NewOutboxExtractor creates an extractor that waits flushInterval before
// returning an empty batch.
func NewOutboxExtractor(outbox ActivityOutbox, flushInterval time.Duration) *OutboxExtractor {
	return &OutboxExtractor{outbox: outbox, flushInterval: flushInterval}
}

// ExtractBatch returns up to batchSize activities, oldest first.
func (o *OutboxExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.UserActivity, error) {
	batch, err := o.outbox.UnpublishedActivities(ctx, batchSize)
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 && !sleepWithContext(ctx, o.flushInterval) {
		return nil, ctx.Err()
	}
	return batch, nil
}

// Commit marks ids as published.
func (o *OutboxExtractor) Commit(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return o.outbox.MarkActivitiesPublished(ctx, ids)
}
