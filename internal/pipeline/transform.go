package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
)

// Message header names set on every published activity.
const (
	HeaderActivityType = "activity_type"
	HeaderRecordedAt   = "recorded_at"
)

// ActivityTransformer serializes activities as JSON keyed by user id.
type ActivityTransformer struct{}

// NewTransformer creates an ActivityTransformer.
func NewTransformer() *ActivityTransformer {
	return &ActivityTransformer{}
}

// Transform implements Transformer.
func (t *ActivityTransformer) Transform(_ context.Context, a domain.UserActivity) (domain.OutputEvent, error) {
	if a.UserID == "" {
		return domain.OutputEvent{}, errors.New("activity has no user id")
	}
	value, err := json.Marshal(a)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("marshal activity %d: %w", a.ID, err)
	}
	return domain.OutputEvent{
		Key:   []byte(a.UserID),
		Value: value,
		Headers: map[string]string{
			HeaderActivityType: string(a.Type),
			HeaderRecordedAt:   a.Timestamp.UTC().Format(time.RFC3339Nano),
		},
	}, nil
}
