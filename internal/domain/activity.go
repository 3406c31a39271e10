package domain

import (
	"fmt"
	"time"
)

// ActivityType classifies a point-earning action.
type ActivityType string

const (
	ActivityQuiz       ActivityType = "quiz"
	ActivityCleanup    ActivityType = "cleanup"
	ActivityPlanting   ActivityType = "planting"
	ActivitySimulation ActivityType = "simulation"
)

// ParseActivityType validates an activity type.
func ParseActivityType(s string) (ActivityType, error) {
	switch ActivityType(s) {
	case ActivityQuiz, ActivityCleanup, ActivityPlanting, ActivitySimulation:
		return ActivityType(s), nil
	default:
		return "", fmt.Errorf("%w: unknown activity type %q", ErrInvalidInput, s)
	}
}

// UserActivity is an append-only log entry. ID is assigned by the store.
type UserActivity struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"userId"`
	Type      ActivityType   `json:"type"`
	Points    int            `json:"points"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewActivity stamps an activity with the current time.
func NewActivity(userID string, typ ActivityType, points int, details map[string]any) UserActivity {
	return UserActivity{
		UserID:    userID,
		Type:      typ,
		Points:    points,
		Timestamp: Now(),
		Details:   details,
	}
}

// OutputEvent is the serialized form of an activity destined for the
// activity topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
