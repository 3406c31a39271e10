package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	qrPrefix    = "BR_"
	qrMinLength = 10
)

// EventType is a community event category.
type EventType string

const (
	EventCleanup    EventType = "cleanup"
	EventPlanting   EventType = "planting"
	EventMonitoring EventType = "monitoring"
)

var eventPoints = map[EventType]int{
	EventCleanup:  50,
	EventPlanting: 30,
}

// ParseEventType validates an event type. Monitoring events can be generated
// but do not award points on check-in.
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventCleanup, EventPlanting, EventMonitoring:
		return EventType(s), nil
	default:
		return "", fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, s)
	}
}

// CheckInPoints returns the points for scanning an event of type t.
func CheckInPoints(t EventType) (int, error) {
	p, ok := eventPoints[t]
	if !ok {
		return 0, fmt.Errorf("%w: event type %q has no check-in", ErrInvalidInput, t)
	}
	return p, nil
}

// ValidQRCode reports whether code looks like an event QR code.
func ValidQRCode(code string) bool {
	return strings.HasPrefix(code, qrPrefix) && utf8.RuneCountInString(code) > qrMinLength
}

// GenerateQRCode builds the QR payload for an event.
func GenerateQRCode(eventID int, t EventType) string {
	return fmt.Sprintf("BR_EVENT_%d_%s_%d", eventID, strings.ToUpper(string(t)), Now().UnixMilli())
}

// QRResult is the outcome of a QR check-in.
type QRResult struct {
	Valid   bool   `json:"valid"`
	Points  int    `json:"points"`
	Message string `json:"message"`
}

// CheckInResult scores a scan.
func CheckInResult(valid bool, t EventType, points int) QRResult {
	if !valid {
		return QRResult{Message: "Invalid QR code. Please try again."}
	}
	return QRResult{
		Valid:   true,
		Points:  points,
		Message: fmt.Sprintf("Great! You earned %d points for %s", points, t),
	}
}
