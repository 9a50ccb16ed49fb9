package attendance

import (
	"fmt"
	"time"
)

type EventKind string

const (
	// KindOpen and KindClose carry an explicit transition hint.
	KindOpen  EventKind = "open"
	KindClose EventKind = "close"
	// KindToggle carries none; the engine derives the transition from the
	// presence of an open record for the day.
	KindToggle EventKind = "toggle"
)

type DispatchMode string

const (
	DispatchExplicit DispatchMode = "explicit"
	DispatchToggle   DispatchMode = "toggle"
)

// CanonicalEvent is the one shape every ingestion path converges on
// before it reaches the reconciliation engine.
type CanonicalEvent struct {
	TagID      string
	Kind       EventKind
	OccurredAt time.Time
	ReaderID   string
	Location   string
	Method     string
	Source     string
	// LogKey is the idempotency anchor. It is deterministic for the same
	// physical tap regardless of which path delivered it. Empty for taps
	// whose check-in time is only known once the engine opens the record.
	LogKey string
}

// BuildLogKey derives the idempotency key for a tap:
// tagID + "_" + date + "_" + check-in clock time. Both the reader path
// and the mirror path must produce identical keys for the same tap.
func BuildLogKey(tagID, date, checkIn string) string {
	return fmt.Sprintf("%s_%s_%s", tagID, date, checkIn)
}

// LogKeyForCheckIn derives the key from a concrete check-in timestamp.
func LogKeyForCheckIn(tagID string, checkIn time.Time) string {
	return BuildLogKey(tagID, checkIn.Format("2006-01-02"), checkIn.Format("15:04:05"))
}
