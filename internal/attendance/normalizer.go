package attendance

import (
	"sort"
	"time"

	attendanceerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/attendance/errors"
	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/events"

	"go.uber.org/zap"
)

const (
	SourceReader = "reader"
	SourceMobile = "mobile"
	SourceMirror = "mirror"
)

// Normalizer converts the heterogeneous inbound shapes (reader/mobile
// JSON, mirror nested-by-date payloads, flattened single-date payloads)
// into CanonicalEvents. All time parsing happens here; the engine only
// ever sees full timestamps.
type Normalizer struct {
	mode   DispatchMode
	loc    *time.Location
	logger *zap.Logger
}

func NewNormalizer(mode DispatchMode, loc *time.Location, logger ...*zap.Logger) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	if mode == "" {
		mode = DispatchExplicit
	}
	l := zap.L().Named("attendance.normalizer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.normalizer")
	}
	return &Normalizer{mode: mode, loc: loc, logger: l}
}

func (n *Normalizer) Mode() DispatchMode {
	return n.mode
}

// NormalizeTap handles the reader and mobile submission shape. The same
// function serves live submissions and offline-queue replays so both
// produce identical idempotency keys.
func (n *Normalizer) NormalizeTap(req TapRequest, source string) (CanonicalEvent, error) {
	if req.OccurredAt.IsZero() {
		return CanonicalEvent{}, attendanceerrors.ErrInvalidTimestamp
	}

	ev := CanonicalEvent{
		TagID:      req.TagID,
		OccurredAt: req.OccurredAt.In(n.loc),
		ReaderID:   req.ReaderID,
		Location:   req.Location,
		Method:     req.Method,
		Source:     source,
		LogKey:     req.IdempotencyKey,
	}
	if ev.Method == "" {
		ev.Method = MethodNFC
	}

	switch n.mode {
	case DispatchToggle:
		ev.Kind = KindToggle
	default:
		switch req.Action {
		case ActionCheckIn:
			ev.Kind = KindOpen
		case ActionCheckOut:
			ev.Kind = KindClose
		case "":
			return CanonicalEvent{}, attendanceerrors.ErrMissingAction
		default:
			return CanonicalEvent{}, attendanceerrors.ErrInvalidAction
		}
	}

	if ev.Kind == KindOpen && ev.LogKey == "" {
		ev.LogKey = LogKeyForCheckIn(ev.TagID, ev.OccurredAt)
	}

	return ev, nil
}

// NormalizeMirror expands a mirror payload into zero, one, or two events
// per date entry: an open event when check_in is present, a close event
// when check_out is present. Date entries are processed in chronological
// order so multi-day payloads replay deterministically. A malformed date
// entry is skipped with a warning; it must not take the payload's valid
// days down with it, since redelivery would fail the same way.
func (n *Normalizer) NormalizeMirror(payload events.MirrorSyncEvent) ([]CanonicalEvent, error) {
	data := payload.Data
	if len(data) == 0 && payload.Date != "" {
		// Flattened single-date variant
		data = map[string]events.MirrorDayEntry{
			payload.Date: {CheckIn: payload.CheckIn, CheckOut: payload.CheckOut},
		}
	}

	dates := make([]string, 0, len(data))
	for d := range data {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	evs := make([]CanonicalEvent, 0, 2*len(dates))
	for _, date := range dates {
		entry := data[date]
		expanded, err := n.normalizeMirrorDay(payload.TagID, date, entry)
		if err != nil {
			n.logger.Warn("skipping malformed mirror day entry",
				zap.String("tag_id", payload.TagID),
				zap.String("date", date),
				zap.Error(err),
			)
			continue
		}
		evs = append(evs, expanded...)
	}
	return evs, nil
}

func (n *Normalizer) normalizeMirrorDay(tagID, date string, entry events.MirrorDayEntry) ([]CanonicalEvent, error) {
	if _, err := time.ParseInLocation("2006-01-02", date, n.loc); err != nil {
		return nil, attendanceerrors.ErrInvalidDateFormat
	}

	var evs []CanonicalEvent
	var logKey string

	if entry.CheckIn != "" {
		in, err := n.combine(date, entry.CheckIn)
		if err != nil {
			return nil, err
		}
		logKey = BuildLogKey(tagID, date, entry.CheckIn)
		evs = append(evs, CanonicalEvent{
			TagID:      tagID,
			Kind:       KindOpen,
			OccurredAt: in,
			Method:     MethodNFC,
			Source:     SourceMirror,
			LogKey:     logKey,
		})
	}

	if entry.CheckOut != nil && *entry.CheckOut != "" {
		out, err := n.combine(date, *entry.CheckOut)
		if err != nil {
			return nil, err
		}
		// The close shares the open's log key: both describe the same
		// day record. A close-only entry has no key and falls back to
		// the open-record lookup in the engine.
		evs = append(evs, CanonicalEvent{
			TagID:      tagID,
			Kind:       KindClose,
			OccurredAt: out,
			Method:     MethodNFC,
			Source:     SourceMirror,
			LogKey:     logKey,
		})
	}

	return evs, nil
}

// combine joins a date key with a local clock string into a timestamp.
func (n *Normalizer) combine(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+clock, n.loc)
	if err != nil {
		return time.Time{}, attendanceerrors.ErrInvalidClockFormat
	}
	return t, nil
}
