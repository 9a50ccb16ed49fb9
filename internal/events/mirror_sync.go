package events

const MirrorSyncTopic = "attendance.mirror.sync.v1"

// MirrorDayEntry mirrors one calendar day of the external realtime store:
// local clock strings, combined with the date key to form full timestamps.
type MirrorDayEntry struct {
	CheckIn  string  `json:"check_in"`
	CheckOut *string `json:"check_out,omitempty"`
}

// MirrorSyncEvent is the change notification the external mirror pushes.
// Data is keyed by date (YYYY-MM-DD). The flattened single-date variant is
// carried in Date/CheckIn/CheckOut instead of Data.
type MirrorSyncEvent struct {
	TagID    string                    `json:"tag_id"`
	Data     map[string]MirrorDayEntry `json:"data,omitempty"`
	Date     string                    `json:"date,omitempty"`
	CheckIn  string                    `json:"check_in,omitempty"`
	CheckOut *string                   `json:"check_out,omitempty"`
}
