package body

// TrackerStats holds running lifecycle counters since the last Reset.
type TrackerStats struct {
	Frames           int64 `json:"frames"`            // Update calls with data
	SkippedFrames    int64 `json:"skipped_frames"`    // Update calls without data
	Entered          int64 `json:"entered"`           // new records created
	Left             int64 `json:"left"`              // enabled → disabled transitions
	Resumed          int64 `json:"resumed"`           // disabled → enabled transitions
	Evicted          int64 `json:"evicted"`           // records purged by MaxMissedFrames
	InvalidPoses     int64 `json:"invalid_poses"`     // tracked entries rejected as invalid
	DuplicatePoses   int64 `json:"duplicate_poses"`   // repeated identities within one snapshot
	SubscriberPanics int64 `json:"subscriber_panics"` // recovered subscriber faults

	Records int `json:"records"` // records in the identity map
	Enabled int `json:"enabled"` // enabled records
}
