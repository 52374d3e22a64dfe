package types

// Payloads published on the bus. Topics live in the publishing service.

// PlaybackStatus is retained on viz/state.
type PlaybackStatus struct {
	State  PlaybackState `json:"state"`
	Reason string        `json:"reason,omitempty"` // "button", "exhausted", "bus_write", ...
	Frames uint32        `json:"frames"`           // frames applied in the current/last cycle
	TSms   int64         `json:"ts_ms"`
}

// PlaybackError is published on viz/error.
type PlaybackError struct {
	Code  string `json:"code"`
	Frame uint32 `json:"frame"`
	Msg   string `json:"msg,omitempty"`
	TSms  int64  `json:"ts_ms"`
}

// FrameApplied is published on viz/frame after each successful strip write.
type FrameApplied struct {
	Index   uint32 `json:"index"`
	Updates int    `json:"updates"`
	Dropped int    `json:"dropped"` // registry misses
	TSms    int64  `json:"ts_ms"`
}

// ButtonPress is published on button/press for every accepted edge.
type ButtonPress struct {
	Delivered bool  `json:"delivered"` // false when coalesced into a pending signal
	TSms      int64 `json:"ts_ms"`
}

// Heartbeat is published periodically on sys/heartbeat.
type Heartbeat struct {
	Seq       uint32 `json:"seq"`
	UptimeMs  int64  `json:"uptime_ms"`
	HeapInuse uint32 `json:"heap_inuse"`
	Mallocs   uint32 `json:"mallocs"`
	Frees     uint32 `json:"frees"`

	// Strip counters, filled by the composition root.
	StripFrames    uint32 `json:"strip_frames"`
	StripRejected  uint32 `json:"strip_rejected"`
	StripBusErrors uint32 `json:"strip_bus_errors"`
	ButtonDrops    uint32 `json:"button_drops"`
}
