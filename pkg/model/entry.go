package model

// SocketEntry is one finished report row. PIDs is the owner list actually
// used for resolution and sampling, which may be a truncated prefix of
// Record.PIDs when a per-socket owner cap is in effect. Stats is nil when
// sampling was not requested or no owner produced a sample.
type SocketEntry struct {
	Record  SocketRecord     `json:"socket"`
	Process string           `json:"process"`
	PIDs    []int32          `json:"pids"`
	Stats   *AggregatedStats `json:"stats,omitempty"`
}
