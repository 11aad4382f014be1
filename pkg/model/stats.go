package model

import "encoding/json"

// Rate is a bytes-per-second measurement that may be unavailable. Unavailable
// is distinct from a measured zero: no collector produced a reading for the
// process, so the report must not show 0.
type Rate struct {
	BytesPerSec float64
	Valid       bool
}

func RateOf(v float64) Rate {
	return Rate{BytesPerSec: v, Valid: true}
}

func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.BytesPerSec)
}

func (r *Rate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Rate{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = RateOf(v)
	return nil
}

// ProcessStats holds one process's sampled CPU and disk usage. CPUPercent
// is only meaningful after two snapshots spaced by real time. The
// cumulative byte counters are the sampling basis for the disk rates, not
// report material themselves. Network rates are measured separately by the
// throughput collector and joined at aggregation.
type ProcessStats struct {
	PID             int32   `json:"pid"`
	CPUPercent      float64 `json:"cpuPercent"`
	ReadRate        float64 `json:"readBytesPerSec"`
	WriteRate       float64 `json:"writeBytesPerSec"`
	TotalReadBytes  uint64  `json:"totalReadBytes"`
	TotalWriteBytes uint64  `json:"totalWriteBytes"`
}

// AggregatedStats sums ProcessStats across a socket's owning processes.
// CPU and disk fields cover the owners that produced a sample. The network
// fields are valid only when every owner produced a network measurement;
// mixing an available reading with an unavailable one must not fabricate
// a number for the socket.
type AggregatedStats struct {
	CPUPercent float64 `json:"cpuPercent"`
	ReadRate   float64 `json:"readBytesPerSec"`
	WriteRate  float64 `json:"writeBytesPerSec"`
	RxRate     Rate    `json:"rxBytesPerSec"`
	TxRate     Rate    `json:"txBytesPerSec"`
}
