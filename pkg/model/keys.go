package model

import "fmt"

// MetricKey names a sampled metric usable for ranking report rows.
type MetricKey string

const (
	KeyCPU   MetricKey = "cpu"
	KeyRead  MetricKey = "read"
	KeyWrite MetricKey = "write"
	KeyRx    MetricKey = "rx"
	KeyTx    MetricKey = "tx"
)

func ParseMetricKey(s string) (MetricKey, error) {
	switch MetricKey(s) {
	case KeyCPU, KeyRead, KeyWrite, KeyRx, KeyTx:
		return MetricKey(s), nil
	}
	return "", fmt.Errorf("unknown ranking key %q (want cpu, read, write, rx or tx)", s)
}
