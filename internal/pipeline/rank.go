package pipeline

import (
	"sort"
	"strings"

	"github.com/netwho/netwho/pkg/model"
)

// statePriority orders connection states so that actionable ones (closing,
// waiting) surface before quiet listening sockets. Unrecognized states sort
// below everything.
var statePriority = map[string]int{
	model.StateNone: 1,
	"TimeWait":      2,
	"LastAck":       3,
	"Closing":       4,
	"CloseWait":     5,
	"FinWait2":      6,
	"FinWait1":      7,
	"SynReceived":   8,
	"SynSent":       9,
	"Established":   10,
	"Listen":        11,
}

// Rank sorts entries in place. With no keys the order is the default
// ascending (state priority, protocol, local IP, local port) tuple. With
// keys, each is compared descending in turn; an entry missing a metric
// sorts after any entry that has it, two missing entries fall through to
// the next key, and full ties end at the default tuple. The sort is stable.
func Rank(entries []model.SocketEntry, keys []model.MetricKey) {
	sort.SliceStable(entries, func(i, j int) bool {
		return compareEntries(entries[i], entries[j], keys) < 0
	})
}

func compareEntries(a, b model.SocketEntry, keys []model.MetricKey) int {
	for _, key := range keys {
		if c := compareMetric(a, b, key); c != 0 {
			return c
		}
	}
	return compareDefault(a, b)
}

// compareMetric orders descending on one metric, missing values last.
func compareMetric(a, b model.SocketEntry, key model.MetricKey) int {
	av, aok := metricValue(a, key)
	bv, bok := metricValue(b, key)
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case !aok && !bok:
		return 0
	case av > bv:
		return -1
	case av < bv:
		return 1
	}
	return 0
}

func metricValue(e model.SocketEntry, key model.MetricKey) (float64, bool) {
	if e.Stats == nil {
		return 0, false
	}
	switch key {
	case model.KeyCPU:
		return e.Stats.CPUPercent, true
	case model.KeyRead:
		return e.Stats.ReadRate, true
	case model.KeyWrite:
		return e.Stats.WriteRate, true
	case model.KeyRx:
		return e.Stats.RxRate.BytesPerSec, e.Stats.RxRate.Valid
	case model.KeyTx:
		return e.Stats.TxRate.BytesPerSec, e.Stats.TxRate.Valid
	}
	return 0, false
}

// compareDefault mirrors lexicographic tuple comparison over (state
// priority, protocol, local IP, local port).
func compareDefault(a, b model.SocketEntry) int {
	if c := statePriority[a.Record.State] - statePriority[b.Record.State]; c != 0 {
		return c
	}
	if c := strings.Compare(string(a.Record.Proto), string(b.Record.Proto)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Record.Local.IP, b.Record.Local.IP); c != 0 {
		return c
	}
	return int(a.Record.Local.Port) - int(b.Record.Local.Port)
}
