package throughput

import "github.com/netwho/netwho/pkg/model"

// counterTable accumulates cumulative rx/tx byte counters per process for
// one sampling instant. A process owning several connections sums across
// all of them.
type counterTable map[int32]counterPair

type counterPair struct {
	rx uint64
	tx uint64
}

func (t counterTable) add(pid int32, rx, tx uint64) {
	c := t[pid]
	c.rx += rx
	c.tx += tx
	t[pid] = c
}

// deltaRates computes per-second rates between two counter tables. Only
// pids present in both tables yield an entry; a connection owner that
// disappeared between samples produces nothing rather than a bogus rate.
// Apparent counter decreases clamp to zero.
func deltaRates(first, second counterTable, secs float64) map[int32]Rates {
	if secs < 0.001 {
		secs = 0.001
	}
	out := make(map[int32]Rates, len(first))
	for pid, b := range first {
		n, ok := second[pid]
		if !ok {
			continue
		}
		out[pid] = Rates{
			Rx: saturatingRate(n.rx, b.rx, secs),
			Tx: saturatingRate(n.tx, b.tx, secs),
		}
	}
	return out
}

func saturatingRate(cur, base uint64, secs float64) float64 {
	if cur < base {
		return 0
	}
	return float64(cur-base) / secs
}

// endpointOwners maps each local "ip:port" to the socket's owning pid. A
// connection's traffic is attributed entirely to the first owner, matching
// the per-connection attribution rule of the counter-based collectors.
func endpointOwners(records []model.SocketRecord) map[string]int32 {
	owners := make(map[string]int32)
	for _, r := range records {
		if len(r.PIDs) == 0 {
			continue
		}
		owners[r.Local.String()] = r.PIDs[0]
	}
	return owners
}
