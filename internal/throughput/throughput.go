// Package throughput measures per-process network throughput over a short
// window on platforms that expose a usable counter or capture source. The
// generic process API has no per-connection byte counters, so each platform
// brings its own collector; where none exists the Unavailable collector is
// selected and every network cell in the report stays unavailable.
package throughput

import (
	"context"
	"time"

	"github.com/netwho/netwho/pkg/model"
)

// Rates is one process's measured network throughput in bytes per second.
type Rates struct {
	Rx float64
	Tx float64
}

// Collector samples per-process network throughput across an interval.
// The result map has no entry for a process the collector could not
// measure; callers must treat absence as "unavailable", never as zero.
type Collector interface {
	Sample(ctx context.Context, records []model.SocketRecord, interval time.Duration) map[int32]Rates
}

// New selects the platform collector once at startup. Downstream code
// consumes the interface uniformly.
func New() Collector {
	return newPlatform()
}

// Unavailable is the capability-absent collector: it never measures
// anything.
type Unavailable struct{}

func (Unavailable) Sample(context.Context, []model.SocketRecord, time.Duration) map[int32]Rates {
	return nil
}
