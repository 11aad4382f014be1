package procinfo

import (
	"time"

	"github.com/netwho/netwho/pkg/model"
)

// minElapsed floors the rate denominator so an early wakeup cannot blow up
// the division.
const minElapsed = 0.001

// ProcSample is one process's state in a system snapshot: the OS-computed
// CPU share since the previous snapshot and the cumulative disk byte
// counters.
type ProcSample struct {
	CPUPercent float64
	ReadBytes  uint64
	WriteBytes uint64
}

// Source is a refreshable view of the process table. Lookup reports false
// for pids absent from the latest refresh.
type Source interface {
	Refresh()
	Lookup(pid int32) (ProcSample, bool)
}

// Sampler derives per-process CPU and disk rates from two snapshots of a
// Source taken across a sleep window.
type Sampler struct {
	NewSource func(pids []int32) Source
	Sleep     func(d time.Duration)
}

func NewSampler() *Sampler {
	return &Sampler{NewSource: newSystemSource, Sleep: time.Sleep}
}

// Sample takes a baseline snapshot, sleeps for interval (floored at 1ms),
// takes a second snapshot, and returns rates for every pid present in both.
// A pid missing from either snapshot is omitted, never zero-filled: the
// caller reads absence as "no stats available".
func (s *Sampler) Sample(pids []int32, interval time.Duration) map[int32]model.ProcessStats {
	if interval < time.Millisecond {
		interval = time.Millisecond
	}

	src := s.NewSource(pids)

	// The baseline refresh also primes CPU accounting, which needs a prior
	// reference point before the second snapshot's reading means anything.
	src.Refresh()
	base := make(map[int32]ProcSample, len(pids))
	for _, pid := range pids {
		if sm, ok := src.Lookup(pid); ok {
			base[pid] = sm
		}
	}

	start := time.Now()
	s.Sleep(interval)
	elapsed := time.Since(start).Seconds()
	if elapsed < minElapsed {
		elapsed = minElapsed
	}

	src.Refresh()
	out := make(map[int32]model.ProcessStats, len(base))
	for pid, b := range base {
		cur, ok := src.Lookup(pid)
		if !ok {
			continue // exited mid-sample
		}
		out[pid] = model.ProcessStats{
			PID:             pid,
			CPUPercent:      cur.CPUPercent,
			ReadRate:        counterRate(cur.ReadBytes, b.ReadBytes, elapsed),
			WriteRate:       counterRate(cur.WriteBytes, b.WriteBytes, elapsed),
			TotalReadBytes:  cur.ReadBytes,
			TotalWriteBytes: cur.WriteBytes,
		}
	}
	return out
}

// counterRate turns a cumulative counter delta into a per-second rate. An
// apparent decrease (pid reuse after a restart) clamps to zero instead of
// wrapping negative.
func counterRate(cur, base uint64, secs float64) float64 {
	if cur < base {
		return 0
	}
	return float64(cur-base) / secs
}
