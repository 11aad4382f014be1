// Package pipeline joins socket snapshots, process identity and sampled
// stats into ranked report rows.
package pipeline

import (
	"strings"

	"github.com/netwho/netwho/internal/throughput"
	"github.com/netwho/netwho/pkg/model"
)

// Labeler is the identity side of the pipeline; procinfo.Resolver satisfies
// it.
type Labeler interface {
	Label(pid int32) string
}

// BuildEntries turns socket records into report rows. topPIDs caps how many
// owners per socket are resolved (0 means all); the same truncated list is
// later fed to sampling, so a capped socket aggregates exactly the owners it
// displays. A socket with no owners gets the label "Unknown".
func BuildEntries(records []model.SocketRecord, labeler Labeler, topPIDs int) []model.SocketEntry {
	entries := make([]model.SocketEntry, 0, len(records))
	for _, rec := range records {
		pids := rec.PIDs
		if topPIDs > 0 && len(pids) > topPIDs {
			pids = pids[:topPIDs]
		}

		label := "Unknown"
		if len(pids) > 0 {
			labels := make([]string, len(pids))
			for i, pid := range pids {
				labels[i] = labeler.Label(pid)
			}
			label = strings.Join(labels, ", ")
		}

		entries = append(entries, model.SocketEntry{
			Record:  rec,
			Process: label,
			PIDs:    pids,
		})
	}
	return entries
}

// CollectPIDs returns the deduplicated union of owning pids across all
// entries, in first-seen order. This is exactly the set handed to the
// samplers, so every sampled pid maps back to at least one row.
func CollectPIDs(entries []model.SocketEntry) []int32 {
	seen := make(map[int32]bool)
	var pids []int32
	for _, e := range entries {
		for _, pid := range e.PIDs {
			if !seen[pid] {
				seen[pid] = true
				pids = append(pids, pid)
			}
		}
	}
	return pids
}

// AttachStats aggregates per-process samples onto each entry. CPU and disk
// fields sum over the owners that produced a sample; each owner counts once
// per socket even when it owns several sockets. The network fields stay
// unavailable unless every owner has a throughput measurement, so a socket
// never shows a number built from partial data. Entries none of whose
// owners produced anything keep a nil Stats.
func AttachStats(entries []model.SocketEntry, stats map[int32]model.ProcessStats, rates map[int32]throughput.Rates) {
	for i := range entries {
		e := &entries[i]
		if len(e.PIDs) == 0 {
			continue
		}

		var agg model.AggregatedStats
		var rx, tx float64
		sampled := false
		netComplete := true

		for _, pid := range e.PIDs {
			if ps, ok := stats[pid]; ok {
				sampled = true
				agg.CPUPercent += ps.CPUPercent
				agg.ReadRate += ps.ReadRate
				agg.WriteRate += ps.WriteRate
			}
			if r, ok := rates[pid]; ok {
				sampled = true
				rx += r.Rx
				tx += r.Tx
			} else {
				netComplete = false
			}
		}

		if !sampled {
			continue
		}
		if netComplete {
			agg.RxRate = model.RateOf(rx)
			agg.TxRate = model.RateOf(tx)
		}
		e.Stats = &agg
	}
}
