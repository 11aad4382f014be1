package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/netwho/netwho/internal/netstat"
	"github.com/netwho/netwho/internal/procinfo"
	"github.com/netwho/netwho/internal/throughput"
	"github.com/netwho/netwho/pkg/model"
)

type ReportConfig struct {
	TCP      bool
	UDP      bool
	Stats    bool
	Interval time.Duration
	TopPIDs  int
	Keys     []model.MetricKey
}

// Run produces one ranked report. Socket enumeration failure is the only
// hard error; everything downstream degrades per cell. When stats are
// requested the rate sampler and the throughput collector block
// concurrently over the same nominal interval, each measuring its own
// elapsed time for its own denominator.
func Run(ctx context.Context, cfg ReportConfig) ([]model.SocketEntry, error) {
	table, err := netstat.Get(netstat.Options{TCP: cfg.TCP, UDP: cfg.UDP})
	if err != nil {
		return nil, fmt.Errorf("enumerate sockets: %w", err)
	}

	entries := BuildEntries(table.Entries, procinfo.NewResolver(), cfg.TopPIDs)

	if cfg.Stats || len(cfg.Keys) > 0 {
		pids := CollectPIDs(entries)

		var (
			stats map[int32]model.ProcessStats
			rates map[int32]throughput.Rates
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			stats = procinfo.NewSampler().Sample(pids, cfg.Interval)
			return nil
		})
		g.Go(func() error {
			rates = throughput.New().Sample(gctx, table.Entries, cfg.Interval)
			return nil
		})
		_ = g.Wait() // both samplers degrade instead of failing

		AttachStats(entries, stats, rates)
	}

	Rank(entries, cfg.Keys)
	return entries, nil
}
