// Package app wires the netwho command line to the report pipeline.
package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/netwho/netwho/internal/output"
	"github.com/netwho/netwho/internal/pipeline"
	"github.com/netwho/netwho/pkg/model"
)

var (
	flagStats    bool
	flagInterval time.Duration
	flagTopPIDs  int
	flagRank     string
	flagTCPOnly  bool
	flagUDPOnly  bool
	flagJSON     bool
	flagNoColor  bool
)

var versionString = "dev"

func SetVersionBuildCommitString(version, commit, buildDate string) {
	if version == "" {
		return
	}
	versionString = version
	if commit != "" {
		versionString += " (" + commit
		if buildDate != "" {
			versionString += ", " + buildDate
		}
		versionString += ")"
	}
	rootCmd.Version = versionString
}

var rootCmd = &cobra.Command{
	Use:   "netwho",
	Short: "Show active sockets, who owns them, and how much they use",
	Long: `netwho prints a point-in-time report of TCP and UDP sockets together
with the processes that own them. With --stats it samples one short window
and annotates each socket with its owners' CPU share, disk I/O rate and
network throughput.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVarP(&flagStats, "stats", "s", false, "sample per-process CPU, disk and network rates")
	rootCmd.Flags().DurationVarP(&flagInterval, "interval", "i", 800*time.Millisecond, "sampling window for --stats")
	rootCmd.Flags().IntVarP(&flagTopPIDs, "top-processes", "n", 0, "cap on owning processes shown and sampled per socket (0 = all)")
	rootCmd.Flags().StringVarP(&flagRank, "rank", "r", "", "rank rows by metrics, comma-separated: cpu,read,write,rx,tx (implies --stats)")
	rootCmd.Flags().BoolVar(&flagTCPOnly, "tcp", false, "show TCP sockets only")
	rootCmd.Flags().BoolVar(&flagUDPOnly, "udp", false, "show UDP sockets only")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "emit JSON instead of a table")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable styled output")
}

func run(cmd *cobra.Command, _ []string) error {
	keys, err := parseRankKeys(flagRank)
	if err != nil {
		return err
	}
	if flagInterval < time.Millisecond {
		flagInterval = time.Millisecond
	}

	cfg := pipeline.ReportConfig{
		TCP:      !flagUDPOnly,
		UDP:      !flagTCPOnly,
		Stats:    flagStats || len(keys) > 0,
		Interval: flagInterval,
		TopPIDs:  flagTopPIDs,
		Keys:     keys,
	}
	if flagTCPOnly && flagUDPOnly {
		cfg.TCP, cfg.UDP = true, true
	}

	entries, err := pipeline.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if flagJSON {
		out, err := output.ToJSON(entries)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), output.RenderTable(entries, output.TableOptions{
		Stats: cfg.Stats,
		Color: !flagNoColor,
	}))
	return nil
}

func parseRankKeys(s string) ([]model.MetricKey, error) {
	if s == "" {
		return nil, nil
	}
	var keys []model.MetricKey
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, err := model.ParseMetricKey(part)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "netwho:", err)
		os.Exit(1)
	}
}
