// Package output renders finished report rows for the terminal or as JSON.
package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/docker/go-units"
	"github.com/muesli/reflow/truncate"

	"github.com/netwho/netwho/pkg/model"
)

type TableOptions struct {
	Stats bool
	Color bool
}

var headerStyle = lipgloss.NewStyle().Bold(true)

type column struct {
	title string
	width int
}

var baseColumns = []column{
	{"PROTO", 10},
	{"LOCAL ADDRESS", 34},
	{"REMOTE ADDRESS", 27},
	{"STATE", 17},
	{"PROCESS", 40},
}

var statsColumns = []column{
	{"CPU%", 8},
	{"READ/s", 11},
	{"WRITE/s", 11},
	{"RX/s", 11},
	{"TX/s", 11},
}

// RenderTable renders entries as an aligned column report, one row per
// socket. Stats columns appear only when sampling ran; unavailable metrics
// render as "-".
func RenderTable(entries []model.SocketEntry, opts TableOptions) string {
	cols := baseColumns
	if opts.Stats {
		cols = append(append([]column{}, baseColumns...), statsColumns...)
	}

	var b strings.Builder

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = pad(c.title, c.width)
	}
	head := strings.TrimRight(strings.Join(header, " "), " ")
	if opts.Color {
		head = headerStyle.Render(head)
	}
	b.WriteString(head)
	b.WriteByte('\n')

	seps := make([]string, len(cols))
	for i, c := range cols {
		seps[i] = strings.Repeat("-", c.width-1)
	}
	b.WriteString(strings.Join(seps, "  "))
	b.WriteByte('\n')

	for _, e := range entries {
		cells := []string{
			string(e.Record.Proto),
			e.Record.Local.String(),
			e.Record.RemoteString(),
			e.Record.State,
			e.Process,
		}
		if opts.Stats {
			cells = append(cells, statsCells(e.Stats)...)
		}
		row := make([]string, len(cells))
		for i, cell := range cells {
			row[i] = pad(truncate.StringWithTail(cell, uint(cols[i].width-1), "…"), cols[i].width)
		}
		b.WriteString(strings.TrimRight(strings.Join(row, " "), " "))
		b.WriteByte('\n')
	}

	return b.String()
}

func statsCells(stats *model.AggregatedStats) []string {
	if stats == nil {
		return []string{"-", "-", "-", "-", "-"}
	}
	return []string{
		fmt.Sprintf("%.1f", stats.CPUPercent),
		FormatByteRate(model.RateOf(stats.ReadRate)),
		FormatByteRate(model.RateOf(stats.WriteRate)),
		FormatByteRate(stats.RxRate),
		FormatByteRate(stats.TxRate),
	}
}

// FormatByteRate renders a byte rate in human units, or "-" when the
// measurement is unavailable. Unavailable is never shown as 0.
func FormatByteRate(r model.Rate) string {
	if !r.Valid {
		return "-"
	}
	return units.HumanSize(r.BytesPerSec) + "/s"
}

func pad(s string, width int) string {
	// Display width, not byte length: truncated cells end in a multibyte
	// ellipsis.
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
