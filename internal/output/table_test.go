package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netwho/netwho/pkg/model"
)

func sampleEntry(stats *model.AggregatedStats) model.SocketEntry {
	return model.SocketEntry{
		Record: model.SocketRecord{
			Proto:  model.ProtoTCP,
			Local:  model.Endpoint{IP: "127.0.0.1", Port: 8080},
			Remote: model.Endpoint{IP: "10.0.0.5", Port: 51234},
			State:  "Established",
			PIDs:   []int32{42},
		},
		Process: "42: /usr/bin/server",
		PIDs:    []int32{42},
		Stats:   stats,
	}
}

func TestFormatByteRate(t *testing.T) {
	assert.Equal(t, "-", FormatByteRate(model.Rate{}))
	assert.Equal(t, "1kB/s", FormatByteRate(model.RateOf(1000)))
	assert.Equal(t, "0B/s", FormatByteRate(model.RateOf(0)))
}

func TestRenderTableBasicColumns(t *testing.T) {
	out := RenderTable([]model.SocketEntry{sampleEntry(nil)}, TableOptions{})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3) // header, separator, one row

	assert.Contains(t, lines[0], "PROTO")
	assert.Contains(t, lines[0], "PROCESS")
	assert.NotContains(t, lines[0], "CPU%")
	assert.Contains(t, lines[2], "TCP")
	assert.Contains(t, lines[2], "127.0.0.1:8080")
	assert.Contains(t, lines[2], "10.0.0.5:51234")
	assert.Contains(t, lines[2], "Established")
	assert.Contains(t, lines[2], "42: /usr/bin/server")
}

func TestRenderTableStatsColumns(t *testing.T) {
	stats := &model.AggregatedStats{
		CPUPercent: 3.5,
		ReadRate:   2048,
		WriteRate:  0,
		RxRate:     model.Rate{}, // unavailable on this platform
		TxRate:     model.Rate{},
	}
	out := RenderTable([]model.SocketEntry{sampleEntry(stats)}, TableOptions{Stats: true})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Contains(t, lines[0], "CPU%")
	assert.Contains(t, lines[0], "RX/s")
	assert.Contains(t, lines[2], "3.5")
	// Unavailable network cells show a dash, not a zero rate.
	assert.Contains(t, lines[2], " -")
	assert.Contains(t, lines[2], "0B/s") // measured-zero write rate still renders
}

func TestRenderTableNoStatsRow(t *testing.T) {
	out := RenderTable([]model.SocketEntry{sampleEntry(nil)}, TableOptions{Stats: true})
	row := strings.Split(out, "\n")[2]
	assert.Contains(t, row, "-")
}

func TestRenderTableTruncatesLongProcess(t *testing.T) {
	e := sampleEntry(nil)
	e.Process = "42: /very/long/path/" + strings.Repeat("x", 100)
	out := RenderTable([]model.SocketEntry{e}, TableOptions{})
	row := strings.Split(out, "\n")[2]
	assert.Contains(t, row, "…")
	assert.NotContains(t, row, strings.Repeat("x", 100))
}

func TestToJSONUnavailableIsNull(t *testing.T) {
	stats := &model.AggregatedStats{
		CPUPercent: 1.0,
		RxRate:     model.Rate{},
		TxRate:     model.RateOf(512),
	}
	out, err := ToJSON([]model.SocketEntry{sampleEntry(stats)})
	require.NoError(t, err)

	assert.Contains(t, out, `"rxBytesPerSec": null`)
	assert.Contains(t, out, `"txBytesPerSec": 512`)
	assert.Contains(t, out, `"process": "42: /usr/bin/server"`)
}
