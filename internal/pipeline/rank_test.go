package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netwho/netwho/pkg/model"
)

func entryWithState(state string, proto model.Protocol, ip string, port uint16) model.SocketEntry {
	return model.SocketEntry{
		Record: model.SocketRecord{
			Proto: proto,
			Local: model.Endpoint{IP: ip, Port: port},
			State: state,
		},
	}
}

func entryWithStats(port uint16, stats *model.AggregatedStats) model.SocketEntry {
	e := entryWithState("Established", model.ProtoTCP, "127.0.0.1", port)
	e.Stats = stats
	return e
}

func states(entries []model.SocketEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Record.State
	}
	return out
}

func TestDefaultOrderByStatePriority(t *testing.T) {
	entries := []model.SocketEntry{
		entryWithState("Listen", model.ProtoTCP, "0.0.0.0", 80),
		entryWithState(model.StateNone, model.ProtoUDP, "0.0.0.0", 123),
		entryWithState("TimeWait", model.ProtoTCP, "127.0.0.1", 9000),
	}

	Rank(entries, nil)
	assert.Equal(t, []string{"-", "TimeWait", "Listen"}, states(entries))
}

func TestDefaultOrderUnrecognizedStateFirst(t *testing.T) {
	entries := []model.SocketEntry{
		entryWithState(model.StateNone, model.ProtoUDP, "0.0.0.0", 123),
		entryWithState("Bogus", model.ProtoTCP, "0.0.0.0", 80),
	}

	Rank(entries, nil)
	assert.Equal(t, []string{"Bogus", "-"}, states(entries))
}

func TestDefaultOrderBreaksTiesOnProtoAddrPort(t *testing.T) {
	entries := []model.SocketEntry{
		entryWithState("Listen", model.ProtoTCP, "127.0.0.1", 9000),
		entryWithState("Listen", model.ProtoTCP, "127.0.0.1", 80),
		entryWithState("Listen", model.ProtoTCP, "10.0.0.1", 9000),
	}

	Rank(entries, nil)
	assert.Equal(t, uint16(9000), entries[0].Record.Local.Port)
	assert.Equal(t, "10.0.0.1", entries[0].Record.Local.IP)
	assert.Equal(t, uint16(80), entries[1].Record.Local.Port)
	assert.Equal(t, uint16(9000), entries[2].Record.Local.Port)
}

func TestMetricRankDescending(t *testing.T) {
	entries := []model.SocketEntry{
		entryWithStats(1, &model.AggregatedStats{CPUPercent: 1.0}),
		entryWithStats(2, &model.AggregatedStats{CPUPercent: 9.0}),
		entryWithStats(3, &model.AggregatedStats{CPUPercent: 5.0}),
	}

	Rank(entries, []model.MetricKey{model.KeyCPU})
	assert.Equal(t, uint16(2), entries[0].Record.Local.Port)
	assert.Equal(t, uint16(3), entries[1].Record.Local.Port)
	assert.Equal(t, uint16(1), entries[2].Record.Local.Port)
}

func TestMetricRankMissingSortsLast(t *testing.T) {
	// A measured zero outranks a missing value.
	entries := []model.SocketEntry{
		entryWithStats(1, nil),
		entryWithStats(2, &model.AggregatedStats{CPUPercent: 0.0}),
	}

	Rank(entries, []model.MetricKey{model.KeyCPU})
	assert.Equal(t, uint16(2), entries[0].Record.Local.Port)
	assert.Equal(t, uint16(1), entries[1].Record.Local.Port)
}

func TestMetricRankUnavailableNetworkSortsLast(t *testing.T) {
	entries := []model.SocketEntry{
		entryWithStats(1, &model.AggregatedStats{RxRate: model.Rate{}}),
		entryWithStats(2, &model.AggregatedStats{RxRate: model.RateOf(0)}),
	}

	Rank(entries, []model.MetricKey{model.KeyRx})
	assert.Equal(t, uint16(2), entries[0].Record.Local.Port)
}

func TestMetricRankLexicographicKeys(t *testing.T) {
	entries := []model.SocketEntry{
		entryWithStats(1, &model.AggregatedStats{CPUPercent: 5.0, ReadRate: 10}),
		entryWithStats(2, &model.AggregatedStats{CPUPercent: 5.0, ReadRate: 90}),
		entryWithStats(3, &model.AggregatedStats{CPUPercent: 8.0, ReadRate: 1}),
	}

	Rank(entries, []model.MetricKey{model.KeyCPU, model.KeyRead})
	assert.Equal(t, uint16(3), entries[0].Record.Local.Port)
	assert.Equal(t, uint16(2), entries[1].Record.Local.Port)
	assert.Equal(t, uint16(1), entries[2].Record.Local.Port)
}

func TestMetricRankFullTieFallsBackToDefaultOrder(t *testing.T) {
	a := entryWithState("Listen", model.ProtoTCP, "127.0.0.1", 9000)
	b := entryWithState("TimeWait", model.ProtoTCP, "127.0.0.1", 80)
	stats := model.AggregatedStats{CPUPercent: 3.0}
	a.Stats, b.Stats = &stats, &stats

	entries := []model.SocketEntry{a, b}
	Rank(entries, []model.MetricKey{model.KeyCPU})

	require.Equal(t, "TimeWait", entries[0].Record.State)
	assert.Equal(t, "Listen", entries[1].Record.State)
}

func TestMetricRankTwoMissingFallThrough(t *testing.T) {
	a := entryWithStats(1, nil)
	b := entryWithStats(2, nil)
	a.Record.State = "TimeWait"
	b.Record.State = "Established"

	entries := []model.SocketEntry{b, a}
	Rank(entries, []model.MetricKey{model.KeyTx})

	assert.Equal(t, "TimeWait", entries[0].Record.State)
}
