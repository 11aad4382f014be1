package throughput

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netwho/netwho/pkg/model"
)

func TestCounterTableSumsPerProcess(t *testing.T) {
	tbl := make(counterTable)
	tbl.add(1, 100, 10)
	tbl.add(1, 50, 5) // second connection, same owner
	tbl.add(2, 7, 0)

	assert.Equal(t, counterPair{rx: 150, tx: 15}, tbl[1])
	assert.Equal(t, counterPair{rx: 7, tx: 0}, tbl[2])
}

func TestDeltaRates(t *testing.T) {
	first := counterTable{1: {rx: 1000, tx: 500}}
	second := counterTable{1: {rx: 3000, tx: 500}}

	rates := deltaRates(first, second, 2.0)
	require.Contains(t, rates, int32(1))
	assert.InDelta(t, 1000.0, rates[1].Rx, 1e-9)
	assert.InDelta(t, 0.0, rates[1].Tx, 1e-9)
}

func TestDeltaRatesOmitsPidMissingFromSecondSample(t *testing.T) {
	first := counterTable{1: {rx: 10}, 2: {rx: 10}}
	second := counterTable{1: {rx: 20}}

	rates := deltaRates(first, second, 1.0)
	assert.Contains(t, rates, int32(1))
	// No entry at all: the caller must read this as unavailable, not zero.
	assert.NotContains(t, rates, int32(2))
}

func TestDeltaRatesOmitsPidMissingFromBaseline(t *testing.T) {
	rates := deltaRates(counterTable{}, counterTable{5: {rx: 100}}, 1.0)
	assert.Empty(t, rates)
}

func TestDeltaRatesClampsDecrease(t *testing.T) {
	first := counterTable{1: {rx: 5000, tx: 100}}
	second := counterTable{1: {rx: 100, tx: 300}}

	rates := deltaRates(first, second, 1.0)
	require.Contains(t, rates, int32(1))
	assert.Equal(t, 0.0, rates[1].Rx)
	assert.InDelta(t, 200.0, rates[1].Tx, 1e-9)
}

func TestDeltaRatesFloorsElapsed(t *testing.T) {
	first := counterTable{1: {rx: 0}}
	second := counterTable{1: {rx: 100}}

	rates := deltaRates(first, second, 0)
	require.Contains(t, rates, int32(1))
	assert.InDelta(t, 100.0/0.001, rates[1].Rx, 1e-6)
}

func TestEndpointOwnersAttributesToFirstOwner(t *testing.T) {
	records := []model.SocketRecord{
		{
			Proto: model.ProtoTCP,
			Local: model.Endpoint{IP: "127.0.0.1", Port: 8080},
			PIDs:  []int32{42, 43},
		},
		{
			Proto: model.ProtoUDP,
			Local: model.Endpoint{IP: "0.0.0.0", Port: 53},
		},
	}

	owners := endpointOwners(records)
	assert.Equal(t, int32(42), owners["127.0.0.1:8080"])
	// Ownerless sockets attribute to nobody.
	assert.NotContains(t, owners, "0.0.0.0:53")
}

func TestUnavailableCollectorReturnsNothing(t *testing.T) {
	rates := Unavailable{}.Sample(context.Background(), nil, 0)
	assert.Empty(t, rates)
}
