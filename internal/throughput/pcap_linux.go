//go:build linux

package throughput

import (
	"context"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/netwho/netwho/pkg/model"
)

// Linux has no per-process network byte counters short of eBPF, so the
// collector captures packet headers for the window and attributes sizes to
// processes through the socket snapshot's local endpoints. Needs
// CAP_NET_RAW; without it the open fails and every rate stays unavailable.

// Header-only capture; attributed sizes come from the packet metadata,
// which carries the original wire length.
const snapLen = 96

type pcapCollector struct{}

func newPlatform() Collector {
	return pcapCollector{}
}

func (pcapCollector) Sample(ctx context.Context, records []model.SocketRecord, interval time.Duration) map[int32]Rates {
	owners := endpointOwners(records)
	if len(owners) == 0 {
		return nil
	}

	handle, err := pcap.OpenLive("any", snapLen, false, pcap.BlockForever)
	if err != nil {
		return nil
	}
	defer handle.Close()
	_ = handle.SetBPFFilter("tcp or udp")

	if interval < time.Millisecond {
		interval = time.Millisecond
	}

	src := gopacket.NewPacketSource(handle, handle.LinkType())
	src.NoCopy = true

	counters := make(counterTable)
	deadline := time.After(interval)
	start := time.Now()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-deadline:
			break loop
		case pkt, ok := <-src.Packets():
			if !ok {
				break loop
			}
			recordPacket(counters, owners, pkt)
		}
	}

	secs := time.Since(start).Seconds()
	if secs < 0.001 {
		secs = 0.001
	}

	// Every owned endpoint was watched for the whole window, so a pid with
	// no captured packets is a measured zero, not unavailable.
	out := make(map[int32]Rates)
	for _, pid := range owners {
		if _, ok := out[pid]; ok {
			continue
		}
		c := counters[pid]
		out[pid] = Rates{
			Rx: float64(c.rx) / secs,
			Tx: float64(c.tx) / secs,
		}
	}
	return out
}

func recordPacket(counters counterTable, owners map[string]int32, pkt gopacket.Packet) {
	netl := pkt.NetworkLayer()
	tl := pkt.TransportLayer()
	if netl == nil || tl == nil {
		return
	}

	n := uint64(pkt.Metadata().Length)
	srcKey := netl.NetworkFlow().Src().String() + ":" + tl.TransportFlow().Src().String()
	dstKey := netl.NetworkFlow().Dst().String() + ":" + tl.TransportFlow().Dst().String()

	if pid, ok := owners[srcKey]; ok {
		counters.add(pid, 0, n)
	}
	if pid, ok := owners[dstKey]; ok {
		counters.add(pid, n, 0)
	}
}
