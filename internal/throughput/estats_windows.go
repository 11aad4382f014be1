//go:build windows

package throughput

import (
	"context"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/netwho/netwho/pkg/model"
)

// Windows exposes per-connection byte counters through the TCP extended
// statistics interface in iphlpapi. Collection must be switched on per
// connection before the counters advance, and reading requires elevation;
// both failure modes degrade to "no measurement for that connection".

var (
	modiphlpapi             = windows.NewLazySystemDLL("iphlpapi.dll")
	procGetExtendedTCPTable = modiphlpapi.NewProc("GetExtendedTcpTable")
	procGetPerTCPConnEStats = modiphlpapi.NewProc("GetPerTcpConnectionEStats")
	procSetPerTCPConnEStats = modiphlpapi.NewProc("SetPerTcpConnectionEStats")
)

const (
	afInet                  = 2
	tcpTableOwnerPIDAll     = 5
	tcpConnectionEstatsData = 1
	errInsufficientBuffer   = 122
)

// MIB_TCPROW_OWNER_PID
type tcpRowOwnerPID struct {
	State      uint32
	LocalAddr  uint32
	LocalPort  uint32
	RemoteAddr uint32
	RemotePort uint32
	OwningPID  uint32
}

// MIB_TCPROW_LH
type tcpRowLH struct {
	State      uint32
	LocalAddr  uint32
	LocalPort  uint32
	RemoteAddr uint32
	RemotePort uint32
}

// TCP_ESTATS_DATA_RW_v0
type estatsDataRW struct {
	EnableCollection uint8
}

// TCP_ESTATS_DATA_ROD_v0. Explicit padding keeps the layout identical to
// the SDK struct on 386, where Go would otherwise pack uint64s to 4 bytes.
type estatsDataROD struct {
	DataBytesOut      uint64
	DataSegsOut       uint64
	DataBytesIn       uint64
	DataSegsIn        uint64
	SegsOut           uint64
	SegsIn            uint64
	SoftErrors        uint32
	SoftErrorReason   uint32
	SndUna            uint32
	SndNxt            uint32
	SndMax            uint32
	_                 uint32
	ThruBytesAcked    uint64
	RcvNxt            uint32
	_                 uint32
	ThruBytesReceived uint64
}

type estatsCollector struct{}

func newPlatform() Collector {
	return estatsCollector{}
}

// Sample reads the owner-pid connection table twice across the interval and
// turns per-connection cumulative counters into per-process rates. The
// socket snapshot is unused here: the owner table already attributes each
// connection to its pid.
func (estatsCollector) Sample(ctx context.Context, _ []model.SocketRecord, interval time.Duration) map[int32]Rates {
	rows, ok := ownerPIDTable()
	if !ok {
		return nil
	}

	base := make(counterTable)
	for i := range rows {
		lh := rows[i].toLH()
		// A connection we cannot enable collection for contributes neither
		// baseline nor delta; a partial reading would corrupt its owner's
		// aggregate.
		if !enableCollection(&lh) {
			continue
		}
		if rod, ok := readEstats(&lh); ok {
			base.add(int32(rows[i].OwningPID), rod.ThruBytesReceived, rod.ThruBytesAcked)
		}
	}

	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	start := time.Now()
	select {
	case <-ctx.Done():
	case <-time.After(interval):
	}
	secs := time.Since(start).Seconds()

	rows, ok = ownerPIDTable()
	if !ok {
		return nil
	}
	now := make(counterTable)
	for i := range rows {
		lh := rows[i].toLH()
		if rod, ok := readEstats(&lh); ok {
			now.add(int32(rows[i].OwningPID), rod.ThruBytesReceived, rod.ThruBytesAcked)
		}
	}

	return deltaRates(base, now, secs)
}

func (r tcpRowOwnerPID) toLH() tcpRowLH {
	return tcpRowLH{
		State:      r.State,
		LocalAddr:  r.LocalAddr,
		LocalPort:  r.LocalPort,
		RemoteAddr: r.RemoteAddr,
		RemotePort: r.RemotePort,
	}
}

func ownerPIDTable() ([]tcpRowOwnerPID, bool) {
	var size uint32
	ret, _, _ := procGetExtendedTCPTable.Call(
		0,
		uintptr(unsafe.Pointer(&size)),
		0,
		afInet,
		tcpTableOwnerPIDAll,
		0,
	)
	if ret != errInsufficientBuffer || size == 0 {
		return nil, false
	}

	buf := make([]byte, size)
	ret, _, _ = procGetExtendedTCPTable.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
		0,
		afInet,
		tcpTableOwnerPIDAll,
		0,
	)
	if ret != 0 {
		return nil, false
	}

	// MIB_TCPTABLE_OWNER_PID: dwNumEntries followed by the row array.
	num := *(*uint32)(unsafe.Pointer(&buf[0]))
	rowSize := uint32(unsafe.Sizeof(tcpRowOwnerPID{}))
	if uint32(len(buf)) < 4+num*rowSize {
		return nil, false
	}
	rows := make([]tcpRowOwnerPID, num)
	for i := uint32(0); i < num; i++ {
		rows[i] = *(*tcpRowOwnerPID)(unsafe.Pointer(&buf[4+i*rowSize]))
	}
	return rows, true
}

func enableCollection(row *tcpRowLH) bool {
	rw := estatsDataRW{EnableCollection: 1}
	ret, _, _ := procSetPerTCPConnEStats.Call(
		uintptr(unsafe.Pointer(row)),
		tcpConnectionEstatsData,
		uintptr(unsafe.Pointer(&rw)),
		0,
		unsafe.Sizeof(rw),
		0,
	)
	return ret == 0
}

func readEstats(row *tcpRowLH) (estatsDataROD, bool) {
	var rod estatsDataROD
	ret, _, _ := procGetPerTCPConnEStats.Call(
		uintptr(unsafe.Pointer(row)),
		tcpConnectionEstatsData,
		0, 0, 0,
		0, 0, 0,
		uintptr(unsafe.Pointer(&rod)),
		0,
		unsafe.Sizeof(rod),
	)
	return rod, ret == 0
}
