//go:build !linux

package netstat

import (
	"fmt"
	"sort"

	gnet "github.com/shirou/gopsutil/v4/net"

	"github.com/netwho/netwho/pkg/model"
)

// gopsutil reports socket states in SCREAMING_SNAKE form; the report uses
// the CamelCase names throughout.
var stateNames = map[string]string{
	"ESTABLISHED": "Established",
	"SYN_SENT":    "SynSent",
	"SYN_RECV":    "SynReceived",
	"FIN_WAIT1":   "FinWait1",
	"FIN_WAIT2":   "FinWait2",
	"TIME_WAIT":   "TimeWait",
	"CLOSE":       "Close",
	"CLOSE_WAIT":  "CloseWait",
	"LAST_ACK":    "LastAck",
	"LISTEN":      "Listen",
	"CLOSING":     "Closing",
}

func get(opts Options) (*Table, error) {
	type key struct {
		proto  model.Protocol
		local  model.Endpoint
		remote model.Endpoint
		state  string
	}

	records := make(map[key]*model.SocketRecord)
	var order []key

	collect := func(kind string, proto model.Protocol) error {
		conns, err := gnet.Connections(kind)
		if err != nil {
			return fmt.Errorf("enumerate %s sockets: %w", kind, err)
		}
		for _, c := range conns {
			state := model.StateNone
			if proto == model.ProtoTCP {
				var ok bool
				state, ok = stateNames[c.Status]
				if !ok {
					state = "Unknown"
				}
			}
			k := key{
				proto:  proto,
				local:  model.Endpoint{IP: c.Laddr.IP, Port: uint16(c.Laddr.Port)},
				remote: model.Endpoint{IP: c.Raddr.IP, Port: uint16(c.Raddr.Port)},
				state:  state,
			}
			rec, ok := records[k]
			if !ok {
				rec = &model.SocketRecord{
					Proto:  k.proto,
					Local:  k.local,
					Remote: k.remote,
					State:  k.state,
				}
				records[k] = rec
				order = append(order, k)
			}
			if c.Pid > 0 && !containsPID(rec.PIDs, c.Pid) {
				rec.PIDs = append(rec.PIDs, c.Pid)
			}
		}
		return nil
	}

	if opts.TCP {
		if err := collect("tcp", model.ProtoTCP); err != nil {
			return nil, err
		}
	}
	if opts.UDP {
		if err := collect("udp", model.ProtoUDP); err != nil {
			return nil, err
		}
	}

	table := &Table{Entries: make([]model.SocketRecord, 0, len(order))}
	for _, k := range order {
		rec := records[k]
		sort.Slice(rec.PIDs, func(i, j int) bool { return rec.PIDs[i] < rec.PIDs[j] })
		table.Entries = append(table.Entries, *rec)
	}
	return table, nil
}

func containsPID(pids []int32, pid int32) bool {
	for _, p := range pids {
		if p == pid {
			return true
		}
	}
	return false
}
