//go:build linux

package netstat

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/netwho/netwho/pkg/model"
)

// Kernel socket states as they appear in /proc/net/tcp, mapped to the
// CamelCase names the report uses.
var stateNames = map[string]string{
	"01": "Established",
	"02": "SynSent",
	"03": "SynReceived",
	"04": "FinWait1",
	"05": "FinWait2",
	"06": "TimeWait",
	"07": "Close",
	"08": "CloseWait",
	"09": "LastAck",
	"0A": "Listen",
	"0B": "Closing",
}

type rawSocket struct {
	proto  model.Protocol
	local  model.Endpoint
	remote model.Endpoint
	state  string
}

func get(opts Options) (*Table, error) {
	sockets := make(map[string]rawSocket)

	parse := func(path string, proto model.Protocol, ipv6 bool) error {
		f, err := os.Open(path)
		if err != nil {
			// tcp6/udp6 are absent on kernels without IPv6.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Scan() // skip header

		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) < 10 {
				continue
			}

			local, ok := parseAddr(fields[1], ipv6)
			if !ok {
				continue
			}
			remote, _ := parseAddr(fields[2], ipv6)
			inode := fields[9]

			state := model.StateNone
			if proto == model.ProtoTCP {
				state, ok = stateNames[fields[3]]
				if !ok {
					state = "Unknown"
				}
			}

			sockets[inode] = rawSocket{
				proto:  proto,
				local:  local,
				remote: remote,
				state:  state,
			}
		}
		return scanner.Err()
	}

	if opts.TCP {
		if err := parse("/proc/net/tcp", model.ProtoTCP, false); err != nil {
			return nil, fmt.Errorf("read /proc/net/tcp: %w", err)
		}
		if err := parse("/proc/net/tcp6", model.ProtoTCP, true); err != nil {
			return nil, fmt.Errorf("read /proc/net/tcp6: %w", err)
		}
	}
	if opts.UDP {
		if err := parse("/proc/net/udp", model.ProtoUDP, false); err != nil {
			return nil, fmt.Errorf("read /proc/net/udp: %w", err)
		}
		if err := parse("/proc/net/udp6", model.ProtoUDP, true); err != nil {
			return nil, fmt.Errorf("read /proc/net/udp6: %w", err)
		}
	}

	owners, err := socketOwners()
	if err != nil {
		return nil, err
	}

	table := &Table{Entries: make([]model.SocketRecord, 0, len(sockets))}
	for inode, s := range sockets {
		pids := owners[inode]
		sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
		table.Entries = append(table.Entries, model.SocketRecord{
			Proto:  s.proto,
			Local:  s.local,
			Remote: s.remote,
			State:  s.state,
			PIDs:   pids,
		})
	}
	return table, nil
}

// socketOwners scans /proc/<pid>/fd and maps each socket inode to every
// process holding it open. Unreadable fd directories (permissions, races
// with exiting processes) are skipped.
func socketOwners() (map[string][]int32, error) {
	procs, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	owners := make(map[string][]int32)
	for _, p := range procs {
		if !p.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(p.Name())
		if err != nil {
			continue
		}

		fdPath := fmt.Sprintf("/proc/%d/fd", pid)
		fds, err := os.ReadDir(fdPath)
		if err != nil {
			continue
		}

		seen := make(map[string]bool)
		for _, fd := range fds {
			link, err := os.Readlink(fmt.Sprintf("%s/%s", fdPath, fd.Name()))
			if err != nil {
				continue
			}
			if !strings.HasPrefix(link, "socket:[") {
				continue
			}
			inode := strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]")
			if seen[inode] {
				continue
			}
			seen[inode] = true
			owners[inode] = append(owners[inode], int32(pid))
		}
	}
	return owners, nil
}

// parseAddr decodes a hex "ADDR:PORT" column from /proc/net. IPv4 addresses
// are little-endian; IPv6 addresses are stored as four little-endian 32-bit
// groups.
func parseAddr(raw string, ipv6 bool) (model.Endpoint, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return model.Endpoint{}, false
	}
	port, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		return model.Endpoint{}, false
	}

	b, err := hex.DecodeString(parts[0])
	if err != nil {
		return model.Endpoint{}, false
	}

	if ipv6 {
		if len(b) != 16 {
			return model.Endpoint{}, false
		}
		ip := make(net.IP, 16)
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return model.Endpoint{IP: ip.String(), Port: uint16(port)}, true
	}

	if len(b) != 4 {
		return model.Endpoint{}, false
	}
	ip := net.IPv4(b[3], b[2], b[1], b[0])
	return model.Endpoint{IP: ip.String(), Port: uint16(port)}, true
}
