package model

import "strconv"

type Protocol string

const (
	ProtoTCP Protocol = "TCP"
	ProtoUDP Protocol = "UDP"
)

// UDP sockets carry no connection state; the report shows this sentinel.
const StateNone = "-"

type Endpoint struct {
	IP   string `json:"ip"`
	Port uint16 `json:"port"`
}

func (e Endpoint) String() string {
	return e.IP + ":" + strconv.Itoa(int(e.Port))
}

// SocketRecord is one OS-level socket as reported by the snapshot provider.
// Immutable once built; PIDs is the full owner list in ascending order and
// may be empty when the OS did not attribute the socket to any process.
type SocketRecord struct {
	Proto  Protocol `json:"proto"`
	Local  Endpoint `json:"local"`
	Remote Endpoint `json:"remote"`
	State  string   `json:"state"`
	PIDs   []int32  `json:"pids,omitempty"`
}

// RemoteString renders the remote endpoint, with the wildcard form for UDP.
func (r SocketRecord) RemoteString() string {
	if r.Proto == ProtoUDP {
		return "*:*"
	}
	return r.Remote.String()
}
