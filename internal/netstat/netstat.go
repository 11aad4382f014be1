// Package netstat enumerates the machine's TCP and UDP sockets together
// with their owning process ids.
package netstat

import "github.com/netwho/netwho/pkg/model"

type Options struct {
	TCP bool
	UDP bool
}

// Table is one point-in-time socket snapshot.
type Table struct {
	Entries []model.SocketRecord
}

// Get returns the current socket table. Enumeration failure is the one
// unrecoverable error in the pipeline; partial per-socket problems are
// handled by omission inside the platform readers.
func Get(opts Options) (*Table, error) {
	return get(opts)
}
