// Package procinfo resolves process identity and samples per-process
// resource usage over a short window.
package procinfo

import (
	"strconv"

	ps "github.com/mitchellh/go-ps"
	"github.com/shirou/gopsutil/v4/process"
)

// Resolver maps a pid to a display label of the form "<pid>: <path>".
// Resolution never fails: a process that cannot be identified yields
// "<pid>: Unknown".
type Resolver struct {
	// lookup is swapped out in tests.
	lookup func(pid int32) string
}

func NewResolver() *Resolver {
	return &Resolver{lookup: systemLookup}
}

func (r *Resolver) Label(pid int32) string {
	name := r.lookup(pid)
	if name == "" {
		name = "Unknown"
	}
	return strconv.Itoa(int(pid)) + ": " + name
}

// systemLookup prefers the full executable path, then the short name, then
// a plain process-table lookup for processes gopsutil cannot open.
func systemLookup(pid int32) string {
	if p, err := process.NewProcess(pid); err == nil {
		if exe, err := p.Exe(); err == nil && exe != "" {
			return exe
		}
		if name, err := p.Name(); err == nil && name != "" {
			return name
		}
	}
	if p, err := ps.FindProcess(int(pid)); err == nil && p != nil {
		return p.Executable()
	}
	return ""
}
