package procinfo

import "github.com/shirou/gopsutil/v4/process"

// systemSource reads the live process table through gopsutil. Process
// handles are cached across refreshes because gopsutil computes CPUPercent
// against the handle's previous reading.
type systemSource struct {
	pids    map[int32]*process.Process
	samples map[int32]ProcSample
}

func newSystemSource(pids []int32) Source {
	s := &systemSource{
		pids:    make(map[int32]*process.Process, len(pids)),
		samples: make(map[int32]ProcSample, len(pids)),
	}
	for _, pid := range pids {
		if p, err := process.NewProcess(pid); err == nil {
			s.pids[pid] = p
		}
	}
	return s
}

func (s *systemSource) Refresh() {
	s.samples = make(map[int32]ProcSample, len(s.pids))
	for pid, p := range s.pids {
		cpu, err := p.Percent(0)
		if err != nil {
			continue
		}
		io, err := p.IOCounters()
		if err != nil {
			// A process we cannot read counters for contributes nothing
			// rather than a half-filled sample.
			continue
		}
		s.samples[pid] = ProcSample{
			CPUPercent: cpu,
			ReadBytes:  io.ReadBytes,
			WriteBytes: io.WriteBytes,
		}
	}
}

func (s *systemSource) Lookup(pid int32) (ProcSample, bool) {
	sm, ok := s.samples[pid]
	return sm, ok
}
