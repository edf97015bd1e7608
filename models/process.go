package models

// MemoryUsage is the resident footprint of a single process.
type MemoryUsage struct {
	RSS     uint64  `json:"rss"`
	Percent float64 `json:"percent"` // of total physical RAM
}

// RSSGB returns the resident size in GiB.
func (m MemoryUsage) RSSGB() float64 {
	return float64(m.RSS) / (1024 * 1024 * 1024)
}

// ProcessInfo is the audit record captured right before a process is acted on.
type ProcessInfo struct {
	PID       int32       `json:"pid"`
	Name      string      `json:"name"`
	User      string      `json:"user"`
	Command   string      `json:"command"`
	Memory    MemoryUsage `json:"memory"`
	Container string      `json:"container,omitempty"`
}
