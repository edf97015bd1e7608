package models

// SystemInfo holds OS details
type SystemInfo struct {
	OS     string `json:"os"`
	Kernel string `json:"kernel"`
	Arch   string `json:"arch"`
}

// MemoryInfo holds RAM stats
type MemoryInfo struct {
	Total     uint64  `json:"total"`
	Available uint64  `json:"available"`
	Used      uint64  `json:"used"`
	Percent   float64 `json:"percent"`
}

const gib = 1024 * 1024 * 1024

func (m MemoryInfo) TotalGB() float64 { return float64(m.Total) / gib }
func (m MemoryInfo) UsedGB() float64  { return float64(m.Used) / gib }
