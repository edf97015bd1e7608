package models

import "time"

// ScanSummary is the tally of one scan cycle.
type ScanSummary struct {
	Started time.Time     `json:"started"`
	Elapsed time.Duration `json:"elapsed"`
	Scanned int           `json:"scanned"`
	Flagged int           `json:"flagged"`
	Killed  int           `json:"killed"`
	Failed  int           `json:"failed"`
}
