package collector

import (
	"os"
	"path/filepath"
)

// procReadFile allows tests to stub reads under /proc.
var procReadFile = os.ReadFile

// hostProc honours HOST_PROC the same way gopsutil does, so a containerised
// agent can be pointed at the host's /proc.
func hostProc(combineWith ...string) string {
	root := os.Getenv("HOST_PROC")
	if root == "" {
		root = "/proc"
	}
	return filepath.Join(append([]string{root}, combineWith...)...)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
