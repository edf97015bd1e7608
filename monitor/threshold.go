package monitor

import (
	"context"
	"errors"
	"fmt"

	"memguard/collector"
	"memguard/models"
)

// ShouldKill compares h's memory against the thresholds. A process that
// vanished or hides its memory is skipped; any other lookup failure is
// returned.
func (e *Engine) ShouldKill(ctx context.Context, h collector.Handle) (bool, string, error) {
	usage, err := h.Memory(ctx)
	if err != nil {
		if errors.Is(err, collector.ErrProcessVanished) || errors.Is(err, collector.ErrAccessDenied) {
			e.logger.Debugf("Skipping PID %d: %v", h.PID(), err)
			return false, "", nil
		}
		return false, "", err
	}
	kill, reason := e.evaluate(usage)
	return kill, reason, nil
}

// evaluate checks the percentage first; only the first hit is reported.
// Both comparisons are strict.
func (e *Engine) evaluate(usage models.MemoryUsage) (bool, string) {
	if usage.Percent > e.cfg.RAMPercentThreshold {
		return true, fmt.Sprintf("RAM usage %.2f%% exceeds %v%%", usage.Percent, e.cfg.RAMPercentThreshold)
	}
	if usage.RSS > e.cfg.RAMBytesThreshold() {
		return true, fmt.Sprintf("RAM usage %.2fGB exceeds %vGB", usage.RSSGB(), e.cfg.RAMGBThreshold)
	}
	return false, ""
}
