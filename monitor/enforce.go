package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"memguard/collector"
	"memguard/models"
)

// Enforce drives one flagged process to a terminal state and reports whether
// the goal (process gone, or simulated in dry-run) was reached.
//
// Real mode sends SIGTERM, waits the grace period, and sends SIGKILL if the
// process is still alive. A process that disappears at any step counts as
// success; access denied and unexpected failures count as failure. A
// shutdown request during the grace period cuts the wait short but the
// liveness check and escalation still happen.
func (e *Engine) Enforce(ctx context.Context, h collector.Handle) bool {
	pid := h.PID()

	info, err := e.describe(ctx, h)
	if err != nil {
		return e.enforceFailed(pid, err)
	}

	if e.cfg.DryRun {
		e.logger.Warnf("[DRY RUN] Would kill process: %s", formatInfo(info, false))
		return true
	}

	e.logger.Warnf("Killing process: %s", formatInfo(info, true))
	if err := h.Terminate(ctx); err != nil {
		return e.enforceFailed(pid, err)
	}

	if err := sleepContext(ctx, e.gracePeriod); err != nil {
		e.logger.Infof("Grace period for PID %d cut short by shutdown", pid)
	}
	// finish this process even if shutdown is under way
	ctx = context.WithoutCancel(ctx)

	alive, err := h.IsAlive(ctx)
	if err != nil {
		return e.enforceFailed(pid, err)
	}
	if alive {
		if err := h.Kill(ctx); err != nil {
			return e.enforceFailed(pid, err)
		}
		e.logger.Warnf("Force killed PID %d (did not respond to SIGTERM)", pid)
	}
	return true
}

func (e *Engine) enforceFailed(pid int32, err error) bool {
	switch {
	case errors.Is(err, collector.ErrProcessVanished):
		e.logger.Infof("Process %d already terminated", pid)
		return true
	case errors.Is(err, collector.ErrAccessDenied):
		e.logger.Errorf("Access denied to kill PID %d: %v", pid, err)
		return false
	default:
		e.logger.Errorf("Error killing process %d: %v", pid, err)
		return false
	}
}

// describe snapshots identity and memory for the audit line before acting.
func (e *Engine) describe(ctx context.Context, h collector.Handle) (models.ProcessInfo, error) {
	info := models.ProcessInfo{PID: h.PID()}
	var err error

	if info.Name, err = h.Name(ctx); err != nil {
		return info, err
	}
	args, err := h.Cmdline(ctx)
	if err != nil {
		return info, err
	}
	info.Command = joinCmdline(args)
	if info.User, err = h.Username(ctx); err != nil {
		return info, err
	}
	if info.Memory, err = h.Memory(ctx); err != nil {
		return info, err
	}
	if e.containers != nil {
		info.Container = e.containers.Lookup(ctx, info.PID)
	}
	return info, nil
}

func joinCmdline(args []string) string {
	if len(args) == 0 {
		return "N/A"
	}
	if len(args) > maxCmdlineTokens {
		args = args[:maxCmdlineTokens]
	}
	return strings.Join(args, " ")
}

func formatInfo(info models.ProcessInfo, withCmd bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PID=%d, Name=%s, User=%s, RAM=%.2fGB (%.2f%%)",
		info.PID, info.Name, info.User, info.Memory.RSSGB(), info.Memory.Percent)
	if info.Container != "" {
		fmt.Fprintf(&b, ", Container=%s", info.Container)
	}
	if withCmd {
		fmt.Fprintf(&b, ", CMD=%s", info.Command)
	}
	return b.String()
}
