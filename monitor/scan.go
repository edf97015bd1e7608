package monitor

import (
	"context"
	"errors"
	"time"

	"memguard/collector"
	"memguard/models"

	"github.com/sirupsen/logrus"
)

// Scan runs one cycle over the process table and returns how many processes
// were killed (or would have been, in dry-run).
func (e *Engine) Scan(ctx context.Context) int {
	return e.scan(ctx).Killed
}

func (e *Engine) scan(ctx context.Context) models.ScanSummary {
	summary := models.ScanSummary{Started: time.Now()}
	e.logger.Info("Starting process scan...")

	handles, err := e.provider.Processes(ctx)
	if err != nil {
		e.logger.Errorf("Process enumeration failed: %v", err)
		return summary
	}

	for _, h := range handles {
		if ctx.Err() != nil {
			e.logger.Info("Scan interrupted by shutdown")
			break
		}
		summary.Scanned++
		e.inspect(ctx, h, &summary)
	}

	summary.Elapsed = time.Since(summary.Started)
	e.logger.WithFields(logrus.Fields{
		"flagged": summary.Flagged,
		"failed":  summary.Failed,
		"elapsed": summary.Elapsed.Round(time.Millisecond),
	}).Infof("Scan complete. Scanned: %d, Killed: %d", summary.Scanned, summary.Killed)
	return summary
}

// inspect handles a single process. Nothing that happens here, a panic
// included, may stop the scan.
func (e *Engine) inspect(ctx context.Context, h collector.Handle, summary *models.ScanSummary) {
	pid := h.PID()
	defer func() {
		if r := recover(); r != nil {
			summary.Failed++
			e.logger.Errorf("Error processing PID %d: %v", pid, r)
		}
	}()

	protected, err := e.Whitelisted(ctx, h)
	if err != nil {
		summary.Failed++
		e.logger.Errorf("Error processing PID %d: %v", pid, err)
		return
	}
	if protected {
		return
	}

	kill, reason, err := e.ShouldKill(ctx, h)
	if err != nil {
		summary.Failed++
		e.logger.Errorf("Error processing PID %d: %v", pid, err)
		return
	}
	if !kill {
		return
	}

	name, err := h.Name(ctx)
	if err != nil {
		if errors.Is(err, collector.ErrProcessVanished) || errors.Is(err, collector.ErrAccessDenied) {
			return
		}
		summary.Failed++
		e.logger.Errorf("Error processing PID %d: %v", pid, err)
		return
	}
	summary.Flagged++
	e.logger.Infof("Process %d (%s) marked for termination: %s", pid, name, reason)

	if e.Enforce(ctx, h) {
		summary.Killed++
	} else {
		summary.Failed++
	}
}
