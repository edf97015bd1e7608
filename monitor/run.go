package monitor

import (
	"context"
)

// Run loops until ctx is cancelled: log system memory, scan, sleep.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("Memory Monitor started")

	for ctx.Err() == nil {
		e.cycle(ctx)

		// sleep even after a failed cycle so errors cannot spin
		if err := sleepContext(ctx, e.cfg.CheckInterval); err != nil {
			break
		}
	}
	e.logger.Info("Received interrupt signal, shutting down...")
}

func (e *Engine) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("Unexpected error in main loop: %v", r)
		}
	}()

	mem, err := e.provider.SystemMemory(ctx)
	if err != nil {
		e.logger.Errorf("Unexpected error in main loop: %v", err)
		return
	}
	e.logger.Infof("System Memory: %.1f%% used (%.2fGB / %.2fGB)", mem.Percent, mem.UsedGB(), mem.TotalGB())

	e.Scan(ctx)
}
