// Package monitor holds the scan-evaluate-enforce loop: it walks the process
// table, skips protected processes, flags anything above the configured
// memory thresholds and terminates it (SIGTERM, then SIGKILL after a grace
// period) unless running in dry-run mode.
package monitor

import (
	"context"
	"os"
	"sort"
	"time"

	"memguard/collector"
	"memguard/config"
	"memguard/models"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultGracePeriod is how long a process gets to exit after SIGTERM.
	DefaultGracePeriod = 5 * time.Second

	maxCmdlineTokens = 50
)

// ContainerLookup names the container a pid runs in, or returns "".
type ContainerLookup interface {
	Lookup(ctx context.Context, pid int32) string
}

type Option func(*Engine)

// WithContainerLookup adds container names to enforcement audit lines.
func WithContainerLookup(lookup ContainerLookup) Option {
	return func(e *Engine) { e.containers = lookup }
}

// WithGracePeriod overrides DefaultGracePeriod.
func WithGracePeriod(d time.Duration) Option {
	return func(e *Engine) { e.gracePeriod = d }
}

func withSelfPID(pid int32) Option {
	return func(e *Engine) { e.selfPID = pid }
}

// Engine is single threaded: scans, evaluations and signals happen strictly
// one after another.
type Engine struct {
	cfg         *config.Config
	provider    collector.Provider
	logger      logrus.FieldLogger
	containers  ContainerLookup
	selfPID     int32
	gracePeriod time.Duration
}

// New builds an engine and logs the startup summary.
func New(cfg *config.Config, provider collector.Provider, logger logrus.FieldLogger, opts ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		provider:    provider,
		logger:      logger,
		selfPID:     int32(os.Getpid()),
		gracePeriod: DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(e)
	}

	total := models.MemoryInfo{Total: provider.TotalMemory()}
	e.logger.Info("Memory Monitor initialized")
	e.logger.Infof("Total RAM: %.2f GB", total.TotalGB())
	e.logger.Infof("Thresholds: %v%% or %v GB", cfg.RAMPercentThreshold, cfg.RAMGBThreshold)
	e.logger.Infof("Dry Run Mode: %t", cfg.DryRun)
	e.logger.WithFields(logrus.Fields{
		"pids":  len(cfg.WhitelistPIDs),
		"names": cfg.WhitelistNames,
		"users": sortedKeys(cfg.WhitelistUsers),
	}).Info("Whitelist loaded")
	return e
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
