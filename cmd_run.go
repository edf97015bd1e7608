package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"memguard/collector"
	"memguard/config"
	"memguard/logging"
	"memguard/monitor"
)

func run() error {
	path, dotenv := config.ResolvePath(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if forceDryRun {
		cfg.DryRun = true
	}

	logger, err := logging.New(logging.Options{
		File:   cfg.LogFile,
		Level:  cfg.LogLevel,
		Syslog: cfg.EnableSyslog,
	})
	if err != nil {
		return err
	}
	if err := logger.Start(); err != nil {
		return err
	}
	defer logger.Close()

	logger.Infof("memguard %s (%s) built on %s", version, commit, date)
	if dotenv {
		logger.Info("Loaded environment from .env")
	}
	logger.Infof("Loaded configuration from %s", cfg.Path)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if info, err := collector.HostInfo(ctx); err == nil {
		logger.Infof("Host: %s, kernel %s (%s)", info.OS, info.Kernel, info.Arch)
	}

	caps := collector.DetectCapabilities(logger)
	if !caps.IsRoot {
		logger.Warn("Not running as root. May not be able to kill all processes.")
	}
	if !caps.HasHostPID {
		logger.Warn("Host PID namespace not visible, only processes in this namespace are monitored")
	}

	provider, err := collector.NewProvider(ctx)
	if err != nil {
		return err
	}

	var opts []monitor.Option
	if caps.HasDockerSocket {
		resolver, err := collector.NewContainerResolver(logger)
		if err != nil {
			logger.Warnf("Docker client unavailable, container names disabled: %v", err)
		} else {
			defer resolver.Close()
			opts = append(opts, monitor.WithContainerLookup(resolver))
		}
	}

	monitor.New(cfg, provider, logger, opts...).Run(ctx)
	return nil
}
