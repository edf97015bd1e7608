package monitor

import (
	"context"
	"errors"
	"testing"

	"memguard/collector"
	"memguard/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestScanDryRunEndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.DryRun = true
	h := hog(10)
	e, hook := newTestEngine(t, cfg, &fakeProvider{handles: []collector.Handle{h}})

	require.Equal(t, 1, e.Scan(context.Background()))
	require.Zero(t, h.terminated)
	require.Zero(t, h.killed)
	require.Contains(t, messages(hook), "Process 10 (leaky) marked for termination: RAM usage 60.00% exceeds 50%")
	require.Contains(t, messages(hook), "Scan complete. Scanned: 1, Killed: 1")
}

func TestScanMixedTable(t *testing.T) {
	small := hog(20)
	small.usage = models.MemoryUsage{RSS: 1 << 20, Percent: 0.1}
	exact := hog(21)
	exact.usage.Percent = 50.0
	exact.usage.RSS = gb
	sshd := hog(22)
	sshd.name = "sshd"
	pinned := hog(1)
	self := hog(999999)
	gone := hog(23)
	gone.memErr = vanished(23)
	locked := hog(24)
	locked.termErr = denied(24)
	broken := hog(25)
	broken.panicOnMemory = true
	weird := hog(26)
	weird.nameErr = errors.New("parse error")
	stubborn := hog(27)
	stubborn.alive = true
	unreadable := hog(28)
	unreadable.memErr = errors.New("statm parse failure")

	e, hook := newTestEngine(t, testConfig(), &fakeProvider{handles: []collector.Handle{
		small, exact, sshd, pinned, self, gone, locked, broken, weird, stubborn, unreadable,
	}})

	summary := e.scan(context.Background())
	require.Equal(t, 11, summary.Scanned)
	require.Equal(t, 2, summary.Flagged)
	require.Equal(t, 1, summary.Killed)
	require.Equal(t, 4, summary.Failed)

	for _, h := range []*fakeHandle{small, exact, sshd, pinned, self, gone, broken, weird, unreadable} {
		require.Zero(t, h.terminated, "pid %d must not be signalled", h.pid)
	}
	require.Equal(t, 1, locked.terminated)
	require.Equal(t, 1, stubborn.terminated)
	require.Equal(t, 1, stubborn.killed)

	errs := entriesAt(hook, logrus.ErrorLevel)
	require.Len(t, errs, 4)
	require.Contains(t, messages(hook), "Scan complete. Scanned: 11, Killed: 1")
}

func TestScanEnumerationFailure(t *testing.T) {
	e, hook := newTestEngine(t, testConfig(), &fakeProvider{procErr: errors.New("no /proc")})
	require.Zero(t, e.Scan(context.Background()))
	require.Len(t, entriesAt(hook, logrus.ErrorLevel), 1)
}

func TestScanStopsOnShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.DryRun = true
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := hog(10)
	e, hook := newTestEngine(t, cfg, &fakeProvider{handles: []collector.Handle{h}})
	require.Zero(t, e.Scan(ctx))
	require.Zero(t, h.nameCalls)
	require.Contains(t, messages(hook), "Scan interrupted by shutdown")
}
