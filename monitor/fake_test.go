package monitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"memguard/collector"
	"memguard/config"
	"memguard/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const gb = 1024 * 1024 * 1024

func vanished(pid int32) error {
	return fmt.Errorf("pid %d: %w", pid, collector.ErrProcessVanished)
}

func denied(pid int32) error {
	return fmt.Errorf("pid %d: %w", pid, collector.ErrAccessDenied)
}

type fakeHandle struct {
	pid     int32
	name    string
	user    string
	cmdline []string
	usage   models.MemoryUsage
	alive   bool

	nameErr, userErr, cmdErr, memErr error
	termErr, killErr, aliveErr       error
	panicOnMemory                    bool

	nameCalls, userCalls       int
	terminated, killed, checks int
}

var _ collector.Handle = (*fakeHandle)(nil)

func (h *fakeHandle) PID() int32 { return h.pid }

func (h *fakeHandle) Name(context.Context) (string, error) {
	h.nameCalls++
	return h.name, h.nameErr
}

func (h *fakeHandle) Username(context.Context) (string, error) {
	h.userCalls++
	return h.user, h.userErr
}

func (h *fakeHandle) Cmdline(context.Context) ([]string, error) { return h.cmdline, h.cmdErr }

func (h *fakeHandle) Memory(context.Context) (models.MemoryUsage, error) {
	if h.panicOnMemory {
		panic("corrupt process entry")
	}
	return h.usage, h.memErr
}

func (h *fakeHandle) Terminate(context.Context) error {
	h.terminated++
	return h.termErr
}

func (h *fakeHandle) Kill(context.Context) error {
	h.killed++
	return h.killErr
}

func (h *fakeHandle) IsAlive(context.Context) (bool, error) {
	h.checks++
	return h.alive, h.aliveErr
}

type fakeProvider struct {
	handles []collector.Handle
	procErr error
	memory  models.MemoryInfo
	memErr  error

	scans, memoryReads int
	onScan             func(n int)
	onMemory           func(n int)
}

var _ collector.Provider = (*fakeProvider)(nil)

func (p *fakeProvider) Processes(context.Context) ([]collector.Handle, error) {
	p.scans++
	if p.onScan != nil {
		p.onScan(p.scans)
	}
	return p.handles, p.procErr
}

func (p *fakeProvider) SystemMemory(context.Context) (models.MemoryInfo, error) {
	p.memoryReads++
	if p.onMemory != nil {
		p.onMemory(p.memoryReads)
	}
	return p.memory, p.memErr
}

func (p *fakeProvider) TotalMemory() uint64 { return 16 * gb }

type fakeContainers map[int32]string

func (f fakeContainers) Lookup(_ context.Context, pid int32) string { return f[pid] }

func testConfig() *config.Config {
	return &config.Config{
		RAMPercentThreshold: 50.0,
		RAMGBThreshold:      100.0,
		CheckInterval:       time.Millisecond,
		WhitelistPIDs:       map[int32]struct{}{1: {}},
		WhitelistNames:      []string{"sshd"},
		WhitelistUsers:      map[string]struct{}{},
		LogFile:             "memguard.log",
		LogLevel:            "info",
	}
}

func newTestEngine(t *testing.T, cfg *config.Config, provider *fakeProvider, opts ...Option) (*Engine, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	opts = append([]Option{withSelfPID(999999), WithGracePeriod(0)}, opts...)
	e := New(cfg, provider, logger, opts...)
	hook.Reset()
	return e, hook
}

// hog is a non-whitelisted process at 60% / 2GB.
func hog(pid int32) *fakeHandle {
	return &fakeHandle{
		pid:     pid,
		name:    "leaky",
		user:    "alice",
		cmdline: []string{"/usr/bin/leaky", "--cache", "all"},
		usage:   models.MemoryUsage{RSS: 2 * gb, Percent: 60},
	}
}

func entriesAt(hook *test.Hook, level logrus.Level) []*logrus.Entry {
	var out []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == level {
			out = append(out, entry)
		}
	}
	return out
}

func messages(hook *test.Hook) []string {
	var out []string
	for _, entry := range hook.AllEntries() {
		out = append(out, entry.Message)
	}
	return out
}
