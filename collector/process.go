package collector

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"strconv"

	"memguard/models"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Handle is a live view of one OS process. Every accessor may fail with
// ErrProcessVanished or ErrAccessDenied because the process can exit or
// change between enumeration and inspection.
type Handle interface {
	PID() int32
	Name(ctx context.Context) (string, error)
	Username(ctx context.Context) (string, error)
	Cmdline(ctx context.Context) ([]string, error)
	Memory(ctx context.Context) (models.MemoryUsage, error)
	// Terminate requests a graceful stop (SIGTERM).
	Terminate(ctx context.Context) error
	// Kill forces a stop (SIGKILL).
	Kill(ctx context.Context) error
	IsAlive(ctx context.Context) (bool, error)
}

// Provider enumerates the process table. It performs no filtering and keeps
// nothing between calls.
type Provider interface {
	Processes(ctx context.Context) ([]Handle, error)
	SystemMemory(ctx context.Context) (models.MemoryInfo, error)
	// TotalMemory is the physical RAM read once at construction.
	TotalMemory() uint64
}

// Stubbed in tests.
var (
	isRunning = (*process.Process).IsRunningWithContext
	terminate = (*process.Process).TerminateWithContext
	kill      = (*process.Process).KillWithContext
)

// ProcessProvider is the gopsutil backed Provider.
type ProcessProvider struct {
	totalMemory uint64
}

var _ Provider = (*ProcessProvider)(nil)

// NewProvider reads total physical memory once; it is the denominator for
// every percentage the provider reports.
func NewProvider(ctx context.Context) (*ProcessProvider, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read total memory: %w", err)
	}
	if vm.Total == 0 {
		return nil, errors.New("read total memory: reported 0 bytes")
	}
	return &ProcessProvider{totalMemory: vm.Total}, nil
}

func (p *ProcessProvider) TotalMemory() uint64 {
	return p.totalMemory
}

// Processes lists every live process.
func (p *ProcessProvider) Processes(ctx context.Context) ([]Handle, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get processes: %w", err)
	}

	handles := make([]Handle, 0, len(procs))
	for _, proc := range procs {
		// Pin the start time now so a reused pid is never mistaken for this one.
		_, _ = proc.CreateTimeWithContext(ctx)
		handles = append(handles, &procHandle{proc: proc, totalMemory: p.totalMemory})
	}
	return handles, nil
}

type procHandle struct {
	proc        *process.Process
	totalMemory uint64
}

func (h *procHandle) PID() int32 {
	return h.proc.Pid
}

func (h *procHandle) Name(ctx context.Context) (string, error) {
	name, err := h.proc.NameWithContext(ctx)
	if err != nil {
		return "", wrap(h.proc.Pid, "name", err)
	}
	return name, nil
}

func (h *procHandle) Username(ctx context.Context) (string, error) {
	name, err := h.proc.UsernameWithContext(ctx)
	if err == nil {
		return name, nil
	}
	// uid with no passwd entry, common for container users
	var unknown user.UnknownUserIdError
	if errors.As(err, &unknown) {
		return strconv.Itoa(int(unknown)), nil
	}
	return "", wrap(h.proc.Pid, "username", err)
}

func (h *procHandle) Cmdline(ctx context.Context) ([]string, error) {
	args, err := h.proc.CmdlineSliceWithContext(ctx)
	if err != nil {
		return nil, wrap(h.proc.Pid, "cmdline", err)
	}
	return args, nil
}

func (h *procHandle) Memory(ctx context.Context) (models.MemoryUsage, error) {
	info, err := h.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return models.MemoryUsage{}, wrap(h.proc.Pid, "memory", err)
	}
	return models.MemoryUsage{
		RSS:     info.RSS,
		Percent: percentOf(info.RSS, h.totalMemory),
	}, nil
}

func (h *procHandle) Terminate(ctx context.Context) error {
	return h.signal(ctx, "terminate", terminate)
}

func (h *procHandle) Kill(ctx context.Context) error {
	return h.signal(ctx, "kill", kill)
}

// signal refuses to send when the pid now belongs to another process.
func (h *procHandle) signal(ctx context.Context, op string, send func(*process.Process, context.Context) error) error {
	running, err := isRunning(h.proc, ctx)
	if err != nil {
		return wrap(h.proc.Pid, op, err)
	}
	if !running {
		return wrap(h.proc.Pid, op, ErrProcessVanished)
	}
	if err := send(h.proc, ctx); err != nil {
		return wrap(h.proc.Pid, op, err)
	}
	return nil
}

// IsAlive reports false for exited, reaped-and-reused and zombie pids.
func (h *procHandle) IsAlive(ctx context.Context) (bool, error) {
	running, err := isRunning(h.proc, ctx)
	if err != nil {
		if classify(err) == ErrProcessVanished {
			return false, nil
		}
		return false, wrap(h.proc.Pid, "is_running", err)
	}
	if !running {
		return false, nil
	}
	if status, err := h.proc.StatusWithContext(ctx); err == nil && len(status) > 0 && status[0] == process.Zombie {
		return false, nil
	}
	return true, nil
}

func percentOf(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}
