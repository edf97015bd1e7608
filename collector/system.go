package collector

import (
	"context"
	"fmt"
	"strings"

	"memguard/models"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemMemory gathers current RAM usage for the per-cycle memory line.
func (p *ProcessProvider) SystemMemory(ctx context.Context) (models.MemoryInfo, error) {
	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.MemoryInfo{}, fmt.Errorf("read system memory: %w", err)
	}
	return models.MemoryInfo{
		Total:     memInfo.Total,
		Available: memInfo.Available,
		Used:      memInfo.Used,
		Percent:   memInfo.UsedPercent,
	}, nil
}

// HostInfo gathers OS and kernel details for the startup summary.
func HostInfo(ctx context.Context) (models.SystemInfo, error) {
	hostInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		return models.SystemInfo{}, fmt.Errorf("read host info: %w", err)
	}
	return models.SystemInfo{
		OS:     strings.TrimSpace(hostInfo.OS + " " + hostInfo.Platform + " " + hostInfo.PlatformVersion),
		Kernel: hostInfo.KernelVersion,
		Arch:   hostInfo.KernelArch,
	}, nil
}
