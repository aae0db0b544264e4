package panels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// SystemStats is the host summary shown in the header.
type SystemStats struct {
	Hostname        string
	Platform        string
	PlatformVersion string
	Kernel          string
	Uptime          time.Duration

	CPUPercent float64
	Load1      float64
	Load5      float64
	Load15     float64

	MemUsed    uint64
	MemTotal   uint64
	MemPercent float64
}

// StatsFunc gathers system stats.
type StatsFunc func(ctx context.Context) (SystemStats, error)

// CollectSystemStats reads the local host's stats through gopsutil. Parts
// that can't be read are left zero; an error is only returned if nothing
// could be read.
func CollectSystemStats(ctx context.Context) (SystemStats, error) {
	var stats SystemStats
	var errs []error

	if info, err := host.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("host: %w", err))
	} else {
		stats.Hostname = info.Hostname
		stats.Platform = info.Platform
		stats.PlatformVersion = info.PlatformVersion
		stats.Kernel = info.KernelVersion
		stats.Uptime = time.Duration(info.Uptime) * time.Second
	}

	// An interval of zero compares against the previous call, so the first
	// reading is meaningless but later ones don't block.
	if percent, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		errs = append(errs, fmt.Errorf("cpu: %w", err))
	} else if len(percent) > 0 {
		stats.CPUPercent = percent[0]
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("load: %w", err))
	} else {
		stats.Load1, stats.Load5, stats.Load15 = avg.Load1, avg.Load5, avg.Load15
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		stats.MemUsed = vm.Used
		stats.MemTotal = vm.Total
		stats.MemPercent = vm.UsedPercent
	}

	if len(errs) == 4 {
		return SystemStats{}, fmt.Errorf("failed to read system stats: %w", errors.Join(errs...))
	}
	return stats, nil
}

// formatBytes renders a byte count with a binary unit, such as "3.2 GiB".
func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// formatUptime renders a duration the way uptime does: days, hours and
// minutes.
func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Minute)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
