// Package procinfo reads live details of a service process.
package procinfo

import (
	"context"
	"fmt"
	"time"

	"svcman/internal/models"

	"github.com/shirou/gopsutil/v3/process"
)

// Inspector looks up a process by pid.
type Inspector interface {
	Inspect(ctx context.Context, pid int) (*models.ProcessInfo, error)
}

// Gopsutil inspects processes of the local host.
type Gopsutil struct{}

// Inspect returns what can be read about pid. Individual attributes that
// cannot be read are left zero.
func (Gopsutil) Inspect(ctx context.Context, pid int) (*models.ProcessInfo, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, fmt.Errorf("process not found: %w", err)
	}

	info := &models.ProcessInfo{}
	if name, err := p.NameWithContext(ctx); err == nil {
		info.Name = name
	}
	if cmdline, err := p.CmdlineWithContext(ctx); err == nil {
		info.Cmdline = cmdline
	}
	if cpuPercent, err := p.CPUPercentWithContext(ctx); err == nil {
		info.CPUPercent = cpuPercent
	}
	if memInfo, err := p.MemoryInfoWithContext(ctx); err == nil && memInfo != nil {
		info.RSSBytes = memInfo.RSS
	}
	if createTime, err := p.CreateTimeWithContext(ctx); err == nil {
		info.StartedAt = time.UnixMilli(createTime)
	}
	return info, nil
}
