// Package sysinfo samples the console's own resource footprint so the
// status bar and remote feed can show what the monitor itself costs.
package sysinfo

import (
	"os"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

// Footprint is one sample of the process's resource usage. Zero values mean
// sampling was unavailable; the pipeline never fails on it.
type Footprint struct {
	CPUPercent float64 `json:"cpuPercent"`
	RSSBytes   uint64  `json:"rssBytes"`
}

var (
	selfOnce sync.Once
	self     *process.Process
)

// Sample returns the current process footprint. Errors degrade to zero
// fields rather than propagating; a monitoring console must not die because
// /proc was momentarily unreadable.
func Sample() Footprint {
	selfOnce.Do(func() {
		self, _ = process.NewProcess(int32(os.Getpid()))
	})
	if self == nil {
		return Footprint{}
	}

	var fp Footprint
	if cpu, err := self.CPUPercent(); err == nil {
		fp.CPUPercent = cpu
	}
	if mem, err := self.MemoryInfo(); err == nil && mem != nil {
		fp.RSSBytes = mem.RSS
	}
	return fp
}
