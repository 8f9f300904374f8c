// Package observability подключает трейсинг и снимает показатели процесса.
package observability

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats снимает показатели текущего процесса
type ProcessStats struct {
	StartTime time.Time
	proc      *process.Process
}

// NewProcessStats создает сборщик для текущего процесса
func NewProcessStats() (*ProcessStats, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("process %d: %w", os.Getpid(), err)
	}
	return &ProcessStats{StartTime: time.Now(), proc: proc}, nil
}

// Snapshot — показатели процесса на момент вызова
type Snapshot struct {
	Uptime     time.Duration
	HeapMB     float64
	RSSMB      float64
	CPUPercent float64
	Goroutines int
}

// Snapshot возвращает текущие показатели. Ошибки gopsutil не фатальны:
// недоступные поля остаются нулевыми.
func (ps *ProcessStats) Snapshot() Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s := Snapshot{
		Uptime:     time.Since(ps.StartTime),
		HeapMB:     float64(m.HeapAlloc) / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
	}
	if mem, err := ps.proc.MemoryInfo(); err == nil {
		s.RSSMB = float64(mem.RSS) / 1024 / 1024
	}
	if cpu, err := ps.proc.CPUPercent(); err == nil {
		s.CPUPercent = cpu
	}
	return s
}

func (s Snapshot) String() string {
	return fmt.Sprintf("uptime=%s heap=%.1fMB rss=%.1fMB cpu=%.1f%% goroutines=%d",
		s.Uptime.Truncate(time.Millisecond), s.HeapMB, s.RSSMB, s.CPUPercent, s.Goroutines)
}
