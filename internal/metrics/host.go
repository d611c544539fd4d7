package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"

	"github.com/hostpulse/hostpulse/internal/config"
)

// Metric names emitted by the host source.
const (
	MetricCPUPercent  = "cpu_percent"
	MetricMemPercent  = "mem_percent"
	MetricDiskPercent = "disk_percent"
	MetricLoad1       = "load1"
	MetricNetSentBps  = "net_sent_bps"
	MetricNetRecvBps  = "net_recv_bps"
)

// hostSource samples local machine resources via gopsutil.
//
// Network rates are derived from interface counter deltas between successive
// samples, so net_sent_bps and net_recv_bps are absent from the very first
// snapshot — there is no delta to compute yet.
type hostSource struct {
	host     string
	diskPath string

	mu       sync.Mutex
	prevSent float64
	prevRecv float64
	prevTime time.Time
	hasPrev  bool
}

func newHostSource(hostID string, cfg config.SourceConfig) *hostSource {
	path := cfg.DiskPath
	if path == "" {
		path = "/"
	}
	return &hostSource{host: hostID, diskPath: path}
}

// Sample reads CPU, memory, disk, load, and network counters. A failure to
// read one subsystem leaves that metric absent from the snapshot and does not
// fail the whole sample — downstream rule evaluation skips absent metrics.
func (s *hostSource) Sample(ctx context.Context) (*Snapshot, error) {
	snap := newSnapshot(s.host)

	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		slog.Warn("metrics: cpu read failed", "err", err)
	} else if len(pcts) > 0 {
		snap.Values[MetricCPUPercent] = pcts[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		slog.Warn("metrics: memory read failed", "err", err)
	} else {
		snap.Values[MetricMemPercent] = vm.UsedPercent
	}

	if du, err := disk.UsageWithContext(ctx, s.diskPath); err != nil {
		slog.Warn("metrics: disk read failed", "path", s.diskPath, "err", err)
	} else {
		snap.Values[MetricDiskPercent] = du.UsedPercent
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		slog.Warn("metrics: load read failed", "err", err)
	} else {
		snap.Values[MetricLoad1] = avg.Load1
	}

	if counters, err := net.IOCountersWithContext(ctx, false); err != nil {
		slog.Warn("metrics: net counters read failed", "err", err)
	} else if len(counters) > 0 {
		s.applyNetRates(snap, float64(counters[0].BytesSent), float64(counters[0].BytesRecv))
	}

	return snap, nil
}

// applyNetRates converts raw interface byte totals into per-second rates
// using the delta from the previous sample. The first call only records the
// baseline and emits nothing.
func (s *hostSource) applyNetRates(snap *Snapshot, sent, recv float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := snap.TakenAt
	if s.hasPrev {
		elapsed := now.Sub(s.prevTime).Seconds()
		if elapsed > 0 {
			snap.Values[MetricNetSentBps] = deltaOf(sent, s.prevSent) / elapsed
			snap.Values[MetricNetRecvBps] = deltaOf(recv, s.prevRecv) / elapsed
		}
	}

	s.prevSent = sent
	s.prevRecv = recv
	s.prevTime = now
	s.hasPrev = true
}

// deltaOf returns the positive counter delta between current and previous.
// If current < previous (counter reset after restart), returns 0.
func deltaOf(current, previous float64) float64 {
	d := current - previous
	if d < 0 {
		return 0
	}
	return d
}
