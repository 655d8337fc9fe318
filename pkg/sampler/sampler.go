// Package sampler collects low-frequency resource and backpressure samples
// for the run report, off the pipeline's hot path.
package sampler

import (
	"sync"
	"time"

	"github.com/prometheus/procfs"
)

// ChannelStats accumulates occupancy samples of the bounded batch channel.
// Safe for concurrent use; writers record, the report reads the average.
type ChannelStats struct {
	mtx      sync.Mutex
	capacity int
	sum      float64
	count    uint64
}

func NewChannelStats(capacity int) *ChannelStats {
	return &ChannelStats{capacity: capacity}
}

// Record adds one occupancy sample from the current channel length.
func (c *ChannelStats) Record(length int) {
	if c.capacity <= 0 {
		return
	}
	c.mtx.Lock()
	c.sum += float64(length) / float64(c.capacity)
	c.count++
	c.mtx.Unlock()
}

// AverageFullness returns the mean occupancy in [0, 1], or 0 with no samples.
func (c *ChannelStats) AverageFullness() float64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.count == 0 {
		return 0
	}
	return c.sum / float64(c.count)
}

// HighWaterMarks are the aggregates the run report persists.
type HighWaterMarks struct {
	PeakRSSBytes       uint64
	PeakCPUPercent     float64
	AvgChannelFullness float64
}

// Sampler polls the process's RSS and CPU time at a fixed interval through
// procfs. Where /proc is unavailable the sampler degrades to channel
// occupancy only.
type Sampler struct {
	stats *ChannelStats

	mtx        sync.Mutex
	peakRSS    uint64
	peakCPU    float64
	lastCPU    float64
	lastSample time.Time

	stop chan struct{}
	done chan struct{}
}

// Start launches the background sampling loop at the given interval.
func Start(stats *ChannelStats, interval time.Duration) *Sampler {
	s := &Sampler{
		stats: stats,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.loop(interval)
	return s
}

func (s *Sampler) loop(interval time.Duration) {
	defer close(s.done)

	proc, err := procfs.Self()
	if err != nil {
		// No /proc; nothing to sample beyond channel occupancy.
		<-s.stop
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sample(proc)
		}
	}
}

func (s *Sampler) sample(proc procfs.Proc) {
	stat, err := proc.Stat()
	if err != nil {
		return
	}

	now := time.Now()
	rss := uint64(stat.ResidentMemory())
	cpuTime := stat.CPUTime()

	s.mtx.Lock()
	if rss > s.peakRSS {
		s.peakRSS = rss
	}
	if !s.lastSample.IsZero() {
		if wall := now.Sub(s.lastSample).Seconds(); wall > 0 {
			if pct := (cpuTime - s.lastCPU) / wall * 100; pct > s.peakCPU {
				s.peakCPU = pct
			}
		}
	}
	s.lastCPU = cpuTime
	s.lastSample = now
	s.mtx.Unlock()
}

// Stop terminates the sampling loop and waits for it to exit. Safe to call
// more than once.
func (s *Sampler) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}

// HighWaterMarks snapshots the collected aggregates.
func (s *Sampler) HighWaterMarks() HighWaterMarks {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	hwm := HighWaterMarks{
		PeakRSSBytes:   s.peakRSS,
		PeakCPUPercent: s.peakCPU,
	}
	if s.stats != nil {
		hwm.AvgChannelFullness = s.stats.AverageFullness()
	}
	return hwm
}
