package services

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/telemetry"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// gopsutil entry points, swapped by tests that simulate failed reads.
var (
	readCPUPercent    = cpu.Percent
	readVirtualMemory = mem.VirtualMemory
	readSwapMemory    = mem.SwapMemory
	readPartitions    = disk.Partitions
	readDiskUsage     = disk.Usage
	readDiskCounters  = disk.IOCounters
	readNetCounters   = net.IOCounters
)

// Sampler reads host vitals on a fixed cadence and hands each snapshot to
// the store through a bounded queue. The tick loop never blocks on a slow
// consumer: when the queue is full, the oldest unread sample is discarded
// so the newest data always gets through.
type Sampler struct {
	interval time.Duration
	volumes  []string
	out      chan models.Sample
	dropped  atomic.Uint64

	// Raw counter baselines for rate derivation, stamped with the time
	// each was last read. Only the tick goroutine touches these.
	lastDiskRead  uint64
	lastDiskWrite uint64
	lastDiskAt    time.Time
	lastNetSent   uint64
	lastNetRecv   uint64
	lastNetAt     time.Time
}

// NewSampler creates a sampler. volumes restricts which mount points are
// reported; empty means all physical partitions.
func NewSampler(interval time.Duration, channelSize int, volumes []string) *Sampler {
	if channelSize < 1 {
		channelSize = 1
	}
	return &Sampler{
		interval: interval,
		volumes:  volumes,
		out:      make(chan models.Sample, channelSize),
	}
}

// Samples returns the queue the store drains. The channel closes after
// Start's context is cancelled.
func (s *Sampler) Samples() <-chan models.Sample {
	return s.out
}

// Dropped returns how many samples have been discarded to date.
func (s *Sampler) Dropped() uint64 {
	return s.dropped.Load()
}

// Start launches the tick loop and returns immediately.
func (s *Sampler) Start(ctx context.Context) {
	go func() {
		defer close(s.out)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// Collect once right away so the agent turns ready without
		// waiting out a full interval.
		s.collect(time.Now())

		for {
			select {
			case <-ctx.Done():
				log.Println("[SAMPLER] stopped")
				return
			case now := <-ticker.C:
				s.collect(now)
			}
		}
	}()

	log.Printf("[SAMPLER] started (interval: %v)", s.interval)
}

func (s *Sampler) collect(now time.Time) {
	s.publish(s.snapshot(now))
	telemetry.SamplesCollected.Inc()
}

// snapshot reads every counter group. A failed read logs a warning and
// leaves that group nil, so the sample carries no value for it rather
// than a fake zero; one bad subsystem never loses the rest of the
// sample.
func (s *Sampler) snapshot(now time.Time) models.Sample {
	sample := models.Sample{Timestamp: now}

	if percentages, err := readCPUPercent(0, false); err != nil {
		log.Printf("[SAMPLER] Warning: could not read CPU usage: %v", err)
		telemetry.SampleReadErrors.WithLabelValues("cpu").Inc()
	} else if len(percentages) > 0 {
		sample.CPUStat = &models.CPUStat{CPUPercent: clampPercent(percentages[0])}
	}

	if vm, err := readVirtualMemory(); err != nil {
		log.Printf("[SAMPLER] Warning: could not read memory usage: %v", err)
		telemetry.SampleReadErrors.WithLabelValues("memory").Inc()
	} else {
		sample.MemoryStat = &models.MemoryStat{
			MemoryUsedBytes:  vm.Used,
			MemoryTotalBytes: vm.Total,
			MemoryPercent:    clampPercent(vm.UsedPercent),
		}
	}

	if swap, err := readSwapMemory(); err != nil {
		log.Printf("[SAMPLER] Warning: could not read swap usage: %v", err)
		telemetry.SampleReadErrors.WithLabelValues("swap").Inc()
	} else {
		sample.SwapStat = &models.SwapStat{
			SwapUsedBytes:  swap.Used,
			SwapTotalBytes: swap.Total,
			SwapPercent:    clampPercent(swap.UsedPercent),
		}
	}

	sample.Volumes = s.readVolumes()
	s.readRates(&sample, now)

	return sample
}

// readVolumes returns usage for each mounted volume. Volumes that cannot
// be statted are skipped for this sample.
func (s *Sampler) readVolumes() []models.VolumeUsage {
	partitions, err := readPartitions(false)
	if err != nil {
		log.Printf("[SAMPLER] Warning: could not list partitions: %v", err)
		telemetry.SampleReadErrors.WithLabelValues("disk").Inc()
		return nil
	}

	var volumes []models.VolumeUsage
	for _, partition := range partitions {
		if !s.wantVolume(partition.Mountpoint) {
			continue
		}
		usage, err := readDiskUsage(partition.Mountpoint)
		if err != nil {
			log.Printf("[SAMPLER] Warning: could not read volume %s: %v", partition.Mountpoint, err)
			continue
		}
		volumes = append(volumes, models.VolumeUsage{
			Path:        partition.Mountpoint,
			Filesystem:  partition.Fstype,
			UsedBytes:   usage.Used,
			TotalBytes:  usage.Total,
			UsedPercent: clampPercent(usage.UsedPercent),
		})
	}
	return volumes
}

func (s *Sampler) wantVolume(mountpoint string) bool {
	if len(s.volumes) == 0 {
		return true
	}
	for _, v := range s.volumes {
		if v == mountpoint {
			return true
		}
	}
	return false
}

// readRates derives disk and network throughput from the delta against
// the previous successful reading of each counter group. The first
// reading of a group has no baseline and leaves that group off the
// sample. Each group carries its own baseline time: after a failed
// read, the next delta divides by the full span back to the last good
// reading rather than by one tick.
func (s *Sampler) readRates(sample *models.Sample, now time.Time) {
	if ioCounters, err := readDiskCounters(); err != nil {
		log.Printf("[SAMPLER] Warning: could not read disk I/O counters: %v", err)
		telemetry.SampleReadErrors.WithLabelValues("disk_io").Inc()
	} else {
		var read, write uint64
		for _, counter := range ioCounters {
			read += counter.ReadBytes
			write += counter.WriteBytes
		}
		if elapsed := now.Sub(s.lastDiskAt).Seconds(); !s.lastDiskAt.IsZero() && elapsed > 0 {
			sample.DiskIOStat = &models.DiskIOStat{
				DiskReadBytesPerSec:  deltaRate(read, s.lastDiskRead, elapsed),
				DiskWriteBytesPerSec: deltaRate(write, s.lastDiskWrite, elapsed),
			}
		}
		s.lastDiskRead, s.lastDiskWrite, s.lastDiskAt = read, write, now
	}

	if counters, err := readNetCounters(true); err != nil {
		log.Printf("[SAMPLER] Warning: could not read network counters: %v", err)
		telemetry.SampleReadErrors.WithLabelValues("network").Inc()
	} else {
		var sent, recv uint64
		for _, counter := range counters {
			sent += counter.BytesSent
			recv += counter.BytesRecv
		}
		if elapsed := now.Sub(s.lastNetAt).Seconds(); !s.lastNetAt.IsZero() && elapsed > 0 {
			sample.NetIOStat = &models.NetIOStat{
				NetRxBytesPerSec: deltaRate(recv, s.lastNetRecv, elapsed),
				NetTxBytesPerSec: deltaRate(sent, s.lastNetSent, elapsed),
			}
		}
		s.lastNetSent, s.lastNetRecv, s.lastNetAt = sent, recv, now
	}
}

// publish enqueues without blocking. When the queue is full, the oldest
// unread sample is popped to make room. Only the tick goroutine sends,
// so the pop-then-send pair cannot race another producer.
func (s *Sampler) publish(sample models.Sample) {
	for {
		select {
		case s.out <- sample:
			return
		default:
		}

		select {
		case <-s.out:
			n := s.dropped.Add(1)
			telemetry.SamplesDropped.Inc()
			log.Printf("[SAMPLER] Warning: queue full, dropped oldest sample (total dropped: %d)", n)
		default:
			// Consumer drained the queue between the two selects; just retry the send.
		}
	}
}

// deltaRate converts two raw counter readings into bytes/sec. A counter
// reset (reboot, interface re-plug) shows up as cur < last; report zero
// instead of a huge negative rate.
func deltaRate(cur, last uint64, elapsed float64) float64 {
	if cur < last {
		return 0
	}
	return float64(cur-last) / elapsed
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
