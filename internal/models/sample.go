package models

import "time"

// VolumeUsage represents usage of a single mounted filesystem
type VolumeUsage struct {
	Path        string  `json:"path"`
	Filesystem  string  `json:"filesystem"`
	UsedBytes   uint64  `json:"used_bytes"`
	TotalBytes  uint64  `json:"total_bytes"`
	UsedPercent float64 `json:"used_percent"`
}

// CPUStat represents the processor reading of a sample
type CPUStat struct {
	CPUPercent float64 `json:"cpu_percent"`
}

// MemoryStat represents the virtual memory reading of a sample
type MemoryStat struct {
	MemoryUsedBytes  uint64  `json:"memory_used_bytes"`
	MemoryTotalBytes uint64  `json:"memory_total_bytes"`
	MemoryPercent    float64 `json:"memory_percent"`
}

// SwapStat represents the swap reading of a sample
type SwapStat struct {
	SwapUsedBytes  uint64  `json:"swap_used_bytes"`
	SwapTotalBytes uint64  `json:"swap_total_bytes"`
	SwapPercent    float64 `json:"swap_percent"`
}

// DiskIOStat represents disk throughput derived from counter deltas
type DiskIOStat struct {
	DiskReadBytesPerSec  float64 `json:"disk_read_bytes_per_sec"`  // bytes/sec
	DiskWriteBytesPerSec float64 `json:"disk_write_bytes_per_sec"` // bytes/sec
}

// NetIOStat represents network throughput derived from counter deltas
type NetIOStat struct {
	NetRxBytesPerSec float64 `json:"net_rx_bytes_per_sec"` // bytes/sec
	NetTxBytesPerSec float64 `json:"net_tx_bytes_per_sec"` // bytes/sec
}

// Sample represents one immutable snapshot of host vitals. A stat group
// is nil when its counters could not be read that tick; the embedded
// pointers keep the wire shape flat, and a nil group's fields are
// dropped from the JSON entirely instead of encoding as zeros.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`

	*CPUStat
	*MemoryStat
	*SwapStat

	Volumes []VolumeUsage `json:"volumes,omitempty"`

	*DiskIOStat
	*NetIOStat
}

// Metric names understood by the dashboard aggregator and alert rules.
const (
	MetricCPUPercent    = "cpu_percent"
	MetricMemoryPercent = "memory_percent"
	MetricSwapPercent   = "swap_percent"
	MetricDiskPercent   = "disk_percent"
	MetricDiskRead      = "disk_read_bytes_per_sec"
	MetricDiskWrite     = "disk_write_bytes_per_sec"
	MetricNetRx         = "net_rx_bytes_per_sec"
	MetricNetTx         = "net_tx_bytes_per_sec"
)

// TrackedMetrics lists every metric the dashboard keeps history for
var TrackedMetrics = []string{
	MetricCPUPercent,
	MetricMemoryPercent,
	MetricSwapPercent,
	MetricDiskPercent,
	MetricDiskRead,
	MetricDiskWrite,
	MetricNetRx,
	MetricNetTx,
}

// KnownMetric reports whether name is a metric the dashboard tracks
func KnownMetric(name string) bool {
	for _, m := range TrackedMetrics {
		if m == name {
			return true
		}
	}
	return false
}

// Metric extracts a named metric value from the sample. The second
// return is false when the sample carries no data for that metric: a
// nil stat group after a failed read, or disk_percent on a sample whose
// volume scan came back empty.
func (s Sample) Metric(name string) (float64, bool) {
	switch name {
	case MetricCPUPercent:
		if s.CPUStat == nil {
			return 0, false
		}
		return s.CPUPercent, true
	case MetricMemoryPercent:
		if s.MemoryStat == nil {
			return 0, false
		}
		return s.MemoryPercent, true
	case MetricSwapPercent:
		if s.SwapStat == nil {
			return 0, false
		}
		return s.SwapPercent, true
	case MetricDiskPercent:
		return s.rootVolumePercent()
	case MetricDiskRead:
		if s.DiskIOStat == nil {
			return 0, false
		}
		return s.DiskReadBytesPerSec, true
	case MetricDiskWrite:
		if s.DiskIOStat == nil {
			return 0, false
		}
		return s.DiskWriteBytesPerSec, true
	case MetricNetRx:
		if s.NetIOStat == nil {
			return 0, false
		}
		return s.NetRxBytesPerSec, true
	case MetricNetTx:
		if s.NetIOStat == nil {
			return 0, false
		}
		return s.NetTxBytesPerSec, true
	default:
		return 0, false
	}
}

// rootVolumePercent prefers the "/" mount and falls back to the first
// volume when the host has no root mount (containers, Windows).
func (s Sample) rootVolumePercent() (float64, bool) {
	if len(s.Volumes) == 0 {
		return 0, false
	}
	for _, v := range s.Volumes {
		if v.Path == "/" {
			return v.UsedPercent, true
		}
	}
	return s.Volumes[0].UsedPercent, true
}
