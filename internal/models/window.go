package models

import "time"

// MetricPoint represents a single observation of one metric
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MetricWindow holds a chronologically ordered series for one metric,
// bounded by a time span rather than a point count. It is not safe for
// concurrent use; the aggregator serializes access per agent.
type MetricWindow struct {
	span   time.Duration
	points []MetricPoint
}

// NewMetricWindow creates a window retaining points no older than span
func NewMetricWindow(span time.Duration) *MetricWindow {
	return &MetricWindow{span: span}
}

// Append inserts an observation and prunes expired points. Observations
// at or before the newest retained timestamp are rejected, so re-polling
// an unchanged agent sample never double-inserts.
func (w *MetricWindow) Append(ts time.Time, value float64) bool {
	if n := len(w.points); n > 0 && !ts.After(w.points[n-1].Timestamp) {
		return false
	}
	w.points = append(w.points, MetricPoint{Timestamp: ts, Value: value})
	w.prune(ts)
	return true
}

// prune drops points older than the span, measured from the newest point
func (w *MetricWindow) prune(newest time.Time) {
	cutoff := newest.Add(-w.span)
	firstLive := 0
	for firstLive < len(w.points) && w.points[firstLive].Timestamp.Before(cutoff) {
		firstLive++
	}
	if firstLive > 0 {
		w.points = append(w.points[:0], w.points[firstLive:]...)
	}
}

// Len returns the number of retained points
func (w *MetricWindow) Len() int {
	return len(w.points)
}

// Points returns a copy of all retained points, oldest first
func (w *MetricWindow) Points() []MetricPoint {
	out := make([]MetricPoint, len(w.points))
	copy(out, w.points)
	return out
}

// Since returns a copy of the points strictly newer than ts, oldest first
func (w *MetricWindow) Since(ts time.Time) []MetricPoint {
	first := len(w.points)
	for i, p := range w.points {
		if p.Timestamp.After(ts) {
			first = i
			break
		}
	}
	out := make([]MetricPoint, len(w.points)-first)
	copy(out, w.points[first:])
	return out
}
