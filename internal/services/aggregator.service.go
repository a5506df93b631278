package services

import (
	"sort"
	"sync"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
)

// Aggregator keeps a rolling time window per agent per metric. The outer
// lock only guards the agent map; each agent's series has its own lock,
// so pollers for different agents never serialize on a shared one.
type Aggregator struct {
	span   time.Duration
	mu     sync.RWMutex
	agents map[string]*agentSeries
}

type agentSeries struct {
	mu      sync.Mutex
	windows map[string]*models.MetricWindow
	last    models.Sample
	ready   bool
}

// NewAggregator creates an aggregator whose windows retain span worth of
// points per metric.
func NewAggregator(span time.Duration) *Aggregator {
	return &Aggregator{
		span:   span,
		agents: make(map[string]*agentSeries),
	}
}

// Record folds one fetched sample into the agent's windows. Points whose
// timestamp does not advance the series are skipped, so re-fetching an
// unchanged agent snapshot cannot duplicate data.
func (a *Aggregator) Record(agent string, sample models.Sample) {
	series := a.series(agent)

	series.mu.Lock()
	defer series.mu.Unlock()

	for _, name := range models.TrackedMetrics {
		value, ok := sample.Metric(name)
		if !ok {
			continue
		}
		window, ok := series.windows[name]
		if !ok {
			window = models.NewMetricWindow(a.span)
			series.windows[name] = window
		}
		window.Append(sample.Timestamp, value)
	}

	if !series.ready || sample.Timestamp.After(series.last.Timestamp) {
		series.last = sample
		series.ready = true
	}
}

// Agents returns every agent seen so far, sorted by name.
func (a *Aggregator) Agents() []string {
	a.mu.RLock()
	names := make([]string, 0, len(a.agents))
	for name := range a.agents {
		names = append(names, name)
	}
	a.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Latest returns the newest sample recorded for the agent.
func (a *Aggregator) Latest(agent string) (models.Sample, bool) {
	series, ok := a.lookup(agent)
	if !ok {
		return models.Sample{}, false
	}

	series.mu.Lock()
	defer series.mu.Unlock()
	return series.last, series.ready
}

// History returns a copy of every metric window for the agent, keyed by
// metric name.
func (a *Aggregator) History(agent string) (map[string][]models.MetricPoint, bool) {
	series, ok := a.lookup(agent)
	if !ok {
		return nil, false
	}

	series.mu.Lock()
	defer series.mu.Unlock()

	out := make(map[string][]models.MetricPoint, len(series.windows))
	for name, window := range series.windows {
		out[name] = window.Points()
	}
	return out, true
}

// Window returns a copy of one metric's points for the agent.
func (a *Aggregator) Window(agent, metric string) ([]models.MetricPoint, bool) {
	series, ok := a.lookup(agent)
	if !ok {
		return nil, false
	}

	series.mu.Lock()
	defer series.mu.Unlock()

	window, ok := series.windows[metric]
	if !ok {
		return nil, false
	}
	return window.Points(), true
}

func (a *Aggregator) lookup(agent string) (*agentSeries, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	series, ok := a.agents[agent]
	return series, ok
}

// series returns the agent's series, creating it on first sight.
func (a *Aggregator) series(agent string) *agentSeries {
	a.mu.RLock()
	series, ok := a.agents[agent]
	a.mu.RUnlock()
	if ok {
		return series
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if series, ok := a.agents[agent]; ok {
		return series
	}
	series = &agentSeries{windows: make(map[string]*models.MetricWindow)}
	a.agents[agent] = series
	return series
}
