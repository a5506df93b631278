package services

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/telemetry"
)

// AlertEngine evaluates every fetched sample against the configured
// rules. A rule must breach for its full sustained window before an
// alert fires, and must stay clear for the same window before it clears,
// so one spiky sample never flips an alert in either direction.
//
// The outer lock only guards the agent map; each agent's rule states
// sit behind their own lock, so pollers for different agents never
// serialize on a shared one. The event ring has a separate lock.
type AlertEngine struct {
	rules   []models.AlertRule
	limit   int
	onEvent func(models.AlertEvent)

	mu     sync.RWMutex
	agents map[string]*agentAlerts

	evMu   sync.Mutex
	events []models.AlertEvent
}

// agentAlerts tracks one agent's rule states, index-aligned with the
// engine's rules. An entry stays nil until its metric first shows up in
// a sample.
type agentAlerts struct {
	mu     sync.Mutex
	states []*models.AlertState
}

// NewAlertEngine creates an engine. eventLimit caps the retained event
// history; onEvent, when non-nil, receives each fired or cleared event.
func NewAlertEngine(rules []models.AlertRule, eventLimit int, onEvent func(models.AlertEvent)) *AlertEngine {
	if eventLimit < 1 {
		eventLimit = 1
	}
	return &AlertEngine{
		rules:   rules,
		limit:   eventLimit,
		onEvent: onEvent,
		agents:  make(map[string]*agentAlerts),
	}
}

// Evaluate runs the agent's sample through every rule. Elapsed time is
// measured on sample timestamps, not wall clock, so replaying a backlog
// of samples transitions exactly as live evaluation would.
func (e *AlertEngine) Evaluate(agent string, sample models.Sample) {
	a := e.agent(agent)

	var fired []models.AlertEvent
	a.mu.Lock()
	for i, rule := range e.rules {
		value, ok := sample.Metric(rule.Metric)
		if !ok {
			continue
		}
		st := a.states[i]
		if st == nil {
			st = &models.AlertState{Agent: agent, Rule: rule, Status: models.AlertNormal}
			a.states[i] = st
		}
		if event, ok := e.step(st, value, sample.Timestamp); ok {
			fired = append(fired, event)
		}
	}
	a.mu.Unlock()

	for _, event := range fired {
		e.record(event)
	}

	// Callback outside any lock; the hub's send path must not be able to
	// re-enter the engine while one is held.
	if e.onEvent != nil {
		for _, event := range fired {
			e.onEvent(event)
		}
	}
}

// step advances one rule's state machine and reports the event to emit,
// if any. Only the Breaching to Alerting and Recovering to Normal edges
// emit; a re-breach during recovery silently returns to Alerting because
// the alert never cleared.
func (e *AlertEngine) step(st *models.AlertState, value float64, ts time.Time) (models.AlertEvent, bool) {
	breached := st.Rule.Breached(value)
	st.LastValue = value

	switch st.Status {
	case models.AlertNormal:
		if breached {
			st.Status = models.AlertBreaching
			st.BreachStart = ts
			st.LastTransition = ts
		}
	case models.AlertBreaching:
		if !breached {
			st.Status = models.AlertNormal
			st.LastTransition = ts
			break
		}
		if ts.Sub(st.BreachStart) >= st.Rule.Sustained {
			st.Status = models.AlertAlerting
			st.LastTransition = ts
			return e.makeEvent(st, models.EventFired, value, ts), true
		}
	case models.AlertAlerting:
		if !breached {
			st.Status = models.AlertRecovering
			st.ClearStart = ts
			st.LastTransition = ts
		}
	case models.AlertRecovering:
		if breached {
			st.Status = models.AlertAlerting
			st.LastTransition = ts
			break
		}
		if ts.Sub(st.ClearStart) >= st.Rule.Sustained {
			st.Status = models.AlertNormal
			st.LastTransition = ts
			return e.makeEvent(st, models.EventCleared, value, ts), true
		}
	}
	return models.AlertEvent{}, false
}

// States returns a snapshot of every tracked rule state, sorted by agent
// then rule.
func (e *AlertEngine) States() []models.AlertState {
	buckets := e.buckets()

	out := make([]models.AlertState, 0, len(buckets)*len(e.rules))
	for _, a := range buckets {
		a.mu.Lock()
		for _, st := range a.states {
			if st != nil {
				out = append(out, *st)
			}
		}
		a.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Agent != out[j].Agent {
			return out[i].Agent < out[j].Agent
		}
		return out[i].Rule.Label() < out[j].Rule.Label()
	})
	return out
}

// Firing returns how many alerts are active, meaning fired and not yet
// cleared. A rule mid-recovery still counts; its alert is still live.
func (e *AlertEngine) Firing() int {
	n := 0
	for _, a := range e.buckets() {
		a.mu.Lock()
		for _, st := range a.states {
			if st != nil && (st.Status == models.AlertAlerting || st.Status == models.AlertRecovering) {
				n++
			}
		}
		a.mu.Unlock()
	}
	return n
}

// Events returns the retained event history, oldest first.
func (e *AlertEngine) Events() []models.AlertEvent {
	e.evMu.Lock()
	defer e.evMu.Unlock()

	out := make([]models.AlertEvent, len(e.events))
	copy(out, e.events)
	return out
}

// agent returns the per-agent state bucket, creating it on first sight.
func (e *AlertEngine) agent(name string) *agentAlerts {
	e.mu.RLock()
	a, ok := e.agents[name]
	e.mu.RUnlock()
	if ok {
		return a
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if a, ok := e.agents[name]; ok {
		return a
	}
	a = &agentAlerts{states: make([]*models.AlertState, len(e.rules))}
	e.agents[name] = a
	return a
}

// buckets snapshots the agent map so readers can walk it without
// holding the map lock across every per-agent lock.
func (e *AlertEngine) buckets() []*agentAlerts {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*agentAlerts, 0, len(e.agents))
	for _, a := range e.agents {
		out = append(out, a)
	}
	return out
}

func (e *AlertEngine) makeEvent(st *models.AlertState, kind string, value float64, ts time.Time) models.AlertEvent {
	return models.AlertEvent{
		Agent:     st.Agent,
		Metric:    st.Rule.Metric,
		Rule:      st.Rule.Label(),
		Kind:      kind,
		Value:     value,
		Limit:     st.Rule.Limit,
		Timestamp: ts,
	}
}

// record appends to the shared event ring, discarding the oldest entry
// once the limit is reached.
func (e *AlertEngine) record(event models.AlertEvent) {
	telemetry.AlertTransitions.WithLabelValues(event.Agent, event.Metric, event.Kind).Inc()
	log.Printf("[ALERTS] %s: %s %s (value: %.1f, limit: %.1f)", event.Agent, event.Rule, event.Kind, event.Value, event.Limit)

	e.evMu.Lock()
	defer e.evMu.Unlock()

	if len(e.events) == e.limit {
		copy(e.events, e.events[1:])
		e.events = e.events[:e.limit-1]
	}
	e.events = append(e.events, event)
}
