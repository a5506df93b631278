package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/errors"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/telemetry"
)

// SampleHandler receives each sample a poller fetched from an agent.
type SampleHandler func(target models.AgentTarget, sample models.Sample)

// Poller runs one polling loop per agent target. Loops are fully
// independent: a dead agent backs its own loop off without delaying
// anyone else's schedule.
type Poller struct {
	client *http.Client
	base   time.Duration
	max    time.Duration
	handle SampleHandler

	mu     sync.RWMutex
	status map[string]*models.TargetStatus
	wg     sync.WaitGroup
}

// NewPoller creates a poller. timeout bounds each request, base and max
// bound the failure backoff, and handle receives every fetched sample.
func NewPoller(timeout, base, max time.Duration, handle SampleHandler) *Poller {
	return &Poller{
		client: &http.Client{Timeout: timeout},
		base:   base,
		max:    max,
		handle: handle,
		status: make(map[string]*models.TargetStatus),
	}
}

// Start launches a polling loop for each target and returns immediately.
func (p *Poller) Start(ctx context.Context, targets []models.AgentTarget) {
	p.mu.Lock()
	for _, target := range targets {
		p.status[target.Name] = &models.TargetStatus{
			Name:  target.Name,
			URL:   target.MetricsURL(),
			State: models.PollIdle,
		}
	}
	p.mu.Unlock()

	for _, target := range targets {
		p.wg.Add(1)
		go p.loop(ctx, target)
	}
	log.Printf("[POLLER] started (%d targets)", len(targets))
}

// Wait blocks until every polling loop has exited.
func (p *Poller) Wait() {
	p.wg.Wait()
}

// Statuses returns a snapshot of every target's polling state, sorted by
// target name.
func (p *Poller) Statuses() []models.TargetStatus {
	p.mu.RLock()
	out := make([]models.TargetStatus, 0, len(p.status))
	for _, st := range p.status {
		out = append(out, *st)
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p *Poller) loop(ctx context.Context, target models.AgentTarget) {
	defer p.wg.Done()

	url := target.MetricsURL()
	failures := 0

	// Fires immediately so the dashboard has data on startup.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[POLLER] %s loop stopped", target.Name)
			return
		case <-timer.C:
		}

		p.update(target.Name, func(st *models.TargetStatus) {
			st.State = models.PollRequesting
		})
		telemetry.PollsTotal.WithLabelValues(target.Name).Inc()

		sample, err := p.fetch(ctx, url)
		if err != nil {
			failures++
			telemetry.PollFailures.WithLabelValues(target.Name).Inc()
			delay := backoffDelay(p.base, p.max, failures)
			p.update(target.Name, func(st *models.TargetStatus) {
				st.State = models.PollBackoff
				st.ConsecutiveFailures = failures
				st.LastError = errors.Message(err)
				st.NextDelay = delay.String()
			})
			log.Printf("[POLLER] Warning: %s poll failed (attempt %d, retry in %v): %v", target.Name, failures, delay, errors.Message(err))
			timer.Reset(delay)
			continue
		}

		failures = 0
		p.update(target.Name, func(st *models.TargetStatus) {
			st.State = models.PollIdle
			st.ConsecutiveFailures = 0
			st.LastSuccess = time.Now()
			st.LastError = ""
			st.NextDelay = ""
		})
		p.handle(target, sample)
		timer.Reset(target.PollInterval)
	}
}

// fetch requests one metrics snapshot. Any non-200 status, transport
// error, or malformed payload counts as a failure.
func (p *Poller) fetch(ctx context.Context, url string) (models.Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Sample{}, errors.WrapWithCode(err, errors.ErrPoll, "could not build metrics request", "")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return models.Sample{}, errors.WrapWithCode(err, errors.ErrPoll, "agent unreachable",
			"check that the agent is running and the address is correct")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Sample{}, errors.New(errors.ErrPoll,
			fmt.Sprintf("agent returned status %d", resp.StatusCode),
			"the agent may still be collecting its first sample")
	}

	var sample models.Sample
	if err := json.NewDecoder(resp.Body).Decode(&sample); err != nil {
		return models.Sample{}, errors.WrapWithCode(err, errors.ErrPoll, "could not decode metrics payload",
			"the agent may be running an incompatible version")
	}
	if sample.Timestamp.IsZero() {
		return models.Sample{}, errors.New(errors.ErrPoll, "metrics payload has no timestamp",
			"the agent may be running an incompatible version")
	}
	return sample, nil
}

// update applies fn to a target's status under the lock.
func (p *Poller) update(name string, fn func(*models.TargetStatus)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.status[name]; ok {
		fn(st)
	}
}

// backoffDelay doubles the base delay per consecutive failure, capped at
// max. The first failure waits the base delay.
func backoffDelay(base, max time.Duration, failures int) time.Duration {
	if failures < 1 {
		return base
	}
	delay := base
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
