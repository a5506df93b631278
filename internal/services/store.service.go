package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
)

// SampleStore keeps the most recent sample plus a fixed-size history ring.
// A single goroutine (Run) writes; any number of request handlers read.
type SampleStore struct {
	mu      sync.RWMutex
	latest  models.Sample
	ready   bool
	ring    []models.Sample
	head    int // next write position
	count   int
	dropped func() uint64
}

// NewSampleStore creates a store holding up to historySize samples.
// dropped, when non-nil, reports the producer's drop counter so the
// store can expose it alongside the data it kept.
func NewSampleStore(historySize int, dropped func() uint64) *SampleStore {
	if historySize < 1 {
		historySize = 1
	}
	return &SampleStore{
		ring:    make([]models.Sample, historySize),
		dropped: dropped,
	}
}

// Run drains samples until the channel closes or ctx is cancelled.
// onSample, when non-nil, is invoked after each stored sample; the hub
// hooks in here to fan snapshots out to websocket clients.
func (st *SampleStore) Run(ctx context.Context, samples <-chan models.Sample, onSample func(models.Sample)) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Println("[STORE] stopped")
				return
			case sample, ok := <-samples:
				if !ok {
					log.Println("[STORE] sample queue closed")
					return
				}
				st.Update(sample)
				if onSample != nil {
					onSample(sample)
				}
			}
		}
	}()
}

// Update records one sample as both the latest and a ring entry.
func (st *SampleStore) Update(sample models.Sample) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.latest = sample
	st.ready = true
	st.ring[st.head] = sample
	st.head = (st.head + 1) % len(st.ring)
	if st.count < len(st.ring) {
		st.count++
	}
}

// Latest returns the newest sample. ok is false until the first sample
// has been stored.
func (st *SampleStore) Latest() (models.Sample, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.latest, st.ready
}

// History returns stored samples newer than since, oldest first. A zero
// since returns the whole ring. The result is a copy; callers may keep it.
func (st *SampleStore) History(since time.Time) []models.Sample {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]models.Sample, 0, st.count)
	start := (st.head - st.count + len(st.ring)) % len(st.ring)
	for i := 0; i < st.count; i++ {
		sample := st.ring[(start+i)%len(st.ring)]
		if !since.IsZero() && !sample.Timestamp.After(since) {
			continue
		}
		out = append(out, sample)
	}
	return out
}

// Len returns how many samples the ring currently holds.
func (st *SampleStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.count
}

// Drops reports how many samples the producer discarded before they
// reached the store.
func (st *SampleStore) Drops() uint64 {
	if st.dropped == nil {
		return 0
	}
	return st.dropped()
}
