package engine

import (
	"sync"
	"time"

	"github.com/go-drift/flow/pkg/tree"
)

const (
	passTraceSamplesDefault  = 240
	defaultSlowPassThreshold = 16667 * time.Microsecond
	renderEventName          = "render"
)

// PassSample is a single pass trace sample.
type PassSample struct {
	Seq       int64         `json:"seq"`
	Timestamp int64         `json:"ts"`
	Event     string        `json:"event"`
	Stats     tree.Stats    `json:"stats"`
	Nodes     int           `json:"nodes"`
	Duration  time.Duration `json:"duration"`
	Reduce    time.Duration `json:"reduce"`
	Reconcile time.Duration `json:"reconcile"`
	Failed    bool          `json:"failed,omitempty"`
}

// PassTimeline is a chronological view of recent passes.
type PassTimeline struct {
	Samples     []PassSample `json:"samples"`
	SlowPasses  int          `json:"slowPasses"`
	ThresholdMs float64      `json:"thresholdMs"`
}

// PassTrace stores recent pass samples in a ring buffer.
type PassTrace struct {
	mu        sync.RWMutex
	samples   []PassSample
	index     int
	count     int
	slow      int
	threshold time.Duration
}

// NewPassTrace creates a new pass trace buffer.
func NewPassTrace(capacity int, threshold time.Duration) *PassTrace {
	if capacity <= 0 {
		capacity = passTraceSamplesDefault
	}
	if threshold <= 0 {
		threshold = defaultSlowPassThreshold
	}
	return &PassTrace{
		samples:   make([]PassSample, capacity),
		threshold: threshold,
	}
}

// Capacity returns the buffer capacity.
func (b *PassTrace) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// SetThreshold updates the slow pass threshold.
func (b *PassTrace) SetThreshold(threshold time.Duration) {
	if threshold <= 0 {
		threshold = defaultSlowPassThreshold
	}
	b.mu.Lock()
	b.threshold = threshold
	b.mu.Unlock()
}

// Threshold returns the slow pass threshold.
func (b *PassTrace) Threshold() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.threshold
}

// Add records a pass sample and reports whether it was slow.
func (b *PassTrace) Add(sample PassSample) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	slow := sample.Duration > b.threshold
	if slow {
		b.slow++
	}
	return slow
}

// Last returns the most recent sample.
func (b *PassTrace) Last() (PassSample, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return PassSample{}, false
	}
	i := (b.index - 1 + len(b.samples)) % len(b.samples)
	return b.samples[i], true
}

// Snapshot returns a chronological copy of samples and stats.
func (b *PassTrace) Snapshot() PassTimeline {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return PassTimeline{ThresholdMs: durationToMillis(b.threshold)}
	}

	result := make([]PassSample, b.count)
	if b.count < len(b.samples) {
		copy(result, b.samples[:b.count])
	} else {
		copy(result, b.samples[b.index:])
		copy(result[len(b.samples)-b.index:], b.samples[:b.index])
	}

	return PassTimeline{
		Samples:     result,
		SlowPasses:  b.slow,
		ThresholdMs: durationToMillis(b.threshold),
	}
}

// Totals sums the stats of every retained sample.
func (t PassTimeline) Totals() tree.Stats {
	var total tree.Stats
	for _, s := range t.Samples {
		total = total.Add(s.Stats)
	}
	return total
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
