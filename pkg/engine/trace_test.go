package engine

import (
	"testing"
	"time"

	"github.com/go-drift/flow/pkg/tree"
)

func TestPassTraceDefaults(t *testing.T) {
	b := NewPassTrace(0, 0)
	if b.Capacity() != passTraceSamplesDefault {
		t.Fatalf("expected capacity %d, got %d", passTraceSamplesDefault, b.Capacity())
	}
	if b.Threshold() != defaultSlowPassThreshold {
		t.Fatalf("expected default threshold, got %v", b.Threshold())
	}
	if _, ok := b.Last(); ok {
		t.Fatal("expected no last sample in empty buffer")
	}
	timeline := b.Snapshot()
	if len(timeline.Samples) != 0 || timeline.ThresholdMs <= 16 {
		t.Fatalf("unexpected empty timeline: %+v", timeline)
	}
}

func TestPassTraceWrapsChronologically(t *testing.T) {
	b := NewPassTrace(2, time.Millisecond)
	for i := int64(1); i <= 3; i++ {
		b.Add(PassSample{Seq: i, Stats: tree.Stats{Mounted: 1}})
	}

	timeline := b.Snapshot()
	if len(timeline.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(timeline.Samples))
	}
	if timeline.Samples[0].Seq != 2 || timeline.Samples[1].Seq != 3 {
		t.Fatalf("expected seq 2,3, got %d,%d", timeline.Samples[0].Seq, timeline.Samples[1].Seq)
	}
	if got := timeline.Totals().Mounted; got != 2 {
		t.Fatalf("expected 2 mounts over retained samples, got %d", got)
	}
	last, ok := b.Last()
	if !ok || last.Seq != 3 {
		t.Fatalf("expected last seq 3, got %+v", last)
	}
}

func TestPassTraceCountsSlowPasses(t *testing.T) {
	b := NewPassTrace(4, 10*time.Millisecond)

	if b.Add(PassSample{Duration: 5 * time.Millisecond}) {
		t.Fatal("fast pass reported as slow")
	}
	if !b.Add(PassSample{Duration: 20 * time.Millisecond}) {
		t.Fatal("slow pass not reported")
	}

	if got := b.Snapshot().SlowPasses; got != 1 {
		t.Fatalf("expected 1 slow pass, got %d", got)
	}

	b.SetThreshold(0)
	if b.Threshold() != defaultSlowPassThreshold {
		t.Fatalf("expected reset to default threshold, got %v", b.Threshold())
	}
	b.SetThreshold(time.Second)
	if got := b.Snapshot().ThresholdMs; got != 1000 {
		t.Fatalf("expected 1000ms threshold, got %v", got)
	}
}
