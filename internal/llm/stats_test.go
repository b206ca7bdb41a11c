package llm

import (
	"testing"
	"time"
)

func TestStats_EmptySnapshot(t *testing.T) {
	s := NewStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 || snap.StreamsStarted != 0 || snap.BytesStreamed != 0 {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}

func TestStats_CountersAndSamples(t *testing.T) {
	s := NewStats(time.Hour)
	s.StreamStarted()
	s.StreamStarted()
	s.StreamFinished(100*time.Millisecond, 512)
	s.StreamFinished(300*time.Millisecond, 1024)

	snap := s.Snapshot()
	if snap.StreamsStarted != 2 {
		t.Errorf("expected 2 started, got %d", snap.StreamsStarted)
	}
	if snap.StreamsFinished != 2 {
		t.Errorf("expected 2 finished, got %d", snap.StreamsFinished)
	}
	if snap.BytesStreamed != 1536 {
		t.Errorf("expected 1536 bytes, got %d", snap.BytesStreamed)
	}
	if snap.Count != 2 {
		t.Fatalf("expected 2 samples, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 300 {
		t.Errorf("expected min 100 max 300, got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 200 {
		t.Errorf("expected avg 200, got %f", snap.AvgMs)
	}
}

func TestStats_OldSamplesPruned(t *testing.T) {
	s := NewStats(time.Millisecond)
	s.StreamFinished(50*time.Millisecond, 10)

	time.Sleep(5 * time.Millisecond)
	snap := s.Snapshot()
	if snap.Count != 0 {
		t.Errorf("expected expired samples to be pruned, got %d", snap.Count)
	}
	// Counters are cumulative, not windowed.
	if snap.StreamsFinished != 1 || snap.BytesStreamed != 10 {
		t.Errorf("counters should survive pruning, got %+v", snap)
	}
}

func TestPercentile_Interpolation(t *testing.T) {
	values := []int64{100, 200, 300, 400}
	if got := percentile(values, 50); got != 250 {
		t.Errorf("expected p50 250, got %f", got)
	}
	if got := percentile(values, 0); got != 100 {
		t.Errorf("expected p0 100, got %f", got)
	}
	if got := percentile(values, 100); got != 400 {
		t.Errorf("expected p100 400, got %f", got)
	}
}
