package confidence

import (
	"math"
	"sync"
	"testing"
)

func TestAppendEvictsFIFO(t *testing.T) {
	store := NewStore()
	for i := 0; i < 25; i++ {
		store.Append("pattern-learning", float64(i)/100)
	}
	history := store.History("pattern-learning")
	if len(history) != DefaultHistoryLimit {
		t.Fatalf("expected %d entries, got %d", DefaultHistoryLimit, len(history))
	}
	// Oldest five evicted in insertion order: history starts at the 6th score.
	if history[0] != 0.05 {
		t.Fatalf("unexpected oldest entry: %v", history[0])
	}
	if history[len(history)-1] != 0.24 {
		t.Fatalf("unexpected newest entry: %v", history[len(history)-1])
	}
}

func TestMeanAndVariance(t *testing.T) {
	store := NewStore()
	if _, ok := store.Mean("empty"); ok {
		t.Fatal("empty history must report no mean")
	}
	for _, v := range []float64{0.2, 0.4, 0.6} {
		store.Append("s", v)
	}
	m, ok := store.Mean("s")
	if !ok || math.Abs(m-0.4) > 1e-9 {
		t.Fatalf("unexpected mean: %v", m)
	}
	v, ok := store.Variance("s")
	if !ok || math.Abs(v-(0.08/3)) > 1e-9 {
		t.Fatalf("unexpected variance: %v", v)
	}
}

func TestRecencyWeightedMeanFavorsRecent(t *testing.T) {
	store := NewStore()
	store.Append("s", 0.2)
	store.Append("s", 0.8)
	weighted, ok := store.RecencyWeightedMean("s")
	if !ok {
		t.Fatal("expected a value")
	}
	// weights: 0.9 for the old score, 1.0 for the recent one.
	want := (0.2*0.9 + 0.8*1.0) / 1.9
	if math.Abs(weighted-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, weighted)
	}
	if weighted <= 0.5 {
		t.Fatalf("recent score must dominate: %v", weighted)
	}
}

func TestConcurrentAppends(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.Append("shared", float64(n%10)/10)
		}(i)
	}
	wg.Wait()
	if got := store.Len("shared"); got != DefaultHistoryLimit {
		t.Fatalf("expected history capped at %d, got %d", DefaultHistoryLimit, got)
	}
	snapshot := store.Snapshot()
	if len(snapshot["shared"]) != DefaultHistoryLimit {
		t.Fatalf("snapshot length mismatch: %d", len(snapshot["shared"]))
	}
}
