package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForSequential(t *testing.T) {
	cfg := Config{Enabled: false}
	var count int
	For(10, func(i int) { count++ }, cfg)
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
}

func TestForParallelCoversAllIndices(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	n := 1000

	var hits [1000]int32
	For(n, func(i int) { atomic.AddInt32(&hits[i], 1) }, cfg)

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, h)
		}
	}
}

func TestForSmallFallsBackToSequential(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 64}
	var count int // no atomics needed if the fallback path runs
	For(10, func(i int) { count++ }, cfg)
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
}

func TestForZero(t *testing.T) {
	For(0, func(i int) { t.Fatal("should not be called") }, DefaultConfig())
}
