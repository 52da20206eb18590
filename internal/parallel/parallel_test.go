package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversRangeOnce(t *testing.T) {
	prev := MaxWorkers
	MaxWorkers = 4
	defer func() { MaxWorkers = prev }()

	for _, n := range []int{0, 1, 7, 64, 1000} {
		hits := make([]int32, n)
		For(n, 8, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, h)
			}
		}
	}
}

func TestForSmallRangeInline(t *testing.T) {
	calls := 0
	For(5, 16, func(start, end int) {
		calls++
		if start != 0 || end != 5 {
			t.Errorf("chunk = [%d,%d), want [0,5)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected a single inline call, got %d", calls)
	}
}
