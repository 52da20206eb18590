// Package parallel splits index ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// MaxWorkers caps the goroutines For will start.
var MaxWorkers = runtime.GOMAXPROCS(0)

// For executes fn over [0, n) in contiguous chunks of at least minChunk
// indices. Ranges no larger than minChunk run on the calling goroutine.
func For(n, minChunk int, fn func(start, end int)) {
	if minChunk < 1 {
		minChunk = 1
	}
	workers := MaxWorkers
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
