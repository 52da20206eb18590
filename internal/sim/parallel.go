package sim

import (
	"context"
	"sync"

	"github.com/san-kum/strucsim/internal/structure"
)

// Job is one structure in a batch.
type Job struct {
	Name      string
	Structure *structure.Structure
}

// Batch runs independent structures concurrently. Physics managers are not
// shareable between runs, so every job gets a fresh simulator from build.
type Batch struct {
	build func() *Simulator
}

func NewBatch(build func() *Simulator) *Batch {
	return &Batch{build: build}
}

// Run returns one result per job, in job order, or the first error.
func (b *Batch) Run(ctx context.Context, jobs []Job, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = b.build().Run(ctx, jobs[idx].Structure, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
