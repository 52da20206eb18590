package sweep

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/san-kum/strucsim/internal/config"
	"github.com/san-kum/strucsim/internal/sim"
	"github.com/san-kum/strucsim/internal/structure"
)

// MonteCarlo runs a structure repeatedly with free nodes displaced by up to
// Perturbation in each axis.
type MonteCarlo struct {
	Trials       int
	Perturbation float64
	Seed         int64
}

type Trial struct {
	ID      int
	Stable  bool
	Metrics map[string]float64
	Err     error
}

// Run returns one trial per run. A trial is stable when it finished with
// finite frames; a failed run is recorded, not returned.
func (mc *MonteCarlo) Run(ctx context.Context, base *config.Config, doc structure.Document, build Builder) []Trial {
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	docs := make([]structure.Document, mc.Trials)
	for i := range docs {
		docs[i] = perturb(doc, rng, mc.Perturbation)
	}

	trials := make([]Trial, mc.Trials)
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			trials[idx] = runTrial(ctx, idx, base, docs[idx], build)
		}(i)
	}
	wg.Wait()
	return trials
}

func runTrial(ctx context.Context, id int, base *config.Config, doc structure.Document, build Builder) Trial {
	t := Trial{ID: id}
	st, err := doc.Build()
	if err != nil {
		t.Err = err
		return t
	}
	cfg := *base
	result, err := build(&cfg).Run(ctx, st, cfg.SimConfig())
	if err != nil {
		t.Err = err
		return t
	}
	t.Metrics = result.Metrics
	t.Stable = stable(result)
	return t
}

func stable(r *sim.Result) bool {
	if len(r.Errors) > 0 {
		return false
	}
	for _, f := range r.Frames {
		if !f.Valid() {
			return false
		}
	}
	return true
}

// perturb jitters free nodes. Rest angles are pinned from the unjittered
// layout first, so the displaced shape starts out loaded.
func perturb(doc structure.Document, rng *rand.Rand, amount float64) structure.Document {
	out := cloneDocument(doc)
	if st, err := doc.Build(); err == nil {
		out.RestAngles = structure.Encode(st).RestAngles
	}
	for i, n := range out.Nodes {
		if n.Fixed || len(n.Pos) < 2 {
			continue
		}
		out.Nodes[i].Pos = []float64{
			n.Pos[0] + (rng.Float64()-0.5)*2*amount,
			n.Pos[1] + (rng.Float64()-0.5)*2*amount,
		}
	}
	return out
}

// Stats counts stable and unstable trials.
func Stats(trials []Trial) (stableCount, unstableCount int) {
	for _, t := range trials {
		if t.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
