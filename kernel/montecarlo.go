package kernel

import (
	"math/rand/v2"
	"time"
)

// seedMix spreads worker indices across the seed space.
const seedMix uint64 = 0x9E3779B97F4A7C15

// WorkerSeed derives the generator seed of a worker from the run's base
// seed. Distinct workers get distinct seeds for the same base.
func WorkerSeed(base uint64, worker int) uint64 {
	return base ^ (seedMix * uint64(worker+1))
}

// EstimatePi draws iterations random points in the unit square, split into
// threads contiguous chunks, and returns how many fell inside the quarter
// circle together with the derived estimate 4*inside/iterations. Every
// worker owns its own generator seeded from base.
func EstimatePi(threads int, iterations int64, base uint64) (int64, float64, error) {
	chunks := Partition(iterations, threads)
	counts := make([]int64, len(chunks))

	err := forEachChunk(threads, chunks, func(worker int, c Chunk) error {
		seed := WorkerSeed(base, worker)
		rng := rand.New(rand.NewPCG(seed, seed^seedMix))

		var inside int64
		for range c.Len() {
			x := rng.Float64()
			y := rng.Float64()

			if x*x+y*y <= 1.0 {
				inside++
			}
		}

		counts[worker] = inside

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	if iterations == 0 {
		return 0, 0, nil
	}

	return total, 4 * float64(total) / float64(iterations), nil
}

func runMonteCarlo(threads int, size int64) (Result, error) {
	_, pi, err := EstimatePi(threads, size, uint64(time.Now().UnixNano()))
	if err != nil {
		return Result{}, err
	}

	return Result{Value: pi}, nil
}
