package kernel

// SumOfSquares returns the sum of i*i for i in [0, n), computed by threads
// workers over contiguous chunks. Each worker accumulates locally; the
// partial sums are added in chunk order once every worker has finished, so
// the low bits of the total may differ between thread counts.
func SumOfSquares(threads int, n int64) (float64, error) {
	chunks := Partition(n, threads)
	partial := make([]float64, len(chunks))

	err := forEachChunk(threads, chunks, func(worker int, c Chunk) error {
		var sum float64
		for i := c.Start; i < c.End; i++ {
			x := float64(i)
			sum += x * x
		}

		partial[worker] = sum

		return nil
	})
	if err != nil {
		return 0, err
	}

	var total float64
	for _, s := range partial {
		total += s
	}

	return total, nil
}

func runSumSquares(threads int, size int64) (Result, error) {
	total, err := SumOfSquares(threads, size)
	if err != nil {
		return Result{}, err
	}

	return Result{Value: total}, nil
}
