// Package kernel implements the five benchmark workloads: sum of squares,
// dense matrix multiply, Monte Carlo pi estimation, parallel merge sort and
// an iterative radix-2 FFT. Each kernel owns its buffers for the duration of
// a single call and joins all of its goroutines before returning.
package kernel

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument indicates that a kernel precondition was not met.
var ErrInvalidArgument = errors.New("invalid argument")

// Algorithm selects one of the benchmark kernels.
type Algorithm int

// Algorithm identifiers are shared with the other language
// implementations and appear verbatim in result files.
const (
	SumSquares Algorithm = iota + 1
	MatrixMultiply
	MonteCarloPi
	ParallelMergeSort
	IterativeFFT
)

// Algorithms returns every supported algorithm in identifier order.
func Algorithms() []Algorithm {
	return []Algorithm{
		SumSquares, MatrixMultiply, MonteCarloPi, ParallelMergeSort, IterativeFFT,
	}
}

// Valid reports whether a names a known kernel.
func (a Algorithm) Valid() bool {
	return a >= SumSquares && a <= IterativeFFT
}

func (a Algorithm) String() string {
	switch a {
	case SumSquares:
		return "sumsq"
	case MatrixMultiply:
		return "matmul"
	case MonteCarloPi:
		return "montecarlo"
	case ParallelMergeSort:
		return "mergesort"
	case IterativeFFT:
		return "fft"
	default:
		return fmt.Sprintf("alg(%d)", int(a))
	}
}

// Result is the observable output of a kernel invocation: a sum, a
// checksum over the output buffer or an estimate. It keeps the work from
// being optimized away and is never persisted.
type Result struct {
	Value float64
}

// Func runs a kernel once with the given thread count and input size.
type Func func(threads int, size int64) (Result, error)

// Lookup returns the kernel for alg.
func Lookup(alg Algorithm) (Func, error) {
	switch alg {
	case SumSquares:
		return runSumSquares, nil
	case MatrixMultiply:
		return runMatMul, nil
	case MonteCarloPi:
		return runMonteCarlo, nil
	case ParallelMergeSort:
		return runMergeSort, nil
	case IterativeFFT:
		return runFFT, nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %d", ErrInvalidArgument, int(alg))
	}
}

// indexSize converts a size for kernels whose index space is int32-sized
// in every implementation of the suite. Sizes are rejected, never truncated.
func indexSize(alg Algorithm, size int64) (int, error) {
	if size < 0 || size > math.MaxInt32 {
		return 0, fmt.Errorf(
			"%w: %s size %d outside [0, %d]",
			ErrInvalidArgument, alg, size, math.MaxInt32,
		)
	}

	return int(size), nil
}

// sample sums about sixteen evenly spaced elements of buf.
func sample[T int32 | float64](buf []T) float64 {
	n := len(buf)
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i += n/16 + 1 {
		sum += float64(buf[i])
	}

	return sum
}
