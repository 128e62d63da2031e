package kernel

import (
	"fmt"
	"math"
)

// MaxMatrixDim is the largest dimension whose n*n element count fits the
// int32 index space of the kernel.
const MaxMatrixDim = 46340

// NewMatrices allocates the row-major n*n operands of the matrix kernel:
// a[i] = sin(i*0.001), b[i] = cos(i*0.001) over the flattened index, and a
// zeroed c.
func NewMatrices(n int) (a, b, c []float64) {
	nn := n * n
	a = make([]float64, nn)
	b = make([]float64, nn)
	c = make([]float64, nn)

	for i := range nn {
		a[i] = math.Sin(float64(i) * 0.001)
		b[i] = math.Cos(float64(i) * 0.001)
	}

	return a, b, c
}

// MatMul accumulates a*b into c for row-major n*n matrices. The rows of c
// are split into threads contiguous blocks; blocks are disjoint, so
// workers never write the same element.
func MatMul(threads int, a, b, c []float64, n int) error {
	nn := n * n
	if len(a) != nn || len(b) != nn || len(c) != nn {
		return fmt.Errorf(
			"%w: matrices must hold %d elements, got %d/%d/%d",
			ErrInvalidArgument, nn, len(a), len(b), len(c),
		)
	}

	blocks := Partition(int64(n), threads)

	return forEachChunk(threads, blocks, func(_ int, blk Chunk) error {
		for i := int(blk.Start); i < int(blk.End); i++ {
			row := c[i*n : (i+1)*n]

			// k outermost keeps a[i][k] in a register and walks b row-wise.
			for k := range n {
				aik := a[i*n+k]
				bRow := b[k*n : (k+1)*n]

				for j, bkj := range bRow {
					row[j] += aik * bkj
				}
			}
		}

		return nil
	})
}

func runMatMul(threads int, size int64) (Result, error) {
	if size < 0 || size > MaxMatrixDim {
		return Result{}, fmt.Errorf(
			"%w: matmul size %d outside [0, %d]",
			ErrInvalidArgument, size, MaxMatrixDim,
		)
	}

	n := int(size)

	a, b, c := NewMatrices(n)
	if err := MatMul(threads, a, b, c, n); err != nil {
		return Result{}, err
	}

	return Result{Value: sample(c)}, nil
}
