package kernel

import (
	"fmt"
	"math"
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NewSignal returns the FFT input: re[i] = sin(i*0.01) and a zero
// imaginary part.
func NewSignal(n int) (re, im []float64) {
	re = make([]float64, n)
	im = make([]float64, n)

	for i := range re {
		re[i] = math.Sin(float64(i) * 0.01)
	}

	return re, im
}

// BitReverse permutes re and im in place so that element i moves to the
// index whose log2(n) low bits are those of i reversed. len(re) must be a
// power of two. The permutation is its own inverse.
func BitReverse(re, im []float64) {
	n := len(re)

	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit

		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
}

// FFT computes the forward discrete Fourier transform of re + i*im in place
// with the iterative radix-2 Cooley-Tukey algorithm. The length must be a
// power of two; otherwise ErrInvalidArgument is returned and the inputs
// are left untouched.
func FFT(re, im []float64) error {
	n := len(re)
	if len(im) != n {
		return fmt.Errorf(
			"%w: fft parts differ in length (%d != %d)",
			ErrInvalidArgument, n, len(im),
		)
	}

	if !IsPowerOfTwo(n) {
		return fmt.Errorf("%w: fft size %d is not a power of two", ErrInvalidArgument, n)
	}

	BitReverse(re, im)

	for size := 2; size <= n; size <<= 1 {
		ang := -2 * math.Pi / float64(size)
		wLenRe, wLenIm := math.Cos(ang), math.Sin(ang)
		half := size >> 1

		for start := 0; start < n; start += size {
			wRe, wIm := 1.0, 0.0

			for j := range half {
				u := start + j
				v := u + half

				// Explicit conversions round every product so the
				// compiler cannot fuse them into FMA instructions.
				vr := float64(re[v]*wRe) - float64(im[v]*wIm)
				vi := float64(re[v]*wIm) + float64(im[v]*wRe)

				re[v] = re[u] - vr
				im[v] = im[u] - vi
				re[u] += vr
				im[u] += vi

				wRe, wIm = float64(wRe*wLenRe)-float64(wIm*wLenIm),
					float64(wRe*wLenIm)+float64(wIm*wLenRe)
			}
		}
	}

	return nil
}

// runFFT ignores threads: the transform is sequential.
func runFFT(_ int, size int64) (Result, error) {
	n, err := indexSize(IterativeFFT, size)
	if err != nil {
		return Result{}, err
	}

	if !IsPowerOfTwo(n) {
		return Result{}, fmt.Errorf(
			"%w: fft size %d is not a power of two", ErrInvalidArgument, size,
		)
	}

	re, im := NewSignal(n)
	if err := FFT(re, im); err != nil {
		return Result{}, err
	}

	return Result{Value: sample(re)}, nil
}
