package kernel

import (
	"math/rand/v2"
	"slices"

	"golang.org/x/sync/errgroup"
)

const (
	// SortSeed seeds the merge sort input so every implementation sorts
	// the same multiset.
	SortSeed uint64 = 12345

	// sortThreshold is the largest range sorted sequentially in place.
	sortThreshold = 1 << 14
)

// SortInput returns n pseudo-random int32 values generated from SortSeed.
func SortInput(n int) []int32 {
	rng := rand.New(rand.NewPCG(SortSeed, 0))

	data := make([]int32, n)
	for i := range data {
		data[i] = int32(rng.Uint32())
	}

	return data
}

type mergeSorter struct {
	data    []int32
	scratch []int32
	g       *errgroup.Group
	wrap    func(task func())
}

// MergeSort sorts data ascending. Ranges larger than the sequential
// threshold are split at the midpoint; the left half runs on a pool
// goroutine when one of the threads slots is free and inline otherwise.
// A single scratch buffer serves the whole recursion: each merge touches
// only its own [lo, hi) range of it.
func MergeSort(threads int, data []int32) error {
	return mergeSort(threads, data, nil)
}

// mergeSort runs every pool task through wrap when it is set.
func mergeSort(threads int, data []int32, wrap func(task func())) error {
	if len(data) < 2 {
		return nil
	}

	g := new(errgroup.Group)
	g.SetLimit(max(threads, 1))

	s := &mergeSorter{
		data:    data,
		scratch: make([]int32, len(data)),
		g:       g,
		wrap:    wrap,
	}

	if s.wrap == nil {
		s.wrap = func(task func()) { task() }
	}

	g.Go(func() error {
		s.wrap(func() { s.sort(0, len(data)) })

		return nil
	})

	return g.Wait()
}

func (s *mergeSorter) sort(lo, hi int) {
	if hi-lo <= sortThreshold {
		slices.Sort(s.data[lo:hi])

		return
	}

	mid := lo + (hi-lo)/2
	done := make(chan struct{})

	spawned := s.g.TryGo(func() error {
		defer close(done)
		s.wrap(func() { s.sort(lo, mid) })

		return nil
	})

	if spawned {
		s.sort(mid, hi)
		<-done
	} else {
		s.sort(lo, mid)
		s.sort(mid, hi)
	}

	s.merge(lo, mid, hi)
}

func (s *mergeSorter) merge(lo, mid, hi int) {
	i, j, k := lo, mid, lo

	for i < mid && j < hi {
		if s.data[i] <= s.data[j] {
			s.scratch[k] = s.data[i]
			i++
		} else {
			s.scratch[k] = s.data[j]
			j++
		}
		k++
	}

	k += copy(s.scratch[k:], s.data[i:mid])
	copy(s.scratch[k:hi], s.data[j:hi])
	copy(s.data[lo:hi], s.scratch[lo:hi])
}

func runMergeSort(threads int, size int64) (Result, error) {
	n, err := indexSize(ParallelMergeSort, size)
	if err != nil {
		return Result{}, err
	}

	data := SortInput(n)
	if err := MergeSort(threads, data); err != nil {
		return Result{}, err
	}

	return Result{Value: sample(data)}, nil
}
