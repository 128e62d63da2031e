package kernel

import "golang.org/x/sync/errgroup"

// forEachChunk runs fn once per chunk on a pool of at most threads
// goroutines and returns after every goroutine has exited. The pool lives
// only for the duration of the call.
func forEachChunk(
	threads int,
	chunks []Chunk,
	fn func(worker int, c Chunk) error,
) error {
	var g errgroup.Group
	g.SetLimit(max(threads, 1))

	for i, c := range chunks {
		g.Go(func() error {
			return fn(i, c)
		})
	}

	return g.Wait()
}
