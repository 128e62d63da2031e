package kernel

// Chunk is a half-open index range [Start, End) assigned to one worker.
type Chunk struct {
	Start int64
	End   int64
}

// Len returns the number of indices in the chunk.
func (c Chunk) Len() int64 {
	return c.End - c.Start
}

// Partition splits [0, n) into parts contiguous chunks of n/parts indices.
// The last chunk absorbs the remainder of the integer division, so when
// parts > n every chunk but the last is empty.
func Partition(n int64, parts int) []Chunk {
	if parts < 1 {
		parts = 1
	}

	size := n / int64(parts)
	chunks := make([]Chunk, parts)

	for i := range parts {
		start := int64(i) * size
		end := start + size

		if i == parts-1 {
			end = n
		}

		chunks[i] = Chunk{Start: start, End: end}
	}

	return chunks
}
