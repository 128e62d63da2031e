// Package report formats benchmark result files into comparison tables.
package report

import (
	"bufio"
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/weiihann/corebench/harness"
	"github.com/weiihann/corebench/kernel"
)

// Load reads JSON-lines records, as written by every implementation of the
// benchmark, skipping blank lines.
func Load(r io.Reader) ([]harness.Record, error) {
	var records []harness.Record

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec harness.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	return records, nil
}

// Generate writes one markdown table per algorithm. Speedup compares each
// run with the fastest run of the same algorithm and input size.
func Generate(w io.Writer, records []harness.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("no results to report")
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b harness.Record) int {
		return cmp.Or(
			cmp.Compare(a.Alg, b.Alg),
			cmp.Compare(a.InputSize, b.InputSize),
			cmp.Compare(a.Threads, b.Threads),
			cmp.Compare(a.Language, b.Language),
			cmp.Compare(a.RunIndex, b.RunIndex),
		)
	})

	fastest := findFastest(sorted)

	fmt.Fprintln(w, "## Benchmark Results")

	for i, r := range sorted {
		if i == 0 || r.Alg != sorted[i-1].Alg {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "### %s (alg %d)\n", kernel.Algorithm(r.Alg), r.Alg)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "| Language | Threads | Size | Run | Time | Speedup |")
			fmt.Fprintln(w, "|----------|---------|------|-----|------|---------|")
		}

		speedup := 1.0
		best := fastest[groupKey{r.Alg, r.InputSize}]
		if best > 0 && r.Seconds > 0 {
			speedup = float64(r.Seconds) / best
		}

		fmt.Fprintf(w, "| %s | %d | %d | %d | %s | %.2fx |\n",
			r.Language,
			r.Threads,
			r.InputSize,
			r.RunIndex,
			formatSeconds(float64(r.Seconds)),
			speedup,
		)
	}

	return nil
}

// GenerateJSON writes records as JSON to w.
func GenerateJSON(w io.Writer, records []harness.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(records)
}

type groupKey struct {
	alg  int
	size int64
}

func findFastest(records []harness.Record) map[groupKey]float64 {
	fastest := make(map[groupKey]float64)

	for _, r := range records {
		if r.Seconds <= 0 {
			continue
		}

		key := groupKey{r.Alg, r.InputSize}
		best, ok := fastest[key]
		if !ok {
			best = math.MaxFloat64
		}

		fastest[key] = min(best, float64(r.Seconds))
	}

	return fastest
}

func formatSeconds(s float64) string {
	switch {
	case s < 0.001:
		return fmt.Sprintf("%.1fµs", s*1e6)
	case s < 1:
		return fmt.Sprintf("%.2fms", s*1e3)
	default:
		return fmt.Sprintf("%.3fs", s)
	}
}
