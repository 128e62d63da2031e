// Package harness drives benchmark runs and persists their results.
package harness

import "strconv"

// Record is one line of the shared results file. The key set is fixed
// across every implementation of the benchmark.
type Record struct {
	Language  string  `json:"language"`
	Alg       int     `json:"alg"`
	Threads   int     `json:"threads"`
	RunIndex  int     `json:"run_index"`
	InputSize int64   `json:"input_size"`
	Seconds   Seconds `json:"seconds"`
}

// Seconds is an elapsed time rendered with nine fixed decimals.
type Seconds float64

// MarshalJSON implements json.Marshaler.
func (s Seconds) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(s), 'f', 9, 64), nil
}
