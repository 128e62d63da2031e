package suite

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/corebench/config"
	"github.com/weiihann/corebench/harness"
	"github.com/weiihann/corebench/kernel"
	"github.com/weiihann/corebench/report"
)

const sampleSuite = `
out: results/results.jsonl
runs: 3
matrix:
  - alg: 1
    threads: [1, 2]
    sizes: [1000, 2000]
  - alg: 5
    threads: [1]
    sizes: [1024]
    runs: 5
external:
  - name: java
    command: [java, -jar, bench_java.jar]
    env: [JAVA_OPTS=-Xmx2g]
    timeout: 30m
`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(sampleSuite))
	require.NoError(t, err)

	assert.Equal(t, "results/results.jsonl", s.Out)
	require.Len(t, s.External, 1)
	assert.Equal(t, External{
		Name:    "java",
		Command: []string{"java", "-jar", "bench_java.jar"},
		Env:     []string{"JAVA_OPTS=-Xmx2g"},
		Timeout: 30 * time.Minute,
	}, s.External[0])
}

func TestExpandOrderAndDefaults(t *testing.T) {
	s, err := Load(strings.NewReader(sampleSuite))
	require.NoError(t, err)

	out := "results/results.jsonl"
	assert.Equal(t, []config.Run{
		{Algorithm: kernel.SumSquares, Threads: 1, Runs: 3, Size: 1000, OutputPath: out},
		{Algorithm: kernel.SumSquares, Threads: 1, Runs: 3, Size: 2000, OutputPath: out},
		{Algorithm: kernel.SumSquares, Threads: 2, Runs: 3, Size: 1000, OutputPath: out},
		{Algorithm: kernel.SumSquares, Threads: 2, Runs: 3, Size: 2000, OutputPath: out},
		{Algorithm: kernel.IterativeFFT, Threads: 1, Runs: 5, Size: 1024, OutputPath: out},
	}, s.Expand())
}

func TestExpandDefaultRuns(t *testing.T) {
	s, err := Load(strings.NewReader("out: r.jsonl\nmatrix:\n  - {alg: 3, threads: [4], sizes: [100]}\n"))
	require.NoError(t, err)

	runs := s.Expand()
	require.Len(t, runs, 1)
	assert.Equal(t, DefaultRuns, runs[0].Runs)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"syntax error", "out: [unclosed\nmatrix:\n"},
		{"wrong type", "out: r.jsonl\nruns: many\nmatrix:\n  - {alg: 1, threads: [1], sizes: [10]}\n"},
		{"no out", "matrix:\n  - {alg: 1, threads: [1], sizes: [10]}\n"},
		{"no matrix", "out: r.jsonl\n"},
		{"bad alg", "out: r.jsonl\nmatrix:\n  - {alg: 9, threads: [1], sizes: [10]}\n"},
		{"zero threads", "out: r.jsonl\nmatrix:\n  - {alg: 1, threads: [0], sizes: [10]}\n"},
		{"no sizes", "out: r.jsonl\nmatrix:\n  - {alg: 1, threads: [1]}\n"},
		{"external without command", "out: r.jsonl\nmatrix:\n  - {alg: 1, threads: [1], sizes: [10]}\nexternal:\n  - name: c\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("out: r.jsonl\nthreads: 4\nmatrix:\n  - {alg: 1, threads: [1], sizes: [10]}\n"))
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "threads")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExecuteWithExternalImplementation(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	out := filepath.Join(t.TempDir(), "results.jsonl")

	// The external implementation appends one record per invocation,
	// echoing back the alg, threads and size flags it received.
	script := `printf '{"language":"sh","alg":%s,"threads":%s,"run_index":0,"input_size":%s,"seconds":0.5}\n' "$2" "$4" "$8" >> "${10}"`

	s := &Suite{
		Out:  out,
		Runs: 2,
		Matrix: []Entry{
			{Alg: kernel.SumSquares, Threads: []int{1, 2}, Sizes: []int64{500}},
			{Alg: kernel.IterativeFFT, Threads: []int{1}, Sizes: []int64{64}, Runs: 1},
		},
		External: []External{
			{Name: "sh", Command: []string{sh, "-c", script, "sh"}, Timeout: time.Minute},
		},
	}

	metrics := harness.NewMetrics()
	require.NoError(t, s.Execute(t.Context(), slog.New(slog.DiscardHandler), metrics))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	records, err := report.Load(f)
	require.NoError(t, err)

	type row struct {
		lang    string
		alg     int
		threads int
		run     int
	}

	got := make([]row, 0, len(records))
	for _, r := range records {
		got = append(got, row{r.Language, r.Alg, r.Threads, r.RunIndex})
	}

	assert.Equal(t, []row{
		{"go", 1, 1, 0}, {"go", 1, 1, 1}, {"sh", 1, 1, 0},
		{"go", 1, 2, 0}, {"go", 1, 2, 1}, {"sh", 1, 2, 0},
		{"go", 5, 1, 0}, {"sh", 5, 1, 0},
	}, got)
}

func TestExecuteStopsOnKernelFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.jsonl")

	// 1000 passes validation but is not a power of two.
	s := &Suite{
		Out:    out,
		Matrix: []Entry{{Alg: kernel.IterativeFFT, Threads: []int{1}, Sizes: []int64{1000}}},
	}

	err := s.Execute(t.Context(), slog.New(slog.DiscardHandler), nil)
	require.ErrorIs(t, err, kernel.ErrInvalidArgument)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, data)
}
