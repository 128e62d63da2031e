package harness

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLineFormat(t *testing.T) {
	rec := Record{
		Language:  "go",
		Alg:       1,
		Threads:   2,
		RunIndex:  0,
		InputSize: 1000,
		Seconds:   0.000012345,
	}

	line, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.Equal(t,
		`{"language":"go","alg":1,"threads":2,"run_index":0,"input_size":1000,"seconds":0.000012345}`,
		string(line))
}

func TestSecondsFixedPrecision(t *testing.T) {
	tests := []struct {
		in   Seconds
		want string
	}{
		{0, "0.000000000"},
		{1.5, "1.500000000"},
		{12.3456789012, "12.345678901"},
		{1e-10, "0.000000000"},
	}

	for _, tt := range tests {
		got, err := tt.in.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}

func TestRecordRoundTripsSeconds(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal(
		[]byte(`{"language":"rust","alg":3,"threads":8,"run_index":2,"input_size":5,"seconds":0.25}`),
		&rec))

	assert.Equal(t, Seconds(0.25), rec.Seconds)
	assert.Equal(t, "rust", rec.Language)
}

func TestFileSinkAppendsWithoutTruncating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	existing := `{"language":"c","alg":1,"threads":1,"run_index":0,"input_size":10,"seconds":0.100000}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	first := NewFileSink(path)
	require.NoError(t, first.Probe())
	require.NoError(t, first.Write(Record{Language: "go", Alg: 1, Threads: 1, InputSize: 10, Seconds: 0.5}))

	// A second sink stands in for another process appending to the file.
	second := NewFileSink(path)
	require.NoError(t, second.Write(Record{Language: "go", Alg: 1, Threads: 1, RunIndex: 1, InputSize: 10}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.TrimSuffix(existing, "\n"), lines[0])

	seconds := regexp.MustCompile(`"seconds":\d+\.\d{9}}$`)
	for _, line := range lines[1:] {
		assert.Regexp(t, seconds, line)
	}
}

func TestFileSinkProbeCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.jsonl")

	require.NoError(t, NewFileSink(path).Probe())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestFileSinkUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "results.jsonl")
	sink := NewFileSink(path)

	err := sink.Probe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open results file")

	assert.Error(t, sink.Write(Record{}))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.Observe(Record{Language: "go", Alg: 2, Threads: 4, Seconds: 0.01})
	m.Observe(Record{Language: "go", Alg: 2, Threads: 4, RunIndex: 1, Seconds: 0.02})
	m.Observe(Record{Language: "go", Alg: 5, Threads: 1, Seconds: 0.3})

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("go", "2", "4")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.runDuration))

	path := filepath.Join(t.TempDir(), "corebench.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "corebench_runs_total")
	assert.Contains(t, string(data), `corebench_run_duration_seconds_count{alg="5",language="go",threads="1"} 1`)
}
