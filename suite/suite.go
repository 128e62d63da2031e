// Package suite loads YAML benchmark suites: a matrix of algorithms,
// thread counts and input sizes, optionally replayed against other
// language implementations that write to the same results file.
package suite

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/weiihann/corebench/config"
	"github.com/weiihann/corebench/kernel"
)

// DefaultRuns applies when neither the suite nor an entry sets runs.
const DefaultRuns = 1

var validate = validator.New(validator.WithRequiredStructEnabled())

// Suite is a parsed suite file.
type Suite struct {
	Out      string     `yaml:"out" validate:"required"`
	Runs     int        `yaml:"runs" validate:"gte=0"`
	Matrix   []Entry    `yaml:"matrix" validate:"required,min=1,dive"`
	External []External `yaml:"external" validate:"dive"`
}

// Entry expands to one run configuration per thread count and size.
type Entry struct {
	Alg     kernel.Algorithm `yaml:"alg"`
	Threads []int            `yaml:"threads" validate:"required,min=1"`
	Sizes   []int64          `yaml:"sizes" validate:"required,min=1"`
	Runs    int              `yaml:"runs" validate:"gte=0"`
}

// External describes another implementation of the benchmark. Command
// holds the executable followed by any wrapper arguments.
type External struct {
	Name    string        `yaml:"name" validate:"required"`
	Command []string      `yaml:"command" validate:"required,min=1"`
	Env     []string      `yaml:"env"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// LoadFile reads and validates the suite at path.
func LoadFile(path string) (*Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open suite %s: %w", path, err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", path, err)
	}

	return s, nil
}

// Load parses a suite from r. Unknown keys are rejected, and so is any
// entry that expands to an invalid run configuration.
func Load(r io.Reader) (*Suite, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty suite", config.ErrInvalidConfig)
		}

		return nil, fmt.Errorf("%w: parse suite: %w", config.ErrInvalidConfig, err)
	}

	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	for i, run := range s.Expand() {
		if err := run.Validate(); err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
	}

	return &s, nil
}

// Expand returns the run configurations in file order: entries, then
// thread counts, then sizes.
func (s *Suite) Expand() []config.Run {
	var runs []config.Run

	for _, e := range s.Matrix {
		count := e.Runs
		if count == 0 {
			count = s.Runs
		}
		if count == 0 {
			count = DefaultRuns
		}

		for _, threads := range e.Threads {
			for _, size := range e.Sizes {
				runs = append(runs, config.Run{
					Algorithm:  e.Alg,
					Threads:    threads,
					Runs:       count,
					Size:       size,
					OutputPath: s.Out,
				})
			}
		}
	}

	return runs
}
