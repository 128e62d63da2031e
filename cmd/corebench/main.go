// Package main provides the CLI entry point for corebench, a multi-core
// CPU microbenchmark whose results line up with the C, Rust and Java
// implementations of the same five kernels.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/weiihann/corebench/config"
	"github.com/weiihann/corebench/harness"
	"github.com/weiihann/corebench/kernel"
	"github.com/weiihann/corebench/report"
	"github.com/weiihann/corebench/suite"
)

// Exit statuses.
const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("session", uuid.NewString()[:8]))

	root := newRootCmd(logger, level)

	cmd, err := root.ExecuteC()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)

	code := exitCode(err)
	if code == exitUsage {
		fmt.Fprint(os.Stderr, cmd.UsageString())
	}

	os.Exit(code)
}

// usageError marks a malformed command line.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ue usageError
	if errors.As(err, &ue) || errors.Is(err, config.ErrInvalidConfig) {
		return exitUsage
	}

	return exitFailure
}

// usageArgs turns positional argument errors into usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}

		return nil
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var (
		alg        int
		threads    int
		runs       int
		size       int64
		out        string
		metricsOut string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "corebench",
		Short: "Multi-core CPU microbenchmark",
		Long: `Corebench times one of five compute kernels for a fixed number of runs
and appends one JSON line per run to the results file:

  1  sum of squares
  2  dense matrix multiplication
  3  Monte Carlo estimation of pi
  4  parallel merge sort
  5  iterative radix-2 FFT`,
		Example:       "  corebench --alg 2 --threads 8 --runs 5 --size 1024 --out results.jsonl",
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "alg", "threads", "runs", "size", "out"); err != nil {
				return err
			}

			cfg := config.Run{
				Algorithm:  kernel.Algorithm(alg),
				Threads:    threads,
				Runs:       runs,
				Size:       size,
				OutputPath: out,
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runBenchmark(cmd.Context(), cmd.OutOrStdout(), logger, cfg, metricsOut)
		},
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	flags := root.Flags()
	flags.IntVar(&alg, "alg", 0,
		"Algorithm: 1 sumsq, 2 matmul, 3 montecarlo, 4 mergesort, 5 fft")
	flags.IntVar(&threads, "threads", 0,
		"Number of worker goroutines")
	flags.IntVar(&runs, "runs", 0,
		"Number of timed runs")
	flags.Int64Var(&size, "size", 0,
		"Problem size (elements, matrix dimension, iterations or FFT length)")
	flags.StringVar(&out, "out", "",
		"Results file, appended to")
	flags.StringVar(&metricsOut, "metrics-out", "",
		"Write Prometheus metrics in text format to this path after the last run")

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(newSuiteCmd(logger), newReportCmd())

	return root
}

func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string

	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, "--"+name)
		}
	}

	if len(missing) > 0 {
		return usageError{fmt.Errorf("missing required flags: %v", missing)}
	}

	return nil
}

func runBenchmark(
	ctx context.Context,
	stdout io.Writer,
	logger *slog.Logger,
	cfg config.Run,
	metricsOut string,
) error {
	sink := harness.NewFileSink(cfg.OutputPath)
	if err := sink.Probe(); err != nil {
		return err
	}

	var metrics *harness.Metrics
	if metricsOut != "" {
		metrics = harness.NewMetrics()
	}

	d, err := harness.NewDriver(cfg, sink, metrics, logger)
	if err != nil {
		return err
	}

	if err := d.Run(ctx); err != nil {
		return err
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(metricsOut); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "OK. Wrote results to %s\n", cfg.OutputPath)

	return nil
}

func newSuiteCmd(logger *slog.Logger) *cobra.Command {
	var metricsOut string

	cmd := &cobra.Command{
		Use:   "suite <file.yaml>",
		Short: "Run a matrix of configurations described in a YAML file",
		Long: `Expand the suite's matrix of algorithms, thread counts and sizes, run
each configuration in process and then through every external implementation
listed in the file. All of them append to the suite's results file.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := suite.LoadFile(args[0])
			if err != nil {
				return err
			}

			var metrics *harness.Metrics
			if metricsOut != "" {
				metrics = harness.NewMetrics()
			}

			if err := s.Execute(cmd.Context(), logger, metrics); err != nil {
				return err
			}

			if metrics != nil {
				if err := metrics.WriteTextfile(metricsOut); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK. Wrote results to %s\n", s.Out)

			return nil
		},
	}

	cmd.Flags().StringVar(&metricsOut, "metrics-out", "",
		"Write Prometheus metrics in text format to this path when the suite ends")

	return cmd
}

func newReportCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "report <results.jsonl>...",
		Short: "Summarize one or more results files",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []harness.Record

			for _, path := range args {
				recs, err := loadResults(path)
				if err != nil {
					return err
				}

				records = append(records, recs...)
			}

			if outputJSON {
				if err := report.GenerateJSON(cmd.OutOrStdout(), records); err != nil {
					return fmt.Errorf("generate JSON report: %w", err)
				}

				return nil
			}

			if err := report.Generate(cmd.OutOrStdout(), records); err != nil {
				return fmt.Errorf("generate report: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of table")

	return cmd
}

func loadResults(path string) ([]harness.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results %s: %w", path, err)
	}
	defer f.Close()

	records, err := report.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return records, nil
}
