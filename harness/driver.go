package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/weiihann/corebench/config"
	"github.com/weiihann/corebench/kernel"
)

// Driver runs one kernel Runs times in sequence and hands a Record for
// every completed run to its Sink.
type Driver struct {
	Config  config.Run
	Kernel  kernel.Func
	Sink    Sink
	Metrics *Metrics
	Logger  *slog.Logger
}

// NewDriver resolves the kernel selected by cfg. metrics may be nil.
func NewDriver(
	cfg config.Run,
	sink Sink,
	metrics *Metrics,
	logger *slog.Logger,
) (*Driver, error) {
	fn, err := kernel.Lookup(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	return &Driver{
		Config:  cfg,
		Kernel:  fn,
		Sink:    sink,
		Metrics: metrics,
		Logger: logger.With(
			slog.String("alg", cfg.Algorithm.String()),
			slog.Int("threads", cfg.Threads),
			slog.Int64("size", cfg.Size),
		),
	}, nil
}

// Run executes every run. The timed interval covers only the kernel call,
// which returns after all of its goroutines have exited. The first kernel
// or sink failure aborts the loop: a partial benchmark is not retried.
// A cancelled ctx stops the loop before the next run starts.
func (d *Driver) Run(ctx context.Context) error {
	d.Logger.InfoContext(ctx, "starting runs", slog.Int("runs", d.Config.Runs))

	for r := range d.Config.Runs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s run %d: %w", d.Config.Algorithm, r, err)
		}

		start := time.Now()
		res, err := d.Kernel(d.Config.Threads, d.Config.Size)
		elapsed := time.Since(start)

		if err != nil {
			return fmt.Errorf("%s run %d: %w", d.Config.Algorithm, r, err)
		}

		rec := Record{
			Language:  config.Language,
			Alg:       int(d.Config.Algorithm),
			Threads:   d.Config.Threads,
			RunIndex:  r,
			InputSize: d.Config.Size,
			Seconds:   Seconds(elapsed.Seconds()),
		}

		if err := d.Sink.Write(rec); err != nil {
			return fmt.Errorf("record run %d: %w", r, err)
		}

		if d.Metrics != nil {
			d.Metrics.Observe(rec)
		}

		d.Logger.DebugContext(ctx, "run finished",
			slog.Int("run_index", r),
			slog.Duration("elapsed", elapsed),
			slog.Float64("value", res.Value),
		)
	}

	d.Logger.InfoContext(ctx, "runs complete")

	return nil
}
