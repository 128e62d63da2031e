package suite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weiihann/corebench/harness"
)

// Execute runs every expanded configuration in process and then against
// each external implementation, in order. All of them append to s.Out.
// metrics may be nil. The first failure stops the suite.
func (s *Suite) Execute(
	ctx context.Context,
	logger *slog.Logger,
	metrics *harness.Metrics,
) error {
	sink := harness.NewFileSink(s.Out)
	if err := sink.Probe(); err != nil {
		return err
	}

	runners := make([]*harness.ExecRunner, 0, len(s.External))
	for _, ext := range s.External {
		runners = append(runners, harness.NewExecRunner(
			ext.Name, ext.Command[0], ext.Command[1:], ext.Env, ext.Timeout, logger,
		))
	}

	runs := s.Expand()

	logger.InfoContext(ctx, "starting suite",
		slog.Int("configurations", len(runs)),
		slog.Int("external", len(runners)),
		slog.String("out", s.Out),
	)

	for i, cfg := range runs {
		d, err := harness.NewDriver(cfg, sink, metrics, logger)
		if err != nil {
			return fmt.Errorf("configuration %d: %w", i, err)
		}

		if err := d.Run(ctx); err != nil {
			return fmt.Errorf("configuration %d: %w", i, err)
		}

		for _, r := range runners {
			if err := r.Run(ctx, cfg); err != nil {
				return fmt.Errorf("configuration %d: %w", i, err)
			}
		}
	}

	logger.InfoContext(ctx, "suite complete")

	return nil
}
