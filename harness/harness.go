package harness

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/weiihann/corebench/config"
)

// outputDrainDelay bounds how long Run waits for output pipes held open by
// orphaned children after the process has exited or been killed.
const outputDrainDelay = 2 * time.Second

// ExecRunner launches another language's implementation of the benchmark
// with the same flags, so that it appends to the same results file.
type ExecRunner struct {
	Name       string
	BinaryPath string
	ExtraArgs  []string
	Env        []string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// NewExecRunner creates an ExecRunner for the named implementation.
// For implementations that need a wrapper (e.g. java -jar), pass the
// wrapper as binaryPath and its arguments in extraArgs; the benchmark
// flags are appended after them. Env is appended to the inherited
// environment.
func NewExecRunner(
	name, binaryPath string,
	extraArgs, env []string,
	timeout time.Duration,
	logger *slog.Logger,
) *ExecRunner {
	return &ExecRunner{
		Name:       name,
		BinaryPath: binaryPath,
		ExtraArgs:  extraArgs,
		Env:        env,
		Timeout:    timeout,
		Logger:     logger.With(slog.String("implementation", name)),
	}
}

// Run executes the implementation once for cfg and waits for it to exit.
// A non-zero exit status is an error carrying the process's stderr.
func (r *ExecRunner) Run(ctx context.Context, cfg config.Run) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	flags := cfg.Args()
	args := make([]string, 0, len(r.ExtraArgs)+len(flags))
	args = append(args, r.ExtraArgs...)
	args = append(args, flags...)

	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)
	cmd.WaitDelay = outputDrainDelay

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.InfoContext(ctx, "starting implementation",
		slog.String("binary", r.BinaryPath),
		slog.String("alg", cfg.Algorithm.String()),
		slog.Int("threads", cfg.Threads),
		slog.Int64("size", cfg.Size),
	)

	wallStart := time.Now()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf(
			"implementation %s failed: %w\nstderr: %s",
			r.Name, err, strings.TrimSpace(stderr.String()),
		)
	}

	r.Logger.InfoContext(ctx, "implementation finished",
		slog.Duration("wall_time", time.Since(wallStart)),
		slog.String("stdout", strings.TrimSpace(stdout.String())),
	)

	return nil
}
