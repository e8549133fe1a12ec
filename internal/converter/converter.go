// Package converter implements the per-category conversion executors
// and the registry that dispatches to them.
package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fileforge/fileforge/pkg/models"
)

// maxErrorLen bounds every error message returned to callers. The
// underlying tools can emit unbounded diagnostic text; callers must
// never receive unbounded strings.
const maxErrorLen = 300

// DefaultTimeout is the per-job wall clock budget when none is
// configured.
const DefaultTimeout = 600 * time.Second

// Converter is the capability contract every executor satisfies.
// Outcomes are returned, never raised.
type Converter interface {
	Convert(ctx context.Context, job models.ConversionJob) models.Outcome
}

// Options carries the execution knobs shared by all tool-backed
// converters.
type Options struct {
	// Timeout is the wall clock budget for one job, not shared across
	// a batch. Zero means DefaultTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
	Runner  commandRunner
}

func (o *Options) defaults() {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Runner == nil {
		o.Runner = &execRunner{}
	}
}

// validateJob performs the shared steps 1 and 2 of the execution
// contract: the input must exist and the output directory must be
// creatable. A nil return means the job may proceed.
func validateJob(job models.ConversionJob, start time.Time) *models.Outcome {
	if _, err := os.Stat(job.InputPath); err != nil {
		out := models.Failure(models.FailureInputNotFound,
			fmt.Sprintf("input file not found: %s", job.InputPath), time.Since(start))
		return &out
	}
	if dir := filepath.Dir(job.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			out := models.Failure(models.FailureFilesystem,
				truncate(fmt.Sprintf("cannot create output directory: %v", err)), time.Since(start))
			return &out
		}
	}
	return nil
}

// runTool executes one external command under the configured timeout
// and classifies the result. The child process is terminated, not
// abandoned, when the deadline fires.
func runTool(ctx context.Context, opts Options, bin string, args []string, start time.Time) models.Outcome {
	runCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	opts.Logger.Debug("running tool", "bin", bin, "args", strings.Join(args, " "))

	result, err := opts.Runner.Run(runCtx, bin, args...)
	elapsed := time.Since(start)
	if err == nil {
		return models.Successful(elapsed)
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return models.Failure(models.FailureTimeout,
			fmt.Sprintf("conversion timed out after %s (limit %s)", elapsed.Round(time.Second), opts.Timeout),
			elapsed)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return models.Failure(models.FailureToolUnavailable,
			fmt.Sprintf("%s not found on PATH", bin), elapsed)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) || result.ExitCode != 0 {
		return models.Failure(models.FailureToolExecution,
			extractToolError(result.Stderr, result.Stdout), elapsed)
	}
	return models.Failure(models.FailureUnexpected, truncate(err.Error()), elapsed)
}

// extractToolError pulls a bounded, human-meaningful message out of a
// tool's diagnostic output. The most specific line is usually the last
// one containing a failure marker; if none is found the raw tail is
// truncated instead.
func extractToolError(stderr, stdout string) string {
	diag := stderr
	if strings.TrimSpace(diag) == "" {
		diag = stdout
	}
	if strings.TrimSpace(diag) == "" {
		return "tool exited with failure and produced no diagnostics"
	}

	lines := strings.Split(diag, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") || strings.Contains(lower, "invalid") || strings.Contains(lower, "failed") {
			return truncate(line)
		}
	}
	return tailTruncate(diag)
}

// truncate bounds a message at maxErrorLen, keeping the head.
func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrorLen {
		return s
	}
	return s[:maxErrorLen-3] + "..."
}

// tailTruncate bounds a message at maxErrorLen, keeping the tail,
// where tools put their most specific diagnostics.
func tailTruncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrorLen {
		return s
	}
	return "..." + s[len(s)-(maxErrorLen-3):]
}
