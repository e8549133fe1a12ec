// Package batch drives the converter over an ordered job list,
// isolating per-file failures and aggregating results.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fileforge/fileforge/internal/classify"
	"github.com/fileforge/fileforge/internal/converter"
	"github.com/fileforge/fileforge/internal/delivery"
	"github.com/fileforge/fileforge/pkg/models"
)

// ToolChecker gates execution on tool availability.
type ToolChecker interface {
	IsAvailable(tool models.Tool) bool
}

// Resolver looks up the converter for a category.
type Resolver interface {
	Resolve(category models.Category) converter.Converter
}

// Request describes one batch run.
type Request struct {
	Files     []string
	OutputDir string
	Quality   string

	// Formats maps each category to its requested output extension.
	// Files whose category has no entry are skipped, not failed.
	Formats map[models.Category]string
}

// ProgressFunc is called after each job completes, with its 1-based
// index and the job's outcome.
type ProgressFunc func(index, total int, file string, outcome models.Outcome)

// Orchestrator runs batches sequentially: one job runs to completion
// (or timeout) before the next begins. One job's failure or skip never
// halts the scan.
type Orchestrator struct {
	tools     ToolChecker
	registry  Resolver
	publisher delivery.Publisher
	logger    *slog.Logger
}

// New creates an orchestrator. publisher may be nil to keep outputs
// local only.
func New(tools ToolChecker, registry Resolver, publisher delivery.Publisher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		tools:     tools,
		registry:  registry,
		publisher: publisher,
		logger:    logger,
	}
}

// Run scans the file list in submission order and returns the
// aggregate result. Cancelling ctx interrupts the batch between jobs;
// a running job is bounded only by its own timeout. A cancelled batch
// keeps whatever outputs were already produced.
func (o *Orchestrator) Run(ctx context.Context, req Request, progress ProgressFunc) models.BatchResult {
	start := time.Now()
	result := models.BatchResult{
		Total:             len(req.Files),
		SkippedByCategory: make(map[models.Category]int),
		FailedByCategory:  make(map[models.Category]int),
	}

	o.logger.Info("starting batch", "files", len(req.Files), "quality", req.Quality, "outputDir", req.OutputDir)

	for i, file := range req.Files {
		if ctx.Err() != nil {
			o.logger.Warn("batch interrupted", "completed", i, "total", len(req.Files))
			break
		}

		outcome := o.runOne(ctx, req, file)
		switch {
		case outcome.Success:
			result.Succeeded++
		case isSkip(outcome.Kind):
			result.Skipped++
			result.SkippedByCategory[classify.Classify(file).Category]++
		default:
			result.Failed++
			result.FailedByCategory[classify.Classify(file).Category]++
		}

		if progress != nil {
			progress(i+1, len(req.Files), file, outcome)
		}
	}

	result.Elapsed = time.Since(start)
	o.logger.Info("batch complete",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"total", result.Total,
		"elapsed", result.Elapsed,
	)
	return result
}

// runOne takes a single file through the per-job state machine:
// unknown category, unavailable tool, and unconfigured format skip;
// an unresolvable converter fails; otherwise the converter decides.
func (o *Orchestrator) runOne(ctx context.Context, req Request, file string) models.Outcome {
	spec := classify.Classify(file)

	if spec.Category == models.CategoryUnknown {
		o.logger.Warn("skipping unknown file type", "file", filepath.Base(file))
		return models.Failure(models.FailureUnsupportedType,
			fmt.Sprintf("unrecognized file type: %s", filepath.Ext(file)), 0)
	}

	if !o.tools.IsAvailable(spec.Tool) {
		o.logger.Warn("skipping file, tool unavailable", "file", filepath.Base(file), "tool", spec.Tool)
		return models.Failure(models.FailureToolUnavailable,
			fmt.Sprintf("%s is not installed", spec.Tool), 0)
	}

	outExt, ok := req.Formats[spec.Category]
	if !ok || outExt == "" {
		o.logger.Warn("skipping file, no output format configured",
			"file", filepath.Base(file), "category", spec.Category)
		return models.Failure(models.FailureUnsupportedType,
			fmt.Sprintf("no output format configured for category %s", spec.Category), 0)
	}

	conv := o.registry.Resolve(spec.Category)
	if conv == nil {
		o.logger.Error("no converter registered", "category", spec.Category, "file", filepath.Base(file))
		return models.Failure(models.FailureNoConverter,
			fmt.Sprintf("no converter registered for category %s", spec.Category), 0)
	}

	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	job := models.ConversionJob{
		InputPath:  file,
		OutputPath: filepath.Join(req.OutputDir, stem+"."+outExt),
		Category:   spec.Category,
		Quality:    req.Quality,
	}

	outcome := conv.Convert(ctx, job)
	if outcome.Success {
		o.publish(ctx, job.OutputPath)
	}
	return outcome
}

// publish hands a finished output to the delivery backend. Delivery is
// best-effort and never fails the job.
func (o *Orchestrator) publish(ctx context.Context, outputPath string) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, outputPath, filepath.Base(outputPath)); err != nil {
		o.logger.Error("output delivery failed",
			"file", filepath.Base(outputPath),
			"backend", o.publisher.Type(),
			"error", err,
		)
	}
}

// isSkip reports whether a failure kind counts as skipped rather than
// failed: nothing was attempted.
func isSkip(kind models.FailureKind) bool {
	return kind == models.FailureUnsupportedType || kind == models.FailureToolUnavailable
}
