package converter

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fileforge/fileforge/pkg/models"
)

// VideoConverter converts video files through FFmpeg.
type VideoConverter struct {
	bin  string
	opts Options
}

// NewVideoConverter creates a video converter using the given ffmpeg
// binary.
func NewVideoConverter(bin string, opts Options) *VideoConverter {
	if bin == "" {
		bin = "ffmpeg"
	}
	opts.defaults()
	return &VideoConverter{bin: bin, opts: opts}
}

func (c *VideoConverter) Convert(ctx context.Context, job models.ConversionJob) models.Outcome {
	start := time.Now()
	if out := validateJob(job, start); out != nil {
		return *out
	}

	preset := models.PresetFor(job.Quality)
	args := buildVideoArgs(job, preset)

	c.opts.Logger.Info("converting video",
		"input", filepath.Base(job.InputPath),
		"output", filepath.Base(job.OutputPath),
		"quality", preset.Name,
		"crf", preset.CRF,
	)

	outcome := runTool(ctx, c.opts, c.bin, args, start)
	logOutcome(c.opts.Logger, "video", job, outcome)
	return outcome
}

// buildVideoArgs builds the FFmpeg invocation: quality preset first,
// then any explicit resolution, framerate, and codec overrides layered
// on top.
func buildVideoArgs(job models.ConversionJob, preset models.QualityPreset) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-i", job.InputPath,
		"-crf", preset.CRF,
		"-b:a", preset.AudioBitrate,
	}
	if job.Resolution != "" && job.Resolution != "Original" {
		args = append(args, "-s", job.Resolution)
	}
	if job.Framerate != "" && job.Framerate != "Original" {
		args = append(args, "-r", job.Framerate)
	}
	if job.Codec != "" {
		args = append(args, "-c:v", job.Codec)
	}
	return append(args, "-y", job.OutputPath)
}

// logOutcome records one conversion attempt. The log sink is
// fire-and-forget; it can never fail a conversion.
func logOutcome(logger *slog.Logger, kind string, job models.ConversionJob, outcome models.Outcome) {
	if outcome.Success {
		logger.Info(kind+" conversion succeeded",
			"input", filepath.Base(job.InputPath),
			"duration", outcome.Duration,
		)
		return
	}
	logger.Error(kind+" conversion failed",
		"input", filepath.Base(job.InputPath),
		"kind", string(outcome.Kind),
		"error", outcome.Message,
		"duration", outcome.Duration,
	)
}
