package converter

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fileforge/fileforge/pkg/models"
)

// AudioConverter converts audio files through FFmpeg.
type AudioConverter struct {
	bin  string
	opts Options
}

// NewAudioConverter creates an audio converter using the given ffmpeg
// binary.
func NewAudioConverter(bin string, opts Options) *AudioConverter {
	if bin == "" {
		bin = "ffmpeg"
	}
	opts.defaults()
	return &AudioConverter{bin: bin, opts: opts}
}

func (c *AudioConverter) Convert(ctx context.Context, job models.ConversionJob) models.Outcome {
	start := time.Now()
	if out := validateJob(job, start); out != nil {
		return *out
	}

	preset := models.PresetFor(job.Quality)
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-i", job.InputPath,
		"-b:a", preset.AudioBitrate,
		"-y", job.OutputPath,
	}

	c.opts.Logger.Info("converting audio",
		"input", filepath.Base(job.InputPath),
		"output", filepath.Base(job.OutputPath),
		"bitrate", preset.AudioBitrate,
	)

	outcome := runTool(ctx, c.opts, c.bin, args, start)
	logOutcome(c.opts.Logger, "audio", job, outcome)
	return outcome
}
