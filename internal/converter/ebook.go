package converter

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fileforge/fileforge/pkg/models"
)

// EbookConverter converts ebooks through Calibre's ebook-convert.
type EbookConverter struct {
	bin  string
	opts Options
}

// NewEbookConverter creates an ebook converter using the given
// ebook-convert binary.
func NewEbookConverter(bin string, opts Options) *EbookConverter {
	if bin == "" {
		bin = "ebook-convert"
	}
	opts.defaults()
	return &EbookConverter{bin: bin, opts: opts}
}

func (c *EbookConverter) Convert(ctx context.Context, job models.ConversionJob) models.Outcome {
	start := time.Now()
	if out := validateJob(job, start); out != nil {
		return *out
	}

	args := []string{job.InputPath, job.OutputPath}

	c.opts.Logger.Info("converting ebook",
		"input", filepath.Base(job.InputPath),
		"output", filepath.Base(job.OutputPath),
	)

	outcome := runTool(ctx, c.opts, c.bin, args, start)
	logOutcome(c.opts.Logger, "ebook", job, outcome)
	return outcome
}
