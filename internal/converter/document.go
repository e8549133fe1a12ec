package converter

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fileforge/fileforge/pkg/models"
)

// DocumentConverter converts markup documents through Pandoc.
type DocumentConverter struct {
	bin  string
	opts Options
}

// NewDocumentConverter creates a document converter using the given
// pandoc binary.
func NewDocumentConverter(bin string, opts Options) *DocumentConverter {
	if bin == "" {
		bin = "pandoc"
	}
	opts.defaults()
	return &DocumentConverter{bin: bin, opts: opts}
}

func (c *DocumentConverter) Convert(ctx context.Context, job models.ConversionJob) models.Outcome {
	start := time.Now()
	if out := validateJob(job, start); out != nil {
		return *out
	}

	args := []string{job.InputPath, "-o", job.OutputPath}

	c.opts.Logger.Info("converting document",
		"input", filepath.Base(job.InputPath),
		"output", filepath.Base(job.OutputPath),
	)

	outcome := runTool(ctx, c.opts, c.bin, args, start)
	logOutcome(c.opts.Logger, "document", job, outcome)
	return outcome
}
