package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fileforge/fileforge/pkg/models"
)

// OfficeConverter converts office documents through LibreOffice in
// headless mode.
type OfficeConverter struct {
	bin  string
	opts Options
}

// NewOfficeConverter creates an office converter using the given
// soffice binary.
func NewOfficeConverter(bin string, opts Options) *OfficeConverter {
	if bin == "" {
		bin = "soffice"
	}
	opts.defaults()
	return &OfficeConverter{bin: bin, opts: opts}
}

func (c *OfficeConverter) Convert(ctx context.Context, job models.ConversionJob) models.Outcome {
	start := time.Now()
	if out := validateJob(job, start); out != nil {
		return *out
	}

	outDir := filepath.Dir(job.OutputPath)
	outExt := strings.TrimPrefix(strings.ToLower(filepath.Ext(job.OutputPath)), ".")
	args := []string{
		"--headless",
		"--convert-to", outExt,
		"--outdir", outDir,
		job.InputPath,
	}

	c.opts.Logger.Info("converting office document",
		"input", filepath.Base(job.InputPath),
		"output", filepath.Base(job.OutputPath),
	)

	outcome := runTool(ctx, c.opts, c.bin, args, start)
	if !outcome.Success {
		logOutcome(c.opts.Logger, "office", job, outcome)
		return outcome
	}

	// soffice names the output after the input stem; move it to the
	// requested path when they differ. It also exits zero on some
	// failures, so the produced file is verified either way.
	stem := strings.TrimSuffix(filepath.Base(job.InputPath), filepath.Ext(job.InputPath))
	produced := filepath.Join(outDir, stem+"."+outExt)
	if produced != job.OutputPath {
		if err := os.Rename(produced, job.OutputPath); err != nil {
			outcome = models.Failure(models.FailureFilesystem,
				truncate(fmt.Sprintf("cannot move converted file: %v", err)), time.Since(start))
			logOutcome(c.opts.Logger, "office", job, outcome)
			return outcome
		}
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		outcome = models.Failure(models.FailureToolExecution,
			"soffice reported success but produced no output file", time.Since(start))
	}
	logOutcome(c.opts.Logger, "office", job, outcome)
	return outcome
}
