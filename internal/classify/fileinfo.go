package classify

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Codec registration for the image dimension probe.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/fileforge/fileforge/pkg/models"
)

// FileInfo describes one file for display: classification plus
// best-effort metadata probes.
type FileInfo struct {
	Name      string            `json:"name"`
	Path      string            `json:"path"`
	Category  models.Category   `json:"category"`
	Tool      models.Tool       `json:"tool"`
	SizeBytes int64             `json:"sizeBytes"`
	Size      string            `json:"size"`
	Formats   map[string]string `json:"formats"`

	// Image metadata, present only when the probe succeeds.
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	ColorMode string `json:"colorMode,omitempty"`

	// PDF metadata, present only when the probe succeeds.
	PageCount int `json:"pageCount,omitempty"`

	// Video metadata from ffprobe, present only when the probe succeeds.
	Media *MediaInfo `json:"media,omitempty"`
}

// Classifier resolves file info with metadata probes. Probe failures
// are swallowed: the fields stay absent and classification still
// succeeds.
type Classifier struct {
	ffprobeBin string
	logger     *slog.Logger
}

// NewClassifier creates a classifier. ffprobeBin may be empty to skip
// media probing.
func NewClassifier(ffprobeBin string, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{ffprobeBin: ffprobeBin, logger: logger}
}

// GetFileInfo returns classification and metadata for path. The only
// error case is a missing or unreadable file.
func (c *Classifier) GetFileInfo(ctx context.Context, path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	spec := Classify(path)
	info := &FileInfo{
		Name:      filepath.Base(path),
		Path:      abs,
		Category:  spec.Category,
		Tool:      spec.Tool,
		SizeBytes: stat.Size(),
		Size:      humanSize(stat.Size()),
		Formats:   spec.Formats,
	}

	switch spec.Category {
	case models.CategoryImage:
		c.probeImage(path, info)
	case models.CategoryVideo:
		c.probeMedia(ctx, path, info)
	case models.CategoryEbook:
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			c.probePDF(path, info)
		}
	}

	return info, nil
}

// probeImage fills pixel dimensions and color mode from the image
// header without decoding the full image.
func (c *Classifier) probeImage(path string, info *FileInfo) {
	f, err := os.Open(path)
	if err != nil {
		c.logger.Debug("image probe failed", "path", path, "error", err)
		return
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		c.logger.Debug("image probe failed", "path", path, "error", err)
		return
	}

	info.Width = cfg.Width
	info.Height = cfg.Height
	info.ColorMode = colorMode(cfg.ColorModel)
}

// probePDF fills the page count via pdfcpu.
func (c *Classifier) probePDF(path string, info *FileInfo) {
	pages, err := api.PageCountFile(path)
	if err != nil {
		c.logger.Debug("pdf probe failed", "path", path, "error", err)
		return
	}
	info.PageCount = pages
}

// probeMedia fills video stream metadata via ffprobe.
func (c *Classifier) probeMedia(ctx context.Context, path string, info *FileInfo) {
	if c.ffprobeBin == "" {
		return
	}
	media, err := ProbeMedia(ctx, c.ffprobeBin, path)
	if err != nil {
		c.logger.Debug("media probe failed", "path", path, "error", err)
		return
	}
	info.Media = media
}

// humanSize formats a byte count in binary units.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

// colorMode names a color model the way image tooling reports it.
func colorMode(m color.Model) string {
	switch m {
	case color.RGBAModel:
		return "RGBA"
	case color.NRGBAModel:
		return "NRGBA"
	case color.RGBA64Model:
		return "RGBA64"
	case color.NRGBA64Model:
		return "NRGBA64"
	case color.GrayModel:
		return "Gray"
	case color.Gray16Model:
		return "Gray16"
	case color.YCbCrModel:
		return "YCbCr"
	case color.NYCbCrAModel:
		return "NYCbCrA"
	case color.CMYKModel:
		return "CMYK"
	case color.AlphaModel:
		return "Alpha"
	}
	if _, ok := m.(color.Palette); ok {
		return "Paletted"
	}
	return "Unknown"
}
