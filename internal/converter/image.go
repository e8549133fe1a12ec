package converter

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	// Decoder-only registration for image.Decode.
	_ "golang.org/x/image/webp"

	"github.com/fileforge/fileforge/pkg/models"
)

// ImageConverter converts images with the native Go codecs, falling
// back to the external ImageMagick command for formats the native
// encoders cannot produce (WebP, SVG sources).
type ImageConverter struct {
	magickBin string
	opts      Options
}

// NewImageConverter creates an image converter. magickBin is the
// ImageMagick convert command used for fallback output formats.
func NewImageConverter(magickBin string, opts Options) *ImageConverter {
	if magickBin == "" {
		magickBin = "convert"
	}
	opts.defaults()
	return &ImageConverter{magickBin: magickBin, opts: opts}
}

func (c *ImageConverter) Convert(ctx context.Context, job models.ConversionJob) models.Outcome {
	start := time.Now()
	if out := validateJob(job, start); out != nil {
		return *out
	}

	preset := models.PresetFor(job.Quality)
	outExt := strings.ToLower(strings.TrimPrefix(filepath.Ext(job.OutputPath), "."))

	c.opts.Logger.Info("converting image",
		"input", filepath.Base(job.InputPath),
		"output", filepath.Base(job.OutputPath),
		"quality", preset.ImageQuality,
	)

	// No pure Go WebP encoder exists; route through ImageMagick.
	if outExt == "webp" {
		outcome := c.convertWithMagick(ctx, job, preset, start)
		logOutcome(c.opts.Logger, "image", job, outcome)
		return outcome
	}

	outcome := c.convertNative(ctx, job, preset, outExt, start)
	logOutcome(c.opts.Logger, "image", job, outcome)
	return outcome
}

// convertNative decodes, resizes, flattens, and re-encodes with the Go
// codecs. Undecodable inputs (e.g. SVG) fall back to ImageMagick.
func (c *ImageConverter) convertNative(ctx context.Context, job models.ConversionJob, preset models.QualityPreset, outExt string, start time.Time) models.Outcome {
	f, err := os.Open(job.InputPath)
	if err != nil {
		return models.Failure(models.FailureFilesystem, truncate(err.Error()), time.Since(start))
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		c.opts.Logger.Debug("native decode failed, trying ImageMagick",
			"input", filepath.Base(job.InputPath), "error", err)
		return c.convertWithMagick(ctx, job, preset, start)
	}
	c.opts.Logger.Debug("decoded image", "format", format, "bounds", img.Bounds())

	if job.Resize != "" && job.Resize != "Original" {
		img, err = resizeImage(img, job.Resize, c.opts)
		if err != nil {
			return models.Failure(models.FailureUnexpected, truncate(err.Error()), time.Since(start))
		}
	}

	// Formats without alpha support get the image flattened onto an
	// opaque white background first.
	if outExt == "jpg" || outExt == "jpeg" || outExt == "bmp" {
		img = flatten(img)
	}

	out, err := os.Create(job.OutputPath)
	if err != nil {
		return models.Failure(models.FailureFilesystem, truncate(err.Error()), time.Since(start))
	}
	defer out.Close()

	switch outExt {
	case "jpg", "jpeg":
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: preset.ImageQuality})
	case "png":
		level := png.DefaultCompression
		if preset.ImageQuality > 90 {
			level = png.BestCompression
		}
		enc := png.Encoder{CompressionLevel: level}
		err = enc.Encode(out, img)
	case "gif":
		err = gif.Encode(out, img, &gif.Options{NumColors: 256})
	case "bmp":
		err = bmp.Encode(out, img)
	case "tiff", "tif":
		err = tiff.Encode(out, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		out.Close()
		os.Remove(job.OutputPath)
		return c.convertWithMagick(ctx, job, preset, start)
	}
	if err != nil {
		return models.Failure(models.FailureToolExecution,
			truncate(fmt.Sprintf("image encode failed: %v", err)), time.Since(start))
	}
	return models.Successful(time.Since(start))
}

// convertWithMagick shells out to the ImageMagick convert command.
func (c *ImageConverter) convertWithMagick(ctx context.Context, job models.ConversionJob, preset models.QualityPreset, start time.Time) models.Outcome {
	args := []string{job.InputPath}
	if job.Resize != "" && job.Resize != "Original" {
		spec := job.Resize
		if !strings.Contains(spec, "%") {
			// Force exact dimensions; ImageMagick otherwise preserves
			// aspect ratio.
			spec += "!"
		}
		args = append(args, "-resize", spec)
	}
	outExt := strings.ToLower(filepath.Ext(job.OutputPath))
	if outExt == ".jpg" || outExt == ".jpeg" || outExt == ".bmp" {
		args = append(args, "-background", "white", "-alpha", "remove", "-alpha", "off")
	}
	args = append(args, "-quality", strconv.Itoa(preset.ImageQuality), job.OutputPath)
	return runTool(ctx, c.opts, c.magickBin, args, start)
}

// resizeImage applies a resize spec: a percentage ("50%") or explicit
// dimensions ("1280x720"). Scaling uses Catmull-Rom resampling.
func resizeImage(img image.Image, spec string, opts Options) (image.Image, error) {
	bounds := img.Bounds()
	var width, height int

	switch {
	case strings.Contains(spec, "%"):
		percent, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(spec), "%"))
		if err != nil || percent <= 0 {
			return nil, fmt.Errorf("invalid resize percentage: %q", spec)
		}
		width = bounds.Dx() * percent / 100
		height = bounds.Dy() * percent / 100
	case strings.ContainsAny(spec, "xX"):
		parts := strings.SplitN(strings.ToLower(strings.TrimSpace(spec)), "x", 2)
		w, err1 := strconv.Atoi(parts[0])
		h, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
			opts.Logger.Warn("ignoring invalid resize dimensions", "spec", spec)
			return img, nil
		}
		width, height = w, h
	default:
		return nil, fmt.Errorf("unrecognized resize spec: %q", spec)
	}

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst, nil
}

// flatten composites the image over an opaque white background,
// discarding any alpha channel.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}
