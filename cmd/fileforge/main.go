package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fileforge/fileforge/internal/batch"
	"github.com/fileforge/fileforge/internal/classify"
	"github.com/fileforge/fileforge/internal/config"
	"github.com/fileforge/fileforge/internal/converter"
	"github.com/fileforge/fileforge/internal/delivery"
	"github.com/fileforge/fileforge/internal/tools"
	"github.com/fileforge/fileforge/pkg/models"
)

const (
	appName    = "fileforge"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Logging)

	slog.Info("starting", "app", appName, "version", appVersion, "command", os.Args[1])

	// Cancel the batch between jobs on interrupt; a running job is
	// bounded by its own timeout.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var exitCode int
	switch os.Args[1] {
	case "convert":
		exitCode = runConvert(ctx, cfg, os.Args[2:])
	case "batch":
		exitCode = runBatch(ctx, cfg, os.Args[2:])
	case "tools":
		exitCode = runTools(cfg)
	case "info":
		exitCode = runInfo(ctx, cfg, os.Args[2:])
	case "version":
		fmt.Printf("%s %s\n", appName, appVersion)
	default:
		usage()
		exitCode = 2
	}
	os.Exit(exitCode)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [flags]

Commands:
  convert   convert a single file
  batch     convert multiple files
  tools     show external tool availability
  info      show file classification and metadata
  version   print version
`, appName)
}

// setupLogging configures slog with a JSON handler writing to stderr
// and, when a log directory is configured, an append-only log file.
// File logging is best-effort: a failing log sink never stops the
// engine.
func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err == nil {
			name := filepath.Join(cfg.Dir, fmt.Sprintf("%s_%s.log", appName, time.Now().Format("20060102")))
			f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err == nil {
				w = io.MultiWriter(os.Stderr, f)
			} else {
				fmt.Fprintf(os.Stderr, "log file unavailable: %v\n", err)
			}
		}
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func runConvert(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	input := fs.String("i", "", "input file")
	format := fs.String("f", "", "output format label (e.g. MP4, PNG, PDF)")
	quality := fs.String("q", "Medium", "quality preset: Low, Medium, High, Ultra")
	outDir := fs.String("o", cfg.Conversion.OutputDir, "output directory")
	resolution := fs.String("resolution", "", "video resolution override (e.g. 1280x720)")
	framerate := fs.String("fps", "", "video framerate override")
	codec := fs.String("codec", "", "video codec override")
	resize := fs.String("resize", "", "image resize spec (e.g. 50% or 800x600)")
	fs.Parse(args)

	if *input == "" || *format == "" {
		fmt.Fprintln(os.Stderr, "convert requires -i <input> and -f <format>")
		return 2
	}

	spec := classify.Classify(*input)
	if spec.Category == models.CategoryUnknown {
		fmt.Fprintf(os.Stderr, "unsupported file type: %s\n", filepath.Ext(*input))
		return 1
	}

	outExt, ok := resolveFormat(spec, *format)
	if !ok {
		fmt.Fprintf(os.Stderr, "format %q is not available for %s files (choose from: %s)\n",
			*format, spec.Category, strings.Join(formatLabels(spec), ", "))
		return 1
	}

	checker := tools.NewChecker(toolOverrides(cfg), slog.Default())
	if !checker.IsAvailable(spec.Tool) {
		fmt.Fprintf(os.Stderr, "required tool %s is not installed\n", spec.Tool)
		return 1
	}

	registry := converter.NewDefaultRegistry(cfg, slog.Default())
	conv := registry.Resolve(spec.Category)
	if conv == nil {
		fmt.Fprintf(os.Stderr, "no converter registered for category %s\n", spec.Category)
		return 1
	}

	stem := strings.TrimSuffix(filepath.Base(*input), filepath.Ext(*input))
	job := models.ConversionJob{
		InputPath:  *input,
		OutputPath: filepath.Join(*outDir, stem+"."+outExt),
		Category:   spec.Category,
		Quality:    *quality,
		Resolution: *resolution,
		Framerate:  *framerate,
		Codec:      *codec,
		Resize:     *resize,
	}

	outcome := conv.Convert(ctx, job)
	if !outcome.Success {
		fmt.Fprintf(os.Stderr, "conversion failed (%s): %s\n", outcome.Kind, outcome.Message)
		return 1
	}
	fmt.Printf("converted %s -> %s in %s\n", *input, job.OutputPath, outcome.Duration.Round(time.Millisecond))
	return 0
}

func runBatch(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	dir := fs.String("dir", "", "convert every file in this directory")
	outDir := fs.String("o", cfg.Conversion.OutputDir, "output directory")
	quality := fs.String("q", "Medium", "quality preset for all files")
	formatsFlag := fs.String("formats", "", "per-category output formats, e.g. video=mp4,image=png")
	fs.Parse(args)

	files := fs.Args()
	if *dir != "" {
		entries, err := os.ReadDir(*dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot read directory: %v\n", err)
			return 1
		}
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(*dir, e.Name()))
			}
		}
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "batch requires input files (arguments or -dir)")
		return 2
	}

	formats, err := parseFormats(*formatsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -formats: %v\n", err)
		return 2
	}

	checker := tools.NewChecker(toolOverrides(cfg), slog.Default())
	registry := converter.NewDefaultRegistry(cfg, slog.Default())

	publisher, err := delivery.New(cfg.Delivery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "delivery setup failed: %v\n", err)
		return 1
	}

	orch := batch.New(checker, registry, publisher, slog.Default())
	result := orch.Run(ctx, batch.Request{
		Files:     files,
		OutputDir: *outDir,
		Quality:   *quality,
		Formats:   formats,
	}, func(index, total int, file string, outcome models.Outcome) {
		status := "ok"
		if !outcome.Success {
			status = string(outcome.Kind)
		}
		fmt.Printf("[%d/%d] %-40s %s\n", index, total, filepath.Base(file), status)
	})

	fmt.Printf("\n%d succeeded, %d failed, %d skipped of %d (%s)\n",
		result.Succeeded, result.Failed, result.Skipped, result.Total,
		result.Elapsed.Round(time.Millisecond))
	for cat, n := range result.SkippedByCategory {
		fmt.Printf("  skipped %s: %d\n", cat, n)
	}
	for cat, n := range result.FailedByCategory {
		fmt.Printf("  failed %s: %d\n", cat, n)
	}

	if result.Failed > 0 {
		return 1
	}
	return 0
}

func runTools(cfg *config.Config) int {
	checker := tools.NewChecker(toolOverrides(cfg), slog.Default())
	status := checker.Status()

	names := make([]string, 0, len(status))
	for tool := range status {
		names = append(names, string(tool))
	}
	sort.Strings(names)

	for _, name := range names {
		mark := "missing"
		if status[models.Tool(name)] {
			mark = "available"
		}
		fmt.Printf("%-14s %s\n", name, mark)
	}
	return 0
}

func runInfo(ctx context.Context, cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	input := fs.String("i", "", "file to inspect")
	fs.Parse(args)

	path := *input
	if path == "" && fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "info requires a file path")
		return 2
	}

	classifier := classify.NewClassifier(cfg.Tools.FFprobePath, slog.Default())
	info, err := classifier.GetFileInfo(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read file: %v\n", err)
		return 1
	}

	encoded, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot encode file info: %v\n", err)
		return 1
	}
	fmt.Println(string(encoded))
	return 0
}

// toolOverrides maps configured binary paths onto tool identifiers.
func toolOverrides(cfg *config.Config) map[models.Tool]string {
	return map[models.Tool]string{
		models.ToolFFmpeg:      cfg.Tools.FFmpegPath,
		models.ToolImage:       cfg.Tools.MagickPath,
		models.ToolPandoc:      cfg.Tools.PandocPath,
		models.ToolLibreOffice: cfg.Tools.SofficePath,
		models.ToolCalibre:     cfg.Tools.EbookConvertPath,
	}
}

// resolveFormat matches a requested format label against a category's
// legal outputs, case-insensitively, accepting either the label
// ("WebP") or the bare extension ("webp").
func resolveFormat(spec classify.CategorySpec, requested string) (string, bool) {
	for label, ext := range spec.Formats {
		if strings.EqualFold(label, requested) || strings.EqualFold(ext, requested) {
			return ext, true
		}
	}
	return "", false
}

func formatLabels(spec classify.CategorySpec) []string {
	labels := make([]string, 0, len(spec.Formats))
	for label := range spec.Formats {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// parseFormats parses "video=mp4,image=png" into a category-to-
// extension map. Categories absent from the map are skipped by the
// batch run.
func parseFormats(raw string) (map[models.Category]string, error) {
	formats := make(map[models.Category]string)
	if raw == "" {
		return formats, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || key == "" || value == "" {
			return nil, fmt.Errorf("expected category=extension, got %q", pair)
		}
		formats[models.Category(strings.ToLower(key))] = strings.ToLower(strings.TrimPrefix(value, "."))
	}
	return formats, nil
}
