// Package tools resolves availability of the external conversion
// backends, memoized for the process lifetime.
package tools

import (
	"log/slog"
	"os/exec"
	"sync"

	"github.com/fileforge/fileforge/pkg/models"
)

// defaultCommands maps each tool to the external command it resolves
// through. The image tool is library-backed and has no required
// command; magickFallback covers its ImageMagick escape hatch.
var defaultCommands = map[models.Tool]string{
	models.ToolFFmpeg:      "ffmpeg",
	models.ToolPandoc:      "pandoc",
	models.ToolLibreOffice: "soffice",
	models.ToolCalibre:     "ebook-convert",
}

const magickFallback = "convert"

// Checker caches tool availability for the process lifetime. There is
// no TTL and no invalidation hook: a tool installed mid-run is not
// detected until restart.
type Checker struct {
	mu       sync.Mutex
	cache    map[models.Tool]bool
	commands map[models.Tool]string
	magick   string

	// nativeImage reports whether the built-in image codecs are usable.
	// Always true in this build; kept injectable so the ImageMagick
	// fallback path is testable.
	nativeImage bool
	lookPath    func(string) (string, error)
	logger      *slog.Logger
}

// NewChecker builds a checker using real OS lookup. binOverrides maps
// tools to alternate command names/paths from configuration.
func NewChecker(binOverrides map[models.Tool]string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	commands := make(map[models.Tool]string, len(defaultCommands))
	for tool, cmd := range defaultCommands {
		commands[tool] = cmd
	}
	magick := magickFallback
	for tool, cmd := range binOverrides {
		if cmd == "" {
			continue
		}
		if tool == models.ToolImage {
			magick = cmd
			continue
		}
		commands[tool] = cmd
	}
	return &Checker{
		cache:       make(map[models.Tool]bool),
		commands:    commands,
		magick:      magick,
		nativeImage: true,
		lookPath:    exec.LookPath,
		logger:      logger,
	}
}

// IsAvailable reports whether the tool backing a category is present.
// Never returns an error: unknown tools degrade to false.
func (c *Checker) IsAvailable(tool models.Tool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.cache[tool]; ok {
		return cached
	}

	available := c.resolve(tool)
	c.cache[tool] = available
	c.logger.Debug("tool availability resolved", "tool", tool, "available", available)
	return available
}

// resolve performs the uncached check. Caller holds the lock.
func (c *Checker) resolve(tool models.Tool) bool {
	if tool == models.ToolImage {
		// Library-backed: available natively, or through the external
		// ImageMagick command when the library path is unusable.
		if c.nativeImage {
			return true
		}
		_, err := c.lookPath(c.magick)
		return err == nil
	}

	cmd, ok := c.commands[tool]
	if !ok {
		c.logger.Warn("unknown tool", "tool", tool)
		return false
	}
	_, err := c.lookPath(cmd)
	return err == nil
}

// HasMagick reports whether the ImageMagick fallback command resolves.
// Used by the image converter for formats the native codecs cannot
// encode.
func (c *Checker) HasMagick() bool {
	_, err := c.lookPath(c.magick)
	return err == nil
}

// MagickBin returns the configured ImageMagick command name.
func (c *Checker) MagickBin() string {
	return c.magick
}

// Status enumerates the fixed set of known tools for a dashboard view.
func (c *Checker) Status() map[models.Tool]bool {
	known := []models.Tool{
		models.ToolFFmpeg,
		models.ToolImage,
		models.ToolPandoc,
		models.ToolLibreOffice,
		models.ToolCalibre,
	}
	status := make(map[models.Tool]bool, len(known))
	for _, tool := range known {
		status[tool] = c.IsAvailable(tool)
	}
	return status
}

// NewCheckerForTests creates a checker with injectable lookup behavior.
func NewCheckerForTests(lookPath func(string) (string, error), nativeImage bool) *Checker {
	c := NewChecker(nil, slog.Default())
	c.lookPath = lookPath
	c.nativeImage = nativeImage
	return c
}
