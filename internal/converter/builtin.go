package converter

import (
	"log/slog"

	"github.com/fileforge/fileforge/internal/config"
	"github.com/fileforge/fileforge/pkg/models"
)

// NewDefaultRegistry builds the registry over the built-in converter
// set, one per supported category, using the configured tool binaries
// and timeout.
func NewDefaultRegistry(cfg *config.Config, logger *slog.Logger) *Registry {
	opts := Options{
		Timeout: cfg.Conversion.Timeout(),
		Logger:  logger,
	}
	builtin := map[models.Category]Converter{
		models.CategoryVideo:    NewVideoConverter(cfg.Tools.FFmpegPath, opts),
		models.CategoryAudio:    NewAudioConverter(cfg.Tools.FFmpegPath, opts),
		models.CategoryImage:    NewImageConverter(cfg.Tools.MagickPath, opts),
		models.CategoryDocument: NewDocumentConverter(cfg.Tools.PandocPath, opts),
		models.CategoryOffice:   NewOfficeConverter(cfg.Tools.SofficePath, opts),
		models.CategoryEbook:    NewEbookConverter(cfg.Tools.EbookConvertPath, opts),
	}
	return NewRegistry(builtin, logger)
}
