// Package classify maps file paths to semantic categories and collects
// best-effort file metadata for display.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/fileforge/fileforge/pkg/models"
)

// CategorySpec describes one category: its recognized extensions, the
// external tool it requires, and the legal output formats (label to
// file extension).
type CategorySpec struct {
	Category   models.Category
	Extensions []string
	Tool       models.Tool
	Formats    map[string]string
}

// categoryTable is the single source of truth for classification. The
// slice order is the tie-break: the first category listing an extension
// owns it. Extensions are kept disjoint (enforced by a test); .pdf is
// owned by ebook alone.
var categoryTable = []CategorySpec{
	{
		Category:   models.CategoryVideo,
		Extensions: []string{".mp4", ".avi", ".mkv", ".mov", ".webm", ".flv", ".wmv", ".m4v"},
		Tool:       models.ToolFFmpeg,
		Formats:    map[string]string{"MP4": "mp4", "AVI": "avi", "MKV": "mkv", "WebM": "webm", "MP3": "mp3"},
	},
	{
		Category:   models.CategoryAudio,
		Extensions: []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a", ".wma", ".opus"},
		Tool:       models.ToolFFmpeg,
		Formats:    map[string]string{"MP3": "mp3", "WAV": "wav", "FLAC": "flac", "AAC": "aac", "OGG": "ogg"},
	},
	{
		Category:   models.CategoryImage,
		Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".svg", ".tiff"},
		Tool:       models.ToolImage,
		Formats:    map[string]string{"PNG": "png", "JPG": "jpg", "GIF": "gif", "WebP": "webp", "BMP": "bmp"},
	},
	{
		Category:   models.CategoryDocument,
		Extensions: []string{".md", ".html", ".txt", ".tex", ".rst"},
		Tool:       models.ToolPandoc,
		Formats:    map[string]string{"PDF": "pdf", "HTML": "html", "DOCX": "docx"},
	},
	{
		Category:   models.CategoryOffice,
		Extensions: []string{".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx"},
		Tool:       models.ToolLibreOffice,
		Formats:    map[string]string{"PDF": "pdf", "DOCX": "docx"},
	},
	{
		Category:   models.CategoryEbook,
		Extensions: []string{".epub", ".mobi", ".azw3", ".pdf"},
		Tool:       models.ToolCalibre,
		Formats:    map[string]string{"EPUB": "epub", "MOBI": "mobi", "PDF": "pdf"},
	},
}

// unknownSpec is returned for unrecognized extensions. Classification
// never fails; downstream logic treats unknown as "no conversion
// possible", not as a fault.
var unknownSpec = CategorySpec{
	Category: models.CategoryUnknown,
	Tool:     models.ToolNone,
	Formats:  map[string]string{},
}

// Classify resolves a path to its category spec by case-insensitive
// file extension. First matching category wins.
func Classify(path string) CategorySpec {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return unknownSpec
	}
	for _, spec := range categoryTable {
		for _, candidate := range spec.Extensions {
			if candidate == ext {
				return spec
			}
		}
	}
	return unknownSpec
}

// Categories returns all specs in table order.
func Categories() []CategorySpec {
	out := make([]CategorySpec, len(categoryTable))
	copy(out, categoryTable)
	return out
}
