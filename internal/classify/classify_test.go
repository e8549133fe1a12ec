package classify

import (
	"testing"

	"github.com/fileforge/fileforge/pkg/models"
)

func TestClassify_Extensions(t *testing.T) {
	tests := []struct {
		path     string
		category models.Category
		tool     models.Tool
	}{
		{"movie.mp4", models.CategoryVideo, models.ToolFFmpeg},
		{"clip.mkv", models.CategoryVideo, models.ToolFFmpeg},
		{"song.mp3", models.CategoryAudio, models.ToolFFmpeg},
		{"track.flac", models.CategoryAudio, models.ToolFFmpeg},
		{"photo.png", models.CategoryImage, models.ToolImage},
		{"photo.webp", models.CategoryImage, models.ToolImage},
		{"notes.md", models.CategoryDocument, models.ToolPandoc},
		{"report.html", models.CategoryDocument, models.ToolPandoc},
		{"sheet.xlsx", models.CategoryOffice, models.ToolLibreOffice},
		{"deck.pptx", models.CategoryOffice, models.ToolLibreOffice},
		{"novel.epub", models.CategoryEbook, models.ToolCalibre},
		{"scan.pdf", models.CategoryEbook, models.ToolCalibre},
		{"archive.zip", models.CategoryUnknown, models.ToolNone},
		{"noextension", models.CategoryUnknown, models.ToolNone},
	}

	for _, tt := range tests {
		spec := Classify(tt.path)
		if spec.Category != tt.category {
			t.Errorf("Classify(%q): expected category %s, got %s", tt.path, tt.category, spec.Category)
		}
		if spec.Tool != tt.tool {
			t.Errorf("Classify(%q): expected tool %s, got %s", tt.path, tt.tool, spec.Tool)
		}
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	for _, path := range []string{"MOVIE.MP4", "Photo.PNG", "Report.DocX"} {
		spec := Classify(path)
		if spec.Category == models.CategoryUnknown {
			t.Errorf("Classify(%q): expected a known category, got unknown", path)
		}
	}
}

func TestClassify_FullPath(t *testing.T) {
	spec := Classify("/some/deep/dir/video.avi")
	if spec.Category != models.CategoryVideo {
		t.Errorf("Expected video category for .avi path, got %s", spec.Category)
	}
}

// Every extension must belong to exactly one category so dispatch is
// deterministic.
func TestCategories_NoDuplicateExtensions(t *testing.T) {
	seen := make(map[string]models.Category)
	for _, spec := range Categories() {
		for _, ext := range spec.Extensions {
			if prev, ok := seen[ext]; ok {
				t.Errorf("Extension %q claimed by both %s and %s", ext, prev, spec.Category)
			}
			seen[ext] = spec.Category
		}
	}
}

func TestCategories_HaveFormats(t *testing.T) {
	for _, spec := range Categories() {
		if len(spec.Formats) == 0 {
			t.Errorf("Category %s has no output formats", spec.Category)
		}
		if len(spec.Extensions) == 0 {
			t.Errorf("Category %s has no extensions", spec.Category)
		}
		if spec.Tool == models.ToolNone {
			t.Errorf("Category %s has no backing tool", spec.Category)
		}
	}
}
