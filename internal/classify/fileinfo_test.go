package classify

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/fileforge/fileforge/pkg/models"
)

func TestGetFileInfo_Image(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 24, 16))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	c := NewClassifier("", nil)
	info, err := c.GetFileInfo(context.Background(), path)
	if err != nil {
		t.Fatalf("GetFileInfo failed: %v", err)
	}

	if info.Category != models.CategoryImage {
		t.Errorf("Expected image category, got %s", info.Category)
	}
	if info.Width != 24 || info.Height != 16 {
		t.Errorf("Expected 24x16, got %dx%d", info.Width, info.Height)
	}
	if info.ColorMode != "NRGBA" {
		t.Errorf("Expected NRGBA color mode, got %s", info.ColorMode)
	}
	if info.SizeBytes <= 0 {
		t.Error("Expected positive file size")
	}
	if info.Size == "" {
		t.Error("Expected human-readable size")
	}
	if len(info.Formats) == 0 {
		t.Error("Expected legal output formats listed")
	}
}

func TestGetFileInfo_Missing(t *testing.T) {
	c := NewClassifier("", nil)
	if _, err := c.GetFileInfo(context.Background(), "/nonexistent/file.png"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestGetFileInfo_UnknownType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xyz")
	if err := os.WriteFile(path, []byte("opaque"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewClassifier("", nil)
	info, err := c.GetFileInfo(context.Background(), path)
	if err != nil {
		t.Fatalf("GetFileInfo failed: %v", err)
	}
	if info.Category != models.CategoryUnknown {
		t.Errorf("Expected unknown category, got %s", info.Category)
	}
	if info.Width != 0 || info.PageCount != 0 {
		t.Error("Expected no metadata probes for unknown type")
	}
}

func TestGetFileInfo_CorruptImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(path, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewClassifier("", nil)
	info, err := c.GetFileInfo(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected probe failure swallowed, got %v", err)
	}
	if info.Width != 0 || info.Height != 0 {
		t.Error("Expected no dimensions for undecodable image")
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := humanSize(tt.in); got != tt.want {
			t.Errorf("humanSize(%d): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"29.97", 29.97},
		{"0/0", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := parseFrameRate(tt.in); got != tt.want {
			t.Errorf("parseFrameRate(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
