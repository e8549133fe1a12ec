package delivery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// LocalPublisher copies outputs into a destination directory on the
// local filesystem.
type LocalPublisher struct {
	basePath string
}

// NewLocalPublisher creates a local delivery backend rooted at
// basePath.
func NewLocalPublisher(basePath string) *LocalPublisher {
	return &LocalPublisher{basePath: basePath}
}

// Publish copies the file into the destination directory, creating it
// if absent.
func (lp *LocalPublisher) Publish(ctx context.Context, localPath string, destName string) error {
	if err := os.MkdirAll(lp.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create delivery directory: %w", err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(lp.basePath, destName)
	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to copy file: %w", err)
	}

	slog.Debug("delivered file locally", "source", localPath, "dest", destPath)
	return nil
}

// URL returns the destination path on disk.
func (lp *LocalPublisher) URL(destName string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(lp.basePath, destName))
	if err != nil {
		return "", err
	}
	return "file://" + abs, nil
}

// Type returns the backend type
func (lp *LocalPublisher) Type() string {
	return "local"
}
