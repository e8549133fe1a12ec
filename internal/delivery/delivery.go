// Package delivery publishes converted outputs to a configured
// destination after conversion. The local backend is the default; the
// azure-blob backend uploads through the Azure SDK.
package delivery

import (
	"context"
	"fmt"

	"github.com/fileforge/fileforge/internal/config"
)

// Publisher defines the interface for output delivery backends
type Publisher interface {
	// Publish copies a finished local file to the backend under
	// destName.
	Publish(ctx context.Context, localPath string, destName string) error

	// URL returns an accessible location for a published file (if
	// supported).
	URL(destName string) (string, error)

	// Type returns the backend type name
	Type() string
}

// New creates a delivery backend based on configuration. A nil
// Publisher (with nil error) means delivery is disabled.
func New(cfg config.DeliveryConfig) (Publisher, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil

	case "local":
		if cfg.Local.Path == "" {
			return nil, fmt.Errorf("local delivery requires a path")
		}
		return NewLocalPublisher(cfg.Local.Path), nil

	case "azure-blob":
		return NewAzurePublisher(cfg.AzureBlob)

	default:
		return nil, fmt.Errorf("unsupported delivery type: %s", cfg.Type)
	}
}
