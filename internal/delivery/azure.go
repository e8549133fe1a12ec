package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/fileforge/fileforge/internal/config"
)

// AzurePublisher uploads outputs to Azure Blob Storage.
type AzurePublisher struct {
	account        string
	container      string
	endpointSuffix string
	client         *azblob.Client
}

// NewAzurePublisher creates an Azure Blob delivery backend.
func NewAzurePublisher(cfg config.AzureBlobDelivery) (*AzurePublisher, error) {
	endpointSuffix := cfg.EndpointSuffix
	if endpointSuffix == "" {
		endpointSuffix = "core.windows.net"
	}

	connectionString := fmt.Sprintf(
		"DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;EndpointSuffix=%s",
		cfg.Account,
		cfg.AccountKey,
		endpointSuffix,
	)

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}

	return &AzurePublisher{
		account:        cfg.Account,
		container:      cfg.Container,
		endpointSuffix: endpointSuffix,
		client:         client,
	}, nil
}

// Publish uploads a local file to the configured container.
func (ap *AzurePublisher) Publish(ctx context.Context, localPath string, destName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer file.Close()

	if _, err := ap.client.UploadStream(ctx, ap.container, destName, file, nil); err != nil {
		return fmt.Errorf("failed to upload to Azure Blob: %w", err)
	}

	slog.Info("delivered file to Azure Blob Storage",
		"source", localPath,
		"container", ap.container,
		"blobName", destName,
	)
	return nil
}

// URL returns the public URL for an uploaded blob.
func (ap *AzurePublisher) URL(destName string) (string, error) {
	return fmt.Sprintf("https://%s.blob.%s/%s/%s",
		ap.account,
		ap.endpointSuffix,
		ap.container,
		destName,
	), nil
}

// Type returns the backend type
func (ap *AzurePublisher) Type() string {
	return "azure-blob"
}
