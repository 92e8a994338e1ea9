// Package services provides the asset store integrations used by the upload and gallery flows
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/portfolio/config"
	"github.com/amirphl/portfolio/repository"
)

// AssetStore is the media host receiving uploaded binaries.
type AssetStore interface {
	// Upload stores the file at localPath with its tags and context side channel.
	Upload(ctx context.Context, localPath string, tags []string, assetContext map[string]string) (*AssetUploadResult, error)
	// List returns at most max stored images, newest first.
	List(ctx context.Context, max int) ([]AssetSummary, error)
}

// AssetUploadResult is what the store reports for a stored image.
type AssetUploadResult struct {
	SecureURL string
	PublicID  string
	Width     int
	Height    int
	Format    string
}

// AssetSummary is one image as listed by the store.
type AssetSummary struct {
	PublicID  string
	SecureURL string
	Format    string
	Width     int
	Height    int
	Tags      []string
	// Context is the caption, alt and custom side channel when the store keeps it.
	Context   map[string]string
	CreatedAt time.Time
}

// ErrStoreRejected is returned when the store answers with a failure status.
var ErrStoreRejected = errors.New("asset store rejected the request")

// NewAssetStore builds the store selected by cfg.Provider. repo is only used
// by the local provider and may be nil otherwise.
func NewAssetStore(ctx context.Context, cfg config.AssetStoreConfig, repo repository.ImageAssetRepository) (AssetStore, error) {
	switch cfg.Provider {
	case "cloudinary":
		return NewCloudinaryClient(cfg.Cloudinary, cfg.Folder)
	case "minio":
		return NewMinIOStore(ctx, cfg.MinIO, cfg.Folder)
	case "local":
		if repo == nil {
			return nil, fmt.Errorf("local asset store requires an image asset repository")
		}
		return NewLocalStore(cfg.Local, cfg.Folder, repo)
	case "mock":
		return NewMockAssetStore(), nil
	default:
		return nil, fmt.Errorf("unknown asset store provider %q", cfg.Provider)
	}
}
