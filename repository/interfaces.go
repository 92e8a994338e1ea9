// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/portfolio/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// ImageAssetRepository defines operations for locally stored images
type ImageAssetRepository interface {
	Repository[models.ImageAsset, models.ImageAssetFilter]
	ByPublicID(ctx context.Context, publicID string) (*models.ImageAsset, error)
	Latest(ctx context.Context, limit int) ([]*models.ImageAsset, error)
}
