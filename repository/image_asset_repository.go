package repository

import (
	"context"

	"github.com/amirphl/portfolio/models"
	"gorm.io/gorm"
)

// ImageAssetRepositoryImpl implements ImageAssetRepository interface.
type ImageAssetRepositoryImpl struct {
	*BaseRepository[models.ImageAsset, models.ImageAssetFilter]
}

// NewImageAssetRepository creates a new image asset repository.
func NewImageAssetRepository(db *gorm.DB) ImageAssetRepository {
	return &ImageAssetRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ImageAsset, models.ImageAssetFilter](db),
	}
}

// ByPublicID retrieves an image asset by its public id.
func (r *ImageAssetRepositoryImpl) ByPublicID(ctx context.Context, publicID string) (*models.ImageAsset, error) {
	rows, err := r.ByFilter(ctx, models.ImageAssetFilter{PublicID: &publicID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Latest returns the most recently stored images.
func (r *ImageAssetRepositoryImpl) Latest(ctx context.Context, limit int) ([]*models.ImageAsset, error) {
	return r.ByFilter(ctx, models.ImageAssetFilter{}, "created_at DESC, id DESC", limit, 0)
}

// applyFilter applies filter criteria to a GORM query.
func (r *ImageAssetRepositoryImpl) applyFilter(query *gorm.DB, filter models.ImageAssetFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.PublicID != nil {
		query = query.Where("public_id = ?", *filter.PublicID)
	}
	if filter.Format != nil {
		query = query.Where("format = ?", *filter.Format)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves image assets based on filter criteria.
func (r *ImageAssetRepositoryImpl) ByFilter(ctx context.Context, filter models.ImageAssetFilter, orderBy string, limit, offset int) ([]*models.ImageAsset, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ImageAsset{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ImageAsset
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of image assets matching filter.
func (r *ImageAssetRepositoryImpl) Count(ctx context.Context, filter models.ImageAssetFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ImageAsset{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
