// Package models contains the gorm models persisted by the local asset store.
package models

import (
	"time"

	"github.com/amirphl/portfolio/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ImageAsset is an image kept by the local asset store. Tags and the context
// columns are the store's side channel, mirroring what a hosted store keeps.
type ImageAsset struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID       uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	PublicID   string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"public_id"`
	StoredPath string         `gorm:"type:text;not null" json:"stored_path"`
	SecureURL  string         `gorm:"type:text;not null" json:"secure_url"`
	SizeBytes  int64          `gorm:"type:bigint;not null" json:"size_bytes"`
	MimeType   string         `gorm:"type:varchar(100);not null" json:"mime_type"`
	Format     string         `gorm:"type:varchar(20);not null;index" json:"format"`
	Width      int            `gorm:"not null;default:0" json:"width"`
	Height     int            `gorm:"not null;default:0" json:"height"`
	Tags       pq.StringArray `gorm:"type:text[]" json:"tags"`
	CaptionFR  string         `gorm:"type:varchar(255)" json:"caption_fr"`
	CaptionEN  string         `gorm:"type:varchar(255)" json:"caption_en"`
	AltFR      string         `gorm:"type:text" json:"alt_fr"`
	AltEN      string         `gorm:"type:text" json:"alt_en"`
	CustomFR   string         `gorm:"type:text" json:"custom_fr"`
	CustomEN   string         `gorm:"type:text" json:"custom_en"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ImageAsset) TableName() string { return "image_assets" }

// BeforeCreate ensures UUID and timestamps are set.
func (m *ImageAsset) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.UTCNow()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// ImageAssetFilter represents filter criteria for image asset queries.
type ImageAssetFilter struct {
	ID            *uint      `json:"id,omitempty"`
	PublicID      *string    `json:"public_id,omitempty"`
	Format        *string    `json:"format,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
