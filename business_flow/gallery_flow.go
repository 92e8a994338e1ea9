package businessflow

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/amirphl/portfolio/app/services"
	"github.com/amirphl/portfolio/utils"
	"github.com/xuri/excelize/v2"
)

const gallerySheetName = "Gallery"

// GalleryFlow defines the public gallery use cases.
type GalleryFlow interface {
	ListImages(ctx context.Context, metadata *ClientMetadata) (*dto.GalleryResponse, error)
	ExportImages(ctx context.Context, metadata *ClientMetadata) (string, []byte, error)
}

// GalleryFlowImpl implements GalleryFlow.
type GalleryFlowImpl struct {
	store      services.AssetStore
	cache      GalleryCache
	maxResults int
}

// NewGalleryFlow creates a new gallery flow instance. cache may be nil.
func NewGalleryFlow(store services.AssetStore, cache GalleryCache, maxResults int) GalleryFlow {
	if maxResults <= 0 {
		maxResults = utils.GalleryMaxResults
	}
	return &GalleryFlowImpl{
		store:      store,
		cache:      cache,
		maxResults: maxResults,
	}
}

// ListImages returns the newest images. A failing store yields an empty
// gallery rather than an error.
func (f *GalleryFlowImpl) ListImages(ctx context.Context, metadata *ClientMetadata) (*dto.GalleryResponse, error) {
	if f.cache != nil {
		images, ok, err := f.cache.Get(ctx, f.maxResults)
		if err != nil {
			log.Printf("Gallery cache read failed: %v", err)
		} else if ok {
			return &dto.GalleryResponse{Images: images, Count: len(images)}, nil
		}
	}

	assets, err := f.store.List(ctx, f.maxResults)
	if err != nil {
		log.Printf("Failed to list gallery images (%s): %v", metadata, err)
		return &dto.GalleryResponse{Images: []dto.GalleryImageDTO{}, Count: 0}, nil
	}

	images := make([]dto.GalleryImageDTO, 0, len(assets))
	for _, a := range assets {
		if len(images) == f.maxResults {
			break
		}
		images = append(images, dto.GalleryImageDTO{
			PublicID:  a.PublicID,
			SecureURL: a.SecureURL,
			Format:    a.Format,
			Width:     a.Width,
			Height:    a.Height,
			Tags:      a.Tags,
			Context:   a.Context,
			CreatedAt: utils.FormatRFC3339(a.CreatedAt),
		})
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, f.maxResults, images); err != nil {
			log.Printf("Gallery cache write failed: %v", err)
		}
	}

	return &dto.GalleryResponse{Images: images, Count: len(images)}, nil
}

// ExportImages renders the gallery listing as an xlsx workbook.
func (f *GalleryFlowImpl) ExportImages(ctx context.Context, metadata *ClientMetadata) (string, []byte, error) {
	gallery, err := f.ListImages(ctx, metadata)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), gallerySheetName); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	header := []string{"public_id", "secure_url", "format", "width", "height", "tags", "created_at"}
	_ = xl.SetSheetRow(gallerySheetName, "A1", &header)

	for ri, img := range gallery.Images {
		record := []string{
			img.PublicID,
			img.SecureURL,
			img.Format,
			strconv.Itoa(img.Width),
			strconv.Itoa(img.Height),
			strings.Join(img.Tags, ","),
			img.CreatedAt,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(gallerySheetName, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return "gallery.xlsx", buf.Bytes(), nil
}
