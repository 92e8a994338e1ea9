package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/amirphl/portfolio/app/services"
	"github.com/google/uuid"
)

// StageFunc writes the uploaded file to path. The flow owns the file
// afterwards and removes it when the request ends.
type StageFunc func(path string) error

// GalleryCache is the cache of rendered gallery listings.
type GalleryCache interface {
	Get(ctx context.Context, max int) ([]dto.GalleryImageDTO, bool, error)
	Set(ctx context.Context, max int, images []dto.GalleryImageDTO) error
	Invalidate(ctx context.Context) error
}

// UploadFlow defines the image upload use case.
type UploadFlow interface {
	UploadImage(ctx context.Context, in *dto.IncomingUpload, stage StageFunc, metadata *ClientMetadata) (*dto.UploadImageResponse, error)
}

// UploadFlowImpl implements UploadFlow.
type UploadFlowImpl struct {
	validator *UploadValidator
	store     services.AssetStore
	cache     GalleryCache
	tempDir   string
}

// NewUploadFlow creates a new upload flow instance. cache may be nil.
func NewUploadFlow(validator *UploadValidator, store services.AssetStore, cache GalleryCache, tempDir string) UploadFlow {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &UploadFlowImpl{
		validator: validator,
		store:     store,
		cache:     cache,
		tempDir:   tempDir,
	}
}

// UploadImage validates the request, stages the file, hands it to the asset
// store and maps the result. The store is never called for an invalid request.
func (f *UploadFlowImpl) UploadImage(ctx context.Context, in *dto.IncomingUpload, stage StageFunc, metadata *ClientMetadata) (*dto.UploadImageResponse, error) {
	validated, err := f.validator.Validate(in)
	if err != nil {
		return nil, err
	}

	projection := Project(validated.Metadata)

	tempPath := f.tempPath(validated.File.Filename)
	defer removeStaged(tempPath)

	if stage == nil {
		return nil, NewBusinessError(CodeFormParseError, MsgFormParseError, ErrStagingFailed)
	}
	if err := stage(tempPath); err != nil {
		log.Printf("Upload staging failed (%s): %v", metadata, err)
		return nil, NewBusinessError(CodeFormParseError, MsgFormParseError, fmt.Errorf("%w: %v", ErrStagingFailed, err))
	}

	res, err := f.store.Upload(ctx, tempPath, projection.Tags, projection.Context)
	if err != nil {
		log.Printf("Asset store upload failed (%s): %v", metadata, err)
		return nil, NewBusinessError(CodeUploadError, MsgUploadError, fmt.Errorf("%w: %v", ErrAssetStoreUnavailable, err))
	}

	if f.cache != nil {
		if err := f.cache.Invalidate(ctx); err != nil {
			log.Printf("Gallery cache invalidation failed: %v", err)
		}
	}

	log.Printf("Image uploaded public_id=%s tags=%d (%s)", res.PublicID, len(projection.Tags), metadata)

	return &dto.UploadImageResponse{
		Image: dto.UploadedImage{
			SecureURL: res.SecureURL,
			PublicID:  res.PublicID,
			Width:     res.Width,
			Height:    res.Height,
			Format:    res.Format,
		},
	}, nil
}

func (f *UploadFlowImpl) tempPath(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return filepath.Join(f.tempDir, "upload-"+uuid.New().String()+ext)
}

// removeStaged deletes a staged file. Missing files are not an error.
func removeStaged(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to remove staged upload %s: %v", path, err)
	}
}
