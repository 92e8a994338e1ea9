package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/amirphl/portfolio/config"
	"github.com/amirphl/portfolio/models"
	"github.com/amirphl/portfolio/repository"
	"github.com/amirphl/portfolio/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrInvalidMediaPath is returned for media paths outside the media root.
var ErrInvalidMediaPath = errors.New("invalid media path")

// LocalStore keeps images on disk under a media root and records them in
// the image_assets table.
type LocalStore struct {
	root      string
	publicURL string
	folder    string
	repo      repository.ImageAssetRepository
}

// NewLocalStore creates the media root if needed.
func NewLocalStore(cfg config.LocalStoreConfig, folder string, repo repository.ImageAssetRepository) (*LocalStore, error) {
	root := filepath.Clean(cfg.MediaRoot)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &LocalStore{
		root:      root,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		folder:    strings.Trim(folder, "/"),
		repo:      repo,
	}, nil
}

// Upload copies the staged file into the media root and saves its row.
func (s *LocalStore) Upload(ctx context.Context, localPath string, tags []string, assetContext map[string]string) (*AssetUploadResult, error) {
	info, err := ProbeImage(localPath)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	rel := path.Join(utils.UTCNow().Format("2006-01-02"), id.String()+info.Extension)
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	if err := copyFile(localPath, full); err != nil {
		return nil, err
	}

	asset := models.ImageAsset{
		UUID:       id,
		PublicID:   s.publicID(id.String()),
		StoredPath: rel,
		SecureURL:  s.publicURL + "/" + rel,
		SizeBytes:  info.Size,
		MimeType:   info.MIMEType,
		Format:     info.Format,
		Width:      info.Width,
		Height:     info.Height,
		Tags:       pq.StringArray(tags),
		CaptionFR:  assetContext["caption_fr"],
		CaptionEN:  assetContext["caption_en"],
		AltFR:      assetContext["alt_fr"],
		AltEN:      assetContext["alt_en"],
		CustomFR:   assetContext["custom_fr"],
		CustomEN:   assetContext["custom_en"],
	}

	if err := s.repo.Save(ctx, &asset); err != nil {
		_ = os.Remove(full)
		return nil, fmt.Errorf("failed to save image asset: %w", err)
	}

	return &AssetUploadResult{
		SecureURL: asset.SecureURL,
		PublicID:  asset.PublicID,
		Width:     asset.Width,
		Height:    asset.Height,
		Format:    asset.Format,
	}, nil
}

// List returns the newest stored images.
func (s *LocalStore) List(ctx context.Context, max int) ([]AssetSummary, error) {
	assets, err := s.repo.Latest(ctx, max)
	if err != nil {
		return nil, err
	}

	out := make([]AssetSummary, 0, len(assets))
	for _, a := range assets {
		out = append(out, AssetSummary{
			PublicID:  a.PublicID,
			SecureURL: a.SecureURL,
			Format:    a.Format,
			Width:     a.Width,
			Height:    a.Height,
			Tags:      []string(a.Tags),
			Context: map[string]string{
				"caption_fr": a.CaptionFR,
				"caption_en": a.CaptionEN,
				"alt_fr":     a.AltFR,
				"alt_en":     a.AltEN,
				"custom_fr":  a.CustomFR,
				"custom_en":  a.CustomEN,
			},
			CreatedAt: a.CreatedAt,
		})
	}
	return out, nil
}

// ResolveMediaPath maps a path below /media to a file inside the media root.
func (s *LocalStore) ResolveMediaPath(rel string) (string, error) {
	if rel == "" || slices.Contains(strings.Split(filepath.ToSlash(rel), "/"), "..") {
		return "", ErrInvalidMediaPath
	}
	cleaned := path.Clean("/" + filepath.ToSlash(rel))
	if cleaned == "/" {
		return "", ErrInvalidMediaPath
	}
	full := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/")))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", ErrInvalidMediaPath
	}
	return full, nil
}

func (s *LocalStore) publicID(name string) string {
	if s.folder == "" {
		return name
	}
	return s.folder + "/" + name
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create media file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy media file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to close media file: %w", err)
	}
	return nil
}
