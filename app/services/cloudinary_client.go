package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/amirphl/portfolio/config"
	"github.com/amirphl/portfolio/utils"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryClient stores images through the Cloudinary upload and admin APIs.
type CloudinaryClient struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryClient creates a client for cfg. Credentials are read once here.
func NewCloudinaryClient(cfg config.CloudinaryConfig, folder string) (*CloudinaryClient, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = utils.UploadTimeout
	}
	cld.Config.API.Timeout = int64(timeout.Seconds())
	if cfg.BaseURL != "" {
		cld.Config.API.UploadPrefix = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &CloudinaryClient{cld: cld, folder: folder}, nil
}

// Upload sends the staged image with its tags and context.
func (c *CloudinaryClient) Upload(ctx context.Context, localPath string, tags []string, assetContext map[string]string) (*AssetUploadResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged file: %w", err)
	}
	defer f.Close()

	res, err := c.cld.Upload.Upload(ctx, f, uploader.UploadParams{
		ResourceType: "image",
		Folder:       c.folder,
		Tags:         tags,
		Context:      assetContext,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send cloudinary upload request: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("%w: cloudinary upload: %s", ErrStoreRejected, res.Error.Message)
	}

	return &AssetUploadResult{
		SecureURL: res.SecureURL,
		PublicID:  res.PublicID,
		Width:     res.Width,
		Height:    res.Height,
		Format:    res.Format,
	}, nil
}

// List returns the latest uploaded images through the admin API.
func (c *CloudinaryClient) List(ctx context.Context, max int) ([]AssetSummary, error) {
	params := admin.AssetsParams{
		AssetType:    api.Image,
		DeliveryType: string(api.Upload),
		MaxResults:   max,
		Tags:         api.Bool(true),
	}
	if c.folder != "" {
		params.Prefix = c.folder + "/"
	}

	res, err := c.cld.Admin.Assets(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to send cloudinary resources request: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("%w: cloudinary resources: %s", ErrStoreRejected, res.Error.Message)
	}

	out := make([]AssetSummary, 0, len(res.Assets))
	for _, a := range res.Assets {
		out = append(out, AssetSummary{
			PublicID:  a.PublicID,
			SecureURL: a.SecureURL,
			Format:    a.Format,
			Width:     a.Width,
			Height:    a.Height,
			Tags:      a.Tags,
			CreatedAt: a.CreatedAt,
		})
	}
	if len(out) > max {
		out = out[:max]
	}
	return out, nil
}
