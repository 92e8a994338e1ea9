package services

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ImageInfo is what a store learns about a staged file by reading it.
type ImageInfo struct {
	MIMEType  string
	Extension string
	Format    string
	Width     int
	Height    int
	Size      int64
}

// ProbeImage sniffs the content type of the file at path and reads its
// dimensions. Formats without a registered decoder (avif) report zero
// dimensions instead of failing.
func ProbeImage(path string) (*ImageInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat staged file: %w", err)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect content type: %w", err)
	}

	info := &ImageInfo{
		MIMEType:  mt.String(),
		Extension: mt.Extension(),
		Format:    strings.TrimPrefix(mt.Extension(), "."),
		Size:      stat.Size(),
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged file: %w", err)
	}
	defer f.Close()

	if cfg, _, err := image.DecodeConfig(f); err == nil {
		info.Width = cfg.Width
		info.Height = cfg.Height
	}

	return info, nil
}
