package utils

import (
	"time"
)

// Upload policy defaults
const (
	// MaxUploadSize is the largest accepted image (5 MiB)
	MaxUploadSize = int64(5 * 1024 * 1024)

	// UploadTimeout bounds a whole upload request including the asset store call
	UploadTimeout = 60 * time.Second
)

// DefaultAllowedImageTypes is the declared MIME allow-list for uploads.
var DefaultAllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/avif"}

// Gallery defaults
const (
	// GalleryMaxResults is how many images the gallery lists
	GalleryMaxResults = 30
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
