package utils

import "strings"

func ToPtr[T any](v T) *T {
	return &v
}

// NormalizeMIME lower-cases a MIME type and strips its parameters.
func NormalizeMIME(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}
