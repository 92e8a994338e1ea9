package dto

// LocalizedText carries the French and English variants of one text value.
type LocalizedText struct {
	FR string `json:"fr"`
	EN string `json:"en"`
}

// LocalizedTagSet carries one ordered tag list per language.
type LocalizedTagSet struct {
	FR []string `json:"fr"`
	EN []string `json:"en"`
}

// UploadMetadata is the canonical metadata object exchanged between the
// uploader and the server. CustomData is optional on the wire and always set
// once validated.
type UploadMetadata struct {
	Title       LocalizedText   `json:"title"`
	Description LocalizedText   `json:"description"`
	Tags        LocalizedTagSet `json:"tags"`
	CustomData  *LocalizedText  `json:"customData,omitempty"`
}

// MetadataFields is the four-part wire shape where every part is a
// "fr | en" encoded string. A nil pointer means the part was not sent.
type MetadataFields struct {
	Title       *string
	Description *string
	Tags        *string
	CustomData  *string
}

// Present reports whether at least one part was sent.
func (f MetadataFields) Present() bool {
	return f.Title != nil || f.Description != nil || f.Tags != nil || f.CustomData != nil
}

// UploadFile describes the file part of an upload as declared by the sender.
type UploadFile struct {
	Filename    string `json:"-"`
	ContentType string `json:"-"`
	Size        int64  `json:"-"`
}

// IncomingUpload is the request-scoped view of one upload request.
type IncomingUpload struct {
	File     *UploadFile    `json:"-"`
	Metadata string         `json:"-"`
	Fields   MetadataFields `json:"-"`
}

// UploadedImage mirrors what the asset store returned for a stored image.
type UploadedImage struct {
	SecureURL string `json:"secureUrl"`
	PublicID  string `json:"publicId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
}

// UploadImageResponse represents a successful image upload response.
type UploadImageResponse struct {
	Image UploadedImage `json:"image"`
}

// GalleryImageDTO is one entry of the public gallery.
type GalleryImageDTO struct {
	PublicID  string            `json:"public_id"`
	SecureURL string            `json:"secure_url"`
	Format    string            `json:"format,omitempty"`
	Width     int               `json:"width,omitempty"`
	Height    int               `json:"height,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
	CreatedAt string            `json:"created_at,omitempty"`
}

// GalleryResponse lists gallery images, newest first.
type GalleryResponse struct {
	Images []GalleryImageDTO `json:"images"`
	Count  int               `json:"count"`
}
