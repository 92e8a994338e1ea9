// Package client is the producing side of the upload endpoint: it turns the
// "fr | en" inputs an editor types into a validated metadata object and posts
// it with the image.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/amirphl/portfolio/utils"
	"github.com/amirphl/portfolio/validation"
	"github.com/gabriel-vasile/mimetype"
)

const (
	uploadPath        = "/api/v1/upload-image"
	msgSelectImage    = "Veuillez sélectionner une image."
	msgConnection     = "Erreur de connexion"
	msgUploadFallback = "Erreur lors de l'upload"
)

// ErrConnection reports that the server could not be reached.
var ErrConnection = errors.New(msgConnection)

// ErrInvalidResponse reports a successful status whose body is not an upload
// response.
var ErrInvalidResponse = errors.New("invalid upload response")

// MetadataShape selects how metadata travels next to the file.
type MetadataShape string

const (
	// MetadataJSON sends a single "metadata" part holding the JSON object.
	MetadataJSON MetadataShape = "json"
	// MetadataFields sends "title", "description", "tags" and "customData"
	// parts, each encoded as "fr | en".
	MetadataFields MetadataShape = "fields"
)

// ValidationError is a local rejection; nothing was sent.
type ValidationError struct {
	Issues []validation.Issue
	Msg    string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ServerError is a non-2xx answer from the endpoint.
type ServerError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// UploadInput is what an editor fills in.
type UploadInput struct {
	FilePath       string
	TitleRaw       string // "Titre | Title"
	DescriptionRaw string
	TagsRaw        string // "tag1, tag2 | tagA, tagB"
	CustomRaw      string
}

// Uploader posts images to a portfolio server.
type Uploader struct {
	baseURL string
	client  *http.Client
	shape   MetadataShape
}

// NewUploader creates an uploader for the server at baseURL.
func NewUploader(baseURL string, timeout time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = utils.UploadTimeout
	}
	return NewUploaderWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewUploaderWithClient creates an uploader that sends through client.
func NewUploaderWithClient(baseURL string, client *http.Client) *Uploader {
	return &Uploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		shape:   MetadataJSON,
	}
}

// WithMetadataShape sets the wire shape used for metadata. Unknown shapes
// keep JSON.
func (u *Uploader) WithMetadataShape(shape MetadataShape) *Uploader {
	switch shape {
	case MetadataJSON, MetadataFields:
		u.shape = shape
	}
	return u
}

// BuildMetadata decodes the raw inputs and validates the result.
func BuildMetadata(in UploadInput) (*dto.UploadMetadata, error) {
	custom := utils.SplitBilingual(in.CustomRaw)
	draft := dto.UploadMetadata{
		Title:       utils.SplitBilingual(in.TitleRaw),
		Description: utils.SplitBilingual(in.DescriptionRaw),
		Tags:        utils.SplitBilingualTags(in.TagsRaw),
		CustomData:  &custom,
	}

	res := validation.Validate(draft)
	if !res.Valid() {
		return nil, &ValidationError{Issues: res.Issues, Msg: res.FirstMessage()}
	}
	return res.Metadata, nil
}

// Upload validates in locally and posts it. The returned error is a
// *ValidationError, a *ServerError or wraps ErrConnection or
// ErrInvalidResponse.
func (u *Uploader) Upload(ctx context.Context, in UploadInput) (*dto.UploadedImage, error) {
	if in.FilePath == "" {
		return nil, &ValidationError{Msg: msgSelectImage}
	}

	metadata, err := BuildMetadata(in)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeUpload(in.FilePath, metadata, u.shape)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+uploadPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeServerError(resp.StatusCode, raw)
	}

	var out dto.UploadImageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &out.Image, nil
}

func decodeServerError(status int, raw []byte) error {
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Message == "" {
		return &ServerError{Status: status, Message: msgUploadFallback}
	}
	return &ServerError{Status: status, Code: body.Error.Code, Message: body.Error.Message}
}

func encodeUpload(filePath string, metadata *dto.UploadMetadata, shape MetadataShape) (*bytes.Buffer, string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	fields, err := metadataParts(metadata, shape)
	if err != nil {
		return nil, "", err
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filePath)))
	header.Set("Content-Type", utils.NormalizeMIME(mimetype.Detect(content).String()))
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}

	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return body, mw.FormDataContentType(), nil
}

type formField struct {
	name  string
	value string
}

// metadataParts renders metadata as the multipart fields of shape.
func metadataParts(metadata *dto.UploadMetadata, shape MetadataShape) ([]formField, error) {
	if shape == MetadataFields {
		custom := dto.LocalizedText{}
		if metadata.CustomData != nil {
			custom = *metadata.CustomData
		}
		return []formField{
			{name: "title", value: utils.JoinBilingual(metadata.Title)},
			{name: "description", value: utils.JoinBilingual(metadata.Description)},
			{name: "tags", value: utils.JoinBilingualTags(metadata.Tags)},
			{name: "customData", value: utils.JoinBilingual(custom)},
		}, nil
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return []formField{{name: "metadata", value: string(metaJSON)}}, nil
}
