package businessflow

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/amirphl/portfolio/utils"
	"github.com/amirphl/portfolio/validation"
)

// Metadata wire shapes accepted by the upload endpoint.
const (
	MetadataFormatJSON   = "json"
	MetadataFormatFields = "fields"
	MetadataFormatAuto   = "auto"
)

// unknownMIMEType is what multipart encoders send when they cannot tell.
const unknownMIMEType = "application/octet-stream"

// UploadPolicy is the deployment's upload configuration.
type UploadPolicy struct {
	AllowedMIMETypes []string
	MaxFileSize      int64
	MetadataFormat   string
}

// DefaultUploadPolicy returns the 5 MiB image policy with auto shape detection.
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		AllowedMIMETypes: slices.Clone(utils.DefaultAllowedImageTypes),
		MaxFileSize:      utils.MaxUploadSize,
		MetadataFormat:   MetadataFormatAuto,
	}
}

// ValidatedUpload is an upload that passed every check.
type ValidatedUpload struct {
	File     *dto.UploadFile
	Metadata dto.UploadMetadata
}

// UploadValidator checks an incoming upload against the policy and the
// metadata schema. It holds no mutable state.
type UploadValidator struct {
	allowed map[string]struct{}
	maxSize int64
	format  string
}

// NewUploadValidator creates a validator for policy. Zero values fall back to
// the defaults.
func NewUploadValidator(policy UploadPolicy) *UploadValidator {
	defaults := DefaultUploadPolicy()
	if len(policy.AllowedMIMETypes) == 0 {
		policy.AllowedMIMETypes = defaults.AllowedMIMETypes
	}
	if policy.MaxFileSize <= 0 {
		policy.MaxFileSize = defaults.MaxFileSize
	}
	switch policy.MetadataFormat {
	case MetadataFormatJSON, MetadataFormatFields, MetadataFormatAuto:
	default:
		policy.MetadataFormat = defaults.MetadataFormat
	}

	allowed := make(map[string]struct{}, len(policy.AllowedMIMETypes))
	for _, t := range policy.AllowedMIMETypes {
		if n := utils.NormalizeMIME(t); n != "" {
			allowed[n] = struct{}{}
		}
	}

	return &UploadValidator{
		allowed: allowed,
		maxSize: policy.MaxFileSize,
		format:  policy.MetadataFormat,
	}
}

// Validate runs the checks in order and stops at the first failure:
// file presence, media type, size, metadata presence, metadata content.
func (v *UploadValidator) Validate(in *dto.IncomingUpload) (*ValidatedUpload, error) {
	if in == nil || in.File == nil {
		return nil, NewBusinessError(CodeFileMissing, MsgFileMissing, nil)
	}

	if !v.acceptsType(in.File.ContentType) {
		return nil, NewBusinessError(CodeUnsupportedMediaType, MsgUnsupportedMediaType,
			fmt.Errorf("declared type %q", in.File.ContentType))
	}

	if in.File.Size > v.maxSize {
		return nil, NewBusinessError(CodePayloadTooLarge, PayloadTooLargeMessage(v.maxSize),
			fmt.Errorf("size %d exceeds %d", in.File.Size, v.maxSize))
	}

	metadata, err := v.decodeMetadata(in)
	if err != nil {
		return nil, err
	}

	res := validation.Validate(metadata)
	if !res.Valid() {
		return nil, NewBusinessError(CodeInvalidMetadata, res.FirstMessage(), nil)
	}

	return &ValidatedUpload{File: in.File, Metadata: *res.Metadata}, nil
}

func (v *UploadValidator) acceptsType(declared string) bool {
	t := utils.NormalizeMIME(declared)
	if t == "" || t == unknownMIMEType {
		return true
	}
	_, ok := v.allowed[t]
	return ok
}

func (v *UploadValidator) decodeMetadata(in *dto.IncomingUpload) (dto.UploadMetadata, error) {
	hasJSON := in.Metadata != ""
	hasFields := in.Fields.Present()

	switch v.format {
	case MetadataFormatJSON:
		hasFields = false
	case MetadataFormatFields:
		hasJSON = false
	}

	switch {
	case hasJSON && hasFields:
		return dto.UploadMetadata{}, NewBusinessError(CodeInvalidMetadata, MsgInvalidMetadata, ErrMixedMetadataShapes)
	case hasJSON:
		return DecodeMetadataJSON(in.Metadata)
	case hasFields:
		return DecodeMetadataFields(in.Fields), nil
	default:
		return dto.UploadMetadata{}, NewBusinessError(CodeMetadataMissing, MsgMetadataMissing, nil)
	}
}

// DecodeMetadataJSON parses the single-blob wire shape. Unknown fields are
// ignored; the result is not yet validated.
func DecodeMetadataJSON(raw string) (dto.UploadMetadata, error) {
	var m dto.UploadMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return dto.UploadMetadata{}, NewBusinessError(CodeInvalidMetadata, MsgInvalidMetadata, err)
	}
	return m, nil
}

// DecodeMetadataFields builds metadata from the four "fr | en" encoded parts.
// Absent parts decode as empty values.
func DecodeMetadataFields(f dto.MetadataFields) dto.UploadMetadata {
	custom := utils.SplitBilingual(deref(f.CustomData))
	return dto.UploadMetadata{
		Title:       utils.SplitBilingual(deref(f.Title)),
		Description: utils.SplitBilingual(deref(f.Description)),
		Tags:        utils.SplitBilingualTags(deref(f.Tags)),
		CustomData:  &custom,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PayloadTooLargeMessage is the user-facing message for a file above max bytes.
func PayloadTooLargeMessage(max int64) string {
	return "Fichier > " + formatMegabytes(max) + " Mo"
}

func formatMegabytes(size int64) string {
	const mib = 1024 * 1024
	if size%mib == 0 {
		return fmt.Sprintf("%d", size/mib)
	}
	return fmt.Sprintf("%.1f", float64(size)/mib)
}
