package businessflow

import (
	"errors"
	"fmt"
)

// Stable error codes surfaced to API clients.
const (
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeFormParseError       = "FORM_PARSE_ERROR"
	CodeFileMissing          = "FILE_MISSING"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeMetadataMissing      = "METADATA_MISSING"
	CodeInvalidMetadata      = "INVALID_METADATA"
	CodeUploadError          = "UPLOAD_ERROR"
)

// User-facing messages, in the site's primary language.
const (
	MsgMethodNotAllowed     = "Méthode non autorisée"
	MsgFormParseError       = "Erreur traitement du fichier"
	MsgFileMissing          = "Fichier manquant"
	MsgUnsupportedMediaType = "Type de fichier non supporté"
	MsgMetadataMissing      = "Champ 'metadata' manquant"
	MsgInvalidMetadata      = "Métadonnées invalides"
	MsgUploadError          = "Erreur lors de l'upload"
)

// Business flow error constants
var (
	ErrAssetStoreUnavailable = errors.New("asset store unavailable")
	ErrMixedMetadataShapes   = errors.New("metadata sent both as json and as fields")
	ErrStagingFailed         = errors.New("failed to stage uploaded file")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first BusinessError in err's chain, or
// UPLOAD_ERROR for anything else.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeUploadError
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	return MsgUploadError
}

func IsAssetStoreUnavailable(err error) bool {
	return errors.Is(err, ErrAssetStoreUnavailable)
}

func IsMixedMetadataShapes(err error) bool {
	return errors.Is(err, ErrMixedMetadataShapes)
}

func IsStagingFailed(err error) bool {
	return errors.Is(err, ErrStagingFailed)
}
