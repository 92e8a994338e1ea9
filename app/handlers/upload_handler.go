package handlers

import (
	"mime/multipart"
	"time"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/amirphl/portfolio/app/middleware"
	businessflow "github.com/amirphl/portfolio/business_flow"
	"github.com/amirphl/portfolio/utils"
	"github.com/gofiber/fiber/v3"
)

// Multipart part names.
const (
	partFile        = "file"
	partMetadata    = "metadata"
	partTitle       = "title"
	partDescription = "description"
	partTags        = "tags"
	partCustomData  = "customData"
)

// UploadHandlerInterface defines the contract for upload handlers.
type UploadHandlerInterface interface {
	UploadImage(c fiber.Ctx) error
}

// UploadHandler handles image upload requests.
type UploadHandler struct {
	flow    businessflow.UploadFlow
	timeout time.Duration
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(flow businessflow.UploadFlow, timeout time.Duration) *UploadHandler {
	if timeout <= 0 {
		timeout = utils.UploadTimeout
	}
	return &UploadHandler{flow: flow, timeout: timeout}
}

// UploadImage handles a portfolio image upload.
// @Summary Upload an image
// @Description Upload one image (jpeg/png/gif/webp/avif, <=5MB) with bilingual metadata. Metadata is sent either as a JSON "metadata" part or as the four "fr | en" encoded parts title, description, tags and customData.
// @Tags Images
// @Accept mpfd
// @Produce json
// @Param file formData file true "Image file"
// @Param metadata formData string false "UploadMetadata as JSON"
// @Param title formData string false "Title as 'fr | en'"
// @Param description formData string false "Description as 'fr | en'"
// @Param tags formData string false "Tags as 'a, b | c, d'"
// @Param customData formData string false "Custom data as 'fr | en'"
// @Success 200 {object} dto.UploadImageResponse "Upload successful"
// @Failure 400 {object} dto.ErrorResponse "FILE_MISSING, METADATA_MISSING or INVALID_METADATA"
// @Failure 405 {object} dto.ErrorResponse "METHOD_NOT_ALLOWED"
// @Failure 413 {object} dto.ErrorResponse "PAYLOAD_TOO_LARGE"
// @Failure 415 {object} dto.ErrorResponse "UNSUPPORTED_MEDIA_TYPE"
// @Failure 500 {object} dto.ErrorResponse "FORM_PARSE_ERROR or UPLOAD_ERROR"
// @Router /api/v1/upload-image [post]
func (h *UploadHandler) UploadImage(c fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		c.Set(fiber.HeaderAllow, fiber.MethodPost)
		return h.fail(c, businessflow.CodeMethodNotAllowed, businessflow.MsgMethodNotAllowed)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return h.fail(c, businessflow.CodeFormParseError, businessflow.MsgFormParseError)
	}

	in, fh := incomingUpload(form)

	var stage businessflow.StageFunc
	if fh != nil {
		stage = func(path string) error {
			return c.SaveFile(fh, path)
		}
	}

	ctx, cancel := createRequestContext(h.timeout)
	defer cancel()

	result, err := h.flow.UploadImage(ctx, in, stage, clientMetadata(c))
	if err != nil {
		return h.fail(c, businessflow.CodeOf(err), businessflow.MessageOf(err))
	}

	middleware.RecordUpload(middleware.UploadOutcomeOK, in.File.Size)
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *UploadHandler) fail(c fiber.Ctx, code, message string) error {
	middleware.RecordUpload(code, 0)
	return UploadErrorResponse(c, code, message)
}

// incomingUpload maps a parsed form to the request view used by the flow.
func incomingUpload(form *multipart.Form) (*dto.IncomingUpload, *multipart.FileHeader) {
	in := &dto.IncomingUpload{
		Metadata: firstValue(form, partMetadata),
		Fields: dto.MetadataFields{
			Title:       valuePtr(form, partTitle),
			Description: valuePtr(form, partDescription),
			Tags:        valuePtr(form, partTags),
			CustomData:  valuePtr(form, partCustomData),
		},
	}

	files := form.File[partFile]
	if len(files) == 0 || files[0] == nil {
		return in, nil
	}
	fh := files[0]
	in.File = &dto.UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
	}
	return in, fh
}

func firstValue(form *multipart.Form, name string) string {
	if v := form.Value[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func valuePtr(form *multipart.Form, name string) *string {
	if v := form.Value[name]; len(v) > 0 {
		return &v[0]
	}
	return nil
}
