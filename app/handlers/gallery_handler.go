package handlers

import (
	"errors"
	"fmt"
	"time"

	businessflow "github.com/amirphl/portfolio/business_flow"
	"github.com/gofiber/fiber/v3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GalleryHandlerInterface defines the contract for gallery handlers.
type GalleryHandlerInterface interface {
	ListImages(c fiber.Ctx) error
	ExportImages(c fiber.Ctx) error
}

// GalleryHandler serves the public gallery listing.
type GalleryHandler struct {
	flow businessflow.GalleryFlow
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(flow businessflow.GalleryFlow) *GalleryHandler {
	return &GalleryHandler{flow: flow}
}

// ListImages lists the newest uploaded images.
// @Summary List gallery images
// @Description Returns at most 30 images, newest first. A store failure yields an empty list.
// @Tags Images
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.GalleryResponse} "Gallery retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/images [get]
func (h *GalleryHandler) ListImages(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(10*time.Second)
	defer cancel()

	result, err := h.flow.ListImages(ctx, clientMetadata(c))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list images", "GALLERY_LIST_FAILED", err.Error())
	}

	return successResponse(c, fiber.StatusOK, "Gallery retrieved", result)
}

// ExportImages downloads the gallery listing as an xlsx workbook.
// @Summary Export gallery
// @Tags Images
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "Excel file"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/images/export [get]
func (h *GalleryHandler) ExportImages(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(30*time.Second)
	defer cancel()

	filename, content, err := h.flow.ExportImages(ctx, clientMetadata(c))
	if err != nil {
		var businessErr *businessflow.BusinessError
		if errors.As(err, &businessErr) {
			return errorResponse(c, fiber.StatusInternalServerError, businessErr.Message, businessErr.Code, nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to export images", "GALLERY_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(content)
}

// MediaResolver maps a public media path to a file on disk.
type MediaResolver interface {
	ResolveMediaPath(rel string) (string, error)
}

// MediaHandler serves files written by the local asset store.
type MediaHandler struct {
	resolver MediaResolver
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(resolver MediaResolver) *MediaHandler {
	return &MediaHandler{resolver: resolver}
}

// Serve streams one stored image.
// @Summary Serve a stored image
// @Tags Images
// @Produce image/jpeg,image/png,image/gif,image/webp,image/avif
// @Param path path string true "Stored path"
// @Success 200 {file} file "Image"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Router /media/{path} [get]
func (h *MediaHandler) Serve(c fiber.Ctx) error {
	full, err := h.resolver.ResolveMediaPath(c.Params("*"))
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, "Media not found", "NOT_FOUND", nil)
	}
	if err := c.SendFile(full); err != nil {
		return errorResponse(c, fiber.StatusNotFound, "Media not found", "NOT_FOUND", nil)
	}
	return nil
}
