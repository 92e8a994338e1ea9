// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/amirphl/portfolio/app/dto"
	businessflow "github.com/amirphl/portfolio/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// statusByCode maps business error codes to HTTP statuses.
var statusByCode = map[string]int{
	businessflow.CodeMethodNotAllowed:     fiber.StatusMethodNotAllowed,
	businessflow.CodeFormParseError:       fiber.StatusInternalServerError,
	businessflow.CodeFileMissing:          fiber.StatusBadRequest,
	businessflow.CodeUnsupportedMediaType: fiber.StatusUnsupportedMediaType,
	businessflow.CodePayloadTooLarge:      fiber.StatusRequestEntityTooLarge,
	businessflow.CodeMetadataMissing:      fiber.StatusBadRequest,
	businessflow.CodeInvalidMetadata:      fiber.StatusBadRequest,
	businessflow.CodeUploadError:          fiber.StatusInternalServerError,
}

// StatusForCode returns the HTTP status of a business error code.
func StatusForCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// UploadErrorResponse writes the {"error":{"code","message"}} body.
func UploadErrorResponse(c fiber.Ctx, code, message string) error {
	return c.Status(StatusForCode(code)).JSON(dto.ErrorResponse{
		Error: dto.ErrorBody{Code: code, Message: message},
	})
}

func errorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func successResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestid.FromContext(c))
	return metadata
}

// createRequestContext detaches the work from the connection so an upload in
// flight finishes even if the client goes away.
func createRequestContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
