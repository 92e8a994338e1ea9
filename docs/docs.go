// Package docs registers the swagger document served in development.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/upload-image": {
            "post": {
                "description": "Upload one image with bilingual metadata",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Images"],
                "summary": "Upload an image",
                "parameters": [
                    {"type": "file", "description": "Image file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "UploadMetadata as JSON", "name": "metadata", "in": "formData"},
                    {"type": "string", "description": "Title as 'fr | en'", "name": "title", "in": "formData"},
                    {"type": "string", "description": "Description as 'fr | en'", "name": "description", "in": "formData"},
                    {"type": "string", "description": "Tags as 'a, b | c, d'", "name": "tags", "in": "formData"},
                    {"type": "string", "description": "Custom data as 'fr | en'", "name": "customData", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Upload successful", "schema": {"$ref": "#/definitions/dto.UploadImageResponse"}},
                    "400": {"description": "FILE_MISSING, METADATA_MISSING or INVALID_METADATA", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "405": {"description": "METHOD_NOT_ALLOWED", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "413": {"description": "PAYLOAD_TOO_LARGE", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "415": {"description": "UNSUPPORTED_MEDIA_TYPE", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "FORM_PARSE_ERROR or UPLOAD_ERROR", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/images": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Images"],
                "summary": "List gallery images",
                "responses": {
                    "200": {"description": "Gallery retrieved", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/v1/images/export": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["Images"],
                "summary": "Export gallery",
                "responses": {
                    "200": {"description": "Excel file", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "dto.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/dto.ErrorBody"}
            }
        },
        "dto.UploadedImage": {
            "type": "object",
            "properties": {
                "format": {"type": "string"},
                "height": {"type": "integer"},
                "publicId": {"type": "string"},
                "secureUrl": {"type": "string"},
                "width": {"type": "integer"}
            }
        },
        "dto.UploadImageResponse": {
            "type": "object",
            "properties": {
                "image": {"$ref": "#/definitions/dto.UploadedImage"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Portfolio API",
	Description:      "Bilingual photography portfolio upload API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
