// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/amirphl/portfolio/app/handlers"
	"github.com/amirphl/portfolio/app/middleware"
	businessflow "github.com/amirphl/portfolio/business_flow"
	"github.com/amirphl/portfolio/config"
	_ "github.com/amirphl/portfolio/docs"
	"github.com/amirphl/portfolio/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// Upload endpoint paths. The unversioned path is kept for existing clients.
const (
	UploadPath       = "/api/v1/upload-image"
	LegacyUploadPath = "/api/upload-image"
	healthPath       = "/api/v1/health"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	cfg            *config.ProductionConfig
	uploadHandler  handlers.UploadHandlerInterface
	galleryHandler handlers.GalleryHandlerInterface
	mediaHandler   *handlers.MediaHandler
}

// NewFiberRouter creates a new Fiber router. mediaHandler may be nil when
// images are not served by this process.
func NewFiberRouter(
	cfg *config.ProductionConfig,
	uploadHandler handlers.UploadHandlerInterface,
	galleryHandler handlers.GalleryHandlerInterface,
	mediaHandler *handlers.MediaHandler,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Portfolio API",
		ServerHeader: "Portfolio",
		ErrorHandler: newErrorHandler(cfg.Upload.MaxFileSize),
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		cfg:            cfg,
		uploadHandler:  uploadHandler,
		galleryHandler: galleryHandler,
		mediaHandler:   mediaHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	if r.cfg.Deployment.IsDevelopment() {
		api.Get("/docs", r.getAPIDocumentation)
		api.Get("/swagger.json", r.serveSwaggerJSON)
		r.app.Get("/swagger", r.serveSwaggerUI)
		log.Println("API documentation enabled for development")
	}

	api.Use(limiter.New(limiter.Config{
		Max:          r.cfg.Security.GlobalRateLimit,
		Expiration:   r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string { return c.IP() },
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == healthPath
		},
	}))

	// Uploads are expensive; non-POST methods still reach the handler so it
	// can answer 405 with the JSON body.
	uploadLimiter := limiter.New(limiter.Config{
		Max:          r.cfg.Security.UploadRateLimit,
		Expiration:   r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string { return "upload:" + c.IP() },
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Method() != fiber.MethodPost
		},
	})
	r.app.All(UploadPath, uploadLimiter, r.uploadHandler.UploadImage)
	r.app.All(LegacyUploadPath, uploadLimiter, r.uploadHandler.UploadImage)

	images := api.Group("/images")
	images.Get("/", r.galleryHandler.ListImages)
	images.Get("/export", r.galleryHandler.ExportImages)

	if r.mediaHandler != nil {
		r.app.Get("/media/*", r.mediaHandler.Serve)
	}

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: generateRequestID,
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        r.cfg.Security.XContentTypeOptions,
		XFrameOptions:             r.cfg.Security.XFrameOptions,
		HSTSMaxAge:                31536000,
		ContentSecurityPolicy:     r.cfg.Security.CSPPolicy,
		ReferrerPolicy:            r.cfg.Security.ReferrerPolicy,
		CrossOriginResourcePolicy: "cross-origin",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(corsConfig(r.cfg.Security)))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compressionLevel(r.cfg.Server.CompressionLevel),
			Next: func(c fiber.Ctx) bool {
				// multipart bodies and image responses are already compressed
				return strings.HasPrefix(c.Path(), "/media/") ||
					strings.Contains(c.Get(fiber.HeaderContentType), "multipart/")
			},
		}))
	}

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == healthPath || c.Path() == r.cfg.Metrics.Path
		},
	}))

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				requestid.FromContext(c),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))

	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}
}

func corsConfig(sec config.SecurityConfig) cors.Config {
	// fiber refuses credentials together with a wildcard origin
	credentials := sec.AllowCredentials && !slices.Contains(sec.AllowedOrigins, "*")
	return cors.Config{
		AllowOrigins:     sec.AllowedOrigins,
		AllowMethods:     sec.AllowedMethods,
		AllowHeaders:     sec.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: credentials,
		MaxAge:           sec.CORSMaxAge,
	}
}

func compressionLevel(level int) compress.Level {
	switch {
	case level <= 0:
		return compress.LevelDefault
	case level <= 3:
		return compress.LevelBestSpeed
	case level >= 8:
		return compress.LevelBestCompression
	default:
		return compress.LevelDefault
	}
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":      "ok",
			"timestamp":   utils.UTCNowUnix(),
			"version":     r.cfg.Deployment.Version,
			"service":     "portfolio-api",
			"asset_store": r.cfg.AssetStore.Provider,
		},
	})
}

// API documentation endpoint
func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":       "Portfolio API Documentation",
			"version":     r.cfg.Deployment.Version,
			"description": "Bilingual photography portfolio upload API",
			"endpoints":   GetRouteDocumentation(),
		},
	})
}

// Serve Swagger UI HTML page
func (r *FiberRouter) serveSwaggerUI(c fiber.Ctx) error {
	htmlContent := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Portfolio API - Swagger UI</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/v1/swagger.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(htmlContent)
}

// Serve the swagger document registered by the docs package
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(doc)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := requestid.FromContext(c)

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// newErrorHandler builds the global error handler. A body rejected by the
// server's limit never reaches the upload handler, so it is answered here
// with the upload error shape.
func newErrorHandler(maxFileSize int64) fiber.ErrorHandler {
	tooLarge := businessflow.PayloadTooLargeMessage(maxFileSize)

	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if code == fiber.StatusRequestEntityTooLarge {
			middleware.RecordUpload(businessflow.CodePayloadTooLarge, 0)
			return handlers.UploadErrorResponse(c, businessflow.CodePayloadTooLarge, tooLarge)
		}

		log.Printf("Error %d: %v", code, err)

		return c.Status(code).JSON(dto.APIResponse{
			Success: false,
			Message: "An internal server error occurred",
			Error: dto.ErrorDetail{
				Code: "INTERNAL_ERROR",
				Details: fiber.Map{
					"timestamp":  utils.UTCNowUnix(),
					"request_id": requestid.FromContext(c),
				},
			},
		})
	}
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{
			"method":      "POST",
			"path":        UploadPath,
			"description": "Upload one image with bilingual metadata (multipart/form-data)",
			"parameters": map[string]any{
				"file":        "file (required) - jpeg, png, gif, webp or avif, at most 5 MB",
				"metadata":    "string (optional) - UploadMetadata JSON",
				"title":       "string (optional) - 'fr | en'",
				"description": "string (optional) - 'fr | en'",
				"tags":        "string (optional) - 'a, b | c, d'",
				"customData":  "string (optional) - 'fr | en'",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/images",
			"description": "List the newest images (max 30)",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/images/export",
			"description": "Download the gallery listing as xlsx",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        healthPath,
			"description": "Health check endpoint",
			"parameters":  map[string]any{},
		},
	}
}
