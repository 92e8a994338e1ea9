package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/media/:name", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/media/:name", "204"))

	for _, name := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/media/"+name, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/media/:name", "204"))
	assert.Equal(t, float64(2), after-before)
}

func TestRecordUpload(t *testing.T) {
	okBefore := testutil.ToFloat64(uploadsTotal.WithLabelValues(UploadOutcomeOK))
	errBefore := testutil.ToFloat64(uploadsTotal.WithLabelValues("INVALID_METADATA"))

	RecordUpload(UploadOutcomeOK, 2048)
	RecordUpload("INVALID_METADATA", 0)
	RecordUpload("INVALID_METADATA", 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(uploadsTotal.WithLabelValues(UploadOutcomeOK))-okBefore)
	assert.Equal(t, float64(2), testutil.ToFloat64(uploadsTotal.WithLabelValues("INVALID_METADATA"))-errBefore)
}
