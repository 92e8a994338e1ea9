package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/amirphl/portfolio/app/handlers"
	"github.com/amirphl/portfolio/app/services"
	businessflow "github.com/amirphl/portfolio/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 2))))
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func validInput(path string) UploadInput {
	return UploadInput{
		FilePath:       path,
		TitleRaw:       "Titre | Title",
		DescriptionRaw: "Desc | Desc",
		TagsRaw:        "chat, nuit | cat",
		CustomRaw:      "",
	}
}

func TestBuildMetadata(t *testing.T) {
	m, err := BuildMetadata(validInput("x"))
	require.NoError(t, err)

	assert.Equal(t, dto.LocalizedText{FR: "Titre", EN: "Title"}, m.Title)
	assert.Equal(t, []string{"chat", "nuit"}, m.Tags.FR)
	assert.Equal(t, []string{"cat"}, m.Tags.EN)
	require.NotNil(t, m.CustomData)
	assert.Equal(t, dto.LocalizedText{}, *m.CustomData)
}

func TestBuildMetadata_MissingEnglishTitle(t *testing.T) {
	in := validInput("x")
	in.TitleRaw = "Titre seulement"

	_, err := BuildMetadata(in)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Title (EN) required", vErr.Error())
	assert.Equal(t, "title.en", vErr.Issues[0].Path)
}

func TestUpload_Success(t *testing.T) {
	path := writePNG(t)

	var gotMeta dto.UploadMetadata
	var gotType, gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/upload-image", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		require.NoError(t, json.Unmarshal([]byte(r.FormValue("metadata")), &gotMeta))
		fh := r.MultipartForm.File["file"][0]
		gotType = fh.Header.Get("Content-Type")
		gotName = fh.Filename

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"image":{"secureUrl":"https://cdn/x.png","publicId":"portfolio/x","width":3,"height":2,"format":"png"}}`)
	}))
	defer srv.Close()

	img, err := NewUploader(srv.URL+"/", 0).Upload(context.Background(), validInput(path))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", img.SecureURL)
	assert.Equal(t, "portfolio/x", img.PublicID)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "photo.png", gotName)
	assert.Equal(t, "Titre", gotMeta.Title.FR)
	assert.Equal(t, []string{"cat"}, gotMeta.Tags.EN)
}

func TestUpload_LocalRejectionSendsNothing(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()
	u := NewUploader(srv.URL, 0)

	_, err := u.Upload(context.Background(), UploadInput{TitleRaw: "a | b"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Veuillez sélectionner une image.", vErr.Msg)

	in := validInput(writePNG(t))
	in.TagsRaw = "chat, Chat"
	_, err = u.Upload(context.Background(), in)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Tags FR en doublon", vErr.Msg)

	assert.Zero(t, calls)
}

func TestUpload_ServerError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{name: "error body", status: http.StatusUnsupportedMediaType, body: `{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Type de fichier non supporté"}}`, code: "UNSUPPORTED_MEDIA_TYPE", message: "Type de fichier non supporté"},
		{name: "unexpected body", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, message: "Erreur lors de l'upload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewUploader(srv.URL, 0).Upload(context.Background(), validInput(writePNG(t)))

			var sErr *ServerError
			require.ErrorAs(t, err, &sErr)
			assert.Equal(t, tt.status, sErr.Status)
			assert.Equal(t, tt.code, sErr.Code)
			assert.Equal(t, tt.message, sErr.Message)
			assert.False(t, errors.Is(err, ErrConnection))
		})
	}
}

func TestUpload_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewUploader(url, 0).Upload(context.Background(), validInput(writePNG(t)))

	require.ErrorIs(t, err, ErrConnection)
}

func TestUpload_NonJSONSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	_, err := NewUploader(srv.URL, 0).Upload(context.Background(), validInput(writePNG(t)))

	require.ErrorIs(t, err, ErrInvalidResponse)
	assert.False(t, errors.Is(err, ErrConnection))
}

// fieldsServer runs the upload handler configured for the four-field shape.
func fieldsServer(t *testing.T, store *services.MockAssetStore) string {
	t.Helper()
	validator := businessflow.NewUploadValidator(businessflow.UploadPolicy{MetadataFormat: businessflow.MetadataFormatFields})
	flow := businessflow.NewUploadFlow(validator, store, nil, t.TempDir())

	app := fiber.New()
	app.Post(uploadPath, handlers.NewUploadHandler(flow, 5*time.Second).UploadImage)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func TestUpload_FieldsShape(t *testing.T) {
	store := services.NewMockAssetStore()
	baseURL := fieldsServer(t, store)

	in := validInput(writePNG(t))
	in.DescriptionRaw = "Plage | Beach | sand"
	in.CustomRaw = "Note | "

	img, err := NewUploader(baseURL, 0).WithMetadataShape(MetadataFields).Upload(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "mock/1", img.PublicID)

	uploads := store.GetUploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, []string{"fr_chat", "fr_nuit", "en_cat"}, uploads[0].Tags)
	assert.Equal(t, map[string]string{
		"caption_fr": "Titre",
		"caption_en": "Title",
		"alt_fr":     "Plage",
		"alt_en":     "Beach | sand",
		"custom_fr":  "Note",
		"custom_en":  "",
	}, uploads[0].Context)
}

func TestUpload_JSONShapeRejectedByFieldsServer(t *testing.T) {
	store := services.NewMockAssetStore()
	baseURL := fieldsServer(t, store)

	_, err := NewUploader(baseURL, 0).Upload(context.Background(), validInput(writePNG(t)))

	var sErr *ServerError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, http.StatusBadRequest, sErr.Status)
	assert.Equal(t, businessflow.CodeMetadataMissing, sErr.Code)
	assert.Empty(t, store.GetUploads())
}

func TestMetadataParts(t *testing.T) {
	m, err := BuildMetadata(validInput("x"))
	require.NoError(t, err)

	fields, err := metadataParts(m, MetadataFields)
	require.NoError(t, err)
	assert.Equal(t, []formField{
		{name: "title", value: "Titre | Title"},
		{name: "description", value: "Desc | Desc"},
		{name: "tags", value: "chat, nuit | cat"},
		{name: "customData", value: " | "},
	}, fields)

	fields, err = metadataParts(m, MetadataJSON)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "metadata", fields[0].name)

	u := NewUploader("http://x", 0).WithMetadataShape("xml")
	assert.Equal(t, MetadataJSON, u.shape)
}
