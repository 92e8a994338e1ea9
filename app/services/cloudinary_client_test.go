package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirphl/portfolio/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCloudinary(t *testing.T, handler http.HandlerFunc) *CloudinaryClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewCloudinaryClient(config.CloudinaryConfig{
		CloudName: "demo",
		APIKey:    "key",
		APISecret: "secret",
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
	}, "portfolio")
	require.NoError(t, err)
	return c
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestCloudinaryClient_Upload(t *testing.T) {
	var fields map[string][]string
	var fileBody []byte
	var path string

	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		path = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value

		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		fileBody, _ = io.ReadAll(f)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_id":"portfolio/abc","secure_url":"https://res.cloudinary.com/demo/image/upload/portfolio/abc.jpg","width":800,"height":600,"format":"jpg"}`))
	})

	src := writeTempFile(t, "photo.jpg", []byte("jpeg-bytes"))
	res, err := c.Upload(context.Background(), src, []string{"fr_chat", "en_cat"}, map[string]string{"caption_fr": "Titre"})
	require.NoError(t, err)

	assert.Equal(t, &AssetUploadResult{
		SecureURL: "https://res.cloudinary.com/demo/image/upload/portfolio/abc.jpg",
		PublicID:  "portfolio/abc",
		Width:     800,
		Height:    600,
		Format:    "jpg",
	}, res)

	assert.Equal(t, "/v1_1/demo/image/upload", path)
	assert.Equal(t, []byte("jpeg-bytes"), fileBody)
	assert.Equal(t, []string{"fr_chat,en_cat"}, fields["tags"])
	assert.Equal(t, []string{"caption_fr=Titre"}, fields["context"])
	assert.Equal(t, []string{"portfolio"}, fields["folder"])
	assert.Equal(t, []string{"key"}, fields["api_key"])
	assert.NotEmpty(t, fields["timestamp"])
	assert.NotEmpty(t, fields["signature"])
}

func TestCloudinaryClient_UploadRejected(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
	})

	src := writeTempFile(t, "photo.jpg", []byte("x"))
	res, err := c.Upload(context.Background(), src, nil, nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "cloudinary")
}

func TestCloudinaryClient_UploadMissingFile(t *testing.T) {
	called := false
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.jpg"), nil, nil)
	require.Error(t, err)
	assert.False(t, called)
}

func TestCloudinaryClient_List(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/resources/image/upload", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("max_results"))
		assert.Equal(t, "portfolio/", r.URL.Query().Get("prefix"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resources":[
			{"public_id":"a","secure_url":"https://x/a.jpg","format":"jpg","width":1,"height":2,"tags":["fr_chat"],"created_at":"2024-05-01T10:00:00Z"},
			{"public_id":"b","secure_url":"https://x/b.png","format":"png"}
		]}`))
	})

	list, err := c.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "https://x/a.jpg", list[0].SecureURL)
	assert.Equal(t, []string{"fr_chat"}, list[0].Tags)
	assert.Equal(t, 2024, list[0].CreatedAt.Year())
	assert.True(t, list[1].CreatedAt.IsZero())
}
