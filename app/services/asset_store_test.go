package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/amirphl/portfolio/config"
	"github.com/amirphl/portfolio/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryImageAssetRepository is an in-memory ImageAssetRepository.
type memoryImageAssetRepository struct {
	mu      sync.Mutex
	assets  []*models.ImageAsset
	saveErr error
}

func (r *memoryImageAssetRepository) ByFilter(ctx context.Context, filter models.ImageAssetFilter, orderBy string, limit, offset int) ([]*models.ImageAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.ImageAsset(nil), r.assets...), nil
}

func (r *memoryImageAssetRepository) Save(ctx context.Context, entity *models.ImageAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	entity.ID = uint(len(r.assets) + 1)
	r.assets = append(r.assets, entity)
	return nil
}

func (r *memoryImageAssetRepository) Count(ctx context.Context, filter models.ImageAssetFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.assets)), nil
}

func (r *memoryImageAssetRepository) ByPublicID(ctx context.Context, publicID string) (*models.ImageAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assets {
		if a.PublicID == publicID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memoryImageAssetRepository) Latest(ctx context.Context, limit int) ([]*models.ImageAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]*models.ImageAsset(nil), r.assets...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := &bytes.Buffer{}
	require.NoError(t, jpeg.Encode(buf, img, nil))
	return buf.Bytes()
}

func TestProbeImage(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		mime   string
		format string
		width  int
		height int
	}{
		{name: "png", data: pngBytes(t, 4, 3), mime: "image/png", format: "png", width: 4, height: 3},
		{name: "jpeg", data: jpegBytes(t, 8, 6), mime: "image/jpeg", format: "jpg", width: 8, height: 6},
		{name: "not an image", data: []byte("hello world"), mime: "text/plain; charset=utf-8", format: "txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "upload", tt.data)

			info, err := ProbeImage(path)
			require.NoError(t, err)

			assert.Equal(t, tt.mime, info.MIMEType)
			assert.Equal(t, tt.format, info.Format)
			assert.Equal(t, tt.width, info.Width)
			assert.Equal(t, tt.height, info.Height)
			assert.Equal(t, int64(len(tt.data)), info.Size)
		})
	}
}

func TestProbeImage_MissingFile(t *testing.T) {
	_, err := ProbeImage(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLocalStore_UploadAndList(t *testing.T) {
	repo := &memoryImageAssetRepository{}
	root := t.TempDir()
	store, err := NewLocalStore(config.LocalStoreConfig{MediaRoot: root, PublicURL: "http://localhost:8080/media/"}, "portfolio", repo)
	require.NoError(t, err)

	src := writeTempFile(t, "staged", pngBytes(t, 10, 5))
	ctx := context.Background()
	res, err := store.Upload(ctx, src, []string{"fr_chat", "en_cat"}, map[string]string{
		"caption_fr": "Titre", "caption_en": "Title", "custom_en": "note",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Width)
	assert.Equal(t, 5, res.Height)
	assert.Equal(t, "png", res.Format)
	assert.Contains(t, res.PublicID, "portfolio/")
	assert.Contains(t, res.SecureURL, "http://localhost:8080/media/")

	require.Len(t, repo.assets, 1)
	saved := repo.assets[0]
	assert.Equal(t, "Titre", saved.CaptionFR)
	assert.Equal(t, "Title", saved.CaptionEN)
	assert.Equal(t, "note", saved.CustomEN)
	assert.Equal(t, []string{"fr_chat", "en_cat"}, []string(saved.Tags))

	full, err := store.ResolveMediaPath(saved.StoredPath)
	require.NoError(t, err)
	copied, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t, 10, 5), copied)

	list, err := store.List(ctx, 30)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.SecureURL, list[0].SecureURL)
	assert.Equal(t, []string{"fr_chat", "en_cat"}, list[0].Tags)
	assert.Equal(t, "Titre", list[0].Context["caption_fr"])
	assert.Equal(t, "note", list[0].Context["custom_en"])
}

func TestLocalStore_UploadRemovesFileWhenSaveFails(t *testing.T) {
	repo := &memoryImageAssetRepository{saveErr: errors.New("db down")}
	root := t.TempDir()
	store, err := NewLocalStore(config.LocalStoreConfig{MediaRoot: root, PublicURL: "http://x/media"}, "", repo)
	require.NoError(t, err)

	src := writeTempFile(t, "staged", pngBytes(t, 2, 2))
	_, err = store.Upload(context.Background(), src, nil, nil)
	require.Error(t, err)

	var files []string
	require.NoError(t, filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, p)
		}
		return err
	}))
	assert.Empty(t, files)
}

func TestLocalStore_ResolveMediaPath(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(config.LocalStoreConfig{MediaRoot: root}, "", &memoryImageAssetRepository{})
	require.NoError(t, err)

	full, err := store.ResolveMediaPath("2024-01-01/a.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2024-01-01", "a.png"), full)

	for _, bad := range []string{"", "/", "../etc/passwd", "2024/../../x"} {
		_, err := store.ResolveMediaPath(bad)
		assert.ErrorIs(t, err, ErrInvalidMediaPath, bad)
	}
}

func TestMockAssetStore(t *testing.T) {
	store := NewMockAssetStore()
	src := writeTempFile(t, "staged", pngBytes(t, 3, 2))

	res, err := store.Upload(context.Background(), src, []string{"fr_x"}, map[string]string{"caption_fr": "T"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Width)
	assert.Equal(t, "png", res.Format)

	uploads := store.GetUploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, []string{"fr_x"}, uploads[0].Tags)
	assert.Equal(t, "T", uploads[0].Context["caption_fr"])

	list, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "T", list[0].Context["caption_fr"])

	store.Err = errors.New("boom")
	_, err = store.Upload(context.Background(), src, nil, nil)
	assert.Error(t, err)

	store.ClearUploads()
	assert.Empty(t, store.GetUploads())
}

func TestObjectMetadataRoundTrip(t *testing.T) {
	meta := encodeObjectMetadata([]string{"fr_chat", "en_cat"}, map[string]string{"caption_fr": "Été, nuit"}, 640, 480)

	// servers return canonicalised header names
	returned := map[string]string{}
	for k, v := range meta {
		returned["X-Amz-Meta-"+k] = v
	}

	tags, assetContext, w, h := decodeObjectMetadata(returned)
	assert.Equal(t, []string{"fr_chat", "en_cat"}, tags)
	assert.Equal(t, map[string]string{"caption_fr": "Été, nuit"}, assetContext)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestContextEncoding(t *testing.T) {
	in := map[string]string{
		"caption_fr": "Titre",
		"alt_en":     `a=b|c\d`,
		"custom_en":  "",
	}
	encoded := encodeContext(in)
	assert.Equal(t, `alt_en=a\=b\|c\\d|caption_fr=Titre|custom_en=`, encoded)
	assert.Equal(t, in, decodeContext(encoded))
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, ".jpg", extensionOf("portfolio/a.jpg"))
	assert.Equal(t, "", extensionOf("portfolio.v2/a"))
	assert.Equal(t, "", extensionOf("a"))
}

func TestNewAssetStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewAssetStore(ctx, config.AssetStoreConfig{Provider: "mock"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockAssetStore{}, store)

	store, err = NewAssetStore(ctx, config.AssetStoreConfig{Provider: "cloudinary", Cloudinary: config.CloudinaryConfig{CloudName: "demo"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &CloudinaryClient{}, store)

	_, err = NewAssetStore(ctx, config.AssetStoreConfig{Provider: "local"}, nil)
	assert.Error(t, err)

	_, err = NewAssetStore(ctx, config.AssetStoreConfig{Provider: "ftp"}, nil)
	assert.Error(t, err)
}
