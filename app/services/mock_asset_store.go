package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/amirphl/portfolio/utils"
)

// MockAssetStore implements AssetStore in memory for tests and local development
type MockAssetStore struct {
	mu      sync.Mutex
	Uploads []MockUpload
	// Result overrides the returned upload result when set.
	Result *AssetUploadResult
	// Err makes every call fail when set.
	Err error
}

// MockUpload represents one recorded upload
type MockUpload struct {
	LocalPath  string
	Tags       []string
	Context    map[string]string
	Content    []byte
	UploadedAt time.Time
}

// NewMockAssetStore creates a new mock asset store
func NewMockAssetStore() *MockAssetStore {
	return &MockAssetStore{Uploads: make([]MockUpload, 0)}
}

// Upload records the call. The staged file content is captured so tests can
// assert on it after the file has been cleaned up.
func (m *MockAssetStore) Upload(ctx context.Context, localPath string, tags []string, assetContext map[string]string) (*AssetUploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, probeErr := ProbeImage(localPath)
	content, _ := os.ReadFile(localPath)

	m.Uploads = append(m.Uploads, MockUpload{
		LocalPath:  localPath,
		Tags:       append([]string(nil), tags...),
		Context:    cloneMap(assetContext),
		Content:    content,
		UploadedAt: utils.UTCNow(),
	})

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		res := *m.Result
		return &res, nil
	}

	res := &AssetUploadResult{
		PublicID:  fmt.Sprintf("mock/%d", len(m.Uploads)),
		SecureURL: fmt.Sprintf("https://assets.example.test/mock/%d", len(m.Uploads)),
	}
	if probeErr == nil {
		res.Width, res.Height, res.Format = info.Width, info.Height, info.Format
	}
	return res, nil
}

// List returns the recorded uploads, newest first.
func (m *MockAssetStore) List(ctx context.Context, max int) ([]AssetSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]AssetSummary, 0, len(m.Uploads))
	for i := len(m.Uploads) - 1; i >= 0 && len(out) < max; i-- {
		u := m.Uploads[i]
		out = append(out, AssetSummary{
			PublicID:  fmt.Sprintf("mock/%d", i+1),
			SecureURL: fmt.Sprintf("https://assets.example.test/mock/%d", i+1),
			Tags:      u.Tags,
			Context:   u.Context,
			CreatedAt: u.UploadedAt,
		})
	}
	return out, nil
}

// GetUploads returns all recorded uploads
func (m *MockAssetStore) GetUploads() []MockUpload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockUpload(nil), m.Uploads...)
}

// ClearUploads clears the recorded uploads
func (m *MockAssetStore) ClearUploads() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads = make([]MockUpload, 0)
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
