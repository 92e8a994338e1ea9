package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/amirphl/portfolio/config"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Object user metadata keys written by MinIOStore.
const (
	minioMetaTags    = "Tags"
	minioMetaContext = "Context"
	minioMetaWidth   = "Width"
	minioMetaHeight  = "Height"
)

// MinIOStore keeps images in an S3 compatible bucket. Tags and context are
// stored as object user metadata.
type MinIOStore struct {
	client *minio.Client
	config config.MinIOConfig
	folder string
}

// NewMinIOStore connects to the bucket, creating it when missing.
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig, folder string) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStore{client: client, config: cfg, folder: strings.Trim(folder, "/")}, nil
}

// Upload puts the staged file into the bucket under a fresh key.
func (s *MinIOStore) Upload(ctx context.Context, localPath string, tags []string, assetContext map[string]string) (*AssetUploadResult, error) {
	info, err := ProbeImage(localPath)
	if err != nil {
		return nil, err
	}

	key := s.objectKey(uuid.New().String() + info.Extension)
	_, err = s.client.FPutObject(ctx, s.config.Bucket, key, localPath, minio.PutObjectOptions{
		ContentType:  info.MIMEType,
		UserMetadata: encodeObjectMetadata(tags, assetContext, info.Width, info.Height),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return &AssetUploadResult{
		SecureURL: s.objectURL(key),
		PublicID:  key,
		Width:     info.Width,
		Height:    info.Height,
		Format:    info.Format,
	}, nil
}

// List returns the newest objects under the store folder.
func (s *MinIOStore) List(ctx context.Context, max int) ([]AssetSummary, error) {
	prefix := ""
	if s.folder != "" {
		prefix = s.folder + "/"
	}

	var objects []minio.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.config.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		objects = append(objects, obj)
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	if len(objects) > max {
		objects = objects[:max]
	}

	out := make([]AssetSummary, 0, len(objects))
	for _, obj := range objects {
		stat, err := s.client.StatObject(ctx, s.config.Bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to stat object %s: %w", obj.Key, err)
		}
		tags, assetContext, width, height := decodeObjectMetadata(stat.UserMetadata)
		out = append(out, AssetSummary{
			PublicID:  obj.Key,
			SecureURL: s.objectURL(obj.Key),
			Format:    strings.TrimPrefix(extensionOf(obj.Key), "."),
			Width:     width,
			Height:    height,
			Tags:      tags,
			Context:   assetContext,
			CreatedAt: obj.LastModified,
		})
	}
	return out, nil
}

func (s *MinIOStore) objectKey(name string) string {
	if s.folder == "" {
		return name
	}
	return s.folder + "/" + name
}

func (s *MinIOStore) objectURL(key string) string {
	if s.config.PublicURL != "" {
		return strings.TrimRight(s.config.PublicURL, "/") + "/" + key
	}
	scheme := "http"
	if s.config.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.config.Endpoint, s.config.Bucket, key)
}

// encodeObjectMetadata renders tags and context as header-safe values.
func encodeObjectMetadata(tags []string, assetContext map[string]string, width, height int) map[string]string {
	return map[string]string{
		minioMetaTags:    url.QueryEscape(strings.Join(tags, ",")),
		minioMetaContext: url.QueryEscape(encodeContext(assetContext)),
		minioMetaWidth:   strconv.Itoa(width),
		minioMetaHeight:  strconv.Itoa(height),
	}
}

// decodeObjectMetadata reads what encodeObjectMetadata wrote. Keys are
// matched case-insensitively since servers differ in canonicalisation.
func decodeObjectMetadata(meta map[string]string) (tags []string, assetContext map[string]string, width, height int) {
	lookup := func(key string) string {
		for k, v := range meta {
			if strings.EqualFold(strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-"), key) {
				return v
			}
		}
		return ""
	}

	if raw, err := url.QueryUnescape(lookup(minioMetaTags)); err == nil && raw != "" {
		tags = strings.Split(raw, ",")
	}
	if raw, err := url.QueryUnescape(lookup(minioMetaContext)); err == nil && raw != "" {
		assetContext = decodeContext(raw)
	}
	width, _ = strconv.Atoi(lookup(minioMetaWidth))
	height, _ = strconv.Atoi(lookup(minioMetaHeight))
	return tags, assetContext, width, height
}

// encodeContext renders a context map as "k=v|k=v" sorted by key, escaping
// '=' and '|' inside values.
func encodeContext(assetContext map[string]string) string {
	keys := make([]string, 0, len(assetContext))
	for k := range assetContext {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	escaper := strings.NewReplacer(`\`, `\\`, `=`, `\=`, `|`, `\|`)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+escaper.Replace(assetContext[k]))
	}
	return strings.Join(parts, "|")
}

// decodeContext is the inverse of encodeContext.
func decodeContext(raw string) map[string]string {
	out := map[string]string{}
	var key, cur strings.Builder
	inValue := false
	flush := func() {
		if key.Len() > 0 || cur.Len() > 0 {
			if inValue {
				out[key.String()] = cur.String()
			} else {
				out[cur.String()] = ""
			}
		}
		key.Reset()
		cur.Reset()
		inValue = false
	}

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case ch == '\\' && i+1 < len(raw):
			i++
			cur.WriteByte(raw[i])
		case ch == '=' && !inValue:
			key.WriteString(cur.String())
			cur.Reset()
			inValue = true
		case ch == '|':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return out
}

func extensionOf(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 && !strings.Contains(key[i:], "/") {
		return key[i:]
	}
	return ""
}
