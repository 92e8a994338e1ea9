// Package cache provides the redis backed gallery cache
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amirphl/portfolio/app/dto"
	"github.com/redis/go-redis/v9"
)

const galleryKeySegment = "gallery:"

// GalleryCache keeps rendered gallery listings keyed by their size.
type GalleryCache struct {
	Redis     redis.UniversalClient
	Namespace string
	TTL       time.Duration
}

// NewGalleryCache creates a cache storing keys under namespace.
func NewGalleryCache(namespace string, redisCl redis.UniversalClient, ttl time.Duration) *GalleryCache {
	return &GalleryCache{
		Redis:     redisCl,
		Namespace: namespace,
		TTL:       ttl,
	}
}

func (c *GalleryCache) key(max int) string {
	return c.Namespace + galleryKeySegment + strconv.Itoa(max)
}

// Get returns the cached listing for max. The boolean is false on a miss.
func (c *GalleryCache) Get(ctx context.Context, max int) ([]dto.GalleryImageDTO, bool, error) {
	raw, err := c.Redis.Get(ctx, c.key(max)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read gallery cache: %w", err)
	}

	var images []dto.GalleryImageDTO
	if err := json.Unmarshal(raw, &images); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.Redis.Del(ctx, c.key(max)).Err()
		return nil, false, nil
	}
	return images, true, nil
}

// Set stores the listing for max.
func (c *GalleryCache) Set(ctx context.Context, max int, images []dto.GalleryImageDTO) error {
	raw, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("failed to encode gallery: %w", err)
	}
	if err := c.Redis.Set(ctx, c.key(max), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("failed to write gallery cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached listing.
func (c *GalleryCache) Invalidate(ctx context.Context) error {
	pattern := c.Namespace + galleryKeySegment + "*"
	iter := c.Redis.Scan(ctx, 0, pattern, 100).Iterator()

	pl := c.Redis.Pipeline()
	queued := 0
	for iter.Next(ctx) {
		pl.Del(ctx, iter.Val())
		queued++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan gallery keys: %w", err)
	}
	if queued == 0 {
		return nil
	}

	if _, err := pl.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete gallery keys: %w", err)
	}
	return nil
}
