package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	tagCacheSize = 256
	tagCacheTTL  = 30 * time.Second
	allTagsKey   = "all"
)

type cachedTags struct {
	value   any
	expires time.Time
}

// TagService serves the read-only tag catalog through an LRU cache.
// Entries expire after tagCacheTTL so tags imported by another process
// show up without a restart. Invalidate drops them immediately.
type TagService struct {
	db    *gorm.DB
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

var _ ITagService = (*TagService)(nil)

func NewTagService(db *gorm.DB) (*TagService, error) {
	cache, err := lru.New(tagCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag cache: %w", err)
	}
	return &TagService{db: db, cache: cache, ttl: tagCacheTTL, now: time.Now}, nil
}

func (s *TagService) lookup(key any) (any, bool) {
	if v, ok := s.cache.Get(key); ok {
		entry := v.(cachedTags)
		if s.now().Before(entry.expires) {
			metrics.TagCacheLookups.WithLabelValues("hit").Inc()
			return entry.value, true
		}
		s.cache.Remove(key)
	}
	metrics.TagCacheLookups.WithLabelValues("miss").Inc()
	return nil, false
}

func (s *TagService) store(key, value any) {
	s.cache.Add(key, cachedTags{value: value, expires: s.now().Add(s.ttl)})
}

func (s *TagService) List(ctx context.Context) ([]types.TagResponse, error) {
	if v, ok := s.lookup(allTagsKey); ok {
		return slices.Clone(v.([]types.TagResponse)), nil
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	out := make([]types.TagResponse, 0, len(tags))
	for _, t := range tags {
		resp := toTagResponse(t)
		out = append(out, resp)
		s.store(t.ID, resp)
	}
	s.store(allTagsKey, out)
	return slices.Clone(out), nil
}

func (s *TagService) Get(ctx context.Context, id uint) (*types.TagResponse, error) {
	if v, ok := s.lookup(id); ok {
		resp := v.(types.TagResponse)
		return &resp, nil
	}

	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("tag", id)
		}
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}

	resp := toTagResponse(tag)
	s.store(id, resp)
	return &resp, nil
}

// Invalidate drops every cached tag.
func (s *TagService) Invalidate() {
	s.cache.Purge()
}
