package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
)

type memoryCacheRepo struct {
	items    map[string][]byte
	patterns []string
	failGet  error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if m.failGet != nil {
		return m.failGet
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	for key := range m.items {
		if strings.HasPrefix(key, strings.TrimSuffix(pattern, "*")) {
			delete(m.items, key)
		}
	}
	return nil
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCacheRepo(), metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out RecommendationResult
	hit, err := svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", RecommendationResult{TotalInstructors: 3}, 0))
	hit, err = svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, out.TotalInstructors)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 1e-9)
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.items)
	require.NoError(t, svc.InvalidateRecommendations(context.Background()))
	assert.Empty(t, repo.patterns)
}

func TestCacheServiceGetSurfacesBackendErrors(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.failGet = errors.New("connection refused")
	svc := NewCacheService(repo, nil, 0, nil, true)

	var out RecommendationResult
	hit, err := svc.Get(context.Background(), "k", &out)
	assert.False(t, hit)
	assert.Error(t, err)
}

func TestCacheServiceInvalidateRecommendations(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, true)
	ctx := context.Background()

	keep := "scheduler:calendar:kr-2025.1"
	drop := RecommendationKey("round-1", map[string]string{"date": "2025-09-03"})
	require.NoError(t, svc.Set(ctx, keep, 1, 0))
	require.NoError(t, svc.Set(ctx, drop, 1, 0))

	require.NoError(t, svc.InvalidateRecommendations(ctx))
	assert.Contains(t, repo.items, keep)
	assert.NotContains(t, repo.items, drop)
	assert.Equal(t, []string{"scheduler:recommendations:*"}, repo.patterns)
}

func TestRecommendationKeyIsStable(t *testing.T) {
	a := RecommendationKey("round-1", map[string]int{"limit": 5})
	b := RecommendationKey("round-1", map[string]int{"limit": 5})
	c := RecommendationKey("round-1", map[string]int{"limit": 6})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
