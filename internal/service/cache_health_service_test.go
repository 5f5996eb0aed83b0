package service

import (
	"StoryStats/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStatusCoverageAndStaleness(t *testing.T) {
	storyRepo := newFakeStoryRepo(
		&model.Story{ID: 1, Published: true, LikeCount: 10},
		&model.Story{ID: 2, Published: true},
		&model.Story{ID: 3, Published: false},
	)
	cacheRepo := newFakeStatsCacheRepo()
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, cacheRepo.Upsert(context.Background(), &model.StoryStatsCache{
		StoryID: 1, LikeCount: 10, LastCalculated: old,
	}))

	svc := NewCacheHealthService(storyRepo, cacheRepo, testStatsConfig())

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.PublishedStories)
	assert.Equal(t, int64(1), status.CacheRecords)
	assert.Equal(t, 50.0, status.CoveragePct)
	require.NotNil(t, status.OldestCalculated)
	assert.InDelta(t, 2*3600, status.StalenessSec, 5)
}

func TestCacheStatusStalenessTracksAbsoluteOldest(t *testing.T) {
	// 陈旧度必须由全集合中最旧的记录决定，最近重算过的大多数不能掩盖它
	var stories []*model.Story
	cacheRepo := newFakeStatsCacheRepo()
	for i := uint64(1); i <= 50; i++ {
		stories = append(stories, &model.Story{ID: i, Published: true})
		calculated := time.Now().Add(-time.Minute)
		if i == 37 {
			calculated = time.Now().Add(-48 * time.Hour)
		}
		require.NoError(t, cacheRepo.Upsert(context.Background(), &model.StoryStatsCache{
			StoryID: i, LastCalculated: calculated,
		}))
	}

	svc := NewCacheHealthService(newFakeStoryRepo(stories...), cacheRepo, testStatsConfig())

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.OldestCalculated)
	assert.InDelta(t, 48*3600, status.StalenessSec, 5)
}

func TestCacheStatusDriftWarning(t *testing.T) {
	// 计数字段汇总 100，缓存汇总 80，超出容忍度应告警
	storyRepo := newFakeStoryRepo(&model.Story{ID: 1, Published: true, LikeCount: 100})
	cacheRepo := newFakeStatsCacheRepo()
	require.NoError(t, cacheRepo.Upsert(context.Background(), &model.StoryStatsCache{
		StoryID: 1, LikeCount: 80, LastCalculated: time.Now(),
	}))

	svc := NewCacheHealthService(storyRepo, cacheRepo, testStatsConfig())

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, status.Warnings)
	assert.Contains(t, status.Warnings[0], "like_count")
}

func TestCacheStatusNoDriftWithinTolerance(t *testing.T) {
	storyRepo := newFakeStoryRepo(&model.Story{ID: 1, Published: true, ViewCount: 1000})
	cacheRepo := newFakeStatsCacheRepo()
	require.NoError(t, cacheRepo.Upsert(context.Background(), &model.StoryStatsCache{
		StoryID: 1, ViewCount: 995, LastCalculated: time.Now(),
	}))

	svc := NewCacheHealthService(storyRepo, cacheRepo, testStatsConfig())

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, status.Warnings)
}

func TestCacheStatusEmptySystem(t *testing.T) {
	svc := NewCacheHealthService(newFakeStoryRepo(), newFakeStatsCacheRepo(), testStatsConfig())

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, status.PublishedStories)
	assert.Zero(t, status.CoveragePct)
	assert.Nil(t, status.OldestCalculated)
	assert.Zero(t, status.StalenessSec)
	assert.Empty(t, status.Warnings)
}
