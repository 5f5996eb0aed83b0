package service

import (
	"StoryStats/internal/api/config"
	"StoryStats/internal/model"
	"StoryStats/internal/pkg/consts"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStatsConfig() config.StatsConfig {
	cfg := config.StatsConfig{}
	cfg.ApplyDefaults()
	return cfg
}

func TestRecomputeDerivesRollupFromEvents(t *testing.T) {
	storyRepo := newFakeStoryRepo(&model.Story{ID: 1, Published: true, ViewCount: 42})
	eventRepo := newFakeEventStoreRepo()
	cacheRepo := newFakeStatsCacheRepo()

	eventRepo.likes[1] = 3
	eventRepo.comments[1] = 7
	eventRepo.ratings[1] = []float64{5, 5, 5, 1, 1}

	svc := NewRecomputeService(storyRepo, eventRepo, cacheRepo, testStatsConfig())

	err := svc.RecomputeStory(context.Background(), 1)
	require.NoError(t, err)

	record, err := cacheRepo.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(3), record.LikeCount)
	assert.Equal(t, int64(7), record.CommentCount)
	assert.Equal(t, int64(5), record.RatingCount)
	assert.Equal(t, 3.4, record.AverageRating)
	assert.Equal(t, int64(42), record.ViewCount)
	assert.Equal(t, consts.StatsSchemaVersion, record.SchemaVersion)
	assert.False(t, record.LastCalculated.IsZero())

	// 计数字段同步镜像
	story := storyRepo.story(1)
	assert.Equal(t, int64(3), story.LikeCount)
	assert.Equal(t, int64(7), story.CommentCount)
	assert.Equal(t, 3.4, story.AverageRating)
	assert.Equal(t, 17.0, story.RatingSum)
	// counter 模式不覆盖阅读计数
	assert.Equal(t, int64(42), story.ViewCount)
}

func TestRecomputeZeroEvents(t *testing.T) {
	storyRepo := newFakeStoryRepo(&model.Story{ID: 9, Published: true, LikeCount: 5, AverageRating: 4.2})
	eventRepo := newFakeEventStoreRepo()
	cacheRepo := newFakeStatsCacheRepo()

	svc := NewRecomputeService(storyRepo, eventRepo, cacheRepo, testStatsConfig())

	require.NoError(t, svc.RecomputeStory(context.Background(), 9))

	record, _ := cacheRepo.Get(context.Background(), 9)
	require.NotNil(t, record)
	assert.Zero(t, record.LikeCount)
	assert.Zero(t, record.RatingCount)
	assert.Zero(t, record.AverageRating)

	// 漂移的计数字段被拉回事件事实
	story := storyRepo.story(9)
	assert.Zero(t, story.LikeCount)
	assert.Zero(t, story.AverageRating)
}

func TestRecomputeStoryNotFound(t *testing.T) {
	svc := NewRecomputeService(newFakeStoryRepo(), newFakeEventStoreRepo(), newFakeStatsCacheRepo(), testStatsConfig())

	err := svc.RecomputeStory(context.Background(), 404)
	assert.ErrorIs(t, err, ErrStoryNotFound)
}

func TestRecomputeAllIdempotent(t *testing.T) {
	storyRepo := newFakeStoryRepo(
		&model.Story{ID: 1, Published: true},
		&model.Story{ID: 2, Published: true},
	)
	eventRepo := newFakeEventStoreRepo()
	eventRepo.likes[1] = 10
	eventRepo.ratings[2] = []float64{4, 5}
	cacheRepo := newFakeStatsCacheRepo()

	svc := NewRecomputeService(storyRepo, eventRepo, cacheRepo, testStatsConfig())

	first, err := svc.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Processed)
	assert.Equal(t, 2, first.Updated)
	assert.Zero(t, first.Failed)

	// 事件不变，第二轮全部 unchanged
	second, err := svc.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Processed)
	assert.Zero(t, second.Updated)
	assert.Equal(t, 2, second.Unchanged)
}

func TestRecomputeAllPartialFailure(t *testing.T) {
	storyRepo := newFakeStoryRepo(
		&model.Story{ID: 1, Published: true},
		&model.Story{ID: 2, Published: true},
		&model.Story{ID: 3, Published: true},
	)
	eventRepo := newFakeEventStoreRepo()
	eventRepo.likes[1] = 1
	eventRepo.likes[3] = 3
	eventRepo.failures[2] = errors.New("event store unavailable")
	cacheRepo := newFakeStatsCacheRepo()

	svc := NewRecomputeService(storyRepo, eventRepo, cacheRepo, testStatsConfig())

	report, err := svc.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, uint64(2), report.Failures[0].StoryID)

	// 失败的故事不落缓存，成功的不受影响
	missing, _ := cacheRepo.Get(context.Background(), 2)
	assert.Nil(t, missing)
	ok, _ := cacheRepo.Get(context.Background(), 3)
	require.NotNil(t, ok)
	assert.Equal(t, int64(3), ok.LikeCount)
}

func TestRecomputeUniqueViewersMode(t *testing.T) {
	storyRepo := newFakeStoryRepo(&model.Story{ID: 1, Published: true, ViewCount: 100})
	eventRepo := newFakeEventStoreRepo()
	eventRepo.viewers[1] = 8
	cacheRepo := newFakeStatsCacheRepo()

	cfg := testStatsConfig()
	cfg.ViewCountMode = consts.ViewCountModeUniqueViewers
	svc := NewRecomputeService(storyRepo, eventRepo, cacheRepo, cfg)

	require.NoError(t, svc.RecomputeStory(context.Background(), 1))

	record, _ := cacheRepo.Get(context.Background(), 1)
	require.NotNil(t, record)
	assert.Equal(t, int64(8), record.ViewCount)
	// 去重口径下阅读计数也被覆盖
	assert.Equal(t, int64(8), storyRepo.story(1).ViewCount)
}

func TestParseDirtyMembersSkipsMalformed(t *testing.T) {
	// 坏成员不中断批次，其余 id 照常进入重算
	ids := parseDirtyMembers(context.Background(), []string{"1", "not-a-number", "42", "", "-3"})
	assert.Equal(t, []uint64{1, 42}, ids)

	assert.Empty(t, parseDirtyMembers(context.Background(), nil))
}

func TestRecomputeConvergesAfterCounterDrift(t *testing.T) {
	// 计数字段被并发事故推偏，事件事实不变
	storyRepo := newFakeStoryRepo(&model.Story{ID: 1, Published: true, LikeCount: 999, CommentCount: -3})
	eventRepo := newFakeEventStoreRepo()
	eventRepo.likes[1] = 12
	eventRepo.comments[1] = 4
	cacheRepo := newFakeStatsCacheRepo()

	svc := NewRecomputeService(storyRepo, eventRepo, cacheRepo, testStatsConfig())
	require.NoError(t, svc.RecomputeStory(context.Background(), 1))

	story := storyRepo.story(1)
	assert.Equal(t, int64(12), story.LikeCount)
	assert.Equal(t, int64(4), story.CommentCount)
}
