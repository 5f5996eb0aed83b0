package service

import (
	"StoryStats/internal/api/config"
	"StoryStats/internal/api/dto"
	"StoryStats/internal/repository"
	"context"
	"fmt"
	"math"
	"time"
)

// driftTolerance 缓存汇总与计数字段汇总允许的相对偏差
const driftTolerance = 0.01

// CacheHealthService 统计缓存健康报告：覆盖率、陈旧度、全站汇总，
// 以及缓存与计数字段之间的漂移告警。运维据此决定是否触发重算，
// 不在请求热路径上。
type CacheHealthService interface {
	Status(ctx context.Context) (*dto.CacheStatusDTO, error)
}

type cacheHealthServiceImpl struct {
	storyRepo      repository.StoryRepo
	statsCacheRepo repository.StatsCacheRepo
	statsCfg       config.StatsConfig
}

func NewCacheHealthService(
	storyRepo repository.StoryRepo,
	statsCacheRepo repository.StatsCacheRepo,
	statsCfg config.StatsConfig,
) CacheHealthService {
	return &cacheHealthServiceImpl{
		storyRepo:      storyRepo,
		statsCacheRepo: statsCacheRepo,
		statsCfg:       statsCfg,
	}
}

func (s *cacheHealthServiceImpl) Status(ctx context.Context) (*dto.CacheStatusDTO, error) {
	published, err := s.storyRepo.CountPublished(ctx)
	if err != nil {
		return nil, err
	}

	cacheRecords, err := s.statsCacheRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	status := &dto.CacheStatusDTO{
		PublishedStories: published,
		CacheRecords:     cacheRecords,
	}
	if published > 0 {
		status.CoveragePct = math.Min(float64(cacheRecords)/float64(published)*100, 100)
	}

	oldest, err := s.statsCacheRepo.OldestCalculated(ctx)
	if err != nil {
		return nil, err
	}
	if !oldest.IsZero() {
		status.OldestCalculated = &oldest
		status.StalenessSec = int64(time.Since(oldest).Seconds())
	}

	cacheTotals, err := s.statsCacheRepo.AggregateTotals(ctx)
	if err != nil {
		return nil, err
	}
	status.CacheTotals = cacheTotals

	counterTotals, err := s.storyRepo.AggregateCounterTotals(ctx)
	if err != nil {
		return nil, err
	}

	// 漂移只告警不报错：缓存与计数不一致由下一次重算收敛
	checks := []struct {
		name    string
		cache   int64
		counter int64
	}{
		{"view_count", cacheTotals.ViewCount, counterTotals.ViewCount},
		{"like_count", cacheTotals.LikeCount, counterTotals.LikeCount},
		{"comment_count", cacheTotals.CommentCount, counterTotals.CommentCount},
		{"rating_count", cacheTotals.RatingCount, counterTotals.RatingCount},
	}
	for _, c := range checks {
		if exceedsDrift(c.cache, c.counter) {
			status.Warnings = append(status.Warnings,
				fmt.Sprintf("drift on %s: cache=%d counters=%d", c.name, c.cache, c.counter))
		}
	}

	return status, nil
}

// exceedsDrift 相对偏差超过容忍度即认为漂移
func exceedsDrift(cache, counter int64) bool {
	if cache == counter {
		return false
	}
	base := math.Max(math.Abs(float64(cache)), math.Abs(float64(counter)))
	if base == 0 {
		return false
	}
	return math.Abs(float64(cache-counter))/base > driftTolerance
}
