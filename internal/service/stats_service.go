package service

import (
	"StoryStats/internal/api/config"
	"StoryStats/internal/api/dto"
	"StoryStats/internal/model"
	"StoryStats/internal/repository"
	"context"
	log "log/slog"
)

// StatsService 读侧查询层。单故事直接读计数字段；列表页按
// use_cache 在统计缓存与计数字段之间二选一，整批一次 $in 查询，
// 缓存路径失败时回退计数字段并置 Degraded。
type StatsService interface {
	// GetStoryStats 单故事统计。exactComments 为真时评论数改为实时重数
	GetStoryStats(ctx context.Context, storyID uint64, exactComments bool) (*dto.StoryStatsDTO, error)
	// GetListingStats 列表页批量统计，结果顺序与请求 id 一致
	GetListingStats(ctx context.Context, storyIDs []uint64, useCache bool) (*dto.ListingStatsDTO, error)
}

type statsServiceImpl struct {
	storyRepo      repository.StoryRepo
	eventStoreRepo repository.EventStoreRepo
	statsCacheRepo repository.StatsCacheRepo
	statsCfg       config.StatsConfig
}

func NewStatsService(
	storyRepo repository.StoryRepo,
	eventStoreRepo repository.EventStoreRepo,
	statsCacheRepo repository.StatsCacheRepo,
	statsCfg config.StatsConfig,
) StatsService {
	return &statsServiceImpl{
		storyRepo:      storyRepo,
		eventStoreRepo: eventStoreRepo,
		statsCacheRepo: statsCacheRepo,
		statsCfg:       statsCfg,
	}
}

func (s *statsServiceImpl) GetStoryStats(ctx context.Context, storyID uint64, exactComments bool) (*dto.StoryStatsDTO, error) {
	story, err := s.storyRepo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, ErrStoryNotFound
	}

	stats := storyToStats(story)

	// 评论便宜可数且详情页受益于精确值；实时重数失败时保留计数字段
	if exactComments {
		count, err := s.eventStoreRepo.CountComments(ctx, storyID)
		if err != nil {
			log.WarnContext(ctx, "live comment count failed, fall back to counter", "storyID", storyID, "err", err)
		} else {
			stats.CommentCount = count
		}
	}

	return stats, nil
}

func (s *statsServiceImpl) GetListingStats(ctx context.Context, storyIDs []uint64, useCache bool) (*dto.ListingStatsDTO, error) {
	if len(storyIDs) == 0 {
		return nil, ErrParamInvalid
	}

	if !useCache {
		stats, err := s.listFromCounters(ctx, storyIDs)
		if err != nil {
			return nil, err
		}
		return &dto.ListingStatsDTO{Stats: stats}, nil
	}

	cacheCtx, cancel := context.WithTimeout(ctx, s.statsCfg.CacheReadTimeout())
	defer cancel()

	records, err := s.statsCacheRepo.GetByStoryIDs(cacheCtx, storyIDs)
	if err != nil {
		// 缓存层故障或超时：降级读计数字段，调用方可感知
		log.WarnContext(ctx, "stats cache read failed, degrade to counters", "err", err)
		stats, err := s.listFromCounters(ctx, storyIDs)
		if err != nil {
			return nil, err
		}
		return &dto.ListingStatsDTO{Stats: stats, Degraded: true}, nil
	}

	byID := make(map[uint64]*model.StoryStatsCache, len(records))
	for _, record := range records {
		byID[record.StoryID] = record
	}

	// 尚未进入缓存的故事（新发布、缓存未覆盖）用计数字段补齐，
	// 一次 $in 查询，整个请求最多两条查询
	var missing []uint64
	for _, id := range storyIDs {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}

	fill := make(map[uint64]*dto.StoryStatsDTO)
	if len(missing) > 0 {
		stories, err := s.storyRepo.GetStoriesByIDs(ctx, missing)
		if err != nil {
			log.WarnContext(ctx, "listing fill from counters failed", "err", err)
		} else {
			for _, story := range stories {
				fill[story.ID] = storyToStats(story)
			}
		}
	}

	stats := make([]*dto.StoryStatsDTO, 0, len(storyIDs))
	for _, id := range storyIDs {
		if record, ok := byID[id]; ok {
			stats = append(stats, cacheToStats(record))
			continue
		}
		if filled, ok := fill[id]; ok {
			stats = append(stats, filled)
			continue
		}
		// 未知 id 也返回完整的全零对象
		stats = append(stats, &dto.StoryStatsDTO{StoryID: id})
	}

	return &dto.ListingStatsDTO{Stats: stats, FromCache: true}, nil
}

// listFromCounters 计数字段路径：单次 $in 批量读
func (s *statsServiceImpl) listFromCounters(ctx context.Context, storyIDs []uint64) ([]*dto.StoryStatsDTO, error) {
	stories, err := s.storyRepo.GetStoriesByIDs(ctx, storyIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]*model.Story, len(stories))
	for _, story := range stories {
		byID[story.ID] = story
	}

	stats := make([]*dto.StoryStatsDTO, 0, len(storyIDs))
	for _, id := range storyIDs {
		if story, ok := byID[id]; ok {
			stats = append(stats, storyToStats(story))
		} else {
			stats = append(stats, &dto.StoryStatsDTO{StoryID: id})
		}
	}
	return stats, nil
}

func storyToStats(story *model.Story) *dto.StoryStatsDTO {
	return &dto.StoryStatsDTO{
		StoryID:       story.ID,
		ViewCount:     story.ViewCount,
		LikeCount:     story.LikeCount,
		CommentCount:  story.CommentCount,
		AverageRating: story.AverageRating,
		RatingCount:   story.RatingCount,
	}
}

func cacheToStats(record *model.StoryStatsCache) *dto.StoryStatsDTO {
	return &dto.StoryStatsDTO{
		StoryID:       record.StoryID,
		ViewCount:     record.ViewCount,
		LikeCount:     record.LikeCount,
		CommentCount:  record.CommentCount,
		AverageRating: record.AverageRating,
		RatingCount:   record.RatingCount,
	}
}
