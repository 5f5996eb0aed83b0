package service

import (
	"StoryStats/internal/api/config"
	"StoryStats/internal/api/dto"
	"StoryStats/internal/model"
	"StoryStats/internal/pkg/consts"
	"StoryStats/internal/pkg/redis"
	"StoryStats/internal/pkg/util"
	"StoryStats/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// failureSampleSize 报告中保留的失败样本上限
const failureSampleSize = 10

// recomputeLockTTL 全量重算锁的保底过期时间
const recomputeLockTTL = 30 * time.Minute

// RecomputeService 重算引擎：从事件集合推导每个故事的统计值，
// 一次逻辑更新同时写入统计缓存并镜像回 Story 计数。
// 单个故事失败只计入报告，不中断批次。无事件变化时重复执行幂等。
type RecomputeService interface {
	// RecomputeAll 重算全部已发布故事
	RecomputeAll(ctx context.Context) (*dto.RecomputeReportDTO, error)
	// RecomputeStory 重算单个故事
	RecomputeStory(ctx context.Context, storyID uint64) error
	// RecomputeDirty 只重算脏集合中标记过的故事
	RecomputeDirty(ctx context.Context) (*dto.RecomputeReportDTO, error)
}

type recomputeServiceImpl struct {
	storyRepo      repository.StoryRepo
	eventStoreRepo repository.EventStoreRepo
	statsCacheRepo repository.StatsCacheRepo
	statsCfg       config.StatsConfig
}

func NewRecomputeService(
	storyRepo repository.StoryRepo,
	eventStoreRepo repository.EventStoreRepo,
	statsCacheRepo repository.StatsCacheRepo,
	statsCfg config.StatsConfig,
) RecomputeService {
	return &recomputeServiceImpl{
		storyRepo:      storyRepo,
		eventStoreRepo: eventStoreRepo,
		statsCacheRepo: statsCacheRepo,
		statsCfg:       statsCfg,
	}
}

func (s *recomputeServiceImpl) RecomputeAll(ctx context.Context) (*dto.RecomputeReportDTO, error) {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	storyIDs, err := s.storyRepo.ListPublishedIDs(ctx)
	if err != nil {
		return nil, err
	}

	report := s.recomputeBatch(ctx, storyIDs)
	log.InfoContext(ctx, "recompute all finished",
		"processed", report.Processed,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
		"duration_ms", report.DurationMs,
	)
	return report, nil
}

func (s *recomputeServiceImpl) RecomputeStory(ctx context.Context, storyID uint64) error {
	_, err := s.recomputeOne(ctx, storyID)
	return err
}

// RecomputeDirty 消费脏集合：rename 抢占当前批次，处理完删除。
// 没有脏数据时返回空报告。
func (s *recomputeServiceImpl) RecomputeDirty(ctx context.Context) (*dto.RecomputeReportDTO, error) {
	if !redis.Ready() {
		return &dto.RecomputeReportDTO{}, nil
	}

	processingKey := consts.StoryStatsDirtyKey + ":processing"
	if err := redis.Rename(ctx, consts.StoryStatsDirtyKey, processingKey); err != nil {
		// 脏集合不存在即无事可做
		return &dto.RecomputeReportDTO{}, nil
	}

	members, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		return nil, err
	}

	report := s.recomputeBatch(ctx, parseDirtyMembers(ctx, members))

	if err := redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete stats processing set error", "err", err)
	}

	return report, nil
}

// parseDirtyMembers 解析脏集合成员。坏成员跳过而不中断批次，
// 中断会让 :processing 集合带着未处理的 id 一直留到下一次全量重算
func parseDirtyMembers(ctx context.Context, members []string) []uint64 {
	storyIDs := make([]uint64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			log.WarnContext(ctx, "skip malformed dirty member", "member", member)
			continue
		}
		storyIDs = append(storyIDs, id)
	}
	return storyIDs
}

// recomputeBatch 有界并发地逐故事重算。故事之间无顺序约束，
// 单个失败记入样本后继续。
func (s *recomputeServiceImpl) recomputeBatch(ctx context.Context, storyIDs []uint64) *dto.RecomputeReportDTO {
	start := time.Now()
	report := &dto.RecomputeReportDTO{Processed: len(storyIDs)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.statsCfg.RecomputeWorkers)

	for _, storyID := range storyIDs {
		g.Go(func() error {
			changed, err := s.recomputeOne(gctx, storyID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				if len(report.Failures) < failureSampleSize {
					report.Failures = append(report.Failures, &dto.RecomputeFailureDTO{
						StoryID: storyID,
						Error:   err.Error(),
					})
				}
				log.ErrorContext(gctx, "recompute story failed", "storyID", storyID, "err", err)
				return nil
			}
			if changed {
				report.Updated++
			} else {
				report.Unchanged++
			}
			return nil
		})
	}
	_ = g.Wait()

	report.DurationMs = time.Since(start).Milliseconds()
	return report
}

// recomputeOne 单个故事的完整推导，返回统计值相对上次缓存是否变化
func (s *recomputeServiceImpl) recomputeOne(ctx context.Context, storyID uint64) (bool, error) {
	calcStart := time.Now()

	story, err := s.storyRepo.GetStory(ctx, storyID)
	if err != nil {
		return false, err
	}
	if story == nil {
		return false, ErrStoryNotFound
	}

	likeCount, err := s.eventStoreRepo.CountLikes(ctx, storyID)
	if err != nil {
		return false, err
	}

	commentCount, err := s.eventStoreRepo.CountComments(ctx, storyID)
	if err != nil {
		return false, err
	}

	ratingCount, ratingSum, err := s.eventStoreRepo.AggregateRatings(ctx, storyID)
	if err != nil {
		return false, err
	}
	var averageRating float64
	if ratingCount > 0 {
		averageRating = util.Round1(ratingSum / float64(ratingCount))
	}

	// 阅读数口径：counter 模式信任增量维护的计数（阅读事件量无上限，
	// 全量回放不值得），unique_viewers 模式按 viewer 去重重数
	viewCount := story.ViewCount
	var mirrorView *int64
	if s.statsCfg.ViewCountMode == consts.ViewCountModeUniqueViewers {
		viewCount, err = s.eventStoreRepo.CountUniqueViewers(ctx, storyID)
		if err != nil {
			return false, err
		}
		mirrorView = util.PtrInt64(viewCount)
	}

	record := &model.StoryStatsCache{
		StoryID:       storyID,
		ViewCount:     viewCount,
		LikeCount:     likeCount,
		CommentCount:  commentCount,
		AverageRating: averageRating,
		RatingCount:   ratingCount,
		SchemaVersion: consts.StatsSchemaVersion,
	}

	previous, err := s.statsCacheRepo.Get(ctx, storyID)
	if err != nil {
		return false, err
	}
	changed := !record.SameRollup(previous)

	record.LastCalculated = time.Now()
	record.CalculationMs = time.Since(calcStart).Milliseconds()

	if err := s.statsCacheRepo.Upsert(ctx, record); err != nil {
		return false, err
	}

	counters := &model.DerivedCounters{
		LikeCount:     likeCount,
		CommentCount:  commentCount,
		RatingCount:   ratingCount,
		RatingSum:     ratingSum,
		AverageRating: averageRating,
		ViewCount:     mirrorView,
	}
	if err := s.storyRepo.UpdateDerivedCounters(ctx, storyID, counters); err != nil {
		return false, err
	}

	return changed, nil
}

// acquireLock 防止两次全量重算并行。Redis 不可用时放行，
// 幂等性保证并行执行最多浪费算力而不破坏数据。
func (s *recomputeServiceImpl) acquireLock(ctx context.Context) (func(), error) {
	if !redis.Ready() {
		return func() {}, nil
	}

	token := uuid.NewString()
	ok, err := redis.TryLock(ctx, consts.RecomputeLock, token, recomputeLockTTL, 1)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRecomputeRunning
	}
	return func() {
		redis.UnLock(ctx, consts.RecomputeLock, token)
	}, nil
}
