package service

import (
	"StoryStats/internal/pkg/consts"
	"StoryStats/internal/pkg/redis"
	"StoryStats/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"

	"go.mongodb.org/mongo-driver/mongo"
)

// CounterService 增量更新器：互动发生时对 Story 计数做单文档原子修正。
// 只写计数字段，绝不触碰统计缓存。更新失败不回滚触发它的互动——
// 事件记录才是事实来源，计数由下一次重算自愈，调用方只需记录错误。
type CounterService interface {
	OnLikeAdded(ctx context.Context, storyID uint64) error
	OnLikeRemoved(ctx context.Context, storyID uint64) error
	OnCommentAdded(ctx context.Context, storyID uint64) error
	OnViewRecorded(ctx context.Context, storyID uint64) error
	OnRatingUpserted(ctx context.Context, storyID uint64, oldRating *float64, newRating float64) error
	OnRatingRemoved(ctx context.Context, storyID uint64, oldRating float64) error
}

type counterServiceImpl struct {
	storyRepo repository.StoryRepo
}

func NewCounterService(storyRepo repository.StoryRepo) CounterService {
	return &counterServiceImpl{
		storyRepo: storyRepo,
	}
}

func (s *counterServiceImpl) OnLikeAdded(ctx context.Context, storyID uint64) error {
	return s.apply(ctx, storyID, "like_added", func() error {
		return s.storyRepo.IncLikeCount(ctx, storyID, 1)
	})
}

func (s *counterServiceImpl) OnLikeRemoved(ctx context.Context, storyID uint64) error {
	return s.apply(ctx, storyID, "like_removed", func() error {
		return s.storyRepo.IncLikeCount(ctx, storyID, -1)
	})
}

func (s *counterServiceImpl) OnCommentAdded(ctx context.Context, storyID uint64) error {
	return s.apply(ctx, storyID, "comment_added", func() error {
		return s.storyRepo.IncCommentCount(ctx, storyID, 1)
	})
}

func (s *counterServiceImpl) OnViewRecorded(ctx context.Context, storyID uint64) error {
	return s.apply(ctx, storyID, "view_recorded", func() error {
		return s.storyRepo.IncViewCount(ctx, storyID)
	})
}

// OnRatingUpserted 新增评分加 (rating, 1)，修改评分加 (new-old, 0)，
// 平均分在仓储层的同一次原子更新里按 sum/count 重新派生。
// 浮点累计的微小漂移由下一次全量重算消除。
func (s *counterServiceImpl) OnRatingUpserted(ctx context.Context, storyID uint64, oldRating *float64, newRating float64) error {
	sumDelta := newRating
	var countDelta int64 = 1
	if oldRating != nil {
		sumDelta = newRating - *oldRating
		countDelta = 0
	}

	return s.apply(ctx, storyID, "rating_upserted", func() error {
		return s.storyRepo.ApplyRatingDelta(ctx, storyID, sumDelta, countDelta)
	})
}

func (s *counterServiceImpl) OnRatingRemoved(ctx context.Context, storyID uint64, oldRating float64) error {
	return s.apply(ctx, storyID, "rating_removed", func() error {
		return s.storyRepo.ApplyRatingDelta(ctx, storyID, -oldRating, -1)
	})
}

// apply 执行计数修正并把故事标脏。未知故事返回 ErrStoryNotFound，
// 其他错误原样返回，由传输层决定重试与否。
func (s *counterServiceImpl) apply(ctx context.Context, storyID uint64, action string, fn func() error) error {
	if err := fn(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.WarnContext(ctx, "counter update on unknown story", "action", action, "storyID", storyID)
			return ErrStoryNotFound
		}
		log.ErrorContext(ctx, "counter update failed", "action", action, "storyID", storyID, "err", err)
		return err
	}

	s.markDirty(ctx, storyID)
	return nil
}

// markDirty 把故事 id 放入脏集合，供增量重算批次消费。尽力而为。
func (s *counterServiceImpl) markDirty(ctx context.Context, storyID uint64) {
	if !redis.Ready() {
		return
	}
	if err := redis.SAddMember(ctx, consts.StoryStatsDirtyKey, strconv.FormatUint(storyID, 10)); err != nil {
		log.WarnContext(ctx, "mark story dirty failed", "storyID", storyID, "err", err)
	}
}
