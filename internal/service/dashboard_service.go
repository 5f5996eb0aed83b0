package service

import (
	"StoryStats/internal/api/config"
	"StoryStats/internal/api/dto"
	"StoryStats/internal/model"
	"StoryStats/internal/pkg/consts"
	"StoryStats/internal/pkg/redis"
	"StoryStats/internal/repository"
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

// DashboardService 全站仪表盘。各指标直接聚合原始事件历史
// （绕过计数字段与统计缓存），并发扇出，单项超时只降级该项。
type DashboardService interface {
	GetDashboardTotals(ctx context.Context, window string) (*dto.DashboardDTO, error)
}

type dashboardServiceImpl struct {
	dashboardRepo repository.DashboardRepo
	statsCfg      config.StatsConfig
}

func NewDashboardService(dashboardRepo repository.DashboardRepo, statsCfg config.StatsConfig) DashboardService {
	return &dashboardServiceImpl{
		dashboardRepo: dashboardRepo,
		statsCfg:      statsCfg,
	}
}

func (s *dashboardServiceImpl) GetDashboardTotals(ctx context.Context, window string) (*dto.DashboardDTO, error) {
	since, err := windowStart(window, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := consts.DashboardCacheKey + window
	if redis.Ready() {
		if val, err := redis.GetValue(ctx, cacheKey); err == nil && val != "" {
			var cached dto.DashboardDTO
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	result := &dto.DashboardDTO{
		Window:        window,
		GeneratedAt:   time.Now(),
		MostLiked:     make([]*model.StoryRank, 0),
		MostCommented: make([]*model.StoryRank, 0),
		TopRated:      make([]*model.StoryRank, 0),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	// run 给每个子查询独立的超时预算；失败只记警告并保持零值
	run := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			subCtx, cancel := context.WithTimeout(gctx, s.statsCfg.SubQueryTimeout())
			defer cancel()

			if err := fn(subCtx); err != nil {
				log.WarnContext(gctx, "dashboard sub-query degraded", "metric", name, "err", err)
				mu.Lock()
				result.Warnings = append(result.Warnings, name+": "+err.Error())
				mu.Unlock()
			}
			return nil
		})
	}

	run("total_users", func(ctx context.Context) error {
		v, err := s.dashboardRepo.CountUsers(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		result.TotalUsers = v
		mu.Unlock()
		return nil
	})

	run("total_stories", func(ctx context.Context) error {
		v, err := s.dashboardRepo.CountStories(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		result.TotalStories = v
		mu.Unlock()
		return nil
	})

	run("published_stories", func(ctx context.Context) error {
		v, err := s.dashboardRepo.CountPublishedStories(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		result.PublishedStories = v
		mu.Unlock()
		return nil
	})

	run("new_stories", func(ctx context.Context) error {
		v, err := s.dashboardRepo.CountStoriesSince(ctx, since)
		if err != nil {
			return err
		}
		mu.Lock()
		result.NewStories = v
		mu.Unlock()
		return nil
	})

	run("reads", func(ctx context.Context) error {
		v, err := s.dashboardRepo.CountViewsSince(ctx, since)
		if err != nil {
			return err
		}
		mu.Lock()
		result.Reads = v
		mu.Unlock()
		return nil
	})

	run("login_success_rate", func(ctx context.Context) error {
		rate, total, err := s.dashboardRepo.LoginSuccessRate(ctx, since)
		if err != nil {
			return err
		}
		mu.Lock()
		result.LoginSuccessRate = rate
		result.LoginAttempts = total
		mu.Unlock()
		return nil
	})

	run("most_liked", func(ctx context.Context) error {
		ranks, err := s.dashboardRepo.TopLikedSince(ctx, since, s.statsCfg.TopN)
		if err != nil {
			return err
		}
		mu.Lock()
		result.MostLiked = ranks
		mu.Unlock()
		return nil
	})

	run("most_commented", func(ctx context.Context) error {
		ranks, err := s.dashboardRepo.TopCommentedSince(ctx, since, s.statsCfg.TopN)
		if err != nil {
			return err
		}
		mu.Lock()
		result.MostCommented = ranks
		mu.Unlock()
		return nil
	})

	run("top_rated", func(ctx context.Context) error {
		ranks, err := s.dashboardRepo.TopRatedSince(ctx, since, s.statsCfg.TopRatedMinRatings, s.statsCfg.TopN)
		if err != nil {
			return err
		}
		mu.Lock()
		result.TopRated = ranks
		mu.Unlock()
		return nil
	})

	_ = g.Wait()

	// 全部指标齐活才进缓存，降级结果不缓存
	if redis.Ready() && len(result.Warnings) == 0 {
		if b, err := json.Marshal(result); err == nil {
			_ = redis.SetWithExpiration(ctx, cacheKey, string(b), s.statsCfg.DashboardCacheTTL())
		}
	}

	return result, nil
}

// windowStart 把时间窗口解析为起始时刻
func windowStart(window string, now time.Time) (time.Time, error) {
	switch window {
	case consts.WindowWeek:
		return now.AddDate(0, 0, -7), nil
	case consts.WindowMonth:
		return now.AddDate(0, -1, 0), nil
	default:
		return time.Time{}, ErrWindowInvalid
	}
}
