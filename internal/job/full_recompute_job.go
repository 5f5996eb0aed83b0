package job

import (
	"StoryStats/internal/pkg/logger"
	"StoryStats/internal/service"
	"context"
	"errors"
	log "log/slog"

	"github.com/google/uuid"
)

// FullRecomputeJob 全量重算，修正增量路径累计的漂移
type FullRecomputeJob struct {
	recomputeSvc service.RecomputeService
}

func NewFullRecomputeJob(recomputeSvc service.RecomputeService) *FullRecomputeJob {
	return &FullRecomputeJob{
		recomputeSvc: recomputeSvc,
	}
}

func (s *FullRecomputeJob) Run() {
	traceID := "job-stats-full-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	report, err := s.recomputeSvc.RecomputeAll(ctx)
	if err != nil {
		if errors.Is(err, service.ErrRecomputeRunning) {
			log.WarnContext(ctx, "full recompute skipped, another run in progress")
			return
		}
		log.ErrorContext(ctx, "full recompute error", "err", err)
		return
	}

	log.InfoContext(ctx, "full recompute success",
		"processed", report.Processed,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
		"duration_ms", report.DurationMs)
}
