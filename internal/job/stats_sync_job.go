package job

import (
	"StoryStats/internal/pkg/logger"
	"StoryStats/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// StatsSyncJob 周期性消费脏集合，只重算近期有互动的故事
type StatsSyncJob struct {
	recomputeSvc service.RecomputeService
}

func NewStatsSyncJob(recomputeSvc service.RecomputeService) *StatsSyncJob {
	return &StatsSyncJob{
		recomputeSvc: recomputeSvc,
	}
}

func (s *StatsSyncJob) Run() {
	traceID := "job-stats-sync-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	report, err := s.recomputeSvc.RecomputeDirty(ctx)
	if err != nil {
		log.ErrorContext(ctx, "stats dirty sync error", "err", err)
		return
	}
	if report.Processed == 0 {
		return
	}

	log.InfoContext(ctx, "stats dirty sync success",
		"processed", report.Processed,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"failed", report.Failed)
}
