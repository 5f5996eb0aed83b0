package service

import (
	"StoryStats/internal/api/dto"
	"StoryStats/internal/repository"
	"context"
	log "log/slog"
)

// MigrationService 遗留字段的一次性迁移（views → view_count，
// rating → average_rating）。可重复调用，已迁移库上执行是空操作。
type MigrationService interface {
	MigrateLegacyFields(ctx context.Context) (*dto.MigrateReportDTO, error)
}

type migrationServiceImpl struct {
	storyRepo repository.StoryRepo
}

func NewMigrationService(storyRepo repository.StoryRepo) MigrationService {
	return &migrationServiceImpl{
		storyRepo: storyRepo,
	}
}

func (s *migrationServiceImpl) MigrateLegacyFields(ctx context.Context) (*dto.MigrateReportDTO, error) {
	migrated, err := s.storyRepo.MigrateLegacyFields(ctx)
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "legacy stat fields migrated", "docs", migrated)
	return &dto.MigrateReportDTO{MigratedDocs: migrated}, nil
}
