package cron

import (
	"StoryStats/internal/api/config"
	"StoryStats/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine           *cron.Cron
	statsSyncJob     *job.StatsSyncJob
	fullRecomputeJob *job.FullRecomputeJob
	statsCfg         config.StatsConfig
}

func NewCronManager(
	statsCfg config.StatsConfig,
	statsSyncJob *job.StatsSyncJob,
	fullRecomputeJob *job.FullRecomputeJob,
) *Manager {
	return &Manager{
		engine:           cron.New(cron.WithSeconds()),
		statsSyncJob:     statsSyncJob,
		fullRecomputeJob: fullRecomputeJob,
		statsCfg:         statsCfg,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.statsCfg.DirtySyncSpec, s.statsSyncJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(s.statsCfg.FullRecomputeSpec, s.fullRecomputeJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
