package api

import "StoryStats/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	StatsHandler      *handler.StatsHandler
	DashboardHandler  *handler.DashboardHandler
	CounterHandler    *handler.CounterHandler
	AdminStatsHandler *handler.AdminStatsHandler
}
