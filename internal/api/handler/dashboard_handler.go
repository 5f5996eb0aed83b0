package handler

import (
	"StoryStats/internal/pkg/consts"
	"StoryStats/internal/pkg/response"
	"StoryStats/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardSvc: dashboardSvc,
	}
}

// GetDashboard 全站仪表盘，?window=week|month，默认 week
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	window := c.DefaultQuery("window", consts.WindowWeek)

	board, err := h.dashboardSvc.GetDashboardTotals(c.Request.Context(), window)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, board)
}
