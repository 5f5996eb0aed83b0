package handler

import (
	"StoryStats/internal/pkg/response"
	"StoryStats/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AdminStatsHandler struct {
	recomputeSvc   service.RecomputeService
	cacheHealthSvc service.CacheHealthService
	migrationSvc   service.MigrationService
}

func NewAdminStatsHandler(
	recomputeSvc service.RecomputeService,
	cacheHealthSvc service.CacheHealthService,
	migrationSvc service.MigrationService,
) *AdminStatsHandler {
	return &AdminStatsHandler{
		recomputeSvc:   recomputeSvc,
		cacheHealthSvc: cacheHealthSvc,
		migrationSvc:   migrationSvc,
	}
}

// RecomputeAll 全量重算，同步执行并返回批次报告
func (h *AdminStatsHandler) RecomputeAll(c *gin.Context) {
	report, err := h.recomputeSvc.RecomputeAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, report)
}

// RecomputeStory 单故事重算
func (h *AdminStatsHandler) RecomputeStory(c *gin.Context) {
	storyIDStr := c.Param("story_id")
	storyID, err := strconv.ParseUint(storyIDStr, 10, 64)
	if err != nil || storyID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := h.recomputeSvc.RecomputeStory(c.Request.Context(), storyID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// CacheStatus 统计缓存健康报告
func (h *AdminStatsHandler) CacheStatus(c *gin.Context) {
	status, err := h.cacheHealthSvc.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status)
}

// MigrateLegacy 一次性迁移遗留统计字段
func (h *AdminStatsHandler) MigrateLegacy(c *gin.Context) {
	report, err := h.migrationSvc.MigrateLegacyFields(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, report)
}
