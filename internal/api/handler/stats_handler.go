package handler

import (
	"StoryStats/internal/api/dto"
	"StoryStats/internal/pkg/response"
	"StoryStats/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsSvc service.StatsService
}

func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsSvc: statsSvc,
	}
}

// GetStoryStats 单故事统计，?exact_comments=true 时实时重数评论
func (h *StatsHandler) GetStoryStats(c *gin.Context) {
	storyIDStr := c.Param("story_id")
	storyID, err := strconv.ParseUint(storyIDStr, 10, 64)
	if err != nil || storyID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	exactComments := c.Query("exact_comments") == "true"

	stats, err := h.statsSvc.GetStoryStats(c.Request.Context(), storyID, exactComments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// GetListingStats 列表页批量统计
func (h *StatsHandler) GetListingStats(c *gin.Context) {
	var req dto.ListingStatsQueryDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	listing, err := h.statsSvc.GetListingStats(c.Request.Context(), req.StoryIDs, req.UseCache)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, listing)
}
