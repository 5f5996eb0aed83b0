package handler

import (
	"StoryStats/internal/api/dto"
	"StoryStats/internal/pkg/response"
	"StoryStats/internal/service"
	"context"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// CounterHandler 增量更新器的内部入口，由互动端点在写入事件后回调。
// 计数修正失败不回传失败：事件已持久化，统计由重算自愈，
// 互动请求不应因计数缓存出错而失败。
type CounterHandler struct {
	counterSvc service.CounterService
}

func NewCounterHandler(counterSvc service.CounterService) *CounterHandler {
	return &CounterHandler{
		counterSvc: counterSvc,
	}
}

func (h *CounterHandler) LikeAdded(c *gin.Context) {
	h.handle(c, "like_added", func(ctx context.Context, req *dto.CounterEventDTO) error {
		return h.counterSvc.OnLikeAdded(ctx, req.StoryID)
	})
}

func (h *CounterHandler) LikeRemoved(c *gin.Context) {
	h.handle(c, "like_removed", func(ctx context.Context, req *dto.CounterEventDTO) error {
		return h.counterSvc.OnLikeRemoved(ctx, req.StoryID)
	})
}

func (h *CounterHandler) CommentAdded(c *gin.Context) {
	h.handle(c, "comment_added", func(ctx context.Context, req *dto.CounterEventDTO) error {
		return h.counterSvc.OnCommentAdded(ctx, req.StoryID)
	})
}

func (h *CounterHandler) ViewRecorded(c *gin.Context) {
	h.handle(c, "view_recorded", func(ctx context.Context, req *dto.CounterEventDTO) error {
		return h.counterSvc.OnViewRecorded(ctx, req.StoryID)
	})
}

func (h *CounterHandler) RatingUpserted(c *gin.Context) {
	h.handle(c, "rating_upserted", func(ctx context.Context, req *dto.CounterEventDTO) error {
		if req.Rating == 0 {
			return service.ErrParamInvalid
		}
		return h.counterSvc.OnRatingUpserted(ctx, req.StoryID, req.OldRating, req.Rating)
	})
}

func (h *CounterHandler) RatingRemoved(c *gin.Context) {
	h.handle(c, "rating_removed", func(ctx context.Context, req *dto.CounterEventDTO) error {
		if req.OldRating == nil {
			return service.ErrParamInvalid
		}
		return h.counterSvc.OnRatingRemoved(ctx, req.StoryID, *req.OldRating)
	})
}

func (h *CounterHandler) handle(c *gin.Context, action string, fn func(ctx context.Context, req *dto.CounterEventDTO) error) {
	var req dto.CounterEventDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := fn(c.Request.Context(), &req); err != nil {
		if err == service.ErrParamInvalid {
			response.Error(c, err)
			return
		}
		log.WarnContext(c.Request.Context(), "counter update degraded", "action", action, "storyID", req.StoryID, "err", err)
	}
	response.Success(c, nil)
}
