package api

import (
	"StoryStats/internal/api/middleware"
	"StoryStats/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		statsGroup := apiGroup.Group("/stats")
		{
			statsGroup.GET("/story/:story_id", group.StatsHandler.GetStoryStats)
			statsGroup.POST("/listing", group.StatsHandler.GetListingStats)
			statsGroup.GET("/dashboard", group.DashboardHandler.GetDashboard)
		}

		// 内部接口，供其他服务回调计数事件
		counterGroup := apiGroup.Group("/internal/counters")
		{
			counterGroup.POST("/like", group.CounterHandler.LikeAdded)
			counterGroup.POST("/unlike", group.CounterHandler.LikeRemoved)
			counterGroup.POST("/comment", group.CounterHandler.CommentAdded)
			counterGroup.POST("/view", group.CounterHandler.ViewRecorded)
			counterGroup.POST("/rating", group.CounterHandler.RatingUpserted)
			counterGroup.DELETE("/rating", group.CounterHandler.RatingRemoved)
		}

		adminGroup := apiGroup.Group("/admin/stats")
		{
			adminGroup.POST("/recompute", group.AdminStatsHandler.RecomputeAll)
			adminGroup.POST("/recompute/:story_id", group.AdminStatsHandler.RecomputeStory)
			adminGroup.GET("/cache/status", group.AdminStatsHandler.CacheStatus)
			adminGroup.POST("/migrate-legacy", group.AdminStatsHandler.MigrateLegacy)
		}
	}

	return r
}
