package wire

import (
	"StoryStats/internal/api"
	"StoryStats/internal/api/config"
	"StoryStats/internal/api/handler"
	"StoryStats/internal/job"
	"StoryStats/internal/pkg/cron"
	"StoryStats/internal/pkg/kafka"
	"StoryStats/internal/repository"
	"StoryStats/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
}

func BuildApplication(db *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	storyRepo := repository.NewStoryRepository(db)
	eventStoreRepo := repository.NewEventStoreRepository(db)
	statsCacheRepo := repository.NewStatsCacheRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	counterService := service.NewCounterService(storyRepo)
	recomputeService := service.NewRecomputeService(storyRepo, eventStoreRepo, statsCacheRepo, cfg.Stats)
	statsService := service.NewStatsService(storyRepo, eventStoreRepo, statsCacheRepo, cfg.Stats)
	dashboardService := service.NewDashboardService(dashboardRepo, cfg.Stats)
	cacheHealthService := service.NewCacheHealthService(storyRepo, statsCacheRepo, cfg.Stats)
	migrationService := service.NewMigrationService(storyRepo)

	handlers := &api.HandlersGroup{
		StatsHandler:      handler.NewStatsHandler(statsService),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService),
		CounterHandler:    handler.NewCounterHandler(counterService),
		AdminStatsHandler: handler.NewAdminStatsHandler(recomputeService, cacheHealthService, migrationService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(
		cfg.Stats,
		job.NewStatsSyncJob(recomputeService),
		job.NewFullRecomputeJob(recomputeService),
	)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, counterService)
	if err != nil {
		return nil, err
	}

	return &ApplicationContainer{
		Router:       router,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
	}, nil
}
