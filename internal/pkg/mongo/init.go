package mongo

import (
	"StoryStats/internal/api/config"
	"StoryStats/internal/pkg/logger"
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitMongo 建立连接并返回 Database 引用，同时初始化索引。
// 客户端生命周期由调用方持有：进程启动时创建，退出时 Close。
func InitMongo(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 建立连接
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URL).
		SetMonitor(logger.NewMongoMonitor()),
	)
	if err != nil {
		return nil, err
	}

	// 检查连通性
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.Database)

	if err = ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	log.Info("MongoDB initialized successfully", "db", cfg.Database)
	return db, nil
}

// Close 断开 Mongo 连接
func Close(ctx context.Context, db *mongo.Database) {
	if db == nil {
		return
	}
	if err := db.Client().Disconnect(ctx); err != nil {
		log.Error("MongoDB disconnect failed", "err", err)
	}
}

// ensureIndexes 创建事件集合与统计缓存的索引，重复创建是幂等的
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		"likes": {
			{Keys: bson.D{{Key: "story_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: unique},
		},
		"ratings": {
			{Keys: bson.D{{Key: "story_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "story_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"view_events": {
			{Keys: bson.D{{Key: "story_id", Value: 1}, {Key: "viewer_id", Value: 1}}},
			{Keys: bson.D{{Key: "viewed_at", Value: 1}}},
		},
		"login_logs": {
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
		"story_stats_cache": {
			{Keys: bson.D{{Key: "last_calculated", Value: 1}}},
		},
		"stories": {
			{Keys: bson.D{{Key: "published", Value: 1}}},
		},
	}

	for col, models := range indexes {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
