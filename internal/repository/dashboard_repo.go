package repository

import (
	"StoryStats/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DashboardRepo 仪表盘的各项独立聚合。全部直接扫原始集合，
// 刻意绕过 Story 计数与统计缓存：仪表盘要的是指定窗口内的字面事件历史。
type DashboardRepo interface {
	CountUsers(ctx context.Context) (int64, error)
	CountStories(ctx context.Context) (int64, error)
	CountPublishedStories(ctx context.Context) (int64, error)
	CountStoriesSince(ctx context.Context, since time.Time) (int64, error)
	CountViewsSince(ctx context.Context, since time.Time) (int64, error)
	TopLikedSince(ctx context.Context, since time.Time, limit int) ([]*model.StoryRank, error)
	TopCommentedSince(ctx context.Context, since time.Time, limit int) ([]*model.StoryRank, error)
	TopRatedSince(ctx context.Context, since time.Time, minRatings int64, limit int) ([]*model.StoryRank, error)
	LoginSuccessRate(ctx context.Context, since time.Time) (rate float64, total int64, err error)
}

type dashboardRepoImpl struct {
	users      *mongo.Collection
	stories    *mongo.Collection
	likes      *mongo.Collection
	ratings    *mongo.Collection
	comments   *mongo.Collection
	viewEvents *mongo.Collection
	loginLogs  *mongo.Collection
}

func NewDashboardRepository(db *mongo.Database) DashboardRepo {
	return &dashboardRepoImpl{
		users:      db.Collection("users"),
		stories:    db.Collection("stories"),
		likes:      db.Collection("likes"),
		ratings:    db.Collection("ratings"),
		comments:   db.Collection("comments"),
		viewEvents: db.Collection("view_events"),
		loginLogs:  db.Collection("login_logs"),
	}
}

func (r *dashboardRepoImpl) CountUsers(ctx context.Context) (int64, error) {
	return r.users.CountDocuments(ctx, bson.M{})
}

func (r *dashboardRepoImpl) CountStories(ctx context.Context) (int64, error) {
	return r.stories.CountDocuments(ctx, bson.M{})
}

func (r *dashboardRepoImpl) CountPublishedStories(ctx context.Context) (int64, error) {
	return r.stories.CountDocuments(ctx, bson.M{"published": true})
}

func (r *dashboardRepoImpl) CountStoriesSince(ctx context.Context, since time.Time) (int64, error) {
	return r.stories.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}})
}

func (r *dashboardRepoImpl) CountViewsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.viewEvents.CountDocuments(ctx, bson.M{"viewed_at": bson.M{"$gte": since}})
}

// TopLikedSince 窗口内获赞最多的故事
func (r *dashboardRepoImpl) TopLikedSince(ctx context.Context, since time.Time, limit int) ([]*model.StoryRank, error) {
	return r.topByCount(ctx, r.likes, "created_at", since, limit)
}

// TopCommentedSince 窗口内被评论最多的故事
func (r *dashboardRepoImpl) TopCommentedSince(ctx context.Context, since time.Time, limit int) ([]*model.StoryRank, error) {
	return r.topByCount(ctx, r.comments, "created_at", since, limit)
}

// topByCount 按 story_id 分组计数取 TopN，$lookup 补齐标题
func (r *dashboardRepoImpl) topByCount(ctx context.Context, col *mongo.Collection, timeField string, since time.Time, limit int) ([]*model.StoryRank, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{timeField: bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$story_id",
			"value": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "value", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, lookupTitleStages()...)

	return r.decodeRanks(ctx, col, pipeline)
}

// TopRatedSince 窗口内平均分最高的故事，评分数不足 minRatings 的不上榜
func (r *dashboardRepoImpl) TopRatedSince(ctx context.Context, since time.Time, minRatings int64, limit int) ([]*model.StoryRank, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$story_id",
			"value": bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$match", Value: bson.M{"count": bson.M{"$gte": minRatings}}}},
		{{Key: "$sort", Value: bson.D{{Key: "value", Value: -1}, {Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, lookupTitleStages()...)

	return r.decodeRanks(ctx, r.ratings, pipeline)
}

// LoginSuccessRate 窗口内登录成功率，无日志时返回 0
func (r *dashboardRepoImpl) LoginSuccessRate(ctx context.Context, since time.Time) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"success": bson.M{"$sum": bson.M{
				"$cond": bson.A{"$success", 1, 0},
			}},
		}}},
	}

	cursor, err := r.loginLogs.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var results []struct {
		Total   int64 `bson:"total"`
		Success int64 `bson:"success"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 || results[0].Total == 0 {
		return 0, 0, nil
	}
	return float64(results[0].Success) / float64(results[0].Total), results[0].Total, nil
}

// lookupTitleStages 关联 stories 集合取标题，缺失时置空串
func lookupTitleStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         "stories",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "story",
		}}},
		{{Key: "$set", Value: bson.M{
			"title": bson.M{"$ifNull": bson.A{
				bson.M{"$first": "$story.title"}, "",
			}},
		}}},
		{{Key: "$unset", Value: "story"}},
	}
}

func (r *dashboardRepoImpl) decodeRanks(ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) ([]*model.StoryRank, error) {
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	ranks := make([]*model.StoryRank, 0)
	if err := cursor.All(ctx, &ranks); err != nil {
		return nil, err
	}
	return ranks, nil
}
