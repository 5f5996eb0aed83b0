package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EventStoreRepo 原始互动事实（点赞 / 评分 / 评论 / 阅读事件）的只读入口。
// 事件集合由互动端点写入，是统计口径的唯一事实来源。
type EventStoreRepo interface {
	CountLikes(ctx context.Context, storyID uint64) (int64, error)
	CountComments(ctx context.Context, storyID uint64) (int64, error)
	AggregateRatings(ctx context.Context, storyID uint64) (count int64, sum float64, err error)
	CountUniqueViewers(ctx context.Context, storyID uint64) (int64, error)
}

type eventStoreRepoImpl struct {
	likes      *mongo.Collection
	ratings    *mongo.Collection
	comments   *mongo.Collection
	viewEvents *mongo.Collection
}

func NewEventStoreRepository(db *mongo.Database) EventStoreRepo {
	return &eventStoreRepoImpl{
		likes:      db.Collection("likes"),
		ratings:    db.Collection("ratings"),
		comments:   db.Collection("comments"),
		viewEvents: db.Collection("view_events"),
	}
}

func (r *eventStoreRepoImpl) CountLikes(ctx context.Context, storyID uint64) (int64, error) {
	return r.likes.CountDocuments(ctx, bson.M{"story_id": storyID})
}

func (r *eventStoreRepoImpl) CountComments(ctx context.Context, storyID uint64) (int64, error) {
	return r.comments.CountDocuments(ctx, bson.M{"story_id": storyID})
}

// AggregateRatings 一次聚合同时取评分条数与总分
func (r *eventStoreRepoImpl) AggregateRatings(ctx context.Context, storyID uint64) (int64, float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"story_id": storyID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"count": bson.M{"$sum": 1},
			"sum":   bson.M{"$sum": "$rating"},
		}}},
	}

	cursor, err := r.ratings.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var results []struct {
		Count int64   `bson:"count"`
		Sum   float64 `bson:"sum"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Count, results[0].Sum, nil
}

// CountUniqueViewers 按 viewer 去重的阅读数（unique_viewers 口径）
func (r *eventStoreRepoImpl) CountUniqueViewers(ctx context.Context, storyID uint64) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"story_id": storyID}}},
		{{Key: "$group", Value: bson.M{"_id": "$viewer_id"}}},
		{{Key: "$count", Value: "count"}},
	}

	cursor, err := r.viewEvents.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var results []struct {
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Count, nil
}
