package repository

import (
	"StoryStats/internal/model"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StoryRepo interface {
	GetStory(ctx context.Context, storyID uint64) (*model.Story, error)
	GetStoriesByIDs(ctx context.Context, storyIDs []uint64) ([]*model.Story, error)
	ListPublishedIDs(ctx context.Context) ([]uint64, error)
	CountPublished(ctx context.Context) (int64, error)

	IncLikeCount(ctx context.Context, storyID uint64, delta int64) error
	IncCommentCount(ctx context.Context, storyID uint64, delta int64) error
	IncViewCount(ctx context.Context, storyID uint64) error
	ApplyRatingDelta(ctx context.Context, storyID uint64, sumDelta float64, countDelta int64) error

	UpdateDerivedCounters(ctx context.Context, storyID uint64, counters *model.DerivedCounters) error
	AggregateCounterTotals(ctx context.Context) (*model.CounterTotals, error)
	MigrateLegacyFields(ctx context.Context) (int64, error)
}

type storyRepoImpl struct {
	col *mongo.Collection
}

func NewStoryRepository(db *mongo.Database) StoryRepo {
	return &storyRepoImpl{
		col: db.Collection("stories"),
	}
}

func (r *storyRepoImpl) GetStory(ctx context.Context, storyID uint64) (*model.Story, error) {
	var story model.Story
	err := r.col.FindOne(ctx, bson.M{"_id": storyID}).Decode(&story)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &story, nil
}

// GetStoriesByIDs 单次 $in 批量查询，不做逐条往返
func (r *storyRepoImpl) GetStoriesByIDs(ctx context.Context, storyIDs []uint64) ([]*model.Story, error) {
	if len(storyIDs) == 0 {
		return nil, nil
	}

	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": storyIDs}})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var stories []*model.Story
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// ListPublishedIDs 只投影 _id，避免把整条文档拉进内存
func (r *storyRepoImpl) ListPublishedIDs(ctx context.Context) ([]uint64, error) {
	findOptions := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.col.Find(ctx, bson.M{"published": true}, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []struct {
		ID uint64 `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *storyRepoImpl) CountPublished(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"published": true})
}

// IncLikeCount 单字段原子自增，并发点赞不会互相覆盖
func (r *storyRepoImpl) IncLikeCount(ctx context.Context, storyID uint64, delta int64) error {
	return r.incField(ctx, storyID, "like_count", delta)
}

func (r *storyRepoImpl) IncCommentCount(ctx context.Context, storyID uint64, delta int64) error {
	return r.incField(ctx, storyID, "comment_count", delta)
}

func (r *storyRepoImpl) IncViewCount(ctx context.Context, storyID uint64) error {
	return r.incField(ctx, storyID, "view_count", 1)
}

func (r *storyRepoImpl) incField(ctx context.Context, storyID uint64, field string, delta int64) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": storyID},
		bson.M{
			"$inc": bson.M{field: delta},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyRatingDelta 在一次管道更新内调整 rating_sum / rating_count
// 并重新派生 average_rating，保证单文档原子性
func (r *storyRepoImpl) ApplyRatingDelta(ctx context.Context, storyID uint64, sumDelta float64, countDelta int64) error {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"rating_sum": bson.M{"$add": bson.A{
				bson.M{"$ifNull": bson.A{"$rating_sum", 0}}, sumDelta,
			}},
			"rating_count": bson.M{"$add": bson.A{
				bson.M{"$ifNull": bson.A{"$rating_count", 0}}, countDelta,
			}},
			"updated_at": time.Now(),
		}}},
		{{Key: "$set", Value: bson.M{
			"average_rating": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$rating_count", 0}},
				bson.M{"$round": bson.A{
					bson.M{"$divide": bson.A{"$rating_sum", "$rating_count"}}, 1,
				}},
				0,
			}},
		}}},
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": storyID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateDerivedCounters 重算引擎把派生计数镜像回 Story。
// counters.ViewCount 为 nil 时不触碰阅读计数（增量路径是其权威来源）。
func (r *storyRepoImpl) UpdateDerivedCounters(ctx context.Context, storyID uint64, counters *model.DerivedCounters) error {
	set := bson.M{
		"like_count":     counters.LikeCount,
		"comment_count":  counters.CommentCount,
		"rating_count":   counters.RatingCount,
		"rating_sum":     counters.RatingSum,
		"average_rating": counters.AverageRating,
		"updated_at":     time.Now(),
	}
	if counters.ViewCount != nil {
		set["view_count"] = *counters.ViewCount
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": storyID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AggregateCounterTotals 汇总已发布故事的计数字段，供健康检查比对漂移
func (r *storyRepoImpl) AggregateCounterTotals(ctx context.Context) (*model.CounterTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"published": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"view_count":    bson.M{"$sum": "$view_count"},
			"like_count":    bson.M{"$sum": "$like_count"},
			"comment_count": bson.M{"$sum": "$comment_count"},
			"rating_count":  bson.M{"$sum": "$rating_count"},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var totals []*model.CounterTotals
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return &model.CounterTotals{}, nil
	}
	return totals[0], nil
}

// MigrateLegacyFields 一次性迁移：把历史字段 views / rating 重命名为
// 规范字段 view_count / average_rating。$exists 过滤保证可重复执行且
// 必然终止（匹配集只会缩小），已有规范字段的文档先丢弃旧值再重命名。
func (r *storyRepoImpl) MigrateLegacyFields(ctx context.Context) (int64, error) {
	var migrated int64

	renames := []struct {
		legacy    string
		canonical string
	}{
		{"views", "view_count"},
		{"rating", "average_rating"},
	}

	for _, f := range renames {
		// 两个字段并存时规范字段为准，直接丢弃旧字段
		_, err := r.col.UpdateMany(ctx,
			bson.M{f.legacy: bson.M{"$exists": true}, f.canonical: bson.M{"$exists": true}},
			bson.M{"$unset": bson.M{f.legacy: ""}},
		)
		if err != nil {
			return migrated, err
		}

		res, err := r.col.UpdateMany(ctx,
			bson.M{f.legacy: bson.M{"$exists": true}},
			bson.M{"$rename": bson.M{f.legacy: f.canonical}},
		)
		if err != nil {
			return migrated, err
		}
		migrated += res.ModifiedCount
	}

	return migrated, nil
}
