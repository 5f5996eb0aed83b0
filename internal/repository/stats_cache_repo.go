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

// StatsCacheRepo 统计缓存记录的存取。写入只允许整条 Upsert，
// 唯一写方是重算引擎，其余组件只读。
type StatsCacheRepo interface {
	Get(ctx context.Context, storyID uint64) (*model.StoryStatsCache, error)
	GetByStoryIDs(ctx context.Context, storyIDs []uint64) ([]*model.StoryStatsCache, error)
	Upsert(ctx context.Context, record *model.StoryStatsCache) error
	Count(ctx context.Context) (int64, error)
	OldestCalculated(ctx context.Context) (time.Time, error)
	AggregateTotals(ctx context.Context) (*model.CacheTotals, error)
}

type statsCacheRepoImpl struct {
	col *mongo.Collection
}

func NewStatsCacheRepository(db *mongo.Database) StatsCacheRepo {
	return &statsCacheRepoImpl{
		col: db.Collection("story_stats_cache"),
	}
}

func (r *statsCacheRepoImpl) Get(ctx context.Context, storyID uint64) (*model.StoryStatsCache, error) {
	var record model.StoryStatsCache
	err := r.col.FindOne(ctx, bson.M{"_id": storyID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByStoryIDs 单次 $in 批量读取，列表页依赖此方法避免 N+1
func (r *statsCacheRepoImpl) GetByStoryIDs(ctx context.Context, storyIDs []uint64) ([]*model.StoryStatsCache, error) {
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

	var records []*model.StoryStatsCache
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Upsert 按 story id 整条覆盖，不做字段级局部更新
func (r *statsCacheRepoImpl) Upsert(ctx context.Context, record *model.StoryStatsCache) error {
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"_id": record.StoryID},
		record,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *statsCacheRepoImpl) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

// OldestCalculated 最旧一次重算时间。last_calculated 有索引，
// 升序取第一条即精确答案。无记录返回零值时间。
func (r *statsCacheRepoImpl) OldestCalculated(ctx context.Context) (time.Time, error) {
	findOptions := options.FindOne().
		SetSort(bson.D{{Key: "last_calculated", Value: 1}})

	var record model.StoryStatsCache
	err := r.col.FindOne(ctx, bson.M{}, findOptions).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return record.LastCalculated, nil
}

// AggregateTotals 缓存侧的全站汇总
func (r *statsCacheRepoImpl) AggregateTotals(ctx context.Context) (*model.CacheTotals, error) {
	pipeline := mongo.Pipeline{
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

	var totals []*model.CacheTotals
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return &model.CacheTotals{}, nil
	}
	return totals[0], nil
}
