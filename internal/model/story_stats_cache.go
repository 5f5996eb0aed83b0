package model

import (
	"time"
)

// StoryStatsCache 独立于 Story 写路径的统计缓存记录，
// 仅由重算引擎整条 Upsert，其他组件只读。
type StoryStatsCache struct {
	StoryID        uint64    `bson:"_id" json:"storyId"`
	ViewCount      int64     `bson:"view_count" json:"viewCount"`
	LikeCount      int64     `bson:"like_count" json:"likeCount"`
	CommentCount   int64     `bson:"comment_count" json:"commentCount"`
	AverageRating  float64   `bson:"average_rating" json:"averageRating"`
	RatingCount    int64     `bson:"rating_count" json:"ratingCount"`
	LastCalculated time.Time `bson:"last_calculated" json:"lastCalculated"`
	CalculationMs  int64     `bson:"calculation_ms" json:"calculationMs"`
	SchemaVersion  int       `bson:"schema_version" json:"schemaVersion"`
}

// SameRollup 判断两条缓存记录的统计值是否一致（忽略重算元数据）
func (c *StoryStatsCache) SameRollup(other *StoryStatsCache) bool {
	if other == nil {
		return false
	}
	return c.ViewCount == other.ViewCount &&
		c.LikeCount == other.LikeCount &&
		c.CommentCount == other.CommentCount &&
		c.AverageRating == other.AverageRating &&
		c.RatingCount == other.RatingCount
}

// CacheTotals 统计缓存的全站汇总
type CacheTotals struct {
	ViewCount    int64 `bson:"view_count" json:"viewCount"`
	LikeCount    int64 `bson:"like_count" json:"likeCount"`
	CommentCount int64 `bson:"comment_count" json:"commentCount"`
	RatingCount  int64 `bson:"rating_count" json:"ratingCount"`
}
