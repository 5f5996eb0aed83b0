package model

import (
	"time"
)

// Story 故事主文档，内嵌规范化的统计计数字段。
// 每个统计概念只有一个规范字段名，历史遗留字段（views / rating）
// 由一次性迁移重命名，不再出现在类型定义中。
type Story struct {
	ID            uint64    `bson:"_id" json:"storyId"`
	AuthorID      uint64    `bson:"author_id" json:"authorId"`
	Title         string    `bson:"title" json:"title"`
	Published     bool      `bson:"published" json:"published"`
	ViewCount     int64     `bson:"view_count" json:"viewCount"`
	LikeCount     int64     `bson:"like_count" json:"likeCount"`
	CommentCount  int64     `bson:"comment_count" json:"commentCount"`
	RatingCount   int64     `bson:"rating_count" json:"ratingCount"`
	RatingSum     float64   `bson:"rating_sum" json:"-"`
	AverageRating float64   `bson:"average_rating" json:"averageRating"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

// DerivedCounters 重算引擎写回 Story 的派生计数。
// ViewCount 为 nil 时表示阅读计数由增量路径维护，本次不覆盖。
type DerivedCounters struct {
	LikeCount     int64
	CommentCount  int64
	RatingCount   int64
	RatingSum     float64
	AverageRating float64
	ViewCount     *int64
}

// CounterTotals Story 计数字段的全站汇总，用于缓存健康检查的漂移对比
type CounterTotals struct {
	ViewCount    int64 `bson:"view_count" json:"viewCount"`
	LikeCount    int64 `bson:"like_count" json:"likeCount"`
	CommentCount int64 `bson:"comment_count" json:"commentCount"`
	RatingCount  int64 `bson:"rating_count" json:"ratingCount"`
}
