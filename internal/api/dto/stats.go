package dto

// StoryStatsDTO 单个故事的统计视图。任何读路径都返回完整对象，
// 没有事件的故事各项为 0，不出现缺字段。
type StoryStatsDTO struct {
	StoryID       uint64  `json:"storyId"`
	ViewCount     int64   `json:"viewCount"`
	LikeCount     int64   `json:"likeCount"`
	CommentCount  int64   `json:"commentCount"`
	AverageRating float64 `json:"averageRating"`
	RatingCount   int64   `json:"ratingCount"`
}

// ListingStatsQueryDTO 列表页批量统计请求
type ListingStatsQueryDTO struct {
	StoryIDs []uint64 `json:"storyIds" binding:"required,min=1,max=500,dive,gt=0"`
	UseCache bool     `json:"useCache"`
}

// ListingStatsDTO 列表页批量统计结果，顺序与请求 id 一致。
// Degraded 表示缓存路径失败后回退到了计数字段。
type ListingStatsDTO struct {
	Stats     []*StoryStatsDTO `json:"stats"`
	FromCache bool             `json:"fromCache"`
	Degraded  bool             `json:"degraded"`
}
