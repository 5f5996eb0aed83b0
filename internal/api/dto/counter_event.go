package dto

// CounterEventDTO 互动端点回调增量更新器时的请求体。
// OldRating 仅在用户修改已有评分时携带。
type CounterEventDTO struct {
	StoryID   uint64   `json:"storyId" binding:"required,gt=0"`
	Rating    float64  `json:"rating,omitempty" binding:"omitempty,gte=1,lte=5"`
	OldRating *float64 `json:"oldRating,omitempty" binding:"omitempty,gte=1,lte=5"`
}
