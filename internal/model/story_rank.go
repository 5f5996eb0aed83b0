package model

// StoryRank 仪表盘榜单条目，Value 依榜单类型为计数或平均分
type StoryRank struct {
	StoryID uint64  `bson:"_id" json:"storyId"`
	Title   string  `bson:"title" json:"title"`
	Value   float64 `bson:"value" json:"value"`
}
