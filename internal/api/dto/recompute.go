package dto

// RecomputeFailureDTO 批次内单个故事的失败记录
type RecomputeFailureDTO struct {
	StoryID uint64 `json:"storyId"`
	Error   string `json:"error"`
}

// RecomputeReportDTO 重算批次报告
type RecomputeReportDTO struct {
	Processed  int                    `json:"processed"`
	Updated    int                    `json:"updated"`
	Unchanged  int                    `json:"unchanged"`
	Failed     int                    `json:"failed"`
	DurationMs int64                  `json:"durationMs"`
	Failures   []*RecomputeFailureDTO `json:"failures,omitempty"`
}

// MigrateReportDTO 遗留字段迁移结果
type MigrateReportDTO struct {
	MigratedDocs int64 `json:"migratedDocs"`
}
