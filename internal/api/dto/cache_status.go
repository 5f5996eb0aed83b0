package dto

import (
	"StoryStats/internal/model"
	"time"
)

// CacheStatusDTO 统计缓存健康报告，用于决定是否触发重算
type CacheStatusDTO struct {
	PublishedStories int64              `json:"publishedStories"`
	CacheRecords     int64              `json:"cacheRecords"`
	CoveragePct      float64            `json:"coveragePct"`
	OldestCalculated *time.Time         `json:"oldestCalculated,omitempty"`
	StalenessSec     int64              `json:"stalenessSec"`
	CacheTotals      *model.CacheTotals `json:"cacheTotals"`
	Warnings         []string           `json:"warnings,omitempty"`
}
