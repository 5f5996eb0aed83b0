package dto

import (
	"StoryStats/internal/model"
	"time"
)

// DashboardDTO 全站仪表盘。各指标独立聚合，单项超时降级为零值并记入
// Warnings，不影响其余指标。
type DashboardDTO struct {
	Window           string             `json:"window"`
	GeneratedAt      time.Time          `json:"generatedAt"`
	TotalUsers       int64              `json:"totalUsers"`
	TotalStories     int64              `json:"totalStories"`
	PublishedStories int64              `json:"publishedStories"`
	NewStories       int64              `json:"newStories"`
	Reads            int64              `json:"reads"`
	LoginSuccessRate float64            `json:"loginSuccessRate"`
	LoginAttempts    int64              `json:"loginAttempts"`
	MostLiked        []*model.StoryRank `json:"mostLiked"`
	MostCommented    []*model.StoryRank `json:"mostCommented"`
	TopRated         []*model.StoryRank `json:"topRated"`
	Warnings         []string           `json:"warnings,omitempty"`
}
