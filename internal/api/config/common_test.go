package config

import (
	"StoryStats/internal/pkg/consts"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsConfigApplyDefaults(t *testing.T) {
	cfg := StatsConfig{}
	cfg.ApplyDefaults()

	assert.Equal(t, consts.ViewCountModeCounter, cfg.ViewCountMode)
	assert.Equal(t, 8, cfg.RecomputeWorkers)
	assert.NotEmpty(t, cfg.DirtySyncSpec)
	assert.NotEmpty(t, cfg.FullRecomputeSpec)
	require.NoError(t, cfg.Validate())
}

func TestStatsConfigValidateViewCountMode(t *testing.T) {
	cfg := StatsConfig{ViewCountMode: consts.ViewCountModeUniqueViewers}
	cfg.ApplyDefaults()
	assert.NoError(t, cfg.Validate())

	// 拼错的口径必须在启动时报错，而不是悄悄按 counter 执行
	cfg = StatsConfig{ViewCountMode: "unique_viewer"}
	cfg.ApplyDefaults()
	assert.Error(t, cfg.Validate())
}
