package config

import (
	"StoryStats/internal/pkg/consts"
	"fmt"
	"time"
)

// Config 配置主体
type Config struct {
	Server                   ServerConfig             `mapstructure:"server"`
	Mongo                    MongoConfig              `mapstructure:"mongo"`
	Redis                    RedisConfig              `mapstructure:"redis"`
	Logstash                 LogstashConfig           `mapstructure:"logstash"`
	Kafka                    KafkaConfig              `mapstructure:"kafka"`
	KafkaInteractionConsumer KafkaInteractionConsumer `mapstructure:"kafka_interaction_consumer"`
	Stats                    StatsConfig              `mapstructure:"stats"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LogstashConfig 远程日志配置
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeoutMs    int `mapstructure:"session_timeout_ms"`
	HeartbeatIntervalMs int `mapstructure:"heartbeat_interval_ms"`
	RebalanceTimeoutMs  int `mapstructure:"rebalance_timeout_ms"`
	MaxProcessingTimeMs int `mapstructure:"max_processing_time_ms"`
}

type KafkaInteractionConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// StatsConfig 统计子系统配置
type StatsConfig struct {
	// ViewCountMode 重算时阅读数口径：counter 信任增量计数，
	// unique_viewers 按阅读事件去重 viewer 统计
	ViewCountMode      string `mapstructure:"view_count_mode"`
	RecomputeWorkers   int    `mapstructure:"recompute_workers"`
	DirtySyncSpec      string `mapstructure:"dirty_sync_spec"`
	FullRecomputeSpec  string `mapstructure:"full_recompute_spec"`
	SubQueryTimeoutMs  int    `mapstructure:"sub_query_timeout_ms"`
	CacheReadTimeoutMs int    `mapstructure:"cache_read_timeout_ms"`
	DashboardCacheSec  int    `mapstructure:"dashboard_cache_sec"`
	TopN               int    `mapstructure:"top_n"`
	TopRatedMinRatings int64  `mapstructure:"top_rated_min_ratings"`
}

// ApplyDefaults 填充未配置项的默认值
func (c *StatsConfig) ApplyDefaults() {
	if c.ViewCountMode == "" {
		c.ViewCountMode = consts.ViewCountModeCounter
	}
	if c.RecomputeWorkers <= 0 {
		c.RecomputeWorkers = 8
	}
	if c.DirtySyncSpec == "" {
		c.DirtySyncSpec = "0 */5 * * * *"
	}
	if c.FullRecomputeSpec == "" {
		c.FullRecomputeSpec = "0 0 3 * * *"
	}
	if c.SubQueryTimeoutMs <= 0 {
		c.SubQueryTimeoutMs = 3000
	}
	if c.CacheReadTimeoutMs <= 0 {
		c.CacheReadTimeoutMs = 500
	}
	if c.DashboardCacheSec <= 0 {
		c.DashboardCacheSec = 60
	}
	if c.TopN <= 0 {
		c.TopN = 10
	}
	if c.TopRatedMinRatings <= 0 {
		c.TopRatedMinRatings = 3
	}
}

// Validate 拒绝无法用默认值兜底的配置项，拼错的口径不能悄悄退回 counter
func (c *StatsConfig) Validate() error {
	switch c.ViewCountMode {
	case consts.ViewCountModeCounter, consts.ViewCountModeUniqueViewers:
		return nil
	default:
		return fmt.Errorf("unknown view_count_mode %q", c.ViewCountMode)
	}
}

// SubQueryTimeout 仪表盘单个子查询的超时时间
func (c *StatsConfig) SubQueryTimeout() time.Duration {
	return time.Duration(c.SubQueryTimeoutMs) * time.Millisecond
}

// CacheReadTimeout 列表统计走缓存路径的超时时间
func (c *StatsConfig) CacheReadTimeout() time.Duration {
	return time.Duration(c.CacheReadTimeoutMs) * time.Millisecond
}

// DashboardCacheTTL 仪表盘结果的 Redis 缓存时长
func (c *StatsConfig) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheSec) * time.Second
}
