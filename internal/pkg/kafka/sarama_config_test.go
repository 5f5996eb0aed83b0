package kafka

import (
	"StoryStats/internal/api/config"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
)

func TestNewSaramaConfigUsesMillisecondUnits(t *testing.T) {
	kafkaCfg := config.KafkaConfig{
		Consumer: config.ConsumerConfig{
			SessionTimeoutMs:    10000,
			HeartbeatIntervalMs: 3000,
			RebalanceTimeoutMs:  60000,
			MaxProcessingTimeMs: 500,
		},
	}

	c := newSaramaConfig(kafkaCfg)

	// broker 默认拒绝超过 group.max.session.timeout.ms 的会话超时，
	// 毫秒配置值必须按毫秒换算
	assert.Equal(t, 10*time.Second, c.Consumer.Group.Session.Timeout)
	assert.Equal(t, 3*time.Second, c.Consumer.Group.Heartbeat.Interval)
	assert.Equal(t, 60*time.Second, c.Consumer.Group.Rebalance.Timeout)
	assert.Equal(t, 500*time.Millisecond, c.Consumer.MaxProcessingTime)
	assert.False(t, c.Consumer.Offsets.AutoCommit.Enable)
	assert.Equal(t, sarama.OffsetNewest, c.Consumer.Offsets.Initial)
}
