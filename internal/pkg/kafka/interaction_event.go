package kafka

import (
	"errors"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	EventLikeAdded      = "like_added"
	EventLikeRemoved    = "like_removed"
	EventCommentAdded   = "comment_added"
	EventViewRecorded   = "view_recorded"
	EventRatingUpserted = "rating_upserted"
	EventRatingRemoved  = "rating_removed"
)

// InteractionEvent 互动端点投递到 story-interactions 主题的事件。
// OldRating 仅在评分修改 / 删除时携带。
type InteractionEvent struct {
	Type      string   `json:"type"`
	StoryID   uint64   `json:"storyId"`
	UserID    uint64   `json:"userId"`
	Rating    float64  `json:"rating,omitempty"`
	OldRating *float64 `json:"oldRating,omitempty"`
}

// ToInteractionEvent 将 kafka 消息解析为互动事件
func ToInteractionEvent(msg *sarama.ConsumerMessage) (*InteractionEvent, error) {
	var evt InteractionEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return nil, err
	}

	if evt.Type == "" {
		return nil, errors.New("event type is empty")
	}
	if evt.StoryID == 0 {
		return nil, errors.New("story id is empty")
	}

	return &evt, nil
}
