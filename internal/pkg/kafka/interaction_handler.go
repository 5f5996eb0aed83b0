package kafka

import (
	"StoryStats/internal/service"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
)

// InteractionHandler 消费互动事件并调用增量更新器
type InteractionHandler struct {
	counterSvc service.CounterService
}

func NewInteractionHandler(counterSvc service.CounterService) *InteractionHandler {
	return &InteractionHandler{
		counterSvc: counterSvc,
	}
}

func (s *InteractionHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("interaction consumer setup")
	return nil
}

func (s *InteractionHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("interaction consumer cleanup")
	return nil
}

func (s *InteractionHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-interaction consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-interaction process batch error", "err", err)
		return err
	}
	return nil
}

func (s *InteractionHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	evt, err := ToInteractionEvent(msg)
	if err != nil {
		// 坏消息重试也不会变好，记录后跳过
		log.ErrorContext(ctx, "unmarshal interaction event error", "err", err)
		return nil
	}
	return s.Dispatch(ctx, evt)
}

// Dispatch 按事件类型调用对应的增量更新器。
// 未知故事不视为失败：事件已持久化，计数由重算自愈。
func (s *InteractionHandler) Dispatch(ctx context.Context, evt *InteractionEvent) error {
	var err error
	switch evt.Type {
	case EventLikeAdded:
		err = s.counterSvc.OnLikeAdded(ctx, evt.StoryID)
	case EventLikeRemoved:
		err = s.counterSvc.OnLikeRemoved(ctx, evt.StoryID)
	case EventCommentAdded:
		err = s.counterSvc.OnCommentAdded(ctx, evt.StoryID)
	case EventViewRecorded:
		err = s.counterSvc.OnViewRecorded(ctx, evt.StoryID)
	case EventRatingUpserted:
		err = s.counterSvc.OnRatingUpserted(ctx, evt.StoryID, evt.OldRating, evt.Rating)
	case EventRatingRemoved:
		if evt.OldRating == nil {
			log.WarnContext(ctx, "rating_removed without old rating", "storyID", evt.StoryID)
			return nil
		}
		err = s.counterSvc.OnRatingRemoved(ctx, evt.StoryID, *evt.OldRating)
	default:
		log.WarnContext(ctx, "unknown interaction event type", "type", evt.Type)
		return nil
	}

	if errors.Is(err, service.ErrStoryNotFound) {
		return nil
	}
	return err
}
