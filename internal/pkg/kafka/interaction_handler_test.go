package kafka

import (
	"StoryStats/internal/pkg/util"
	"StoryStats/internal/service"
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCounterService struct {
	calls []string
	err   error
}

func (s *recordingCounterService) record(call string) error {
	s.calls = append(s.calls, call)
	return s.err
}

func (s *recordingCounterService) OnLikeAdded(context.Context, uint64) error {
	return s.record("like_added")
}

func (s *recordingCounterService) OnLikeRemoved(context.Context, uint64) error {
	return s.record("like_removed")
}

func (s *recordingCounterService) OnCommentAdded(context.Context, uint64) error {
	return s.record("comment_added")
}

func (s *recordingCounterService) OnViewRecorded(context.Context, uint64) error {
	return s.record("view_recorded")
}

func (s *recordingCounterService) OnRatingUpserted(context.Context, uint64, *float64, float64) error {
	return s.record("rating_upserted")
}

func (s *recordingCounterService) OnRatingRemoved(context.Context, uint64, float64) error {
	return s.record("rating_removed")
}

func TestToInteractionEvent(t *testing.T) {
	msg := &sarama.ConsumerMessage{
		Value: []byte(`{"type":"rating_upserted","storyId":7,"userId":3,"rating":4.5,"oldRating":3}`),
	}

	evt, err := ToInteractionEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, EventRatingUpserted, evt.Type)
	assert.Equal(t, uint64(7), evt.StoryID)
	assert.Equal(t, 4.5, evt.Rating)
	require.NotNil(t, evt.OldRating)
	assert.Equal(t, 3.0, *evt.OldRating)
}

func TestToInteractionEventRejectsBadPayload(t *testing.T) {
	_, err := ToInteractionEvent(&sarama.ConsumerMessage{Value: []byte(`not json`)})
	assert.Error(t, err)

	_, err = ToInteractionEvent(&sarama.ConsumerMessage{Value: []byte(`{"storyId":1}`)})
	assert.Error(t, err)

	_, err = ToInteractionEvent(&sarama.ConsumerMessage{Value: []byte(`{"type":"like_added"}`)})
	assert.Error(t, err)
}

func TestDispatchRoutesByEventType(t *testing.T) {
	svc := &recordingCounterService{}
	handler := NewInteractionHandler(svc)
	ctx := context.Background()

	events := []*InteractionEvent{
		{Type: EventLikeAdded, StoryID: 1},
		{Type: EventLikeRemoved, StoryID: 1},
		{Type: EventCommentAdded, StoryID: 1},
		{Type: EventViewRecorded, StoryID: 1},
		{Type: EventRatingUpserted, StoryID: 1, Rating: 5},
		{Type: EventRatingRemoved, StoryID: 1, OldRating: util.PtrFloat64(4)},
	}
	for _, evt := range events {
		require.NoError(t, handler.Dispatch(ctx, evt))
	}

	assert.Equal(t, []string{
		"like_added", "like_removed", "comment_added",
		"view_recorded", "rating_upserted", "rating_removed",
	}, svc.calls)
}

func TestDispatchSkipsUnknownTypeAndStory(t *testing.T) {
	svc := &recordingCounterService{}
	handler := NewInteractionHandler(svc)

	// 未知事件类型跳过，不报错
	require.NoError(t, handler.Dispatch(context.Background(), &InteractionEvent{Type: "bookmark_added", StoryID: 1}))
	assert.Empty(t, svc.calls)

	// 缺少旧评分的删除事件跳过
	require.NoError(t, handler.Dispatch(context.Background(), &InteractionEvent{Type: EventRatingRemoved, StoryID: 1}))
	assert.Empty(t, svc.calls)

	// 未知故事不算失败，事件已持久化，重算会自愈
	svc.err = service.ErrStoryNotFound
	require.NoError(t, handler.Dispatch(context.Background(), &InteractionEvent{Type: EventLikeAdded, StoryID: 404}))
}

func TestDispatchPropagatesStoreErrors(t *testing.T) {
	svc := &recordingCounterService{err: errors.New("mongo down")}
	handler := NewInteractionHandler(svc)

	err := handler.Dispatch(context.Background(), &InteractionEvent{Type: EventLikeAdded, StoryID: 1})
	assert.Error(t, err)
}
