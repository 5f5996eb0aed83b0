package service

import (
	"StoryStats/internal/model"
	"StoryStats/internal/pkg/util"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentLikeAdds(t *testing.T) {
	storyRepo := newFakeStoryRepo(&model.Story{ID: 1, Published: true})
	svc := NewCounterService(storyRepo)

	const likes = 50
	var wg sync.WaitGroup
	for i := 0; i < likes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.OnLikeAdded(context.Background(), 1))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(likes), storyRepo.story(1).LikeCount)
}

func TestLikeRemovedDecrements(t *testing.T) {
	storyRepo := newFakeStoryRepo(&model.Story{ID: 1, LikeCount: 2})
	svc := NewCounterService(storyRepo)

	require.NoError(t, svc.OnLikeRemoved(context.Background(), 1))
	assert.Equal(t, int64(1), storyRepo.story(1).LikeCount)
}

func TestViewAndCommentCounters(t *testing.T) {
	storyRepo := newFakeStoryRepo(&model.Story{ID: 7})
	svc := NewCounterService(storyRepo)

	require.NoError(t, svc.OnViewRecorded(context.Background(), 7))
	require.NoError(t, svc.OnViewRecorded(context.Background(), 7))
	require.NoError(t, svc.OnCommentAdded(context.Background(), 7))

	story := storyRepo.story(7)
	assert.Equal(t, int64(2), story.ViewCount)
	assert.Equal(t, int64(1), story.CommentCount)
}

func TestRatingDeltaAlgebra(t *testing.T) {
	storyRepo := newFakeStoryRepo(&model.Story{ID: 1})
	svc := NewCounterService(storyRepo)
	ctx := context.Background()

	// 新增评分 4
	require.NoError(t, svc.OnRatingUpserted(ctx, 1, nil, 4))
	story := storyRepo.story(1)
	assert.Equal(t, int64(1), story.RatingCount)
	assert.Equal(t, 4.0, story.AverageRating)

	// 同一用户把 4 改成 2：数量不变，均值跟随
	require.NoError(t, svc.OnRatingUpserted(ctx, 1, util.PtrFloat64(4), 2))
	story = storyRepo.story(1)
	assert.Equal(t, int64(1), story.RatingCount)
	assert.Equal(t, 2.0, story.AverageRating)

	// 第二个用户评 5
	require.NoError(t, svc.OnRatingUpserted(ctx, 1, nil, 5))
	story = storyRepo.story(1)
	assert.Equal(t, int64(2), story.RatingCount)
	assert.Equal(t, 3.5, story.AverageRating)

	// 撤回 2 之后只剩 5
	require.NoError(t, svc.OnRatingRemoved(ctx, 1, 2))
	story = storyRepo.story(1)
	assert.Equal(t, int64(1), story.RatingCount)
	assert.Equal(t, 5.0, story.AverageRating)

	// 最后一条也撤回，均值归零
	require.NoError(t, svc.OnRatingRemoved(ctx, 1, 5))
	story = storyRepo.story(1)
	assert.Zero(t, story.RatingCount)
	assert.Zero(t, story.AverageRating)
}

func TestCounterOnUnknownStory(t *testing.T) {
	svc := NewCounterService(newFakeStoryRepo())

	err := svc.OnLikeAdded(context.Background(), 404)
	assert.ErrorIs(t, err, ErrStoryNotFound)

	err = svc.OnRatingUpserted(context.Background(), 404, nil, 5)
	assert.ErrorIs(t, err, ErrStoryNotFound)
}
