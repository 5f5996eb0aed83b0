package service

import (
	"StoryStats/internal/model"
	"StoryStats/internal/pkg/util"
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// fakeStoryRepo 内存版故事仓储，计数修正与真实实现同语义
type fakeStoryRepo struct {
	mu      sync.Mutex
	stories map[uint64]*model.Story

	getByIDsCalls int
	incErr        error
}

func newFakeStoryRepo(stories ...*model.Story) *fakeStoryRepo {
	r := &fakeStoryRepo{stories: make(map[uint64]*model.Story)}
	for _, s := range stories {
		r.stories[s.ID] = s
	}
	return r
}

func (r *fakeStoryRepo) GetStory(_ context.Context, storyID uint64) (*model.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	story, ok := r.stories[storyID]
	if !ok {
		return nil, nil
	}
	cp := *story
	return &cp, nil
}

func (r *fakeStoryRepo) GetStoriesByIDs(_ context.Context, storyIDs []uint64) ([]*model.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByIDsCalls++
	var out []*model.Story
	for _, id := range storyIDs {
		if story, ok := r.stories[id]; ok {
			cp := *story
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStoryRepo) ListPublishedIDs(_ context.Context) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint64
	for id, story := range r.stories {
		if story.Published {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeStoryRepo) CountPublished(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, story := range r.stories {
		if story.Published {
			n++
		}
	}
	return n, nil
}

func (r *fakeStoryRepo) IncLikeCount(_ context.Context, storyID uint64, delta int64) error {
	return r.inc(storyID, func(s *model.Story) { s.LikeCount += delta })
}

func (r *fakeStoryRepo) IncCommentCount(_ context.Context, storyID uint64, delta int64) error {
	return r.inc(storyID, func(s *model.Story) { s.CommentCount += delta })
}

func (r *fakeStoryRepo) IncViewCount(_ context.Context, storyID uint64) error {
	return r.inc(storyID, func(s *model.Story) { s.ViewCount++ })
}

func (r *fakeStoryRepo) ApplyRatingDelta(_ context.Context, storyID uint64, sumDelta float64, countDelta int64) error {
	return r.inc(storyID, func(s *model.Story) {
		s.RatingSum += sumDelta
		s.RatingCount += countDelta
		if s.RatingCount > 0 {
			s.AverageRating = util.Round1(s.RatingSum / float64(s.RatingCount))
		} else {
			s.AverageRating = 0
		}
	})
}

func (r *fakeStoryRepo) inc(storyID uint64, fn func(*model.Story)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incErr != nil {
		return r.incErr
	}
	story, ok := r.stories[storyID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	fn(story)
	return nil
}

func (r *fakeStoryRepo) UpdateDerivedCounters(_ context.Context, storyID uint64, counters *model.DerivedCounters) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	story, ok := r.stories[storyID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	story.LikeCount = counters.LikeCount
	story.CommentCount = counters.CommentCount
	story.RatingCount = counters.RatingCount
	story.RatingSum = counters.RatingSum
	story.AverageRating = counters.AverageRating
	if counters.ViewCount != nil {
		story.ViewCount = *counters.ViewCount
	}
	return nil
}

func (r *fakeStoryRepo) AggregateCounterTotals(_ context.Context) (*model.CounterTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &model.CounterTotals{}
	for _, story := range r.stories {
		totals.ViewCount += story.ViewCount
		totals.LikeCount += story.LikeCount
		totals.CommentCount += story.CommentCount
		totals.RatingCount += story.RatingCount
	}
	return totals, nil
}

func (r *fakeStoryRepo) MigrateLegacyFields(_ context.Context) (int64, error) {
	return 0, nil
}

func (r *fakeStoryRepo) story(storyID uint64) *model.Story {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stories[storyID]
}

// fakeEventStoreRepo 内存事件存储，failures 可按故事注入错误
type fakeEventStoreRepo struct {
	likes    map[uint64]int64
	comments map[uint64]int64
	ratings  map[uint64][]float64
	viewers  map[uint64]int64

	failures map[uint64]error
}

func newFakeEventStoreRepo() *fakeEventStoreRepo {
	return &fakeEventStoreRepo{
		likes:    make(map[uint64]int64),
		comments: make(map[uint64]int64),
		ratings:  make(map[uint64][]float64),
		viewers:  make(map[uint64]int64),
		failures: make(map[uint64]error),
	}
}

func (r *fakeEventStoreRepo) CountLikes(_ context.Context, storyID uint64) (int64, error) {
	if err := r.failures[storyID]; err != nil {
		return 0, err
	}
	return r.likes[storyID], nil
}

func (r *fakeEventStoreRepo) CountComments(_ context.Context, storyID uint64) (int64, error) {
	if err := r.failures[storyID]; err != nil {
		return 0, err
	}
	return r.comments[storyID], nil
}

func (r *fakeEventStoreRepo) AggregateRatings(_ context.Context, storyID uint64) (int64, float64, error) {
	if err := r.failures[storyID]; err != nil {
		return 0, 0, err
	}
	var sum float64
	for _, v := range r.ratings[storyID] {
		sum += v
	}
	return int64(len(r.ratings[storyID])), sum, nil
}

func (r *fakeEventStoreRepo) CountUniqueViewers(_ context.Context, storyID uint64) (int64, error) {
	if err := r.failures[storyID]; err != nil {
		return 0, err
	}
	return r.viewers[storyID], nil
}

// fakeStatsCacheRepo 内存统计缓存
type fakeStatsCacheRepo struct {
	mu      sync.Mutex
	records map[uint64]*model.StoryStatsCache
	upserts int

	getErr error
}

func newFakeStatsCacheRepo() *fakeStatsCacheRepo {
	return &fakeStatsCacheRepo{records: make(map[uint64]*model.StoryStatsCache)}
}

func (r *fakeStatsCacheRepo) Get(_ context.Context, storyID uint64) (*model.StoryStatsCache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	record, ok := r.records[storyID]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

func (r *fakeStatsCacheRepo) GetByStoryIDs(_ context.Context, storyIDs []uint64) ([]*model.StoryStatsCache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	var out []*model.StoryStatsCache
	for _, id := range storyIDs {
		if record, ok := r.records[id]; ok {
			cp := *record
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStatsCacheRepo) Upsert(_ context.Context, record *model.StoryStatsCache) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	cp := *record
	r.records[record.StoryID] = &cp
	return nil
}

func (r *fakeStatsCacheRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

func (r *fakeStatsCacheRepo) OldestCalculated(_ context.Context) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var oldest time.Time
	for _, record := range r.records {
		if oldest.IsZero() || record.LastCalculated.Before(oldest) {
			oldest = record.LastCalculated
		}
	}
	return oldest, nil
}

func (r *fakeStatsCacheRepo) AggregateTotals(_ context.Context) (*model.CacheTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &model.CacheTotals{}
	for _, record := range r.records {
		totals.ViewCount += record.ViewCount
		totals.LikeCount += record.LikeCount
		totals.CommentCount += record.CommentCount
		totals.RatingCount += record.RatingCount
	}
	return totals, nil
}
