package consts

const (
	StoryStatsDirtyKey = "story:stats:dirty"
	DashboardCacheKey  = "stats:dashboard:"
)

const (
	RecomputeLock = "stats:recompute:lock"
)
