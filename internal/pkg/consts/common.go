package consts

// StatsSchemaVersion 统计缓存记录的结构版本号，字段变更时递增
const StatsSchemaVersion = 2

const (
	WindowWeek  = "week"
	WindowMonth = "month"
)

const (
	ViewCountModeCounter       = "counter"
	ViewCountModeUniqueViewers = "unique_viewers"
)
