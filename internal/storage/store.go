package storage

// Store 持久化接口：任务历史、用量日志、导出记录
// Store is the persistence interface: task history, usage log, export records
type Store interface {
	// 任务历史 / Task history
	RecordTask(description, model string, stepCount int) error
	RecentTasks(limit int) ([]TaskEntry, error)

	// 用量日志 / Usage log
	LogUsage(entry UsageEntry) error
	UsageTotals() (UsageTotals, error)

	// 导出记录 / Export records
	RecordExport(path string, stepCount, acceptedCount int) error
	LastExport() (ExportEntry, bool, error)

	// 生命周期 / Lifecycle
	Close() error
}

// TaskEntry 一次计划任务的历史记录
// TaskEntry is one planned task in the history
type TaskEntry struct {
	ID          int64
	Description string
	Model       string
	StepCount   int
	CreatedAt   string
}

// UsageEntry 单次生成器调用的 token 用量
// UsageEntry is the token usage of one generator call
type UsageEntry struct {
	Kind             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	DurationMS       int64
}

// UsageTotals 历史累计用量
// UsageTotals is the accumulated usage across history
type UsageTotals struct {
	Calls            int
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ExportEntry 一次计划导出的记录
// ExportEntry records one plan export
type ExportEntry struct {
	Path          string
	StepCount     int
	AcceptedCount int
	CreatedAt     string
}
