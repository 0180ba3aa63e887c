package host

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// EventLog 以 JSONL 追加计划编辑事件，一行一条
// EventLog appends plan-editing events as JSONL, one record per line
type EventLog struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// OpenEventLog 以追加模式打开（或创建）事件日志
// OpenEventLog opens (or creates) the event log in append mode
func OpenEventLog(path string) (*EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &EventLog{f: f, enc: json.NewEncoder(f)}, nil
}

// Record 追加一条事件。nil 日志是安全的空操作，日志失败不影响编辑流程。
// Record appends one event. A nil log is a safe no-op; logging failures
// never affect the editing flow.
func (l *EventLog) Record(event string, fields map[string]any) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	record := map[string]any{
		"event":      event,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		record[k] = v
	}
	return l.enc.Encode(record)
}

// Close 关闭底层文件
// Close closes the underlying file
func (l *EventLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
