package host

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
)

// Host 向核心暴露宿主侧能力：系统剪贴板、独立导出文档、事件日志。
// 核心只依赖这三个操作，不关心宿主平台细节。
// Host exposes host-side capabilities to the core: the system clipboard,
// detached export documents, and the event log. The core depends on these
// three operations only, never on platform details.
type Host struct {
	exportsDir string
	events     *EventLog
}

// New 在存储目录下准备 exports/ 与事件日志
// New prepares exports/ and the event log under the storage directory
func New(baseDir string) (*Host, error) {
	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create exports dir: %w", err)
	}
	events, err := OpenEventLog(filepath.Join(baseDir, "events.jsonl"))
	if err != nil {
		return nil, err
	}
	return &Host{exportsDir: exportsDir, events: events}, nil
}

// WriteClipboard 把文本写入系统剪贴板
// WriteClipboard writes text to the system clipboard
func (h *Host) WriteClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// OpenTextDocument 把内容落盘为带时间戳的独立文档，返回其路径。
// 同一秒内的多次导出用序号区分，绝不覆盖已有文档。
// OpenTextDocument writes the content as a timestamped detached document and
// returns its path. Same-second exports get a numeric suffix; an existing
// document is never overwritten.
func (h *Host) OpenTextDocument(content string) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	for i := 1; ; i++ {
		name := fmt.Sprintf("plan-%s.md", stamp)
		if i > 1 {
			name = fmt.Sprintf("plan-%s-%d.md", stamp, i)
		}
		path := filepath.Join(h.exportsDir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := f.WriteString(content); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", path, err)
		}
		return path, nil
	}
}

// Events 返回事件日志
// Events returns the event log
func (h *Host) Events() *EventLog {
	return h.events
}

// Close 关闭事件日志
// Close closes the event log
func (h *Host) Close() error {
	if h.events == nil {
		return nil
	}
	return h.events.Close()
}
