package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore 基于 SQLite (WAL 模式) 的持久化实现
// SQLiteStore implements Store using SQLite with WAL mode
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore 创建并初始化 SQLite 数据库
// NewSQLiteStore creates and initializes a SQLite database
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// 启用 WAL 模式和优化 PRAGMA / Enable WAL and performance PRAGMAs
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS task_history (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		model       TEXT NOT NULL DEFAULT '',
		step_count  INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS usage_log (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		kind              TEXT NOT NULL,
		model             TEXT NOT NULL DEFAULT '',
		prompt_tokens     INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		total_tokens      INTEGER NOT NULL DEFAULT 0,
		duration_ms       INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exports (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		path           TEXT NOT NULL,
		step_count     INTEGER NOT NULL DEFAULT 0,
		accepted_count INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_task_history_created ON task_history(created_at);
	CREATE INDEX IF NOT EXISTS idx_usage_log_kind ON usage_log(kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close 关闭数据库连接 / Close the database connection
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// --- Task History ---

func (s *SQLiteStore) RecordTask(description, model string, stepCount int) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("task description is empty")
	}
	_, err := s.db.Exec(`
		INSERT INTO task_history (description, model, step_count, created_at)
		VALUES (?, ?, ?, ?)`,
		description, model, stepCount, nowUTC())
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentTasks(limit int) ([]TaskEntry, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(`
		SELECT id, description, model, step_count, created_at
		FROM task_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var entries []TaskEntry
	for rows.Next() {
		var e TaskEntry
		if err := rows.Scan(&e.ID, &e.Description, &e.Model, &e.StepCount, &e.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- Usage Log ---

func (s *SQLiteStore) LogUsage(entry UsageEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO usage_log (kind, model, prompt_tokens, completion_tokens, total_tokens, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		normalizeKind(entry.Kind), entry.Model,
		entry.PromptTokens, entry.CompletionTokens, entry.TotalTokens,
		entry.DurationMS, nowUTC())
	if err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UsageTotals() (UsageTotals, error) {
	row := s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			COALESCE(SUM(total_tokens), 0)
		FROM usage_log`)

	var totals UsageTotals
	if err := row.Scan(&totals.Calls, &totals.PromptTokens,
		&totals.CompletionTokens, &totals.TotalTokens); err != nil {
		return UsageTotals{}, fmt.Errorf("usage totals: %w", err)
	}
	return totals, nil
}

// --- Export Records ---

func (s *SQLiteStore) RecordExport(path string, stepCount, acceptedCount int) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("export path is empty")
	}
	_, err := s.db.Exec(`
		INSERT INTO exports (path, step_count, accepted_count, created_at)
		VALUES (?, ?, ?, ?)`,
		path, stepCount, acceptedCount, nowUTC())
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LastExport() (ExportEntry, bool, error) {
	row := s.db.QueryRow(`
		SELECT path, step_count, accepted_count, created_at
		FROM exports ORDER BY id DESC LIMIT 1`)

	var e ExportEntry
	err := row.Scan(&e.Path, &e.StepCount, &e.AcceptedCount, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return ExportEntry{}, false, nil
	}
	if err != nil {
		return ExportEntry{}, false, fmt.Errorf("last export: %w", err)
	}
	return e, true, nil
}

// --- Helpers ---

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func normalizeKind(k string) string {
	switch strings.ToLower(strings.TrimSpace(k)) {
	case "generate", "refine":
		return strings.ToLower(strings.TrimSpace(k))
	default:
		return "generate"
	}
}
