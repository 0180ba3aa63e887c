package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// 每个清单文件注入摘要前的截断上限（按 rune）
// Per-file truncation cap (in runes) before a manifest file enters the summary
const fileMaxRunes = 4000

// defaultManifests 默认探测的清单文件，按优先级排列
// defaultManifests are the manifest files probed by default, in priority order
var defaultManifests = []string{
	"README.md",
	"README",
	"AGENTS.md",
	"go.mod",
	"package.json",
	"pyproject.toml",
	"Cargo.toml",
	"Makefile",
}

// Collector 从工作区提取一段供生成器使用的项目摘要
// Collector extracts a project summary from the workspace for the generator
type Collector struct {
	Root         string
	TokenLimit   int
	IncludeFiles []string
	tokenizer    *Tokenizer
}

// NewCollector 创建 collector；tokenLimit <= 0 时封顶为 2000 token
// NewCollector creates a collector; a tokenLimit <= 0 caps at 2000 tokens
func NewCollector(root string, tokenLimit int, includeFiles []string, tz *Tokenizer) *Collector {
	if tokenLimit <= 0 {
		tokenLimit = 2000
	}
	if tz == nil {
		tz = DefaultTokenizer()
	}
	return &Collector{
		Root:         strings.TrimSpace(root),
		TokenLimit:   tokenLimit,
		IncludeFiles: append([]string(nil), includeFiles...),
		tokenizer:    tz,
	}
}

// Collect 汇总工作区摘要：工作区名、顶层结构、清单文件内容，整体按 token 上限截断。
// 工作区不可读时返回空串（摘要是尽力而为的，缺失不阻断生成）。
// Collect assembles the workspace summary: workspace name, top-level layout,
// and manifest file contents, capped as a whole at the token limit. An
// unreadable workspace yields "" (the summary is best-effort; its absence
// never blocks generation).
func (c *Collector) Collect() string {
	if c.Root == "" {
		return ""
	}

	var sections []string
	sections = append(sections, "Workspace: "+filepath.Base(c.Root))

	if layout := c.topLevelLayout(); layout != "" {
		sections = append(sections, "Top-level layout:\n"+layout)
	}

	for _, name := range c.manifestCandidates() {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.Root, name)
		}
		content, ok := readFileCapped(path, fileMaxRunes)
		if !ok {
			continue
		}
		sections = append(sections, fmt.Sprintf("--- %s ---\n%s", filepath.Base(path), content))
	}

	summary := strings.Join(sections, "\n\n")
	return c.capToTokens(summary)
}

func (c *Collector) manifestCandidates() []string {
	out := append([]string(nil), defaultManifests...)
	for _, f := range c.IncludeFiles {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (c *Collector) topLevelLayout() string {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if name == "node_modules" || name == "vendor" || name == "target" {
			continue
		}
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	const maxEntries = 40
	if len(names) > maxEntries {
		names = append(names[:maxEntries], "...")
	}
	return strings.Join(names, "\n")
}

// capToTokens 把文本裁剪到 token 上限以内（二分最长可用前缀）
// capToTokens trims the text to the token limit (binary search on the prefix)
func (c *Collector) capToTokens(s string) string {
	if c.tokenizer.CountText(s) <= c.TokenLimit {
		return s
	}
	runes := []rune(s)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.tokenizer.CountText(string(runes[:mid])) <= c.TokenLimit {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:lo]) + "\n...[truncated]"
}

func readFileCapped(path string, maxRunes int) (string, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", false
	}
	runes := []rune(content)
	if len(runes) > maxRunes {
		content = string(runes[:maxRunes]) + "\n...[truncated]"
	}
	return content, true
}
