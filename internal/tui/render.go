package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// renderProgressBar 以 ratio（0..1）渲染定宽进度条
// renderProgressBar renders a fixed-width bar from a 0..1 ratio
func renderProgressBar(ratio float64, width int) string {
	if width < 4 {
		width = 4
	}
	filled := int(ratio*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// wrapLines 按显示宽度换行（CJK 无空格文本按宽度硬切），最多 maxLines 行，
// 超出部分以 … 截断
// wrapLines wraps text by display width (space-free CJK runs are hard-split),
// capped at maxLines with an ellipsis on overflow
func wrapLines(text string, width, maxLines int) []string {
	if width < 8 {
		width = 8
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	flush := func() {
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
	}

	for _, w := range words {
		for lipgloss.Width(w) > width {
			r := []rune(w)
			n := len(r)
			for n > 1 && lipgloss.Width(string(r[:n])) > width {
				n--
			}
			flush()
			lines = append(lines, string(r[:n]))
			w = string(r[n:])
		}
		if w == "" {
			continue
		}
		switch {
		case current == "":
			current = w
		case lipgloss.Width(current)+1+lipgloss.Width(w) <= width:
			current += " " + w
		default:
			flush()
			current = w
		}
	}
	flush()

	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(lines[maxLines-1])
		for len(last) > 0 && lipgloss.Width(string(last)) > width-1 {
			last = last[:len(last)-1]
		}
		lines[maxLines-1] = string(last) + "…"
	}
	return lines
}

// truncateLeft 保留路径尾部，前缀以 … 替代
// truncateLeft keeps the tail of a path, replacing the prefix with …
func truncateLeft(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
		r = r[1:]
	}
	return "…" + string(r)
}
