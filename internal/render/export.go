package render

import (
	"math"
	"strings"

	"plancraft/internal/i18n"
	"plancraft/internal/plan"
)

// Document 把当前计划整体重渲染成导出文档。导出不是独立的序列化器：
// 每张卡片都走与交互视图相同的 Card 路径，完成度每次重新推导。
// Document re-renders the whole plan as an export document. Export is not a
// separate serializer: every card goes through the same Card path as the
// interactive view, and completion is re-derived on every call.
func Document(state plan.State) string {
	var b strings.Builder

	b.WriteString("# " + i18n.T("export.title") + "\n\n")
	if task := strings.TrimSpace(state.TaskDescription); task != "" {
		b.WriteString("**" + i18n.T("export.task") + ":** " + task + "\n\n")
	}

	accepted := state.AcceptedCount()
	total := len(state.Steps)
	percent := int(math.Round(state.CompletionRatio() * 100))
	b.WriteString(i18n.T("export.progress", accepted, total, percent))
	b.WriteString("\n\n---\n\n")

	for i, step := range state.Steps {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(Card(step))
	}
	b.WriteString("\n")

	return b.String()
}
