package render

import (
	"fmt"

	"plancraft/internal/i18n"
	"plancraft/internal/plan"
)

// StatusIcon 返回状态图标，五种状态各不相同
// StatusIcon returns the status glyph; all five statuses are distinct
func StatusIcon(s plan.Status) string {
	switch s {
	case plan.StatusAccepted:
		return "✓"
	case plan.StatusRejected:
		return "✗"
	case plan.StatusEdited:
		return "✎"
	case plan.StatusRefining:
		return "⟳"
	default:
		return "○"
	}
}

// StatusLabel 返回本地化的状态标签
// StatusLabel returns the localized status label
func StatusLabel(s plan.Status) string {
	switch s {
	case plan.StatusAccepted:
		return i18n.T("status.accepted")
	case plan.StatusRejected:
		return i18n.T("status.rejected")
	case plan.StatusEdited:
		return i18n.T("status.edited")
	case plan.StatusRefining:
		return i18n.T("status.refining")
	default:
		return i18n.T("status.pending")
	}
}

// CardHeader 渲染卡片标题行，交互视图与导出共用
// CardHeader renders the one-line card header shared by the interactive
// view and the export path
func CardHeader(step plan.Step) string {
	return fmt.Sprintf("%s %s · %s",
		StatusIcon(step.Status),
		i18n.T("card.step", step.DisplayIndex),
		StatusLabel(step.Status))
}

// Card 把一个步骤渲染成完整的 markdown 卡片块
// Card renders one step as a complete markdown card block
func Card(step plan.Step) string {
	return "### " + CardHeader(step) + "\n\n" + CardBody(step.Content)
}
