package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"plancraft/internal/plan"
	"plancraft/internal/render"
)

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	switch a.phase {
	case phaseGenerating:
		return a.viewGenerating()
	case phaseFatal:
		return a.viewFatal()
	}
	return a.viewCards()
}

func (a App) viewGenerating() string {
	task := strings.Join(wrapLines(a.opts.Task, a.width*2/3, 3), "\n")
	body := lipgloss.JoinVertical(lipgloss.Center,
		a.theme.TitleStyle.Render("Plancraft"),
		"",
		a.spin.View()+" "+a.stageMsg,
		"",
		a.theme.MutedStyle.Render(task),
	)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, body)
}

func (a App) viewFatal() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		a.theme.ErrorStyle.Render(a.fatalMsg),
		"",
		a.theme.MutedStyle.Render("enter/q: "+a.locale.T("keys.quit")),
	)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, body)
}

func (a App) viewCards() string {
	sidebarW, mainW, cardsH := a.layout()

	var sections []string
	if a.mode == modeHelp {
		sections = append(sections, a.renderHelp(mainW, cardsH))
	} else {
		sections = append(sections, a.cards.View())
	}
	if a.mode == modeEdit || a.mode == modeAdd {
		sections = append(sections, a.renderInputPanel(mainW))
	}
	sections = append(sections, a.renderHint(mainW))

	main := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if sidebarW > 0 {
		sidebar := a.renderSidebar(sidebarW, a.height-statusHeight)
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, sidebar)
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, a.renderStatusBar(a.width))
}

// renderCard 单张卡片：实时视图与导出走同一份卡片 markdown
// renderCard draws one card; the live view feeds the same card markdown the
// export document embeds
func (a App) renderCard(step plan.Step, selected, lifted bool) string {
	_, mainW, _ := a.layout()
	wrap := mainW - 6
	if wrap < 20 {
		wrap = 20
	}

	body := RenderMarkdown(render.Card(step), wrap)
	if step.Status == plan.StatusRefining {
		body += "\n" + a.theme.RefiningStyle.Render(a.spin.View()+" "+render.StatusLabel(step.Status))
	}

	frame := a.theme.CardStyle.Width(wrap + 2)
	switch {
	case lifted:
		frame = frame.BorderStyle(lipgloss.DoubleBorder()).BorderForeground(a.theme.Accent)
	case selected:
		frame = frame.BorderForeground(a.theme.Primary)
	default:
		frame = frame.BorderForeground(a.theme.StatusColor(step.Status))
	}
	return frame.Render(body)
}

func (a App) renderInputPanel(width int) string {
	title := a.theme.TitleStyle.Render(" " + a.inputTitle)
	hint := a.theme.HintStyle.Render(" " + a.locale.T("edit.hint"))
	body := lipgloss.JoinVertical(lipgloss.Left, title, a.input.View(), hint)
	return a.theme.InputStyle.Width(width).Render(body)
}

func (a App) renderHint(width int) string {
	var parts []string
	switch a.mode {
	case modeMove:
		parts = append(parts, a.locale.T("move.hint"))
	case modeEdit, modeAdd:
		parts = append(parts, a.locale.T("edit.hint"))
	default:
		for _, b := range []key.Binding{a.keys.Accept, a.keys.Reject, a.keys.Edit, a.keys.Move, a.keys.Export, a.keys.Help} {
			h := b.Help()
			parts = append(parts, h.Key+" "+h.Desc)
		}
	}
	return a.theme.HintStyle.Width(width).Render(" " + strings.Join(parts, " · "))
}

func (a App) renderHelp(width, height int) string {
	lines := []string{
		a.theme.TitleStyle.Render(" " + a.locale.T("help.title")),
		"",
	}
	for _, b := range a.keys.helpBindings() {
		h := b.Help()
		pad := 10 - lipgloss.Width(h.Key)
		if pad < 1 {
			pad = 1
		}
		lines = append(lines, "  "+h.Key+strings.Repeat(" ", pad)+h.Desc)
	}
	content := strings.Join(lines, "\n")
	return lipgloss.NewStyle().Width(width).Height(height).Render(content)
}

func (a App) renderSidebar(width, height int) string {
	inner := width - 4

	var parts []string
	parts = append(parts, a.theme.TitleStyle.Render(" Plancraft"))
	parts = append(parts, "")

	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("sidebar.task")))
	for _, line := range wrapLines(a.state.TaskDescription, inner, 4) {
		parts = append(parts, "  "+line)
	}
	parts = append(parts, "")

	// 完成度每次渲染重新推导，从不缓存
	// completion is re-derived on every render, never cached
	ratio := a.state.CompletionRatio()
	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("sidebar.progress")))
	parts = append(parts, "  "+renderProgressBar(ratio, inner-2))
	parts = append(parts, fmt.Sprintf("  %d / %d · %d%%",
		a.state.AcceptedCount(), len(a.state.Steps), int(ratio*100+0.5)))
	parts = append(parts, "")

	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("sidebar.steps")))
	parts = append(parts, "  "+a.statusCounts())
	parts = append(parts, "")

	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("sidebar.model")))
	parts = append(parts, "  "+a.opts.Config.Provider.Model)
	parts = append(parts, "")

	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("sidebar.usage")))
	session := a.opts.Usage.Tokens()
	parts = append(parts, fmt.Sprintf("  %d", int64(a.usageBase.TotalTokens)+session))
	if session > 0 {
		parts = append(parts, "  "+a.theme.MutedStyle.Render(a.locale.T("sidebar.session", session)))
	}

	if a.lastExport != "" {
		parts = append(parts, "")
		parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("sidebar.export")))
		parts = append(parts, "  "+a.theme.MutedStyle.Render(truncateLeft(a.lastExport, inner)))
	}

	content := strings.Join(parts, "\n")
	return a.theme.SidebarStyle.Width(width).Height(height).Render(content)
}

func (a App) statusCounts() string {
	counts := make(map[plan.Status]int, 5)
	for _, s := range a.state.Steps {
		counts[s.Status]++
	}

	order := []plan.Status{
		plan.StatusAccepted,
		plan.StatusRejected,
		plan.StatusEdited,
		plan.StatusRefining,
		plan.StatusUnset,
	}
	var parts []string
	for _, st := range order {
		if counts[st] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", render.StatusIcon(st), counts[st]))
	}
	if len(parts) == 0 {
		return a.theme.MutedStyle.Render("-")
	}
	return strings.Join(parts, "  ")
}

func (a App) renderStatusBar(width int) string {
	status := a.statusMsg
	if a.statusErr {
		status = a.theme.ErrorStyle.Render(status)
	}
	left := fmt.Sprintf(" plancraft · %s · %s", a.opts.Config.Provider.Model, status)
	right := fmt.Sprintf("%s  ", a.opts.Workspace)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + strings.Repeat(" ", gap) + right
	return a.theme.StatusBarStyle.Width(width).Render(bar)
}
