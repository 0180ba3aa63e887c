package tui

import (
	"github.com/charmbracelet/lipgloss"

	"plancraft/internal/plan"
)

// Theme 定义 TUI 主题色彩和样式
// Theme defines TUI colors and styles
type Theme struct {
	// 基础色 / Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Danger    lipgloss.Color
	Success   lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	TextDim   lipgloss.Color
	Border    lipgloss.Color

	// 状态色 / Per-status colors
	Accepted lipgloss.Color
	Rejected lipgloss.Color
	Edited   lipgloss.Color
	Refining lipgloss.Color

	// 预构建样式 / Pre-built styles
	TitleStyle     lipgloss.Style
	CardStyle      lipgloss.Style
	StatusBarStyle lipgloss.Style
	SidebarStyle   lipgloss.Style
	InputStyle     lipgloss.Style
	HintStyle      lipgloss.Style
	ErrorStyle     lipgloss.Style
	SuccessStyle   lipgloss.Style
	MutedStyle     lipgloss.Style
	SpinnerStyle   lipgloss.Style
	RefiningStyle  lipgloss.Style
}

// ThemeByName 按配置名选择主题，未知名称回落到暗色
// ThemeByName picks a theme by its config name, falling back to dark
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// DarkTheme 暗色主题（默认）
// DarkTheme is the default dark theme
func DarkTheme() Theme {
	t := Theme{
		Primary:   lipgloss.Color("#7C3AED"),
		Secondary: lipgloss.Color("#06B6D4"),
		Accent:    lipgloss.Color("#F59E0B"),
		Danger:    lipgloss.Color("#EF4444"),
		Success:   lipgloss.Color("#10B981"),
		Muted:     lipgloss.Color("#6B7280"),
		Text:      lipgloss.Color("#E5E7EB"),
		TextDim:   lipgloss.Color("#9CA3AF"),
		Border:    lipgloss.Color("#374151"),

		Accepted: lipgloss.Color("#10B981"),
		Rejected: lipgloss.Color("#EF4444"),
		Edited:   lipgloss.Color("#F59E0B"),
		Refining: lipgloss.Color("#06B6D4"),
	}
	return t.build()
}

// LightTheme 亮色主题
// LightTheme is the light theme
func LightTheme() Theme {
	t := Theme{
		Primary:   lipgloss.Color("#6D28D9"),
		Secondary: lipgloss.Color("#0E7490"),
		Accent:    lipgloss.Color("#B45309"),
		Danger:    lipgloss.Color("#B91C1C"),
		Success:   lipgloss.Color("#047857"),
		Muted:     lipgloss.Color("#9CA3AF"),
		Text:      lipgloss.Color("#1F2937"),
		TextDim:   lipgloss.Color("#4B5563"),
		Border:    lipgloss.Color("#D1D5DB"),

		Accepted: lipgloss.Color("#047857"),
		Rejected: lipgloss.Color("#B91C1C"),
		Edited:   lipgloss.Color("#B45309"),
		Refining: lipgloss.Color("#0E7490"),
	}
	return t.build()
}

func (t Theme) build() Theme {
	t.TitleStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.CardStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	t.StatusBarStyle = lipgloss.NewStyle().
		Foreground(t.TextDim)

	t.SidebarStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		BorderLeft(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border)

	t.InputStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border)

	t.HintStyle = lipgloss.NewStyle().
		Foreground(t.Muted)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(t.Danger).
		Bold(true)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	t.MutedStyle = lipgloss.NewStyle().
		Foreground(t.Muted)

	t.SpinnerStyle = lipgloss.NewStyle().
		Foreground(t.Secondary)

	t.RefiningStyle = lipgloss.NewStyle().
		Foreground(t.Refining)

	return t
}

// StatusColor 步骤状态对应的边框色
// StatusColor maps a step status to its border color
func (t Theme) StatusColor(s plan.Status) lipgloss.Color {
	switch s {
	case plan.StatusAccepted:
		return t.Accepted
	case plan.StatusRejected:
		return t.Rejected
	case plan.StatusEdited:
		return t.Edited
	case plan.StatusRefining:
		return t.Refining
	default:
		return t.Border
	}
}
