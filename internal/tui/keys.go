package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"plancraft/internal/i18n"
)

// KeyMap 卡片界面的快捷键绑定
// KeyMap defines the keybindings of the card surface
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	Accept key.Binding
	Reject key.Binding
	Edit   key.Binding
	Add    key.Binding
	Delete key.Binding
	Move   key.Binding

	Export  key.Binding
	Copy    key.Binding
	CopyAll key.Binding

	Confirm   key.Binding
	Cancel    key.Binding
	SaveInput key.Binding

	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap 默认快捷键
// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", i18n.T("keys.accept")),
		),
		Reject: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", i18n.T("keys.reject")),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", i18n.T("keys.edit")),
		),
		Add: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", i18n.T("keys.add")),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", i18n.T("keys.delete")),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", i18n.T("keys.move")),
		),
		Export: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", i18n.T("keys.save")),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", i18n.T("keys.clipboard")),
		),
		CopyAll: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", i18n.T("keys.clipboard_all")),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		SaveInput: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", i18n.T("keys.help")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", i18n.T("keys.quit")),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
}

// helpBindings 帮助浮层展示的绑定顺序
// helpBindings is the binding order shown in the help overlay
func (k KeyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down,
		k.Accept, k.Reject, k.Edit, k.Add, k.Delete, k.Move,
		k.Export, k.Copy, k.CopyAll,
		k.Help, k.Quit,
	}
}
