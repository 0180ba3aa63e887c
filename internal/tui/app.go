package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"plancraft/internal/config"
	"plancraft/internal/controller"
	"plancraft/internal/generator"
	"plancraft/internal/host"
	"plancraft/internal/i18n"
	"plancraft/internal/plan"
	"plancraft/internal/project"
	"plancraft/internal/render"
	"plancraft/internal/storage"
)

// phase 应用所处的大阶段
// phase is the coarse application stage
type phase int

const (
	phaseGenerating phase = iota
	phaseCards
	phaseFatal
)

// mode 卡片界面内的交互模式
// mode is the interaction mode inside the card surface
type mode int

const (
	modeNormal mode = iota
	modeEdit
	modeAdd
	modeMove
	modeHelp
)

// 布局常量 / Layout constants
const (
	statusHeight     = 1
	hintHeight       = 1
	inputPanelHeight = 8
)

// --- Tea Messages ---

// ContextReadyMsg 项目上下文采集完成
// ContextReadyMsg indicates the project context has been collected
type ContextReadyMsg struct{ Context string }

// PlanBuiltMsg 初始计划生成完成
// PlanBuiltMsg carries the freshly generated plan
type PlanBuiltMsg struct{ State plan.State }

// GenerationFailedMsg 初始生成失败
// GenerationFailedMsg indicates the initial generation failed
type GenerationFailedMsg struct{ Err error }

// BroadcastMsg 包装一条来自控制器的广播
// BroadcastMsg wraps one broadcast from the controller
type BroadcastMsg struct{ B controller.Broadcast }

// Options TUI 应用的依赖
// Options are the TUI application dependencies
type Options struct {
	Config    config.Config
	Generator *generator.Generator
	Store     storage.Store
	Host      *host.Host
	Collector *project.Collector
	Usage     *UsageTally
	Task      string
	Workspace string
}

// App Bubble Tea 主 Model。它持有的计划状态只是展示镜像：每条
// StateUpdated 广播都会把镜像整体替换，本地从不做结构性修改。
// App is the main Bubble Tea model. The plan state it holds is a display
// mirror only: every StateUpdated broadcast replaces it wholesale and the
// model never mutates it structurally.
type App struct {
	opts Options

	// 布局 / Layout
	width  int
	height int

	phase phase
	mode  mode

	// 生成阶段 / Generation stage
	spin     spinner.Model
	stageMsg string
	fatalMsg string

	// 控制器接线 / Controller wiring
	ctrl    *controller.Controller
	cancel  context.CancelFunc
	projCtx string

	// 展示镜像 / Display mirror
	state  plan.State
	cursor int

	// 卡片列表 / Card list
	cards     viewport.Model
	cardTops  []int
	cardLines int

	// 编辑 / 新增输入
	// Edit / add input
	input      textarea.Model
	inputTitle string
	editID     string
	editSnap   string
	addAfter   string

	// 搬移手势的本地序 / Local order of the move gesture
	moveSteps  []plan.Step
	moveCursor int

	// 侧边栏数据 / Sidebar data
	usageBase  storage.UsageTotals
	lastExport string

	// 状态栏 / Status bar
	statusMsg string
	statusErr bool

	theme  Theme
	keys   KeyMap
	locale *i18n.I18n
}

// NewApp 创建 TUI 应用
// NewApp creates the TUI application
func NewApp(opts Options) App {
	ta := textarea.New()
	ta.CharLimit = 4096
	ta.SetHeight(5)
	ta.ShowLineNumbers = false

	theme := ThemeByName(opts.Config.UI.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.SpinnerStyle

	app := App{
		opts:      opts,
		phase:     phaseGenerating,
		mode:      modeNormal,
		spin:      sp,
		input:     ta,
		stageMsg:  i18n.T("gen.collecting"),
		statusMsg: i18n.T("statusbar.ready"),
		theme:     theme,
		keys:      DefaultKeyMap(),
		locale:    i18n.Global(),
	}

	if opts.Store != nil {
		if totals, err := opts.Store.UsageTotals(); err == nil {
			app.usageBase = totals
		}
		if entry, ok, err := opts.Store.LastExport(); err == nil && ok {
			app.lastExport = entry.Path
		}
	}
	return app
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, a.collectContext())
}

// collectContext 在独立 goroutine 上采集项目上下文
// collectContext gathers the project context off the update loop
func (a App) collectContext() tea.Cmd {
	collector := a.opts.Collector
	return func() tea.Msg {
		var projCtx string
		if collector != nil {
			projCtx = collector.Collect()
		}
		return ContextReadyMsg{Context: projCtx}
	}
}

// buildPlan 调用生成器产出初始计划，成功后顺带记录任务历史
// buildPlan asks the generator for the initial plan and records the task
// history on success
func (a App) buildPlan(projCtx string) tea.Cmd {
	gen := a.opts.Generator
	store := a.opts.Store
	task := a.opts.Task
	model := a.opts.Config.Provider.Model
	return func() tea.Msg {
		state, err := gen.BuildPlan(context.Background(), task, projCtx)
		if err != nil {
			return GenerationFailedMsg{Err: err}
		}
		if store != nil {
			_ = store.RecordTask(task, model, len(state.Steps))
		}
		return PlanBuiltMsg{State: state}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		if a.phase == phaseCards && a.hasRefining() {
			a.refreshCards()
		}
		return a, cmd

	case ContextReadyMsg:
		a.projCtx = msg.Context
		a.stageMsg = a.locale.T("gen.generating", a.opts.Config.Provider.Model)
		return a, a.buildPlan(msg.Context)

	case PlanBuiltMsg:
		return a.enterCards(msg.State)

	case GenerationFailedMsg:
		a.phase = phaseFatal
		if errors.Is(msg.Err, generator.ErrEmptyPlan) {
			a.fatalMsg = a.locale.T("gen.empty")
		} else {
			a.fatalMsg = a.locale.T("gen.failed", msg.Err)
		}
		return a, nil

	case BroadcastMsg:
		return a.applyBroadcast(msg.B)

	case tea.MouseMsg:
		if a.phase == phaseCards {
			var cmd tea.Cmd
			a.cards, cmd = a.cards.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// 光标闪烁等组件消息 / component messages such as cursor blink
	if a.mode == modeEdit || a.mode == modeAdd {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// enterCards 用生成结果启动控制器并切换到卡片界面
// enterCards starts the controller around the generated plan and switches to
// the card surface
func (a App) enterCards(state plan.State) (tea.Model, tea.Cmd) {
	a.phase = phaseCards
	a.state = state
	a.cursor = 0

	ctrlOpts := controller.Options{
		Refiner:        a.opts.Generator,
		ProjectContext: a.projCtx,
	}
	if a.opts.Host != nil {
		ctrlOpts.Host = a.opts.Host
		ctrlOpts.Events = a.opts.Host.Events()
	}
	a.ctrl = controller.New(state, ctrlOpts)

	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.ctrl.Run(runCtx)

	a.statusMsg = a.locale.T("gen.done", len(state.Steps))
	a.statusErr = false
	a.relayout()
	return a, a.waitBroadcast()
}

// waitBroadcast 挂起等待下一条广播；每收到一条就重新挂一个
// waitBroadcast blocks for the next broadcast; re-issued after every receive
func (a App) waitBroadcast() tea.Cmd {
	ch := a.ctrl.Broadcasts()
	return func() tea.Msg {
		b, ok := <-ch
		if !ok {
			return nil
		}
		return BroadcastMsg{B: b}
	}
}

func (a App) applyBroadcast(b controller.Broadcast) (tea.Model, tea.Cmd) {
	switch b := b.(type) {
	case controller.StateUpdated:
		a.state = b.State
		if a.cursor >= len(a.state.Steps) {
			a.cursor = len(a.state.Steps) - 1
		}
		if a.cursor < 0 {
			a.cursor = 0
		}
		if a.mode == modeMove {
			// 底层顺序在手势中途变了，放弃本地搬移
			// the underlying order changed mid-gesture, abandon the local move
			a.mode = modeNormal
			a.moveSteps = nil
		}
		a.refreshCards()
		return a, a.waitBroadcast()

	case controller.StepStatusChanged:
		if i := a.indexOf(b.ID); i >= 0 {
			a.state.Steps[i].Status = b.Status
			if b.Status == plan.StatusRefining {
				a.statusMsg = a.locale.T("statusbar.refining", a.state.Steps[i].DisplayIndex)
				a.statusErr = false
			}
			a.refreshCards()
		}
		return a, a.waitBroadcast()

	case controller.PlanExported:
		if b.Err != nil {
			a.statusMsg = a.locale.T("statusbar.save_failed", b.Err)
			a.statusErr = true
			return a, a.waitBroadcast()
		}
		a.statusMsg = a.locale.T("statusbar.saved", b.Path)
		a.statusErr = false
		a.lastExport = b.Path
		return a, tea.Batch(a.waitBroadcast(), a.recordExport(b.Path))

	case controller.ClipboardWritten:
		if b.Err != nil {
			a.statusMsg = a.locale.T("statusbar.clipboard_err", b.Err)
			a.statusErr = true
		} else {
			a.statusMsg = a.locale.T("statusbar.clipboard_ok")
			a.statusErr = false
		}
		return a, a.waitBroadcast()
	}
	return a, a.waitBroadcast()
}

// recordExport 把成功的导出写进设置库
// recordExport records a successful export in the settings store
func (a App) recordExport(path string) tea.Cmd {
	store := a.opts.Store
	if store == nil {
		return nil
	}
	stepCount := len(a.state.Steps)
	accepted := a.state.AcceptedCount()
	return func() tea.Msg {
		_ = store.RecordExport(path, stepCount, accepted)
		return nil
	}
}

// --- 按键处理 / Key handling ---

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		return a.quit()
	}

	switch a.phase {
	case phaseGenerating:
		return a, nil
	case phaseFatal:
		if key.Matches(msg, a.keys.Quit) || key.Matches(msg, a.keys.Confirm) {
			return a.quit()
		}
		return a, nil
	}

	switch a.mode {
	case modeEdit:
		return a.handleEditKey(msg)
	case modeAdd:
		return a.handleAddKey(msg)
	case modeMove:
		return a.handleMoveKey(msg)
	case modeHelp:
		a.mode = modeNormal
		return a, nil
	}
	return a.handleNormalKey(msg)
}

func (a App) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()
	case key.Matches(msg, a.keys.Help):
		a.mode = modeHelp
		return a, nil
	case key.Matches(msg, a.keys.Up):
		a.moveSelection(-1)
		return a, nil
	case key.Matches(msg, a.keys.Down):
		a.moveSelection(1)
		return a, nil
	case key.Matches(msg, a.keys.PageUp):
		a.cards.HalfViewUp()
		return a, nil
	case key.Matches(msg, a.keys.PageDown):
		a.cards.HalfViewDown()
		return a, nil
	case key.Matches(msg, a.keys.Export):
		a.ctrl.Send(controller.SavePlan{})
		return a, nil
	case key.Matches(msg, a.keys.CopyAll):
		a.ctrl.Send(controller.SendToExternal{Content: render.Document(a.state)})
		return a, nil
	case key.Matches(msg, a.keys.Add):
		a.beginAdd()
		return a, textarea.Blink
	}

	step, ok := a.selectedStep()
	if !ok {
		return a, nil
	}
	switch {
	case key.Matches(msg, a.keys.Accept):
		a.ctrl.Send(controller.AcceptStep{ID: step.ID})
	case key.Matches(msg, a.keys.Reject):
		a.ctrl.Send(controller.RejectStep{ID: step.ID})
	case key.Matches(msg, a.keys.Delete):
		a.ctrl.Send(controller.DeleteStep{ID: step.ID})
		a.statusMsg = a.locale.T("statusbar.deleted")
		a.statusErr = false
	case key.Matches(msg, a.keys.Edit):
		a.beginEdit(step)
		return a, textarea.Blink
	case key.Matches(msg, a.keys.Move):
		a.beginMove()
	case key.Matches(msg, a.keys.Copy):
		a.ctrl.Send(controller.SendToExternal{Content: render.Card(step)})
	}
	return a, nil
}

func (a App) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		// 取消即丢弃输入，镜像从未被改动
		// cancelling discards the input; the mirror was never touched
		a.closeInput()
		return a, nil
	case key.Matches(msg, a.keys.SaveInput):
		text := a.input.Value()
		id, snap := a.editID, a.editSnap
		a.closeInput()
		if text != snap {
			a.ctrl.Send(controller.EditStep{ID: id, Content: text})
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.closeInput()
		return a, nil
	case key.Matches(msg, a.keys.SaveInput):
		content := strings.TrimSpace(a.input.Value())
		after := a.addAfter
		a.closeInput()
		// 空内容等同取消 / empty content cancels
		if content == "" {
			return a, nil
		}
		a.ctrl.Send(controller.AddStep{AfterID: after, Content: content})
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleMoveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		// 放弃手势，镜像顺序原样保留，不发送任何 intent
		// abandon the gesture; the mirror order stands and nothing is sent
		a.mode = modeNormal
		a.moveSteps = nil
		a.refreshCards()
		return a, nil
	case key.Matches(msg, a.keys.Up):
		a.liftBy(-1)
		return a, nil
	case key.Matches(msg, a.keys.Down):
		a.liftBy(1)
		return a, nil
	case key.Matches(msg, a.keys.Confirm):
		// 整个手势凝结为一条携带完整顺序的 intent
		// the whole gesture commits as one intent carrying the full order
		order := make([]string, len(a.moveSteps))
		for i, s := range a.moveSteps {
			order[i] = s.ID
		}
		a.cursor = a.moveCursor
		a.mode = modeNormal
		a.moveSteps = nil
		a.ctrl.Send(controller.ReorderSteps{Order: order})
		a.statusMsg = a.locale.T("statusbar.reordered")
		a.statusErr = false
		a.refreshCards()
		return a, nil
	}
	return a, nil
}

// --- 模式切换 / Mode transitions ---

// beginEdit 进入行内编辑。快照取自卡片展示文本经 best-effort 逆变换
// 得到的纯文本；保存时只有与快照不同才发送 EditStep。
// beginEdit enters inline editing. The snapshot is the card's displayed text
// decoded back to plain text; on save an EditStep is sent only when the text
// differs from the snapshot.
func (a *App) beginEdit(step plan.Step) {
	a.mode = modeEdit
	a.editID = step.ID
	a.editSnap = render.PlainText(render.CardBody(step.Content))
	a.inputTitle = a.locale.T("edit.title", step.DisplayIndex)
	a.input.SetValue(a.editSnap)
	a.input.Focus()
	a.relayout()
}

func (a *App) beginAdd() {
	a.mode = modeAdd
	a.addAfter = ""
	a.inputTitle = a.locale.T("add.title_0")
	if step, ok := a.selectedStep(); ok {
		a.addAfter = step.ID
		a.inputTitle = a.locale.T("add.title", step.DisplayIndex)
	}
	a.input.SetValue("")
	a.input.Focus()
	a.relayout()
}

func (a *App) beginMove() {
	if len(a.state.Steps) < 2 {
		return
	}
	a.mode = modeMove
	a.moveSteps = append([]plan.Step(nil), a.state.Steps...)
	a.moveCursor = a.cursor
	a.refreshCards()
}

func (a *App) closeInput() {
	a.mode = modeNormal
	a.input.Blur()
	a.input.SetValue("")
	a.inputTitle = ""
	a.editID = ""
	a.editSnap = ""
	a.addAfter = ""
	a.relayout()
}

// liftBy 在本地顺序中搬移被提起的卡片，并重排展示序号
// liftBy moves the lifted card within the local order and renumbers the
// display indexes
func (a *App) liftBy(delta int) {
	next := a.moveCursor + delta
	if next < 0 || next >= len(a.moveSteps) {
		return
	}
	a.moveSteps[a.moveCursor], a.moveSteps[next] = a.moveSteps[next], a.moveSteps[a.moveCursor]
	a.moveCursor = next
	for i := range a.moveSteps {
		a.moveSteps[i].DisplayIndex = i + 1
	}
	a.refreshCards()
}

// --- 镜像与布局 / Mirror and layout helpers ---

func (a App) selectedStep() (plan.Step, bool) {
	if a.cursor < 0 || a.cursor >= len(a.state.Steps) {
		return plan.Step{}, false
	}
	return a.state.Steps[a.cursor], true
}

func (a App) indexOf(id string) int {
	for i := range a.state.Steps {
		if a.state.Steps[i].ID == id {
			return i
		}
	}
	return -1
}

func (a App) hasRefining() bool {
	for _, s := range a.state.Steps {
		if s.Status == plan.StatusRefining {
			return true
		}
	}
	return false
}

func (a *App) moveSelection(delta int) {
	if len(a.state.Steps) == 0 {
		return
	}
	next := a.cursor + delta
	if next < 0 {
		next = 0
	}
	if next >= len(a.state.Steps) {
		next = len(a.state.Steps) - 1
	}
	if next == a.cursor {
		return
	}
	a.cursor = next
	a.refreshCards()
}

// layout 计算当前窗口下的区域尺寸
// layout computes the region sizes for the current window
func (a App) layout() (sidebarW, mainW, cardsH int) {
	sidebarW = a.width * 25 / 100
	if sidebarW < 24 {
		sidebarW = 24
	}
	if sidebarW > 44 {
		sidebarW = 44
	}
	if a.width < 80 {
		sidebarW = 0
	}

	mainW = a.width - sidebarW
	if sidebarW > 0 {
		mainW-- // sidebar border column
	}

	cardsH = a.height - statusHeight - hintHeight
	if a.mode == modeEdit || a.mode == modeAdd {
		cardsH -= inputPanelHeight
	}
	if cardsH < 3 {
		cardsH = 3
	}
	return sidebarW, mainW, cardsH
}

func (a *App) relayout() {
	_, mainW, cardsH := a.layout()
	a.cards = viewport.New(mainW, cardsH)
	a.input.SetWidth(mainW - 4)
	a.refreshCards()
}

// refreshCards 重建卡片列表内容并让选中卡片保持可见
// refreshCards rebuilds the card list content and keeps the selected card
// visible
func (a *App) refreshCards() {
	if a.phase != phaseCards {
		return
	}

	steps := a.state.Steps
	cur := a.cursor
	if a.mode == modeMove {
		steps = a.moveSteps
		cur = a.moveCursor
	}

	if len(steps) == 0 {
		a.cardTops = a.cardTops[:0]
		a.cardLines = 1
		a.cards.SetContent(a.theme.MutedStyle.Render("  " + a.locale.T("card.empty")))
		return
	}

	blocks := make([]string, 0, len(steps))
	a.cardTops = a.cardTops[:0]
	top := 0
	for i, step := range steps {
		block := a.renderCard(step, i == cur, a.mode == modeMove && i == cur)
		blocks = append(blocks, block)
		a.cardTops = append(a.cardTops, top)
		top += lipgloss.Height(block) + 1
	}
	a.cardLines = top - 1
	a.cards.SetContent(strings.Join(blocks, "\n\n"))
	a.ensureCursorVisible(cur)
}

func (a *App) ensureCursorVisible(cur int) {
	if cur < 0 || cur >= len(a.cardTops) {
		return
	}
	top := a.cardTops[cur]
	bottom := a.cardLines
	if cur+1 < len(a.cardTops) {
		bottom = a.cardTops[cur+1] - 1
	}
	switch {
	case top < a.cards.YOffset:
		a.cards.SetYOffset(top)
	case bottom > a.cards.YOffset+a.cards.Height:
		a.cards.SetYOffset(bottom - a.cards.Height)
	}
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if a.cancel != nil {
		a.cancel()
	}
	return a, tea.Quit
}

// Run 启动 Bubble Tea TUI
// Run starts the Bubble Tea TUI application
func Run(opts Options) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
