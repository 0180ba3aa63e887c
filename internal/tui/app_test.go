package tui

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"plancraft/internal/config"
	"plancraft/internal/generator"
	"plancraft/internal/host"
	"plancraft/internal/i18n"
	"plancraft/internal/plan"
	"plancraft/internal/provider"
	"plancraft/internal/render"
)

func init() {
	i18n.Init("en")
}

type scriptedReply struct {
	content string
	err     error
}

// scriptedProvider 按脚本顺序回放响应，一次调用消费一条。
// 重生成在控制器的 goroutine 上调用 Chat，因此需要加锁。
// scriptedProvider replays scripted responses in order, one per call.
// Regeneration calls Chat from the controller's goroutine, hence the lock.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []scriptedReply
	calls   int
}

func (p *scriptedProvider) Chat(ctx context.Context, req provider.ChatRequest, cb *provider.StreamCallbacks) (provider.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.replies) == 0 {
		return provider.ChatResponse{}, errors.New("script exhausted")
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	if r.err != nil {
		return provider.ChatResponse{}, r.err
	}
	return provider.ChatResponse{Content: r.content, FinishReason: "stop", Usage: provider.Usage{TotalTokens: 80}}, nil
}

func (p *scriptedProvider) Name() string                { return "scripted" }
func (p *scriptedProvider) CurrentModel() string        { return "scripted-model" }
func (p *scriptedProvider) SetModel(model string) error { return nil }

const testPlanText = `Step 1: Audit the current billing endpoints and list the handlers they touch.
Step 2: Define the audit record schema with actor, action and payload hash.
Step 3: Wire the audit middleware into the billing router behind a flag.`

// newCardsApp 构造一个已进入卡片界面的 App：初始计划来自脚本的第一条
// 响应，后续响应留给重生成。返回值带着挂起的广播等待命令。
// newCardsApp builds an App already on the card surface: the initial plan
// comes from the first scripted reply, later replies feed regeneration. The
// pending broadcast wait command is returned alongside.
func newCardsApp(t *testing.T, extra ...scriptedReply) (App, tea.Cmd) {
	t.Helper()

	replies := append([]scriptedReply{{content: testPlanText}}, extra...)
	gen := generator.New(&scriptedProvider{replies: replies}, generator.Config{StepsMin: 3, StepsMax: 6, MaxTokens: 512}, nil)

	h, err := host.New(t.TempDir())
	if err != nil {
		t.Fatalf("host.New: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	app := NewApp(Options{
		Config:    config.Default(),
		Generator: gen,
		Host:      h,
		Task:      "Add request auditing to the billing service",
		Workspace: "/tmp/demo",
	})
	app.width, app.height = 100, 40

	state, err := gen.BuildPlan(context.Background(), app.opts.Task, "")
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	m, wait := app.Update(PlanBuiltMsg{State: state})
	got := m.(App)
	t.Cleanup(func() {
		if got.cancel != nil {
			got.cancel()
		}
	})
	if got.phase != phaseCards {
		t.Fatalf("phase=%d, want phaseCards", got.phase)
	}
	return got, wait
}

// pump 执行挂起的广播等待命令并把消息喂回 Update，
// 返回新的模型和下一条等待命令
// pump runs the pending broadcast wait command and feeds the message back
// into Update, returning the new model and the next wait command
func pump(t *testing.T, a App, wait tea.Cmd) (App, tea.Cmd) {
	t.Helper()
	if wait == nil {
		t.Fatal("no pending broadcast wait command")
	}
	msgs := make(chan tea.Msg, 1)
	go func() { msgs <- wait() }()
	select {
	case msg := <-msgs:
		m, next := a.Update(msg)
		return m.(App), next
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
		return a, nil
	}
}

func press(a App, msg tea.KeyMsg) App {
	m, _ := a.Update(msg)
	return m.(App)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestGeneration_BuildsCardSurface(t *testing.T) {
	gen := generator.New(&scriptedProvider{replies: []scriptedReply{{content: testPlanText}}},
		generator.Config{StepsMin: 3, StepsMax: 6, MaxTokens: 512}, nil)
	h, err := host.New(t.TempDir())
	if err != nil {
		t.Fatalf("host.New: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	app := NewApp(Options{
		Config:    config.Default(),
		Generator: gen,
		Host:      h,
		Task:      "Add request auditing to the billing service",
		Workspace: "/tmp/demo",
	})
	app.width, app.height = 100, 40

	m, cmd := app.Update(ContextReadyMsg{Context: "Workspace: demo"})
	app = m.(App)
	if app.projCtx != "Workspace: demo" {
		t.Fatalf("projCtx=%q", app.projCtx)
	}
	if cmd == nil {
		t.Fatal("expected a build command")
	}

	msg := cmd()
	built, ok := msg.(PlanBuiltMsg)
	if !ok {
		t.Fatalf("msg=%T, want PlanBuiltMsg", msg)
	}

	m, wait := app.Update(built)
	app = m.(App)
	t.Cleanup(func() {
		if app.cancel != nil {
			app.cancel()
		}
	})
	if app.phase != phaseCards {
		t.Fatalf("phase=%d, want phaseCards", app.phase)
	}
	if len(app.state.Steps) != 3 {
		t.Fatalf("len(Steps)=%d, want 3", len(app.state.Steps))
	}
	if wait == nil {
		t.Fatal("expected a broadcast wait command")
	}
	if !strings.Contains(app.statusMsg, "3 steps") {
		t.Fatalf("statusMsg=%q", app.statusMsg)
	}
}

func TestGeneration_ProviderErrorIsFatal(t *testing.T) {
	gen := generator.New(&scriptedProvider{replies: []scriptedReply{{err: errors.New("boom")}}},
		generator.Config{StepsMin: 3, StepsMax: 6}, nil)

	app := NewApp(Options{Config: config.Default(), Generator: gen, Task: "x", Workspace: "y"})
	app.width, app.height = 100, 40

	m, cmd := app.Update(ContextReadyMsg{})
	app = m.(App)
	m, _ = app.Update(cmd())
	app = m.(App)

	if app.phase != phaseFatal {
		t.Fatalf("phase=%d, want phaseFatal", app.phase)
	}
	if !strings.Contains(app.fatalMsg, "boom") {
		t.Fatalf("fatalMsg=%q", app.fatalMsg)
	}

	// 致命界面上 q 退出，其余按键无效
	// on the fatal screen q quits, other keys do nothing
	m, quitCmd := app.Update(keyRune('a'))
	app = m.(App)
	if app.phase != phaseFatal || quitCmd != nil {
		t.Fatalf("stray key changed the fatal screen")
	}
	if _, quitCmd = app.Update(keyRune('q')); quitCmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestGeneration_EmptyPlanIsFatal(t *testing.T) {
	gen := generator.New(&scriptedProvider{replies: []scriptedReply{{content: "Step 1: too short."}}},
		generator.Config{StepsMin: 3, StepsMax: 6}, nil)

	app := NewApp(Options{Config: config.Default(), Generator: gen, Task: "x", Workspace: "y"})
	app.width, app.height = 100, 40

	m, cmd := app.Update(ContextReadyMsg{})
	app = m.(App)
	m, _ = app.Update(cmd())
	app = m.(App)

	if app.phase != phaseFatal {
		t.Fatalf("phase=%d, want phaseFatal", app.phase)
	}
	if !strings.Contains(app.fatalMsg, "no usable steps") {
		t.Fatalf("fatalMsg=%q", app.fatalMsg)
	}
}

func TestGeneration_IgnoresEditingKeys(t *testing.T) {
	gen := generator.New(&scriptedProvider{replies: []scriptedReply{{content: testPlanText}}},
		generator.Config{StepsMin: 3, StepsMax: 6}, nil)

	app := NewApp(Options{Config: config.Default(), Generator: gen, Task: "x", Workspace: "y"})
	app.width, app.height = 100, 40

	for _, msg := range []tea.KeyMsg{keyRune('a'), keyRune('r'), keyRune('d'), {Type: tea.KeyEnter}} {
		app = press(app, msg)
	}
	if app.phase != phaseGenerating {
		t.Fatalf("phase=%d, want phaseGenerating", app.phase)
	}
	if app.ctrl != nil {
		t.Fatal("controller started before the plan arrived")
	}
}

func TestAccept_UpdatesMirror(t *testing.T) {
	app, wait := newCardsApp(t)

	app = press(app, keyRune('a'))
	app, _ = pump(t, app, wait)

	if got := app.state.Steps[0].Status; got != plan.StatusAccepted {
		t.Fatalf("status=%q, want accepted", got)
	}
	if r := app.state.CompletionRatio(); r < 0.3 || r > 0.4 {
		t.Fatalf("CompletionRatio=%v, want 1/3", r)
	}
}

func TestReject_RegeneratesStep(t *testing.T) {
	replacement := "Instrument the billing handlers with an audit interceptor instead."
	app, wait := newCardsApp(t, scriptedReply{content: "Step 1: " + replacement})
	id := app.state.Steps[0].ID

	app = press(app, keyRune('r'))

	// rejected 标记先落镜像 / the rejected mark lands in the mirror first
	app, wait = pump(t, app, wait)
	if got := app.state.Steps[0].Status; got != plan.StatusRejected {
		t.Fatalf("after reject: status=%q, want rejected", got)
	}

	// 乐观闪现 / the optimistic flash
	app, wait = pump(t, app, wait)
	if got := app.state.Steps[0].Status; got != plan.StatusRefining {
		t.Fatalf("after flash: status=%q, want refining", got)
	}
	if want := i18n.T("statusbar.refining", 1); app.statusMsg != want {
		t.Fatalf("statusMsg=%q, want %q", app.statusMsg, want)
	}

	// 完整 refining 状态紧随其后 / the full refining state right behind it
	app, wait = pump(t, app, wait)
	if got := app.state.Steps[0].Status; got != plan.StatusRefining {
		t.Fatalf("full state: status=%q, want refining", got)
	}

	// 替代正文到达 / the replacement arrives
	app, _ = pump(t, app, wait)
	step := app.state.Steps[0]
	if step.Status != plan.StatusEdited {
		t.Fatalf("final status=%q, want edited", step.Status)
	}
	if step.Content != replacement {
		t.Fatalf("Content=%q, want %q", step.Content, replacement)
	}
	if step.ID != id {
		t.Fatalf("ID changed across regeneration: %q -> %q", id, step.ID)
	}
}

func TestReject_FailureKeepsRejected(t *testing.T) {
	app, wait := newCardsApp(t, scriptedReply{err: errors.New("boom")})

	app = press(app, keyRune('r'))
	for i := 0; i < 4; i++ {
		app, wait = pump(t, app, wait)
	}

	step := app.state.Steps[0]
	if step.Status != plan.StatusRejected {
		t.Fatalf("status=%q, want rejected", step.Status)
	}
	if !strings.Contains(step.Content, "Could not generate an alternative") {
		t.Fatalf("Content=%q, missing failure notice", step.Content)
	}
	if !strings.Contains(step.Content, "boom") {
		t.Fatalf("Content=%q, missing cause", step.Content)
	}
}

func TestEdit_UnchangedTextSendsNothing(t *testing.T) {
	app, wait := newCardsApp(t)
	orig := app.state.Steps[0].Content

	app = press(app, keyRune('e'))
	if app.mode != modeEdit {
		t.Fatalf("mode=%d, want modeEdit", app.mode)
	}
	if want := render.PlainText(render.CardBody(orig)); app.input.Value() != want {
		t.Fatalf("input=%q, want snapshot %q", app.input.Value(), want)
	}

	app = press(app, tea.KeyMsg{Type: tea.KeyCtrlS})
	if app.mode != modeNormal {
		t.Fatalf("mode=%d, want modeNormal", app.mode)
	}

	// 用 accept 作标记：下一条广播必须是它的结果，证明保存没有发消息
	// an accept acts as the marker: the next broadcast must be its result,
	// proving the save sent nothing
	app = press(app, keyRune('a'))
	app, _ = pump(t, app, wait)
	if got := app.state.Steps[0].Status; got != plan.StatusAccepted {
		t.Fatalf("status=%q, want accepted", got)
	}
	if app.state.Steps[0].Content != orig {
		t.Fatalf("Content changed: %q", app.state.Steps[0].Content)
	}
}

func TestEdit_SaveSendsChangedText(t *testing.T) {
	app, wait := newCardsApp(t)
	next := "Capture admin overrides in the audit trail as well."

	app = press(app, keyRune('e'))
	app.input.SetValue(next)
	app = press(app, tea.KeyMsg{Type: tea.KeyCtrlS})
	app, _ = pump(t, app, wait)

	step := app.state.Steps[0]
	if step.Content != next {
		t.Fatalf("Content=%q, want %q", step.Content, next)
	}
	if step.Status != plan.StatusEdited {
		t.Fatalf("status=%q, want edited", step.Status)
	}
}

func TestEdit_CancelDiscardsInput(t *testing.T) {
	app, wait := newCardsApp(t)
	orig := app.state.Steps[1].Content

	app = press(app, tea.KeyMsg{Type: tea.KeyDown})
	app = press(app, keyRune('e'))
	app.input.SetValue("scratch text that must not land")
	app = press(app, tea.KeyMsg{Type: tea.KeyEsc})

	if app.mode != modeNormal {
		t.Fatalf("mode=%d, want modeNormal", app.mode)
	}
	if app.input.Value() != "" {
		t.Fatalf("input not cleared: %q", app.input.Value())
	}

	app = press(app, keyRune('a'))
	app, _ = pump(t, app, wait)
	if app.state.Steps[1].Content != orig {
		t.Fatalf("Content=%q, want untouched %q", app.state.Steps[1].Content, orig)
	}
	if got := app.state.Steps[1].Status; got != plan.StatusAccepted {
		t.Fatalf("status=%q, want accepted", got)
	}
}

func TestMove_CommitsSingleReorder(t *testing.T) {
	app, wait := newCardsApp(t)
	first, second := app.state.Steps[0].ID, app.state.Steps[1].ID

	app = press(app, keyRune('m'))
	if app.mode != modeMove {
		t.Fatalf("mode=%d, want modeMove", app.mode)
	}
	app = press(app, tea.KeyMsg{Type: tea.KeyDown})
	app = press(app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.mode != modeNormal {
		t.Fatalf("mode=%d, want modeNormal after drop", app.mode)
	}

	app, _ = pump(t, app, wait)
	if app.state.Steps[0].ID != second || app.state.Steps[1].ID != first {
		t.Fatalf("order=%v, want swap of first two", app.state.IDs())
	}
	for i, s := range app.state.Steps {
		if s.DisplayIndex != i+1 {
			t.Fatalf("step %d DisplayIndex=%d, want %d", i, s.DisplayIndex, i+1)
		}
	}
	if app.cursor != 1 {
		t.Fatalf("cursor=%d, want 1 (follows the dropped card)", app.cursor)
	}
}

func TestMove_CancelKeepsOrder(t *testing.T) {
	app, wait := newCardsApp(t)
	first := app.state.Steps[0].ID

	app = press(app, keyRune('m'))
	app = press(app, tea.KeyMsg{Type: tea.KeyDown})
	app = press(app, tea.KeyMsg{Type: tea.KeyEsc})

	if app.mode != modeNormal {
		t.Fatalf("mode=%d, want modeNormal", app.mode)
	}
	if app.moveSteps != nil {
		t.Fatal("moveSteps not released")
	}
	if app.state.Steps[0].ID != first {
		t.Fatal("mirror order changed by an abandoned gesture")
	}

	app = press(app, keyRune('a'))
	app, _ = pump(t, app, wait)
	if app.state.Steps[0].ID != first {
		t.Fatalf("order=%v, want original", app.state.IDs())
	}
	if got := app.state.Steps[0].Status; got != plan.StatusAccepted {
		t.Fatalf("status=%q, want accepted", got)
	}
}

func TestAdd_InsertsAfterSelected(t *testing.T) {
	app, wait := newCardsApp(t)
	anchor := app.state.Steps[0].ID

	app = press(app, keyRune('o'))
	if app.mode != modeAdd {
		t.Fatalf("mode=%d, want modeAdd", app.mode)
	}
	if app.addAfter != anchor {
		t.Fatalf("addAfter=%q, want %q", app.addAfter, anchor)
	}

	app.input.SetValue("  Backfill audit records for the last thirty days.  ")
	app = press(app, tea.KeyMsg{Type: tea.KeyCtrlS})
	app, _ = pump(t, app, wait)

	if len(app.state.Steps) != 4 {
		t.Fatalf("len(Steps)=%d, want 4", len(app.state.Steps))
	}
	step := app.state.Steps[1]
	if step.Content != "Backfill audit records for the last thirty days." {
		t.Fatalf("Content=%q", step.Content)
	}
	if step.Status != plan.StatusEdited {
		t.Fatalf("status=%q, want edited", step.Status)
	}
	for i, s := range app.state.Steps {
		if s.DisplayIndex != i+1 {
			t.Fatalf("step %d DisplayIndex=%d, want %d", i, s.DisplayIndex, i+1)
		}
	}
}

func TestAdd_EmptyInputCancels(t *testing.T) {
	app, wait := newCardsApp(t)

	app = press(app, keyRune('o'))
	app.input.SetValue("   ")
	app = press(app, tea.KeyMsg{Type: tea.KeyCtrlS})
	if app.mode != modeNormal {
		t.Fatalf("mode=%d, want modeNormal", app.mode)
	}

	app = press(app, keyRune('a'))
	app, _ = pump(t, app, wait)
	if len(app.state.Steps) != 3 {
		t.Fatalf("len(Steps)=%d, want 3", len(app.state.Steps))
	}
}

func TestDelete_ClampsCursor(t *testing.T) {
	app, wait := newCardsApp(t)

	app = press(app, tea.KeyMsg{Type: tea.KeyDown})
	app = press(app, tea.KeyMsg{Type: tea.KeyDown})
	if app.cursor != 2 {
		t.Fatalf("cursor=%d, want 2", app.cursor)
	}

	app = press(app, keyRune('d'))
	if want := i18n.T("statusbar.deleted"); app.statusMsg != want {
		t.Fatalf("statusMsg=%q, want %q", app.statusMsg, want)
	}

	app, _ = pump(t, app, wait)
	if len(app.state.Steps) != 2 {
		t.Fatalf("len(Steps)=%d, want 2", len(app.state.Steps))
	}
	if app.cursor != 1 {
		t.Fatalf("cursor=%d, want clamped to 1", app.cursor)
	}
}

func TestExport_WritesRenderedDocument(t *testing.T) {
	app, wait := newCardsApp(t)

	app = press(app, keyRune('s'))
	app, _ = pump(t, app, wait)

	if app.lastExport == "" {
		t.Fatal("lastExport not set")
	}
	if !strings.Contains(app.statusMsg, app.lastExport) {
		t.Fatalf("statusMsg=%q, missing path %q", app.statusMsg, app.lastExport)
	}

	data, err := os.ReadFile(app.lastExport)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	doc := string(data)
	if !strings.Contains(doc, render.Card(app.state.Steps[0])) {
		t.Fatal("document does not embed the live card rendering")
	}
	if !strings.Contains(doc, app.opts.Task) {
		t.Fatal("document missing the task description")
	}
}

func TestHelp_TogglesOverlay(t *testing.T) {
	app, _ := newCardsApp(t)

	app = press(app, keyRune('?'))
	if app.mode != modeHelp {
		t.Fatalf("mode=%d, want modeHelp", app.mode)
	}
	if view := app.View(); !strings.Contains(view, i18n.T("help.title")) {
		t.Fatal("help overlay not rendered")
	}

	// 任意按键关闭 / any key closes it
	app = press(app, keyRune('x'))
	if app.mode != modeNormal {
		t.Fatalf("mode=%d, want modeNormal", app.mode)
	}
}

func TestView_GeneratingSmoke(t *testing.T) {
	app := NewApp(Options{Config: config.Default(), Task: "Add request auditing to the billing service"})
	app.width, app.height = 80, 24

	view := app.View()
	if !strings.Contains(view, "Plancraft") {
		t.Fatal("missing brand line")
	}
	if !strings.Contains(view, app.stageMsg) {
		t.Fatalf("missing stage message %q", app.stageMsg)
	}
}

func TestView_CardSurfaceSmoke(t *testing.T) {
	app, _ := newCardsApp(t)

	view := app.View()
	if !strings.Contains(view, "plancraft") {
		t.Fatal("missing status bar brand")
	}
	if !strings.Contains(view, "Step 1") {
		t.Fatal("missing first card header")
	}
	if !strings.Contains(view, "auditing") {
		t.Fatal("missing task in sidebar")
	}
}
