package controller

import (
	"context"
	"fmt"

	"plancraft/internal/generator"
	"plancraft/internal/host"
	"plancraft/internal/i18n"
	"plancraft/internal/plan"
	"plancraft/internal/render"
)

// Refiner 为被拒绝的步骤生成替代正文
// Refiner produces a replacement body for a rejected step
type Refiner interface {
	RefineStep(ctx context.Context, req generator.RefineRequest) (string, error)
}

// Host 是核心消费的宿主能力面
// Host is the host capability surface the core consumes
type Host interface {
	WriteClipboard(text string) error
	OpenTextDocument(content string) (string, error)
}

// Options 控制器依赖
// Options are the controller dependencies
type Options struct {
	Refiner Refiner
	Host    Host
	Events  *host.EventLog

	// ProjectContext 随每个重生成请求一起发送
	// ProjectContext is sent along with every refine request
	ProjectContext string
}

type refineResult struct {
	id      string
	content string
	err     error
}

// Controller 独占持有计划状态，在单一循环里逐条消费 intent。
// 唯一会挂起的操作是 reject 内部的重生成调用，它相对主循环是
// fire-and-forget 的：结果经 refines 通道重新入队。
// Controller exclusively owns the plan state and drains intents in a single
// loop. The only suspending operation is the refine call inside reject,
// which is fire-and-forget relative to the loop: its result re-enters
// through the refines channel.
type Controller struct {
	state plan.State
	opts  Options

	intents  chan Intent
	outbox   chan Broadcast
	refines  chan refineResult
	refining map[string]bool
}

// New 用初始计划构建控制器；Run 启动前不消费任何 intent
// New builds a controller around the initial plan; nothing is consumed
// before Run starts
func New(initial plan.State, opts Options) *Controller {
	return &Controller{
		state:    initial,
		opts:     opts,
		intents:  make(chan Intent, 256),
		outbox:   make(chan Broadcast, 256),
		refines:  make(chan refineResult, 32),
		refining: make(map[string]bool),
	}
}

// Send 投递一个 intent；按投递顺序被处理
// Send queues an intent; intents are handled in delivery order
func (c *Controller) Send(in Intent) {
	c.intents <- in
}

// Broadcasts 返回广播通道；广播按发送顺序被观察到
// Broadcasts returns the broadcast channel; broadcasts are observed in the
// order they were sent
func (c *Controller) Broadcasts() <-chan Broadcast {
	return c.outbox
}

// Run 驱动主循环直到 ctx 结束。必须在独立 goroutine 中调用。
// Run drives the main loop until ctx ends. Call it on its own goroutine.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-c.intents:
			c.handle(ctx, in)
		case res := <-c.refines:
			c.completeRefine(res)
		}
	}
}

func (c *Controller) handle(ctx context.Context, in Intent) {
	switch in := in.(type) {
	case AcceptStep:
		if c.state.Accept(in.ID) {
			c.log("accept_step", map[string]any{"step_id": in.ID})
			c.broadcastState()
		}

	case RejectStep:
		c.reject(ctx, in.ID)

	case EditStep:
		// 相同正文与未知 id 都不产生广播
		// identical content and unknown ids both produce no broadcast
		if c.state.Edit(in.ID, in.Content) {
			c.log("edit_step", map[string]any{"step_id": in.ID})
			c.broadcastState()
		}

	case ReorderSteps:
		c.state.Reorder(in.Order)
		c.log("reorder_steps", map[string]any{"order": in.Order})
		c.broadcastState()

	case DeleteStep:
		if c.state.Delete(in.ID) {
			c.log("delete_step", map[string]any{"step_id": in.ID})
			c.broadcastState()
		}

	case AddStep:
		step := c.state.AddAfter(in.AfterID, in.Content)
		c.log("add_step", map[string]any{"step_id": step.ID, "after_id": in.AfterID})
		c.broadcastState()

	case SavePlan:
		doc := render.Document(c.state)
		path, err := c.opts.Host.OpenTextDocument(doc)
		c.log("export_plan", map[string]any{"path": path, "error": errText(err)})
		c.emit(PlanExported{Path: path, Err: err})

	case SendToExternal:
		err := c.opts.Host.WriteClipboard(in.Content)
		c.log("clipboard_write", map[string]any{"error": errText(err)})
		c.emit(ClipboardWritten{Err: err})

	default:
		// 联合是封闭的，这里只兜住协议外的负载
		// the union is closed; this only catches out-of-protocol payloads
		c.log("unknown_intent", map[string]any{"type": fmt.Sprintf("%T", in)})
	}
}

// reject 驱动生命周期 * -> rejected -> refining -> edited（成功）或
// rejected + 错误正文（失败），每个箭头各发一次 StateUpdated。
// 同一步骤上重复的 reject 在重生成完成前被忽略。
// reject drives the lifecycle * -> rejected -> refining -> edited (success)
// or rejected with error content (failure), one StateUpdated per arrow.
// A duplicate reject on the same step is ignored until the refine completes.
func (c *Controller) reject(ctx context.Context, id string) {
	if c.refining[id] {
		return
	}
	step, ok := c.state.Step(id)
	if !ok {
		return
	}

	c.state.SetStatus(id, plan.StatusRejected)
	c.log("reject_step", map[string]any{"step_id": id})
	c.broadcastState()

	// 乐观闪现先行，完整状态紧随其后
	// the optimistic flash goes first, the full state right behind it
	c.emit(StepStatusChanged{ID: id, Status: plan.StatusRefining})
	c.state.SetStatus(id, plan.StatusRefining)
	c.broadcastState()

	c.refining[id] = true
	req := generator.RefineRequest{
		OriginalContent: step.Content,
		OtherContents:   c.state.ContentsExcept(id),
		Position:        step.DisplayIndex,
		TaskDescription: c.state.TaskDescription,
		ProjectContext:  c.opts.ProjectContext,
	}
	go func() {
		content, err := c.opts.Refiner.RefineStep(ctx, req)
		select {
		case c.refines <- refineResult{id: id, content: content, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) completeRefine(res refineResult) {
	delete(c.refining, res.id)

	// 步骤可能在重生成期间被删除；结果静默丢弃
	// the step may have been deleted mid-refine; the result is dropped silently
	if _, ok := c.state.Step(res.id); !ok {
		return
	}

	if res.err != nil {
		c.state.FailRefine(res.id, i18n.T("card.refine_err", res.err))
		c.log("refine_failed", map[string]any{"step_id": res.id, "error": res.err.Error()})
	} else {
		c.state.CompleteRefine(res.id, res.content)
		c.log("refine_done", map[string]any{"step_id": res.id})
	}
	c.broadcastState()
}

func (c *Controller) broadcastState() {
	c.emit(StateUpdated{State: c.state.Clone()})
}

func (c *Controller) emit(b Broadcast) {
	c.outbox <- b
}

func (c *Controller) log(event string, fields map[string]any) {
	_ = c.opts.Events.Record(event, fields)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
