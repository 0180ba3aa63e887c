package controller

import (
	"plancraft/internal/plan"
)

// 消息协议是封闭的标签联合：每个 intent / broadcast 一个 case，
// 由编译器保证没有未知负载进入通道。
// The message protocol is a closed tagged union: one case per intent and
// broadcast, with the compiler guaranteeing no unknown payload enters the
// channel.

// Intent 是 Presentation 发给 Controller 的结构化编辑请求
// Intent is a structural-edit request from Presentation to Controller
type Intent interface{ isIntent() }

// AcceptStep 将步骤标记为已接受
// AcceptStep marks a step accepted
type AcceptStep struct{ ID string }

// RejectStep 拒绝步骤并触发重生成
// RejectStep rejects a step and triggers regeneration
type RejectStep struct{ ID string }

// EditStep 用给定正文替换步骤内容
// EditStep replaces a step's body with the given content
type EditStep struct {
	ID      string
	Content string
}

// ReorderSteps 按完整 id 序列重排（从不发送增量移动）
// ReorderSteps reorders by a full id sequence (incremental moves are never sent)
type ReorderSteps struct{ Order []string }

// DeleteStep 删除一个步骤
// DeleteStep removes one step
type DeleteStep struct{ ID string }

// AddStep 在 AfterID 之后插入新步骤；AfterID 为空表示追加到末尾
// AddStep inserts a new step after AfterID; empty AfterID appends at the end
type AddStep struct {
	AfterID string
	Content string
}

// SavePlan 把当前计划导出为独立文档
// SavePlan exports the current plan as a detached document
type SavePlan struct{}

// SendToExternal 把文本写入系统剪贴板
// SendToExternal writes text to the system clipboard
type SendToExternal struct{ Content string }

func (AcceptStep) isIntent()     {}
func (RejectStep) isIntent()     {}
func (EditStep) isIntent()       {}
func (ReorderSteps) isIntent()   {}
func (DeleteStep) isIntent()     {}
func (AddStep) isIntent()        {}
func (SavePlan) isIntent()       {}
func (SendToExternal) isIntent() {}

// Broadcast 是 Controller 推给 Presentation 的消息
// Broadcast is a message pushed from Controller to Presentation
type Broadcast interface{ isBroadcast() }

// StateUpdated 携带完整状态深拷贝；Presentation 整体替换镜像，从不回写
// StateUpdated carries a full deep copy of the state; Presentation replaces
// its mirror wholesale and never writes back
type StateUpdated struct{ State plan.State }

// StepStatusChanged 仅用于 refining 的乐观闪现，随后必有完整 StateUpdated
// StepStatusChanged is used only for the optimistic refining flash; a full
// StateUpdated always follows
type StepStatusChanged struct {
	ID     string
	Status plan.Status
}

// PlanExported 报告导出结果
// PlanExported reports the export outcome
type PlanExported struct {
	Path string
	Err  error
}

// ClipboardWritten 报告剪贴板写入结果
// ClipboardWritten reports the clipboard write outcome
type ClipboardWritten struct{ Err error }

func (StateUpdated) isBroadcast()      {}
func (StepStatusChanged) isBroadcast() {}
func (PlanExported) isBroadcast()      {}
func (ClipboardWritten) isBroadcast()  {}
