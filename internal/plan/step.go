package plan

import (
	"time"

	"github.com/google/uuid"
)

// Status 步骤的评审状态
// Status is the review state of a single plan step
type Status string

const (
	// StatusUnset 尚未评审（零值，即“无标签”）
	// StatusUnset means the step has not been reviewed yet (zero value)
	StatusUnset Status = ""

	// StatusAccepted 用户已接受该步骤
	// StatusAccepted means the user approved the step
	StatusAccepted Status = "accepted"

	// StatusRejected 用户已拒绝该步骤
	// StatusRejected means the user rejected the step
	StatusRejected Status = "rejected"

	// StatusEdited 内容被手动修改或由重生成结果覆盖
	// StatusEdited means the content was hand-edited or replaced by a refine result
	StatusEdited Status = "edited"

	// StatusRefining 有一个进行中的重生成请求（瞬态标记）
	// StatusRefining marks an in-flight regeneration request (transient)
	StatusRefining Status = "refining"
)

// Step 计划中的一个可独立评审的单元
// Step is one independently reviewable unit of the plan
type Step struct {
	// ID 不透明且全局唯一，步骤存续期间保持稳定，删除后不复用
	// ID is opaque and globally unique; stable for the step's lifetime, never reused
	ID string `json:"id"`

	// Content 步骤正文，可变
	// Content is the step body text, mutable
	Content string `json:"content"`

	Status Status `json:"status,omitempty"`

	// DisplayIndex 1 起始的位置标签，随顺序重算，仅用于展示
	// DisplayIndex is the 1-based position label, recomputed from order, presentation only
	DisplayIndex int `json:"display_index"`
}

// State 整个计划文档，由 Controller 独占持有并修改
// State is the whole plan document, exclusively owned and mutated by the controller
type State struct {
	// Steps 有序步骤序列，顺序即执行顺序，无重复 id
	// Steps is the ordered step sequence; order is execution order; no duplicate ids
	Steps []Step `json:"steps"`

	// TaskDescription 创建后不可变的原始任务描述
	// TaskDescription is the original free-text task, immutable after creation
	TaskDescription string `json:"task_description"`

	LastModified time.Time `json:"last_modified"`
}

// NewStepID 生成新的步骤 id
// NewStepID mints a fresh step id
func NewStepID() string {
	return uuid.NewString()
}
