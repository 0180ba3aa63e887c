package plan

import "time"

// New 从解析出的步骤正文构建一个新计划：为每个正文包一个全新 Step，
// 依次分配 id 与 DisplayIndex，状态为零值（未评审）。
// New builds a fresh plan from parsed step bodies: each body is wrapped in a
// new Step with a fresh id, a sequential DisplayIndex, and the zero status.
func New(taskDescription string, contents []string) State {
	steps := make([]Step, 0, len(contents))
	for i, content := range contents {
		steps = append(steps, Step{
			ID:           NewStepID(),
			Content:      content,
			Status:       StatusUnset,
			DisplayIndex: i + 1,
		})
	}
	return State{
		Steps:           steps,
		TaskDescription: taskDescription,
		LastModified:    time.Now(),
	}
}

// Clone 返回一个与原状态完全独立的深拷贝，用于广播
// Clone returns an independent deep copy, used for broadcast payloads
func (s State) Clone() State {
	out := s
	out.Steps = append([]Step(nil), s.Steps...)
	return out
}

// Step 按 id 查找步骤（返回副本）
// Step looks up a step by id (returns a copy)
func (s *State) Step(id string) (Step, bool) {
	if i := s.index(id); i >= 0 {
		return s.Steps[i], true
	}
	return Step{}, false
}

// IDs 返回当前顺序下的全部步骤 id
// IDs returns all step ids in current order
func (s *State) IDs() []string {
	ids := make([]string, len(s.Steps))
	for i, step := range s.Steps {
		ids[i] = step.ID
	}
	return ids
}

// ContentsExcept 返回除指定步骤外的全部正文（保持顺序），用于重生成请求
// ContentsExcept returns every body except the given step's, in order, for refine requests
func (s *State) ContentsExcept(id string) []string {
	out := make([]string, 0, len(s.Steps))
	for _, step := range s.Steps {
		if step.ID == id {
			continue
		}
		out = append(out, step.Content)
	}
	return out
}

// Accept 将步骤标记为已接受；id 不存在时返回 false
// Accept marks a step accepted; returns false when the id is missing
func (s *State) Accept(id string) bool {
	return s.SetStatus(id, StatusAccepted)
}

// SetStatus 设置步骤状态；id 不存在时返回 false
// SetStatus sets a step's status; returns false when the id is missing
func (s *State) SetStatus(id string, status Status) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.Steps[i].Status = status
	s.touch()
	return true
}

// Edit 替换步骤正文并标记为 edited。内容与当前完全相同时是显式 no-op：
// 不修改状态，不刷新 LastModified，返回 false。
// Edit replaces a step's body and marks it edited. Identical content is an
// explicit no-op: nothing changes, LastModified is untouched, false returned.
func (s *State) Edit(id, content string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	if s.Steps[i].Content == content {
		return false
	}
	s.Steps[i].Content = content
	s.Steps[i].Status = StatusEdited
	s.touch()
	return true
}

// CompleteRefine 用重生成结果覆盖正文并标记为 edited
// CompleteRefine replaces the body with the refine result and marks it edited
func (s *State) CompleteRefine(id, content string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.Steps[i].Content = content
	s.Steps[i].Status = StatusEdited
	s.touch()
	return true
}

// FailRefine 重生成失败：正文替换为错误说明文本，状态回到 rejected
// FailRefine handles a failed refine: the body becomes the error text and
// the status falls back to rejected (no separate error tag)
func (s *State) FailRefine(id, errText string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.Steps[i].Content = errText
	s.Steps[i].Status = StatusRejected
	s.touch()
	return true
}

// Reorder 按给定 id 顺序重排步骤。策略（reorder drops unlisted ids）：
// 顺序表中未知或重复的 id 被忽略；计划中未出现在顺序表里的步骤被丢弃。
// Reorder reprojects steps into the given id order. Policy (reorder drops
// unlisted ids): unknown and duplicate ids in the order are ignored; plan
// steps absent from the order are dropped.
func (s *State) Reorder(order []string) bool {
	next := make([]Step, 0, len(s.Steps))
	taken := make(map[string]bool, len(order))
	for _, id := range order {
		if taken[id] {
			continue
		}
		i := s.index(id)
		if i < 0 {
			continue
		}
		taken[id] = true
		next = append(next, s.Steps[i])
	}
	s.Steps = next
	s.reindex()
	s.touch()
	return true
}

// Delete 删除一个步骤；id 不存在时返回 false
// Delete removes one step; returns false when the id is missing
func (s *State) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.Steps = append(s.Steps[:i], s.Steps[i+1:]...)
	s.reindex()
	s.touch()
	return true
}

// AddAfter 在 afterID 之后插入一个新步骤（afterID 为空或不存在时追加到末尾）。
// 新步骤持有全新 id，状态为 edited。
// AddAfter inserts a new step right after afterID (appended when afterID is
// empty or unknown). The new step gets a fresh id and the edited status.
func (s *State) AddAfter(afterID, content string) Step {
	step := Step{
		ID:      NewStepID(),
		Content: content,
		Status:  StatusEdited,
	}
	pos := len(s.Steps)
	if afterID != "" {
		if i := s.index(afterID); i >= 0 {
			pos = i + 1
		}
	}
	s.Steps = append(s.Steps, Step{})
	copy(s.Steps[pos+1:], s.Steps[pos:])
	s.Steps[pos] = step
	s.reindex()
	s.touch()
	return s.Steps[pos]
}

// AcceptedCount 已接受步骤数
// AcceptedCount is the number of accepted steps
func (s *State) AcceptedCount() int {
	n := 0
	for _, step := range s.Steps {
		if step.Status == StatusAccepted {
			n++
		}
	}
	return n
}

// CompletionRatio 完成度 = accepted / total，空计划为 0。每次调用重新推导，从不缓存。
// CompletionRatio is accepted/total, 0 for an empty plan. Re-derived on every
// call, never cached.
func (s *State) CompletionRatio() float64 {
	if len(s.Steps) == 0 {
		return 0
	}
	return float64(s.AcceptedCount()) / float64(len(s.Steps))
}

func (s *State) index(id string) int {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			return i
		}
	}
	return -1
}

// reindex 重算全部 DisplayIndex，保证任何结构性修改后立即满足 k+1 不变量
// reindex recomputes every DisplayIndex so the k+1 invariant holds right
// after any structural mutation
func (s *State) reindex() {
	for i := range s.Steps {
		s.Steps[i].DisplayIndex = i + 1
	}
}

func (s *State) touch() {
	s.LastModified = time.Now()
}
