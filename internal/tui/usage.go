package tui

import (
	"sync/atomic"

	"plancraft/internal/generator"
)

// UsageTally 累计本次会话的生成调用用量。Add 在 generator 的回调 goroutine
// 上执行，读取发生在渲染循环里，因此用原子计数。
// UsageTally accumulates this session's generator usage. Add runs on the
// generator callback goroutine while reads happen in the render loop, hence
// the atomic counters.
type UsageTally struct {
	calls  atomic.Int64
	tokens atomic.Int64
}

// Add 记录一次生成调用
// Add records one generator call
func (t *UsageTally) Add(u generator.Usage) {
	if t == nil {
		return
	}
	t.calls.Add(1)
	t.tokens.Add(int64(u.TotalTokens))
}

// Calls 本次会话的调用数
// Calls is the number of calls this session
func (t *UsageTally) Calls() int64 {
	if t == nil {
		return 0
	}
	return t.calls.Load()
}

// Tokens 本次会话消耗的 token 总数
// Tokens is the total tokens consumed this session
func (t *UsageTally) Tokens() int64 {
	if t == nil {
		return 0
	}
	return t.tokens.Load()
}
