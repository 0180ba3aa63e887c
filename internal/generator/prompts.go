package generator

import (
	"fmt"
	"strings"
)

// PlanSystemPrompt 计划生成的系统提示词
// PlanSystemPrompt is the system prompt for plan generation
const PlanSystemPrompt = `
You are a senior software engineer writing an implementation plan.

OUTPUT CONTRACT
- Produce a linear, ordered plan of %d to %d discrete steps.
- Every step MUST start on its own line with the literal label "Step N:" where N counts up from 1.
- One action per step. Each step body must be a self-contained instruction of at least one full sentence (never fewer than 21 characters).
- Steps may use light markdown inside the body: **bold**, *italic*, ` + "`inline code`" + `, and "- " bullet lines. No headings, no tables, no code fences.
- Do not add any preamble, commentary, or closing remarks outside the "Step N:" entries.

PLANNING RULES
- Order steps by dependency: setup and scaffolding first, verification last.
- Name concrete files, commands, and modules when the project context makes them known.
- Prefer steps a reviewer can accept or reject independently.
`

// RefineSystemPrompt 单步重生成的系统提示词
// RefineSystemPrompt is the system prompt for regenerating one step
const RefineSystemPrompt = `
You are a senior software engineer revising ONE step of an implementation plan that a reviewer rejected.

OUTPUT CONTRACT
- Return ONLY the replacement step body: no "Step N:" label, no quotes, no commentary.
- The replacement must be a meaningfully different approach to the same goal, not a paraphrase.
- Keep the body self-contained (at least one full sentence) and consistent with the surrounding steps.
- Light markdown is allowed inside the body: **bold**, *italic*, ` + "`inline code`" + `, "- " bullet lines.
`

// planUserPrompt 组装计划生成的用户提示词
// planUserPrompt assembles the user prompt for plan generation
func planUserPrompt(task, projectContext string) string {
	var b strings.Builder
	b.WriteString("Task:\n")
	b.WriteString(strings.TrimSpace(task))
	b.WriteString("\n")
	if ctx := strings.TrimSpace(projectContext); ctx != "" {
		b.WriteString("\nProject context:\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}
	b.WriteString("\nWrite the implementation plan now.")
	return b.String()
}

// refineUserPrompt 组装单步重生成的用户提示词
// refineUserPrompt assembles the user prompt for a single-step refine
func refineUserPrompt(req RefineRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task:\n%s\n", strings.TrimSpace(req.TaskDescription))
	if ctx := strings.TrimSpace(req.ProjectContext); ctx != "" {
		fmt.Fprintf(&b, "\nProject context:\n%s\n", ctx)
	}
	if len(req.OtherContents) > 0 {
		b.WriteString("\nThe other steps of the plan, in order:\n")
		for i, content := range req.OtherContents {
			fmt.Fprintf(&b, "%d. %s\n", i+1, content)
		}
	}
	fmt.Fprintf(&b, "\nThe reviewer rejected step %d:\n%s\n", req.Position, strings.TrimSpace(req.OriginalContent))
	b.WriteString("\nWrite the replacement body for that step now.")
	return b.String()
}
