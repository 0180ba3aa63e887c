package generator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"plancraft/internal/chat"
	"plancraft/internal/plan"
	"plancraft/internal/provider"
)

// ErrEmptyPlan 生成器输出没有解析出任何可用步骤
// ErrEmptyPlan means the generator output parsed into zero usable steps
var ErrEmptyPlan = errors.New("generator output contains no usable steps")

// Config 生成器参数
// Config holds the generation parameters
type Config struct {
	Temperature     float64
	MaxTokens       int
	StepsMin        int
	StepsMax        int
	RefineTimeoutMS int
}

// Usage 单次生成器调用的用量回执
// Usage is the receipt for one generator call
type Usage struct {
	Kind             string // "generate" or "refine"
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Duration         time.Duration
}

// UsageFunc 用量回调（可为 nil）
// UsageFunc is the usage callback (may be nil)
type UsageFunc func(Usage)

// RefineRequest 单步重生成请求
// RefineRequest is a single-step regeneration request
type RefineRequest struct {
	// OriginalContent 被拒绝步骤当前的正文
	// OriginalContent is the rejected step's current body
	OriginalContent string

	// OtherContents 其余步骤的正文，按计划顺序
	// OtherContents are the remaining step bodies, in plan order
	OtherContents []string

	// Position 被拒绝步骤的 1 起始展示序号
	// Position is the rejected step's 1-based display index
	Position int

	TaskDescription string
	ProjectContext  string
}

// Generator 面向 provider 的计划生成门面
// Generator is the plan-generation facade over a provider
type Generator struct {
	provider provider.Provider
	cfg      Config
	onUsage  UsageFunc
}

// New 创建生成器；步数边界非法时回落到 8–12
// New creates a generator; invalid step bounds fall back to 8–12
func New(p provider.Provider, cfg Config, onUsage UsageFunc) *Generator {
	if cfg.StepsMin <= 0 {
		cfg.StepsMin = 8
	}
	if cfg.StepsMax < cfg.StepsMin {
		cfg.StepsMax = 12
	}
	return &Generator{provider: p, cfg: cfg, onUsage: onUsage}
}

// GeneratePlan 一次性调用：系统提示词 + 用户提示词 → 原始计划文本。
// 不暴露流式输出，输出长度由 MaxTokens 约束。
// GeneratePlan is a one-shot call: system prompt + user prompt → raw plan
// text. No streaming is exposed; output length is bounded by MaxTokens.
func (g *Generator) GeneratePlan(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	content, err := g.chat(ctx, "generate", systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("generate plan: %w", err)
	}
	return content, nil
}

// BuildPlan 执行完整生成流程：组装提示词、调用模型、解析步骤、构建全新计划。
// 解析不出步骤时返回 ErrEmptyPlan；任何失败都不会产生部分状态。
// BuildPlan runs the full generation flow: assemble prompts, call the model,
// parse the steps, build a fresh plan. Zero parsed steps yield ErrEmptyPlan;
// no failure ever produces partial state.
func (g *Generator) BuildPlan(ctx context.Context, task, projectContext string) (plan.State, error) {
	system := fmt.Sprintf(PlanSystemPrompt, g.cfg.StepsMin, g.cfg.StepsMax)
	raw, err := g.GeneratePlan(ctx, system, planUserPrompt(task, projectContext))
	if err != nil {
		return plan.State{}, err
	}
	contents := plan.ParseSteps(raw)
	if len(contents) == 0 {
		return plan.State{}, fmt.Errorf("generate plan: %w", ErrEmptyPlan)
	}
	return plan.New(task, contents), nil
}

// echoedLabel 模型有时会在替换正文前再带一个 "Step N:" 标签
// echoedLabel matches a "Step N:" label the model sometimes echoes back
var echoedLabel = regexp.MustCompile(`(?i)^step \d+:\s*`)

// RefineStep 为被拒绝的步骤生成替代正文。调用带有界超时
// （RefineTimeoutMS），超时走普通失败路径。
// RefineStep generates a replacement body for a rejected step. The call
// carries a bounded timeout (RefineTimeoutMS); expiry takes the ordinary
// failure path.
func (g *Generator) RefineStep(ctx context.Context, req RefineRequest) (string, error) {
	if g.cfg.RefineTimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.cfg.RefineTimeoutMS)*time.Millisecond)
		defer cancel()
	}

	content, err := g.chat(ctx, "refine", RefineSystemPrompt, refineUserPrompt(req))
	if err != nil {
		return "", fmt.Errorf("refine step %d: %w", req.Position, err)
	}
	text := strings.TrimSpace(echoedLabel.ReplaceAllString(strings.TrimSpace(content), ""))
	if text == "" {
		return "", fmt.Errorf("refine step %d: empty response", req.Position)
	}
	return text, nil
}

// RefineTimeout 返回重生成调用的有界超时
// RefineTimeout reports the bounded timeout for refine calls
func (g *Generator) RefineTimeout() time.Duration {
	if g.cfg.RefineTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(g.cfg.RefineTimeoutMS) * time.Millisecond
}

func (g *Generator) chat(ctx context.Context, kind, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	temp := g.cfg.Temperature
	resp, err := g.provider.Chat(ctx, provider.ChatRequest{
		Messages: []chat.Message{
			chat.System(strings.TrimSpace(systemPrompt)),
			chat.User(userPrompt),
		},
		Temperature: &temp,
		MaxTokens:   g.cfg.MaxTokens,
	}, nil)
	if err != nil {
		return "", err
	}
	if g.onUsage != nil {
		g.onUsage(Usage{
			Kind:             kind,
			Model:            g.provider.CurrentModel(),
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
			Duration:         time.Since(start),
		})
	}
	return resp.Content, nil
}
