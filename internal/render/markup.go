package render

import (
	"regexp"
	"strings"
)

// 卡片正文的轻量 markup 变换。方向是单向的：CardBody 把模型输出
// 规整成适合展示的 markdown，PlainText 是进入编辑模式时的尽力逆变换。
// The lightweight markup transform for card bodies. It is one-directional:
// CardBody normalizes model output into display markdown, and PlainText is
// the best-effort inverse used when entering edit mode.
//
// 已知的损失边界 / Known loss boundary:
//   - 标题级别不可恢复（CardBody 会剥掉 # 前缀，卡片自带标题行）
//     heading levels are not recoverable (CardBody strips # prefixes;
//     the card supplies its own header line)
//   - 嵌套强调被拍平："**a *b* c**" 逆变换后是 "a b c"
//     nested emphasis flattens: "**a *b* c**" inverts to "a b c"
//   - 下划线强调原样保留，snake_case 标识符因此不会被破坏
//     underscore emphasis passes through verbatim, so snake_case
//     identifiers are never mangled
//   - 成对的单星号总被当作强调，即使原意是字面星号
//     paired single asterisks are always treated as emphasis, even when
//     literal asterisks were intended

var (
	headingPrefix = regexp.MustCompile(`^#{1,6}\s+`)
	bulletPrefix  = regexp.MustCompile(`^(\s*)[*+•]\s+`)

	codeSpan   = regexp.MustCompile("`([^`\n]*)`")
	boldSpan   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicSpan = regexp.MustCompile(`\*(\S(?:[^*\n]*\S)?)\*`)
)

// CardBody 把步骤正文规整成展示用 markdown：剥掉标题前缀、统一
// 无序列表记号为 "- "、保留粗体/斜体/行内代码与换行。
// CardBody normalizes a step body into display markdown: heading prefixes
// are stripped, bullet markers unify to "- ", and bold/italic/inline code
// and line breaks pass through.
func CardBody(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		line = headingPrefix.ReplaceAllString(line, "")
		line = bulletPrefix.ReplaceAllString(line, "${1}- ")
		out = append(out, line)
	}
	// 只裁掉首尾空行；首行若是缩进的列表项，缩进必须保留
	// trim only the outer blank lines; an indented leading bullet keeps its
	// indentation
	return strings.Trim(strings.Join(out, "\n"), "\n")
}

// PlainText 从展示 markdown 还原纯文本：去掉强调与行内代码记号，
// 保留列表记号与换行。见文件头的损失边界说明。
// PlainText recovers plain text from display markdown: emphasis and inline
// code markers are removed while bullets and line breaks stay. See the loss
// boundary notes at the top of this file.
func PlainText(markup string) string {
	s := codeSpan.ReplaceAllString(markup, "$1")
	s = boldSpan.ReplaceAllString(s, "$1")
	s = italicSpan.ReplaceAllString(s, "$1")
	return s
}
