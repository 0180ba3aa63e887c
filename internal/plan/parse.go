package plan

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// stepLabelPattern 匹配字面量 "Step <整数>:" 标签，大小写不敏感
// stepLabelPattern matches the literal "Step <integer>:" label, case-insensitively
var stepLabelPattern = regexp.MustCompile(`(?i)step \d+:`)

// minBodyRunes 步骤正文的长度门槛：去除首尾空白后不超过该值的片段被丢弃
// minBodyRunes is the body length threshold: trimmed bodies at or below it are dropped
const minBodyRunes = 20

// ParseSteps 将生成器返回的自由文本切分为有序的步骤正文。
// 在每个 "Step <整数>:" 标签处切分，丢弃标签本身，正文延伸到下一个标签或文本末尾；
// 第一个标签之前的内容不属于任何步骤。
//
// ParseSteps splits the generator's free text into ordered step bodies.
// It splits at each "Step <integer>:" label, discards the label itself, and
// keeps the remainder up to the next label (or end of text) as one body.
// Text before the first label belongs to no step.
func ParseSteps(raw string) []string {
	locs := stepLabelPattern.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}

	steps := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(raw[loc[1]:end])
		if utf8.RuneCountInString(body) <= minBodyRunes {
			continue
		}
		steps = append(steps, body)
	}
	return steps
}
