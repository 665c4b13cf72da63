// Package policy 实现引号选择策略：形态 + 风格 → 判定（纯函数）。
package policy

import (
	"fmt"

	"requote/pkg/contract"
)

// Decide 依据字面量形态与风格配置给出引号判定。
// 算法：
// 1) 三引号字面量一律保持（定界歧义风险，不在改写范围内）；
// 2) 候选引号：单字符且配置了 SingleCharQuote 时取之，否则取 DefaultQuote；
// 3) 当前定界符已是候选 → 保持；
// 4) PreferNoEscape 且候选引号已出现于文本（改写将引入新转义）→ 保持；
// 5) 其余情况改写为候选。
func Decide(shape contract.LiteralShape, style contract.StyleConfig) contract.QuoteDecision {
	if shape.Triple {
		return contract.Keep()
	}
	candidate := style.DefaultQuote
	if shape.Length == contract.LengthSingleChar && style.SingleCharQuote != nil {
		candidate = *style.SingleCharQuote
	}
	if style.PreferNoEscape && shape.HasQuote(candidate) {
		return contract.Keep()
	}
	return contract.ChangeTo(candidate)
}

// DecideFor 在 Decide 之上叠加与前缀相关的保守规则：
// format（f-string）字面量一律保持——扫描器不解析内插表达式，
// 表达式内的引号可能与新定界符冲突。
func DecideFor(lit *contract.SourceLiteral, shape contract.LiteralShape, style contract.StyleConfig) contract.QuoteDecision {
	if lit.Prefix.Has(contract.PrefixFormat) {
		return contract.Keep()
	}
	d := Decide(shape, style)
	if d.Change && d.Quote == lit.Delim {
		return contract.Keep()
	}
	return d
}

// Validate 校验风格配置的取值合法性。
func Validate(style contract.StyleConfig) error {
	if !style.DefaultQuote.Valid() {
		return fmt.Errorf("%w: default_quote %q", contract.ErrStyleInvalid, string(style.DefaultQuote))
	}
	if style.SingleCharQuote != nil && !style.SingleCharQuote.Valid() {
		return fmt.Errorf("%w: single_char_quote %q", contract.ErrStyleInvalid, string(*style.SingleCharQuote))
	}
	return nil
}
