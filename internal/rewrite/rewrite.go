// Package rewrite 依据策略判定重新发射字面量文本（定界符替换与转义调整）。
package rewrite

import (
	"strings"

	"requote/pkg/contract"
)

// Literal 重写单个字面量。
// 约束：
// - Keep 判定：逐字节原样返回；
// - ChangeTo：前缀按原拼写原顺序发射；两侧发射新定界符（仅短字符串，
//   三引号字面量在策略层已被排除）；
// - 文本体：去掉旧定界符不再需要的转义，为新定界符补充转义；
// - raw 文本体绝不改动：若 raw 文本体含新定界符，改写不安全，拒绝并原样返回；
// - 改写前后解码值必须一致，违例返回 *RewriteInvariantError（检查而非假设）。
func Literal(lit *contract.SourceLiteral, d contract.QuoteDecision) (string, error) {
	if !d.Change || d.Quote == lit.Delim {
		return lit.Text(), nil
	}
	if lit.Triple {
		// 策略层保证三引号不会走到这里；防御性原样返回
		return lit.Text(), nil
	}
	raw := lit.Prefix.Has(contract.PrefixRaw)
	if raw {
		// raw 无法转义冲突引号：文本体含新定界符即拒绝改写
		if strings.IndexByte(lit.Body, byte(d.Quote)) >= 0 {
			return lit.Text(), nil
		}
		return emit(lit.RawPrefix, d.Quote, lit.Body), nil
	}

	body := reescape(lit.Body, lit.Delim, d.Quote)
	out := emit(lit.RawPrefix, d.Quote, body)

	// 不变量：解码值不变
	if decode(body, false) != decode(lit.Body, false) {
		return "", &contract.RewriteInvariantError{Offset: lit.Start}
	}
	return out, nil
}

// reescape 对非 raw 文本体做一次线性重写：
// - \old → old（旧定界符不再需要转义）；
// - new → \new（未转义的新定界符补转义）；
// - 其余转义对与字节原样透传。
func reescape(body string, oldQ, newQ contract.QuoteChar) string {
	var b strings.Builder
	b.Grow(len(body) + 2)
	for i := 0; i < len(body); {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			n := body[i+1]
			if n == byte(oldQ) {
				b.WriteByte(n)
			} else {
				b.WriteByte('\\')
				b.WriteByte(n)
			}
			i += 2
			continue
		}
		if c == byte(newQ) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// decode 将文本体解码为规范值用于等价比较。
// 仅需对两侧做同构解码：引号与反斜杠的转义还原，其余转义对保持书写形态。
func decode(body string, raw bool) string {
	if raw {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			switch n := body[i+1]; n {
			case '\'', '"', '\\':
				b.WriteByte(n)
			default:
				b.WriteByte('\\')
				b.WriteByte(n)
			}
			i += 2
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

func emit(prefix string, q contract.QuoteChar, body string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(body) + 2)
	b.WriteString(prefix)
	b.WriteByte(byte(q))
	b.WriteString(body)
	b.WriteByte(byte(q))
	return b.String()
}
