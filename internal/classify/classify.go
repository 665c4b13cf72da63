// Package classify 从扫描得到的字面量派生形态信息（纯函数）。
package classify

import (
	"unicode/utf8"

	"requote/pkg/contract"
)

// Shape 计算字面量的 LiteralShape。
// 有效字符计数规则：
// - 非 raw：反斜杠与其后一个字符合并计为 1 个有效字符（\'、\\ 等）；
// - raw：转义不生效，按字面 rune 计数；
// 引号出现标志：有效文本中出现该引号即为真（无论转义与否）。
func Shape(lit *contract.SourceLiteral) contract.LiteralShape {
	raw := lit.Prefix.Has(contract.PrefixRaw)
	n, hasSingle, hasDouble := walk(lit.Body, raw)

	var lc contract.LengthClass
	switch {
	case n == 0:
		lc = contract.LengthEmpty
	case n == 1:
		lc = contract.LengthSingleChar
	default:
		lc = contract.LengthMultiChar
	}
	return contract.LiteralShape{
		Length:         lc,
		Triple:         lit.Triple,
		HasSingleQuote: hasSingle,
		HasDoubleQuote: hasDouble,
	}
}

// walk 在一次遍历中同时得到有效字符数与引号出现标志。
func walk(body string, raw bool) (n int, hasSingle, hasDouble bool) {
	for i := 0; i < len(body); {
		c := body[i]
		if !raw && c == '\\' && i+1 < len(body) {
			// 转义对计 1 个有效字符；被转义的引号仍计入出现标志
			switch body[i+1] {
			case '\'':
				hasSingle = true
			case '"':
				hasDouble = true
			}
			n++
			i += 2
			continue
		}
		switch c {
		case '\'':
			hasSingle = true
		case '"':
			hasDouble = true
		}
		_, size := utf8.DecodeRuneInString(body[i:])
		if size <= 0 {
			size = 1
		}
		n++
		i += size
	}
	return n, hasSingle, hasDouble
}
