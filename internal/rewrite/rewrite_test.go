package rewrite

import (
	"errors"
	"testing"

	"requote/pkg/contract"
)

func lit(prefix string, flags contract.PrefixFlag, q contract.QuoteChar, triple bool, body string) *contract.SourceLiteral {
	return &contract.SourceLiteral{
		Prefix:    flags,
		RawPrefix: prefix,
		Delim:     q,
		Triple:    triple,
		Body:      body,
	}
}

// TestLiteralKeep Keep 判定逐字节原样返回
func TestLiteralKeep(t *testing.T) {
	l := lit("", 0, contract.SingleQuote, false, `it\'s`)
	out, err := Literal(l, contract.Keep())
	if err != nil || out != `'it\'s'` {
		t.Fatalf("keep: %q %v", out, err)
	}
}

// TestLiteralSwapDelim 简单定界符替换
func TestLiteralSwapDelim(t *testing.T) {
	l := lit("", 0, contract.SingleQuote, false, "hello")
	out, err := Literal(l, contract.ChangeTo(contract.DoubleQuote))
	if err != nil || out != `"hello"` {
		t.Fatalf("swap: %q %v", out, err)
	}
}

// TestLiteralUnescapeOld 旧定界符转义去除
func TestLiteralUnescapeOld(t *testing.T) {
	l := lit("", 0, contract.SingleQuote, false, `it\'s`)
	out, err := Literal(l, contract.ChangeTo(contract.DoubleQuote))
	if err != nil || out != `"it's"` {
		t.Fatalf("unescape: %q %v", out, err)
	}
}

// TestLiteralEscapeNew 新定界符补转义
func TestLiteralEscapeNew(t *testing.T) {
	l := lit("", 0, contract.SingleQuote, false, `say "hi"`)
	out, err := Literal(l, contract.ChangeTo(contract.DoubleQuote))
	if err != nil || out != `"say \"hi\""` {
		t.Fatalf("escape: %q %v", out, err)
	}
}

// TestLiteralOtherEscapesVerbatim 其余转义对透传
func TestLiteralOtherEscapesVerbatim(t *testing.T) {
	l := lit("", 0, contract.SingleQuote, false, `a\n\\b`)
	out, err := Literal(l, contract.ChangeTo(contract.DoubleQuote))
	if err != nil || out != `"a\n\\b"` {
		t.Fatalf("verbatim: %q %v", out, err)
	}
}

// TestLiteralPrefixPreserved 前缀拼写与顺序保持
func TestLiteralPrefixPreserved(t *testing.T) {
	l := lit("Rb", contract.PrefixRaw|contract.PrefixBytes, contract.SingleQuote, false, "ab")
	out, err := Literal(l, contract.ChangeTo(contract.DoubleQuote))
	if err != nil || out != `Rb"ab"` {
		t.Fatalf("prefix: %q %v", out, err)
	}
}

// TestLiteralRawConflictRefused raw 文本体含新定界符时拒绝改写
func TestLiteralRawConflictRefused(t *testing.T) {
	l := lit("r", contract.PrefixRaw, contract.SingleQuote, false, `a"b`)
	out, err := Literal(l, contract.ChangeTo(contract.DoubleQuote))
	if err != nil || out != `r'a"b'` {
		t.Fatalf("raw refuse: %q %v", out, err)
	}
}

// TestLiteralRawNoConflict raw 无冲突时仅换定界符
func TestLiteralRawNoConflict(t *testing.T) {
	l := lit("r", contract.PrefixRaw, contract.SingleQuote, false, `a\nb`)
	out, err := Literal(l, contract.ChangeTo(contract.DoubleQuote))
	if err != nil || out != `r"a\nb"` {
		t.Fatalf("raw swap: %q %v", out, err)
	}
}

// TestLiteralTripleDefensive 三引号改写请求防御性原样返回
func TestLiteralTripleDefensive(t *testing.T) {
	l := lit("", 0, contract.SingleQuote, true, "doc")
	out, err := Literal(l, contract.ChangeTo(contract.DoubleQuote))
	if err != nil || out != "'''doc'''" {
		t.Fatalf("triple: %q %v", out, err)
	}
}

// TestLiteralSameQuoteNoop 目标与当前定界符一致时原样返回
func TestLiteralSameQuoteNoop(t *testing.T) {
	l := lit("", 0, contract.DoubleQuote, false, "ab")
	out, err := Literal(l, contract.ChangeTo(contract.DoubleQuote))
	if err != nil || out != `"ab"` {
		t.Fatalf("noop: %q %v", out, err)
	}
}

// TestDecodeEquivalence 改写前后解码值一致（抽样）
func TestDecodeEquivalence(t *testing.T) {
	bodies := []string{"", "a", `it\'s`, `say "hi"`, `mix\'d "q"`, `a\\b`, `tab\there`}
	for _, body := range bodies {
		l := lit("", 0, contract.SingleQuote, false, body)
		out, err := Literal(l, contract.ChangeTo(contract.DoubleQuote))
		if err != nil {
			t.Fatalf("body %q: %v", body, err)
		}
		newBody := out[1 : len(out)-1]
		if decode(newBody, false) != decode(body, false) {
			t.Fatalf("body %q: value changed: %q", body, newBody)
		}
	}
}

// TestRewriteInvariantErrorType 不变量违例类型可被识别
func TestRewriteInvariantErrorType(t *testing.T) {
	var e error = &contract.RewriteInvariantError{Offset: 7}
	var re *contract.RewriteInvariantError
	if !errors.As(e, &re) || re.Offset != 7 {
		t.Fatalf("errors.As failed: %v", e)
	}
}
