// Package python 实现 Python 源文本的字面量扫描器：单次左→右状态机，
// 无损定位字符串字面量并产出覆盖全文的 Segment 序列。
package python

import (
	"context"
	"path"
	"strings"

	"requote/pkg/contract"
)

// Options 为 Python Scanner 的可选配置（最小必要）。
type Options struct {
	// AllowExts: 允许处理的文件扩展名（大小写不敏感，包含点，如 [".py"]）。
	// 为空时采用默认 [".py"]；显式设为空切片则表示不限制。
	// 无扩展名的 FileID（如 stdin）总是处理。
	AllowExts []string `json:"allow_exts"`
}

// Scanner 实现 Python 字面量扫描。
type Scanner struct {
	// 允许扩展名（小写），若为 nil 表示不限制。
	allow map[string]struct{}
}

// New 创建 Python Scanner。
func New(opts *Options) *Scanner {
	var allow map[string]struct{}
	if opts == nil || opts.AllowExts == nil {
		allow = map[string]struct{}{".py": {}}
	} else if len(opts.AllowExts) > 0 {
		allow = make(map[string]struct{}, len(opts.AllowExts))
		for _, e := range opts.AllowExts {
			if e == "" {
				continue
			}
			allow[strings.ToLower(e)] = struct{}{}
		}
	}
	return &Scanner{allow: allow}
}

var _ contract.Scanner = (*Scanner)(nil)

// Scan 扫描 src 并产出有序 Segment 序列。
// 非允许扩展名的文件整体作为单个普通文本片段透传（输出逐字节一致）。
func (s *Scanner) Scan(ctx context.Context, fileID contract.FileID, src string) ([]contract.Segment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return nil, nil
	}
	if s.allow != nil {
		if ext := strings.ToLower(path.Ext(string(fileID))); ext != "" {
			if _, ok := s.allow[ext]; !ok {
				return []contract.Segment{{Start: 0, End: len(src), Text: src}}, nil
			}
		}
	}

	var segs []contract.Segment
	plainStart := 0
	i := 0
	n := len(src)

	flush := func(end int) {
		if end > plainStart {
			segs = append(segs, contract.Segment{Start: plainStart, End: end, Text: src[plainStart:end]})
		}
	}

	for i < n {
		c := src[i]

		// 注释：# 至行尾为普通文本，内部引号不识别
		if c == '#' {
			for i < n && src[i] != '\n' {
				i++
			}
			continue
		}

		// 前缀 + 引号，或裸引号
		litStart := -1
		prefix := ""
		if c == '\'' || c == '"' {
			litStart = i
		} else if isIdentStart(c) {
			j := i
			for j < n && isIdentChar(src[j]) {
				j++
			}
			word := src[i:j]
			if j < n && (src[j] == '\'' || src[j] == '"') && validPrefix(word) {
				litStart = i
				prefix = word
				i = j
			} else {
				i = j
				continue
			}
		} else {
			i++
			continue
		}

		if err := ctxErr(ctx); err != nil {
			return nil, err
		}

		lit, next, err := scanLiteral(src, litStart, i, prefix)
		if err != nil {
			return nil, err
		}
		flush(litStart)
		segs = append(segs, contract.Segment{Start: lit.Start, End: lit.End, Text: src[lit.Start:lit.End], Lit: lit})
		plainStart = next
		i = next
	}
	flush(n)
	return segs, nil
}

// scanLiteral 从 quoteAt（定界符位置）扫描一个字面量；start 为含前缀的起点。
// 返回字面量与扫描推进到的偏移。未闭合返回 *UnterminatedLiteralError。
func scanLiteral(src string, start, quoteAt int, prefix string) (*contract.SourceLiteral, int, error) {
	n := len(src)
	q := src[quoteAt]
	i := quoteAt + 1

	triple := i+1 < n && src[i] == q && src[i+1] == q
	if triple {
		i += 2
		bodyStart := i
		for i < n {
			if src[i] == '\\' && i+1 < n {
				i += 2
				continue
			}
			if i+2 < n && src[i] == q && src[i+1] == q && src[i+2] == q {
				lit := newLiteral(src, start, prefix, q, true, bodyStart, i)
				return lit, i + 3, nil
			}
			i++
		}
		return nil, 0, &contract.UnterminatedLiteralError{Offset: start}
	}

	bodyStart := i
	for i < n {
		switch src[i] {
		case '\\':
			if i+1 < n {
				i += 2
				continue
			}
			i++
		case q:
			lit := newLiteral(src, start, prefix, q, false, bodyStart, i)
			return lit, i + 1, nil
		case '\n':
			return nil, 0, &contract.UnterminatedLiteralError{Offset: start}
		default:
			i++
		}
	}
	return nil, 0, &contract.UnterminatedLiteralError{Offset: start}
}

func newLiteral(src string, start int, prefix string, q byte, triple bool, bodyStart, bodyEnd int) *contract.SourceLiteral {
	end := bodyEnd + 1
	if triple {
		end = bodyEnd + 3
	}
	return &contract.SourceLiteral{
		Start:     start,
		End:       end,
		Prefix:    parsePrefix(prefix),
		RawPrefix: prefix,
		Delim:     contract.QuoteChar(q),
		Triple:    triple,
		Body:      src[bodyStart:bodyEnd],
	}
}

// validPrefix 判定合法的字符串前缀（大小写不敏感）。
func validPrefix(s string) bool {
	switch strings.ToLower(s) {
	case "r", "u", "f", "b", "rb", "br", "rf", "fr":
		return true
	}
	return false
}

// parsePrefix 将前缀拼写归一为标志位集合。
func parsePrefix(s string) contract.PrefixFlag {
	var p contract.PrefixFlag
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'r', 'R':
			p |= contract.PrefixRaw
		case 'b', 'B':
			p |= contract.PrefixBytes
		case 'f', 'F':
			p |= contract.PrefixFormat
		case 'u', 'U':
			p |= contract.PrefixUnicode
		}
	}
	return p
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
