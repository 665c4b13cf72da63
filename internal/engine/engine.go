// Package engine 串联扫描→分类→策略→改写→装配，对外提供单文档入口
// Requote 与多文档编排 Run。
package engine

import (
	"context"
	"fmt"
	"strings"

	"requote/internal/classify"
	"requote/internal/policy"
	"requote/internal/rewrite"
	"requote/pkg/contract"
)

// Requote 对单文档源文本执行一次完整改写。
// 约束：
// - 纯函数：相同输入与风格必得相同输出，无跨调用状态；
// - 字面量之外的每个字节逐位保留、相对顺序不变；
// - 装配前校验片段覆盖（无缝隙无重叠），违例返回 ErrSeqInvalid；
// - 扫描/改写错误原样上抛，不产出部分结果。
func Requote(ctx context.Context, sc contract.Scanner, fileID contract.FileID, src string, style contract.StyleConfig) (string, error) {
	if err := policy.Validate(style); err != nil {
		return "", err
	}
	segs, err := sc.Scan(ctx, fileID, src)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(src) + 16)
	cursor := 0
	for _, seg := range segs {
		// 覆盖不变量：严格首尾相接
		if seg.Start != cursor || seg.End < seg.Start {
			return "", fmt.Errorf("%w: segment [%d,%d) at cursor %d", contract.ErrSeqInvalid, seg.Start, seg.End, cursor)
		}
		cursor = seg.End

		if seg.Lit == nil {
			b.WriteString(seg.Text)
			continue
		}
		shape := classify.Shape(seg.Lit)
		d := policy.DecideFor(seg.Lit, shape, style)
		out, err := rewrite.Literal(seg.Lit, d)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	if cursor != len(src) {
		return "", fmt.Errorf("%w: coverage ends at %d of %d", contract.ErrSeqInvalid, cursor, len(src))
	}
	return b.String(), nil
}
