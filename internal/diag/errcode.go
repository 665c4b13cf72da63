package diag

import (
	"context"
	"errors"
	"os"
	"time"

	"requote/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown   Code = "unknown"
	CodeScan      Code = "scan"
	CodeInvariant Code = "invariant"
	CodeConfig    Code = "config"
	CodeIO        Code = "io"
	CodeCancel    Code = "cancel"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与类型断言，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	// 扫描失败（未闭合字面量）
	var ue *contract.UnterminatedLiteralError
	if errors.As(err, &ue) {
		return CodeScan
	}
	// 改写不变量违例（引擎缺陷）
	var re *contract.RewriteInvariantError
	if errors.As(err, &re) {
		return CodeInvariant
	}
	// 配置
	if errors.Is(err, contract.ErrConfigConflict) || errors.Is(err, contract.ErrStyleInvalid) {
		return CodeConfig
	}
	// 序列/路径违例
	if errors.Is(err, contract.ErrSeqInvalid) || errors.Is(err, contract.ErrPathInvalid) {
		return CodeInvariant
	}
	// I/O
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串（用于结构化日志字段 ts）。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
