package contract

import (
	"errors"
	"fmt"
)

// 最小错误分类（哨兵）。
var (
	// ErrConfigConflict: 配置互斥违例（--style 与 --conf 并用、--inplace 与
	// --output 并用、风格名未注册等）。在处理任何文档之前即失败。
	ErrConfigConflict = errors.New("config conflict")
	// ErrStyleInvalid: 风格取值非法（引号字符不是 ' 或 "）。
	ErrStyleInvalid = errors.New("style invalid")
	// ErrSeqInvalid: 片段序列违例（缝隙/重叠/乱序）。
	ErrSeqInvalid = errors.New("segment sequence invalid")
	// ErrPathInvalid: 目标标识映射为无效/越界路径（例如 '..' 逃逸）。
	ErrPathInvalid = errors.New("path invalid")
)

// UnterminatedLiteralError: 扫描到文件末尾仍未闭合的字面量。
// Offset 为该字面量起始定界符的字节偏移。
type UnterminatedLiteralError struct {
	Offset int
}

func (e *UnterminatedLiteralError) Error() string {
	return fmt.Sprintf("unterminated string literal at offset %d", e.Offset)
}

// RewriteInvariantError: 改写会改变字面量的解码值（引擎内部缺陷）。
// 必须上抛，绝不吞没。
type RewriteInvariantError struct {
	Offset int
}

func (e *RewriteInvariantError) Error() string {
	return fmt.Sprintf("rewrite would alter literal value at offset %d", e.Offset)
}
