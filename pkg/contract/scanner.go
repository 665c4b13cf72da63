package contract

import "context"

// Scanner: 将单文档源文本无损切分为有序 Segment 序列。
// 约束：
// 1) 单次线性左→右扫描，复杂度受输入长度约束；
// 2) 输出整体覆盖输入，无缝隙无重叠；
// 3) 不识别注释内的引号；
// 4) 未闭合字面量返回 *UnterminatedLiteralError；
// 5) 纯函数、无内部并发、幂等。
type Scanner interface {
	Scan(ctx context.Context, fileID FileID, src string) ([]Segment, error)
}
