package contract

// FileID: 逻辑文档ID（通常为路径，需规范化，跨平台一致）。
type FileID string

// QuoteChar: 字符串定界引号字符，仅 '\'' 或 '"' 两种取值。
type QuoteChar byte

const (
	SingleQuote QuoteChar = '\''
	DoubleQuote QuoteChar = '"'
)

// Valid 判定引号字符取值合法。
func (q QuoteChar) Valid() bool { return q == SingleQuote || q == DoubleQuote }

// Other 返回相对的另一个引号字符。
func (q QuoteChar) Other() QuoteChar {
	if q == SingleQuote {
		return DoubleQuote
	}
	return SingleQuote
}

// PrefixFlag: 字面量前缀标志位集合（封闭集）。
// 源码拼写大小写不敏感；SourceLiteral.RawPrefix 保留原拼写用于回写。
type PrefixFlag uint8

const (
	PrefixRaw PrefixFlag = 1 << iota
	PrefixBytes
	PrefixFormat
	PrefixUnicode
)

// Has 判定是否包含指定标志。
func (p PrefixFlag) Has(f PrefixFlag) bool { return p&f != 0 }

// SourceLiteral: 扫描得到的单个字符串字面量（不可变）。
// 约束：
// - Start < End（字节偏移，含前缀与定界符）；
// - Delim 为 '\'' 或 '"'；
// - Body 为定界符之间的原始文本（转义保持书写形态，不做解码）。
type SourceLiteral struct {
	Start     int
	End       int
	Prefix    PrefixFlag
	RawPrefix string // 前缀原拼写（如 "rb"、"F"；无前缀为空）
	Delim     QuoteChar
	Triple    bool
	Body      string
}

// Text 按书写形态重建字面量全文（前缀 + 定界符 + 原始文本体 + 定界符）。
// Body 保持书写形态，因此重建结果与源文本逐字节一致。
func (l *SourceLiteral) Text() string {
	delim := string(rune(l.Delim))
	if l.Triple {
		delim = delim + delim + delim
	}
	return l.RawPrefix + delim + l.Body + delim
}

// Segment: 字面量或普通文本片段。
// 约束：按源顺序产出，整体覆盖输入，无缝隙无重叠（Scanner 必须保证）。
// Lit 为 nil 时表示普通文本。
type Segment struct {
	Start int
	End   int
	Text  string // 原始片段文本（字面量含前缀与定界符）
	Lit   *SourceLiteral
}

// LengthClass: 有效字符数分类。
type LengthClass uint8

const (
	LengthEmpty LengthClass = iota
	LengthSingleChar
	LengthMultiChar
)

// LiteralShape: 派生形态（即算即用，不存储）。
// 有效字符计数规则见 classify 包；raw 字面量按字面计数。
type LiteralShape struct {
	Length         LengthClass
	Triple         bool
	HasSingleQuote bool
	HasDoubleQuote bool
}

// HasQuote 返回指定引号字符是否出现于有效文本。
func (s LiteralShape) HasQuote(q QuoteChar) bool {
	if q == SingleQuote {
		return s.HasSingleQuote
	}
	return s.HasDoubleQuote
}

// StyleConfig: 引号风格配置（一次加载，运行期不变）。
// SingleCharQuote 为 nil 时，单字符字面量同样使用 DefaultQuote。
type StyleConfig struct {
	DefaultQuote    QuoteChar
	SingleCharQuote *QuoteChar
	PreferNoEscape  bool
}

// QuoteDecision: 策略判定结果。Change 为 false 表示保持原样。
type QuoteDecision struct {
	Change bool
	Quote  QuoteChar
}

// Keep 返回“保持原样”判定。
func Keep() QuoteDecision { return QuoteDecision{} }

// ChangeTo 返回“改写为 q”判定。
func ChangeTo(q QuoteChar) QuoteDecision { return QuoteDecision{Change: true, Quote: q} }
