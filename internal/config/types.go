package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	Inputs      []string `json:"inputs"`
	Concurrency int      `json:"concurrency"`

	// Style: 内置风格名（black/c_style）；与 Conf 互斥。
	Style string `json:"style"`
	// Conf: 外部风格文件路径（.json/.toml）；与 Style 互斥。
	Conf string `json:"conf"`

	// Inplace: 每个文件写回自身路径；与 Output 互斥。
	Inplace bool `json:"inplace"`
	// Output: 聚合输出目标路径（"-" 表示 stdout）。
	Output string `json:"output"`

	Logging Logging `json:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Logging: 仅保留日志等级可配置；输出路径与轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
}

// Components: 组件名选择（注册表中的实现名）。
// Writer 留空时由装配层按输出模式推导（stdout 或 fs）。
type Components struct {
	Scanner string `json:"scanner"`
	Reader  string `json:"reader"`
	Writer  string `json:"writer"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Scanner json.RawMessage `json:"scanner"`
	Reader  json.RawMessage `json:"reader"`
	Writer  json.RawMessage `json:"writer"`
}
