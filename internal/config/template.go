package config

import "encoding/json"

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 默认输入为 STDIN（"-"），结果写到 stdout；
// - 风格为内置 black；
// - 组件名采用仓库内置实现；
// - 选项给出安全中性默认值。
func DefaultTemplateConfig() Config {
	d := Defaults()
	cfg := Config{
		Inputs:      []string{"-"},
		Concurrency: d.Concurrency,
		Style:       "black",
		Output:      "-",
		Logging:     Logging{Level: "info"},
		Components:  d.Components,
	}
	// Options：包含所有键（值可为空/默认），确保键存在。
	cfg.Options.Scanner = json.RawMessage(`{
  "allow_exts": [".py"]
}`)
	cfg.Options.Reader = json.RawMessage(`{
  "buf_size": 65536,
  "exclude_dir_names": [".git", "node_modules", "vendor"]
}`)
	cfg.Options.Writer = json.RawMessage(`{
  "atomic": true,
  "perm_file": 0,
  "perm_dir": 0,
  "buf_size": 65536
}`)
	return cfg
}
