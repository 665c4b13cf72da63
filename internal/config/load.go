package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Defaults 返回带有安全默认值的 Config 雏形。
// 注意：Style/Conf 均不设默认（留空时装配层回落到内置 black）。
func Defaults() Config {
	return Config{
		Concurrency: 1,
		Output:      "-",
		Components: Components{
			Scanner: "python",
			Reader:  "fs",
		},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；不做深度合并。
// Inplace 仅 true 覆盖（false 是零值，无法与“未设置”区分）。
func Merge(base, over Config) Config {
	out := base
	if len(over.Inputs) > 0 {
		out.Inputs = cloneStrings(over.Inputs)
	}
	if over.Concurrency != 0 {
		out.Concurrency = over.Concurrency
	}
	if strings.TrimSpace(over.Style) != "" {
		out.Style = strings.TrimSpace(over.Style)
	}
	if strings.TrimSpace(over.Conf) != "" {
		out.Conf = strings.TrimSpace(over.Conf)
	}
	if over.Inplace {
		out.Inplace = true
	}
	if strings.TrimSpace(over.Output) != "" {
		out.Output = strings.TrimSpace(over.Output)
	}
	// Logging（仅 level）
	if strings.TrimSpace(over.Logging.Level) != "" {
		out.Logging.Level = strings.TrimSpace(over.Logging.Level)
	}

	// 组件名（空不覆盖）
	if over.Components.Scanner != "" {
		out.Components.Scanner = over.Components.Scanner
	}
	if over.Components.Reader != "" {
		out.Components.Reader = over.Components.Reader
	}
	if over.Components.Writer != "" {
		out.Components.Writer = over.Components.Writer
	}

	// Options（完整替换对应键）
	if len(over.Options.Scanner) > 0 {
		out.Options.Scanner = cloneRaw(over.Options.Scanner)
	}
	if len(over.Options.Reader) > 0 {
		out.Options.Reader = cloneRaw(over.Options.Reader)
	}
	if len(over.Options.Writer) > 0 {
		out.Options.Writer = cloneRaw(over.Options.Writer)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 REQUOTE_；集合之外的键忽略。
// 支持：INPUTS, CONCURRENCY, STYLE, CONF, OUTPUT, INPLACE,
// LOGGING_LEVEL, COMPONENTS_{SCANNER,READER,WRITER},
// OPTIONS_{SCANNER,READER,WRITER}_JSON
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "REQUOTE_") {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len("REQUOTE_") {
			continue
		}
		key := kv[:eq]
		val := kv[eq+1:]
		nk := strings.TrimPrefix(key, "REQUOTE_")
		switch nk {
		case "INPUTS":
			if val != "" {
				over.Inputs = splitComma(val)
			}
		case "CONCURRENCY":
			if v, err := atoi(val); err == nil {
				over.Concurrency = v
			}
		case "STYLE":
			over.Style = strings.TrimSpace(val)
		case "CONF":
			over.Conf = strings.TrimSpace(val)
		case "OUTPUT":
			over.Output = strings.TrimSpace(val)
		case "INPLACE":
			if parseBool(val) {
				over.Inplace = true
			}
		case "LOGGING_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "COMPONENTS_SCANNER":
			over.Components.Scanner = strings.TrimSpace(val)
		case "COMPONENTS_READER":
			over.Components.Reader = strings.TrimSpace(val)
		case "COMPONENTS_WRITER":
			over.Components.Writer = strings.TrimSpace(val)
		case "OPTIONS_SCANNER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Scanner = json.RawMessage(val)
			}
		case "OPTIONS_READER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Reader = json.RawMessage(val)
			}
		case "OPTIONS_WRITER_JSON":
			if strings.TrimSpace(val) != "" {
				over.Options.Writer = json.RawMessage(val)
			}
		}
	}
	return over, nil
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func atoi(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
