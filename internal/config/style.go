package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"requote/internal/policy"
	"requote/pkg/contract"
	"requote/pkg/registry"
)

// styleFile: 外部风格文件的载体（JSON/TOML 共用字段名）。
// - default_quote: "'" 或 "\""（必填）
// - single_char_quote: 同上，可缺省（null/缺失 = 不区分单字符）
// - prefer_no_escape: 可缺省，默认 true
type styleFile struct {
	DefaultQuote    string  `json:"default_quote" toml:"default_quote"`
	SingleCharQuote *string `json:"single_char_quote" toml:"single_char_quote"`
	PreferNoEscape  *bool   `json:"prefer_no_escape" toml:"prefer_no_escape"`
}

// ResolveStyle 将（内置名, 外部文件路径）解析为 StyleConfig。
// 约束：
// - 两者同时给出 → ErrConfigConflict；
// - 两者皆空 → 内置 black；
// - 文件格式由扩展名决定：.json 严格 JSON，其余按 TOML 解析；
// - 解析结果经 policy.Validate 校验，违例包裹 ErrStyleInvalid。
func ResolveStyle(name, confPath string) (contract.StyleConfig, error) {
	name = strings.TrimSpace(name)
	confPath = strings.TrimSpace(confPath)
	if name != "" && confPath != "" {
		return contract.StyleConfig{}, fmt.Errorf("%w: style %q and conf %q are mutually exclusive", contract.ErrConfigConflict, name, confPath)
	}
	if confPath != "" {
		return loadStyleFile(confPath)
	}
	if name == "" {
		name = "black"
	}
	st, ok := registry.Styles[name]
	if !ok {
		return contract.StyleConfig{}, fmt.Errorf("%w: unknown style %q", contract.ErrStyleInvalid, name)
	}
	return st, nil
}

func loadStyleFile(path string) (contract.StyleConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return contract.StyleConfig{}, err
	}
	var sf styleFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(strings.NewReader(string(b)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sf); err != nil {
			return contract.StyleConfig{}, fmt.Errorf("%w: parse %s: %v", contract.ErrStyleInvalid, path, err)
		}
	} else {
		if err := toml.Unmarshal(b, &sf); err != nil {
			return contract.StyleConfig{}, fmt.Errorf("%w: parse %s: %v", contract.ErrStyleInvalid, path, err)
		}
	}
	return buildStyle(sf, path)
}

func buildStyle(sf styleFile, path string) (contract.StyleConfig, error) {
	var st contract.StyleConfig
	dq, err := parseQuote(sf.DefaultQuote)
	if err != nil {
		return st, fmt.Errorf("%w: %s: default_quote: %v", contract.ErrStyleInvalid, path, err)
	}
	st.DefaultQuote = dq
	if sf.SingleCharQuote != nil {
		sq, err := parseQuote(*sf.SingleCharQuote)
		if err != nil {
			return st, fmt.Errorf("%w: %s: single_char_quote: %v", contract.ErrStyleInvalid, path, err)
		}
		st.SingleCharQuote = &sq
	}
	// prefer_no_escape 缺省为 true（与内置风格一致）
	st.PreferNoEscape = true
	if sf.PreferNoEscape != nil {
		st.PreferNoEscape = *sf.PreferNoEscape
	}
	if err := policy.Validate(st); err != nil {
		return st, err
	}
	return st, nil
}

func parseQuote(s string) (contract.QuoteChar, error) {
	switch s {
	case "'":
		return contract.SingleQuote, nil
	case `"`:
		return contract.DoubleQuote, nil
	case "":
		return 0, fmt.Errorf("missing quote character")
	default:
		return 0, fmt.Errorf("invalid quote character %q", s)
	}
}
