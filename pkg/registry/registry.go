package registry

import (
	"bytes"
	"encoding/json"

	"requote/pkg/contract"
	rfs "requote/plugins/reader/filesystem"
	spy "requote/plugins/scanner/python"
	wfs "requote/plugins/writer/filesystem"
	wstd "requote/plugins/writer/stdio"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewScanner 工厂签名：接收原样 JSON Options。
type NewScanner func(raw json.RawMessage) (contract.Scanner, error)

// NewReader 工厂签名：接收原样 JSON Options。
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Scanner 工厂注册表（显式、零反射）。
var Scanner = map[string]NewScanner{
	// python: Python 字符串字面量扫描器
	"python": func(raw json.RawMessage) (contract.Scanner, error) {
		var opts spy.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return spy.New(&opts), nil
	},
}

// Reader 工厂注册表。
var Reader = map[string]NewReader{
	// fs: 文件系统/STDIN Reader
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// fs: 就地改写/路径输出 Writer
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts), nil
	},
	// stdout: 聚合输出到标准输出
	"stdout": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wstd.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wstd.New(&opts, nil), nil
	},
}

// singleQuote 供 c_style 的单字符覆盖取址。
var singleQuote = contract.SingleQuote

// Styles 内置风格注册表。
// black: 一律偏好双引号；c_style: 单字符字面量偏好单引号。
var Styles = map[string]contract.StyleConfig{
	"black": {
		DefaultQuote:   contract.DoubleQuote,
		PreferNoEscape: true,
	},
	"c_style": {
		DefaultQuote:    contract.DoubleQuote,
		SingleCharQuote: &singleQuote,
		PreferNoEscape:  true,
	},
}
