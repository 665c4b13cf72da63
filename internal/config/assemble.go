package config

import (
	"errors"
	"fmt"
	"strings"

	"requote/internal/engine"
	"requote/pkg/contract"
	"requote/pkg/registry"
)

// Validate 对最小必要边界做静态校验。
// 互斥类违例统一包裹 ErrConfigConflict，便于调用方映射退出码。
func Validate(cfg Config) error {
	if len(cfg.Inputs) == 0 {
		return errors.New("config: inputs empty")
	}
	// 输入路径不得为空字符串；"-" 不能与其他根混用
	dash := false
	for _, r := range cfg.Inputs {
		if strings.TrimSpace(r) == "" {
			return errors.New("config: input path cannot be empty")
		}
		if strings.TrimSpace(r) == "-" {
			dash = true
		}
	}
	if dash && len(cfg.Inputs) > 1 {
		return errors.New("config: '-' cannot be mixed with other roots")
	}
	if cfg.Concurrency < 1 {
		return errors.New("config: concurrency must be >= 1")
	}
	if cfg.Style != "" && cfg.Conf != "" {
		return fmt.Errorf("%w: style and conf are mutually exclusive", contract.ErrConfigConflict)
	}
	if cfg.Inplace {
		if cfg.Output != "" && cfg.Output != "-" {
			return fmt.Errorf("%w: inplace and output are mutually exclusive", contract.ErrConfigConflict)
		}
		if dash {
			return fmt.Errorf("%w: inplace cannot rewrite stdin", contract.ErrConfigConflict)
		}
	} else if strings.TrimSpace(cfg.Output) == "" {
		return errors.New("config: output target empty")
	}
	// 组件名若为空，使用默认名（由 Defaults() 提供）。此处只要最终有值即可。
	if name := effName(cfg.Components.Scanner, Defaults().Components.Scanner); registry.Scanner[name] == nil {
		return fmt.Errorf("config: scanner %q not registered", name)
	}
	if name := effName(cfg.Components.Reader, Defaults().Components.Reader); registry.Reader[name] == nil {
		return fmt.Errorf("config: reader %q not registered", name)
	}
	if name := writerName(cfg); registry.Writer[name] == nil {
		return fmt.Errorf("config: writer %q not registered", name)
	}
	return nil
}

// Assemble 构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
func Assemble(cfg Config) (engine.Components, engine.Settings, error) {
	if err := Validate(cfg); err != nil {
		return engine.Components{}, engine.Settings{}, err
	}

	style, err := ResolveStyle(cfg.Style, cfg.Conf)
	if err != nil {
		return engine.Components{}, engine.Settings{}, err
	}

	// 有效名称
	d := Defaults()
	sn := effName(cfg.Components.Scanner, d.Components.Scanner)
	rn := effName(cfg.Components.Reader, d.Components.Reader)
	wn := writerName(cfg)

	// 构造实例
	sc, err := registry.Scanner[sn](cfg.Options.Scanner)
	if err != nil {
		return engine.Components{}, engine.Settings{}, err
	}
	r, err := registry.Reader[rn](cfg.Options.Reader)
	if err != nil {
		return engine.Components{}, engine.Settings{}, err
	}
	w, err := registry.Writer[wn](cfg.Options.Writer)
	if err != nil {
		return engine.Components{}, engine.Settings{}, err
	}

	comp := engine.Components{
		Reader:  r,
		Scanner: sc,
		Writer:  w,
	}
	set := engine.Settings{
		Inputs:      cloneStrings(cfg.Inputs),
		Concurrency: cfg.Concurrency,
		Style:       style,
		Inplace:     cfg.Inplace,
		Output:      cfg.Output,
	}
	return comp, set, nil
}

// writerName 推导有效 Writer 名：显式配置优先；
// 否则就地/文件输出用 fs，聚合到 "-" 用 stdout。
func writerName(cfg Config) string {
	if cfg.Components.Writer != "" {
		return cfg.Components.Writer
	}
	if cfg.Inplace || (cfg.Output != "" && cfg.Output != "-") {
		return "fs"
	}
	return "stdout"
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
