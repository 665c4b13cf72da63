package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cfgpkg "requote/internal/config"
	"requote/internal/diag"
	"requote/internal/engine"
)

var engineRun = engine.Run

// CLI：位置参数为 roots（文件/目录 或 "-" 表示 STDIN，不能与其他根混用）。
// 退出码：0 成功；1 运行期错误（任一文档失败）；3 配置错误。
func main() {
	os.Exit(run())
}

func run() int {
	code := 0
	cmd := newRootCmd(&code)
	if err := cmd.Execute(); err != nil {
		// cobra 层错误（未知旗标等）按配置错误处理
		if code == 0 {
			code = 3
		}
	}
	return code
}

type rootFlags struct {
	config      string
	style       string
	conf        string
	inplace     bool
	output      string
	concurrency int
	status      bool
	initDir     string
}

func newRootCmd(code *int) *cobra.Command {
	var fl rootFlags
	cmd := &cobra.Command{
		Use:   "requote [files...]",
		Short: "Normalize quote characters of Python string literals",
		Long: "requote rewrites the quote characters of Python string literals\n" +
			"per a configurable style, leaving every other byte untouched.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			*code = realRun(cmd, fl, args)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&fl.config, "config", "", "配置文件路径（JSON）；缺省读取 ./config.json（若存在）")
	f.StringVarP(&fl.style, "style", "s", "", "内置风格名（black/c_style）；与 --conf 互斥")
	f.StringVarP(&fl.conf, "conf", "c", "", "外部风格文件路径（.json/.toml）；与 --style 互斥")
	f.BoolVarP(&fl.inplace, "inplace", "i", false, "就地改写源文件（原子替换）；与 --output 互斥")
	f.StringVarP(&fl.output, "output", "o", "", "聚合输出路径（\"-\" 表示 stdout，默认）")
	f.IntVar(&fl.concurrency, "concurrency", 0, "并发度（覆盖配置）")
	f.BoolVar(&fl.status, "status", true, "终端状态提示（stderr）")
	f.StringVar(&fl.initDir, "init-config", "", "在指定目录生成默认 config.json 和 .env 模板（不覆盖已存在文件）")
	f.Lookup("init-config").NoOptDefVal = "."
	return cmd
}

func realRun(cmd *cobra.Command, fl rootFlags, roots []string) int {
	start := time.Now()
	corrID := genCorrID()
	// 在任何 ENV 读取前，尝试加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")
	// 先占位默认 level，解析/合并配置后重建 logger 以使用最终 level
	logger := diag.NewLogger(corrID, "info")

	// --init-config: 生成模板并退出
	if dir := strings.TrimSpace(fl.initDir); dir != "" {
		if err := initConfigDir(dir); err != nil {
			fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
			logger.Error("cli", string(diag.Classify(err)), "first error", &start)
			return 3
		}
		return 0
	}

	// JSON 配置（文件或 ENV: REQUOTE_CONFIG_JSON）
	var cfgJSON []byte
	if s := os.Getenv("REQUOTE_CONFIG_JSON"); s != "" {
		cfgJSON = []byte(s)
	}
	cfgFile := fl.config
	if cfgFile == "" {
		if s := os.Getenv("REQUOTE_CONFIG_FILE"); s != "" {
			cfgFile = s
		}
	}
	// 默认读取工作目录下 config.json（若存在）
	if cfgFile == "" {
		if _, err := os.Stat("config.json"); err == nil {
			cfgFile = "config.json"
		}
	}

	cfg := cfgpkg.Defaults()
	if cfgFile != "" || len(cfgJSON) > 0 {
		base, err := cfgpkg.LoadJSON(cfgFile, cfgJSON)
		if err != nil {
			fprintf(os.Stderr, "配置解析失败: %v\n", err)
			logger.Error("cli", string(diag.Classify(err)), "first error", &start)
			return 3
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	// ENV 覆盖（最小集合）
	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		fprintf(os.Stderr, "环境变量解析失败: %v\n", err)
		logger.Error("cli", string(diag.Classify(err)), "first error", &start)
		return 3
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	// CLI 覆盖
	var overCLI cfgpkg.Config
	if len(roots) > 0 {
		overCLI.Inputs = roots
	}
	if fl.style != "" {
		overCLI.Style = fl.style
	}
	if fl.conf != "" {
		overCLI.Conf = fl.conf
	}
	if fl.inplace {
		overCLI.Inplace = true
	}
	if cmd.Flags().Changed("output") {
		overCLI.Output = fl.output
	}
	if fl.concurrency > 0 {
		overCLI.Concurrency = fl.concurrency
	}
	cfg = cfgpkg.Merge(cfg, overCLI)

	// 基本校验 & 装配
	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(os.Stderr, "配置校验失败: %v\n", err)
		logger.Error("cli", string(diag.Classify(err)), "first error", &start)
		return 3
	}

	// 使用最终配置中的日志级别重建 logger
	if lv := strings.TrimSpace(cfg.Logging.Level); lv != "" {
		logger = diag.NewLogger(corrID, lv)
	}

	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fprintf(os.Stderr, "装配失败: %v\n", err)
		logger.Error("cli", string(diag.Classify(err)), "first error", &start)
		return 3
	}

	// 终端信息提示（非日志）：固定走 stderr，不污染 stdout 聚合输出
	term := diag.NewTerminal(os.Stderr, fl.status)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)

	// debug: 输出运行时配置信息
	logger.DebugStart("config", "effective", "", map[string]string{
		"inputs_count": fmt.Sprintf("%d", len(cfg.Inputs)),
		"concurrency":  fmt.Sprintf("%d", set.Concurrency),
		"style":        cfg.Style,
		"conf":         cfg.Conf,
		"inplace":      fmt.Sprintf("%t", cfg.Inplace),
		"output":       cfg.Output,
		"scanner":      cfg.Components.Scanner,
		"reader":       cfg.Components.Reader,
		"writer":       cfg.Components.Writer,
	})

	t := logger.Start("engine", "run")
	if err := engineRun(context.Background(), comp, set, logger); err != nil {
		code := string(diag.Classify(err))
		logger.Error("engine", code, "first error", &start)
		diag.IncOp("engine", "error", "error")
		if code != "" && code != string(diag.CodeUnknown) {
			diag.IncError("engine", code)
		}
		if !errors.Is(err, context.Canceled) {
			fprintf(os.Stderr, "运行失败: %v\n", err)
		}
		term.RunFinish(false, time.Since(start))
		return 1
	}
	t.Finish("run", 0)
	diag.IncOp("engine", "finish", "success")
	diag.ObserveDuration("engine", "finish", time.Since(start).Milliseconds())
	term.RunFinish(true, time.Since(start))
	return 0
}

func fprintf(w *os.File, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

// initConfigDir 在 dir 下生成 config.json 与 .env 模板（不覆盖已存在文件）。
func initConfigDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeConfig(filepath.Join(dir, "config.json"), cfgpkg.DefaultTemplateConfig()); err != nil {
		return err
	}
	if err := writeDotEnv(filepath.Join(dir, ".env")); err != nil {
		fprintf(os.Stderr, "提示：.env 生成失败（已跳过）：%v\n", err)
	}
	return nil
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}
	// 不覆盖已存在文件
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	_, _ = f.Write([]byte("\n"))
	return nil
}

// writeDotEnv 生成 .env 模板（若文件已存在则跳过）。
// 仅创建文件；不覆盖，不合并。
func writeDotEnv(path string) error {
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return nil
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}
	var b strings.Builder
	b.WriteString("# requote .env 模板（由 --init-config 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > JSON\n")
	b.WriteString("# 空值表示未设置；按需填写后移除本行注释。\n\n")

	b.WriteString("# 配置来源（可二选一）\n")
	b.WriteString("REQUOTE_CONFIG_FILE=\n")
	b.WriteString("REQUOTE_CONFIG_JSON=\n\n")

	b.WriteString("# 运行参数覆盖\n")
	b.WriteString("REQUOTE_INPUTS=\n")
	b.WriteString("REQUOTE_CONCURRENCY=\n")
	b.WriteString("REQUOTE_STYLE=\n")
	b.WriteString("REQUOTE_CONF=\n")
	b.WriteString("REQUOTE_OUTPUT=\n")
	b.WriteString("REQUOTE_INPLACE=\n")
	b.WriteString("REQUOTE_LOGGING_LEVEL=\n\n")

	b.WriteString("# 组件选择\n")
	b.WriteString("REQUOTE_COMPONENTS_SCANNER=\n")
	b.WriteString("REQUOTE_COMPONENTS_READER=\n")
	b.WriteString("REQUOTE_COMPONENTS_WRITER=\n")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		return err
	}
	return nil
}

func genCorrID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

// loadDotEnv 读取简单的 .env 文件格式并注入进程环境。
// 规则：
// - 忽略不存在的文件；无法读取时返回错误（但调用处可忽略）。
// - 跳过空行与以 # 开头的行；支持可选的前缀 "export ".
// - 仅按首个 '=' 分割；key 为左侧去空白；value 去首尾空白；
// - 若 value 被成对的单/双引号包裹，则去除外层引号；双引号内常见转义 \n/\t/\\/\" 作最小处理。
// - 不覆盖已存在的环境变量（保持系统/调用者优先）。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if key == "" {
			continue
		}
		// 去除成对引号
		if len(val) >= 2 {
			if (val[0] == '\'' && val[len(val)-1] == '\'') || (val[0] == '"' && val[len(val)-1] == '"') {
				quoted := val[0]
				val = val[1 : len(val)-1]
				if quoted == '"' {
					// 最小转义处理
					val = strings.ReplaceAll(val, "\\n", "\n")
					val = strings.ReplaceAll(val, "\\t", "\t")
					val = strings.ReplaceAll(val, "\\r", "\r")
					val = strings.ReplaceAll(val, "\\\"", "\"")
					val = strings.ReplaceAll(val, "\\\\", "\\")
				}
			}
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}
