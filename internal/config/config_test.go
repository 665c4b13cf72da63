package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"requote/pkg/contract"
)

func TestLoadJSONStrict(t *testing.T) {
	_, err := LoadJSON("", []byte(`{"inputs":["a.py"],"nope":1}`))
	require.Error(t, err, "unknown fields must fail")

	cfg, err := LoadJSON("", []byte(`{"inputs":["a.py"],"style":"black","concurrency":3}`))
	require.NoError(t, err)
	require.Equal(t, []string{"a.py"}, cfg.Inputs)
	require.Equal(t, "black", cfg.Style)
	require.Equal(t, 3, cfg.Concurrency)
}

func TestMergePriority(t *testing.T) {
	base := Defaults()
	base.Inputs = []string{"a.py"}
	base.Style = "black"

	var over Config
	over.Style = "c_style"
	over.Concurrency = 8
	over.Inplace = true

	out := Merge(base, over)
	require.Equal(t, "c_style", out.Style)
	require.Equal(t, 8, out.Concurrency)
	require.True(t, out.Inplace)
	// 未覆盖的字段保持
	require.Equal(t, []string{"a.py"}, out.Inputs)
	require.Equal(t, "-", out.Output)
	require.Equal(t, "python", out.Components.Scanner)
}

func TestEnvOverlay(t *testing.T) {
	environ := []string{
		"REQUOTE_INPUTS=a.py, b.py",
		"REQUOTE_CONCURRENCY=4",
		"REQUOTE_STYLE=c_style",
		"REQUOTE_INPLACE=true",
		"REQUOTE_LOGGING_LEVEL=debug",
		"REQUOTE_COMPONENTS_WRITER=fs",
		"OTHER_KEY=ignored",
	}
	over, err := EnvOverlay(environ)
	require.NoError(t, err)
	require.Equal(t, []string{"a.py", "b.py"}, over.Inputs)
	require.Equal(t, 4, over.Concurrency)
	require.Equal(t, "c_style", over.Style)
	require.True(t, over.Inplace)
	require.Equal(t, "debug", over.Logging.Level)
	require.Equal(t, "fs", over.Components.Writer)
}

func TestResolveStyleBuiltins(t *testing.T) {
	st, err := ResolveStyle("black", "")
	require.NoError(t, err)
	require.Equal(t, contract.DoubleQuote, st.DefaultQuote)
	require.Nil(t, st.SingleCharQuote)
	require.True(t, st.PreferNoEscape)

	st, err = ResolveStyle("c_style", "")
	require.NoError(t, err)
	require.NotNil(t, st.SingleCharQuote)
	require.Equal(t, contract.SingleQuote, *st.SingleCharQuote)

	// 两者皆空 → 内置 black
	st, err = ResolveStyle("", "")
	require.NoError(t, err)
	require.Equal(t, contract.DoubleQuote, st.DefaultQuote)

	_, err = ResolveStyle("unknown", "")
	require.ErrorIs(t, err, contract.ErrStyleInvalid)
}

func TestResolveStyleConflict(t *testing.T) {
	_, err := ResolveStyle("black", "style.toml")
	require.ErrorIs(t, err, contract.ErrConfigConflict)
}

func TestResolveStyleJSONFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "style.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"default_quote":"\"","single_char_quote":"'","prefer_no_escape":false}`), 0o644))

	st, err := ResolveStyle("", p)
	require.NoError(t, err)
	require.Equal(t, contract.DoubleQuote, st.DefaultQuote)
	require.NotNil(t, st.SingleCharQuote)
	require.Equal(t, contract.SingleQuote, *st.SingleCharQuote)
	require.False(t, st.PreferNoEscape)
}

func TestResolveStyleTOMLFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "style.toml")
	require.NoError(t, os.WriteFile(p, []byte("default_quote = \"'\"\n"), 0o644))

	st, err := ResolveStyle("", p)
	require.NoError(t, err)
	require.Equal(t, contract.SingleQuote, st.DefaultQuote)
	require.Nil(t, st.SingleCharQuote)
	// prefer_no_escape 缺省为 true
	require.True(t, st.PreferNoEscape)
}

func TestResolveStyleFileInvalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "style.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"default_quote":"x"}`), 0o644))
	_, err := ResolveStyle("", p)
	require.ErrorIs(t, err, contract.ErrStyleInvalid)
}

func TestValidateBounds(t *testing.T) {
	ok := Defaults()
	ok.Inputs = []string{"a.py"}
	require.NoError(t, Validate(ok))

	cases := []struct {
		name   string
		mutate func(*Config)
		isConf bool
	}{
		{"empty inputs", func(c *Config) { c.Inputs = nil }, false},
		{"blank input", func(c *Config) { c.Inputs = []string{" "} }, false},
		{"dash mixed", func(c *Config) { c.Inputs = []string{"-", "a.py"} }, false},
		{"bad concurrency", func(c *Config) { c.Concurrency = 0 }, false},
		{"style and conf", func(c *Config) { c.Style = "black"; c.Conf = "s.toml" }, true},
		{"inplace and output", func(c *Config) { c.Inplace = true; c.Output = "out.py" }, true},
		{"inplace stdin", func(c *Config) { c.Inplace = true; c.Inputs = []string{"-"} }, true},
		{"unknown scanner", func(c *Config) { c.Components.Scanner = "nope" }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Inputs = []string{"a.py"}
			c.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			if c.isConf {
				require.ErrorIs(t, err, contract.ErrConfigConflict)
			}
		})
	}
}

func TestAssembleDefaults(t *testing.T) {
	cfg := Defaults()
	cfg.Inputs = []string{"a.py"}
	comp, set, err := Assemble(cfg)
	require.NoError(t, err)
	require.NotNil(t, comp.Reader)
	require.NotNil(t, comp.Scanner)
	require.NotNil(t, comp.Writer)
	require.Equal(t, []string{"a.py"}, set.Inputs)
	require.Equal(t, contract.DoubleQuote, set.Style.DefaultQuote)
	require.Equal(t, "-", set.Output)
}

func TestWriterNameDerivation(t *testing.T) {
	cfg := Defaults()
	cfg.Inputs = []string{"a.py"}
	require.Equal(t, "stdout", writerName(cfg))

	cfg.Output = "out.py"
	require.Equal(t, "fs", writerName(cfg))

	cfg = Defaults()
	cfg.Inplace = true
	cfg.Output = ""
	require.Equal(t, "fs", writerName(cfg))

	cfg.Components.Writer = "stdout"
	require.Equal(t, "stdout", writerName(cfg))
}

func TestAssembleStrictOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Inputs = []string{"a.py"}
	cfg.Options.Scanner = []byte(`{"allow_exts":[".py"],"bogus":1}`)
	_, _, err := Assemble(cfg)
	require.Error(t, err, "unknown option keys must fail")
}

func TestDefaultTemplateRoundTrips(t *testing.T) {
	tpl := DefaultTemplateConfig()
	require.Equal(t, []string{"-"}, tpl.Inputs)
	// 模板必须能通过严格解析与校验
	b, err := LoadJSON("", mustJSON(t, tpl))
	require.NoError(t, err)
	require.NoError(t, Validate(b))
}

func mustJSON(t *testing.T, c Config) []byte {
	t.Helper()
	b, err := json.Marshal(c)
	require.NoError(t, err)
	return b
}
