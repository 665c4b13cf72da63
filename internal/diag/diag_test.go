package diag

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"requote/pkg/contract"
)

// TestClassify 错误分类映射
func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, CodeUnknown},
		{context.Canceled, CodeCancel},
		{context.DeadlineExceeded, CodeCancel},
		{&contract.UnterminatedLiteralError{Offset: 3}, CodeScan},
		{&contract.RewriteInvariantError{Offset: 1}, CodeInvariant},
		{contract.ErrConfigConflict, CodeConfig},
		{contract.ErrStyleInvalid, CodeConfig},
		{contract.ErrSeqInvalid, CodeInvariant},
		{contract.ErrPathInvalid, CodeInvariant},
		{&os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}, CodeIO},
		{fmt.Errorf("wrapped: %w", contract.ErrConfigConflict), CodeConfig},
		{fmt.Errorf("other"), CodeUnknown},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Fatalf("Classify(%v) = %s, want %s", c.err, got, c.want)
		}
	}
}

// TestRotatingFileRotate 超过上限触发轮转
func TestRotatingFileRotate(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 32)
	defer w.Close()
	for i := 0; i < 4; i++ {
		if err := w.WriteLine([]byte("0123456789abcdef")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Fatalf("expect rotated files, got %d", len(entries))
	}
	if _, err := os.Stat(filepath.Join(dir, "requote-current.txt")); err != nil {
		t.Fatalf("current file missing: %v", err)
	}
}

// TestParseLevel 级别解析与过滤
func TestParseLevel(t *testing.T) {
	if parseLevel("debug") != Debug || parseLevel("WARN") != Warn || parseLevel("junk") != Info {
		t.Fatalf("parseLevel mapping wrong")
	}
}

// TestTerminalDisabled 关闭状态为 no-op
func TestTerminalDisabled(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, false)
	term.RunStart(2, 3)
	term.FileFinish("a.py", true, time.Millisecond)
	term.RunFinish(true, time.Second)
	if buf.Len() != 0 {
		t.Fatalf("disabled terminal must not write: %q", buf.String())
	}
}

// TestTerminalOutput 非 TTY 打点输出
func TestTerminalOutput(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, true)
	term.RunStart(2, 1)
	term.FileFinish("a.py", false, 5*time.Millisecond)
	term.RunFinish(false, time.Second)
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("a.py")) || !bytes.Contains([]byte(out), []byte("fail")) {
		t.Fatalf("unexpected output %q", out)
	}
}
