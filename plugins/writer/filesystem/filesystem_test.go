package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"requote/pkg/contract"
)

// TestWriteReplacesExisting 原子替换已存在文件
func TestWriteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.py")
	if err := os.WriteFile(p, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := New(nil)
	if err := w.Write(context.Background(), contract.ArtifactID(p), strings.NewReader("new")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "new" {
		t.Fatalf("content %q err %v", b, err)
	}
	// 临时文件不残留
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

// TestWriteCreatesParentDir 目标父目录自动创建
func TestWriteCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sub", "deep", "out.py")
	w := New(nil)
	if err := w.Write(context.Background(), contract.ArtifactID(p), strings.NewReader("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if b, err := os.ReadFile(p); err != nil || string(b) != "x" {
		t.Fatalf("content %q err %v", b, err)
	}
}

// TestWriteNonAtomic 关闭原子写仍产出完整内容
func TestWriteNonAtomic(t *testing.T) {
	off := false
	w := New(&Options{Atomic: &off})
	p := filepath.Join(t.TempDir(), "a.py")
	if err := w.Write(context.Background(), contract.ArtifactID(p), strings.NewReader("data")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if b, _ := os.ReadFile(p); string(b) != "data" {
		t.Fatalf("content %q", b)
	}
}

// TestWriteInvalidID 非法目标路径拒绝
func TestWriteInvalidID(t *testing.T) {
	w := New(nil)
	for _, id := range []string{"", "-", ".", ".."} {
		err := w.Write(context.Background(), contract.ArtifactID(id), strings.NewReader("x"))
		if !errors.Is(err, contract.ErrPathInvalid) {
			t.Fatalf("id %q: want ErrPathInvalid, got %v", id, err)
		}
	}
}

// TestWriteCancel ctx 取消中断写入
func TestWriteCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := New(nil)
	p := filepath.Join(t.TempDir(), "a.py")
	if err := w.Write(ctx, contract.ArtifactID(p), strings.NewReader("x")); err == nil {
		t.Fatalf("expect ctx error")
	}
}
