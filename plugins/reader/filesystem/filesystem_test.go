package filesystem

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"requote/pkg/contract"
)

func collect(t *testing.T, r *FileSystem, roots []string) []string {
	t.Helper()
	var ids []string
	err := r.Iterate(context.Background(), roots, func(id contract.FileID, rc io.ReadCloser) error {
		defer rc.Close()
		if _, err := io.ReadAll(rc); err != nil {
			return err
		}
		ids = append(ids, string(id))
		return nil
	})
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	return ids
}

// TestIterateSingleFile 单文件 root
func TestIterateSingleFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.py")
	if err := os.WriteFile(p, []byte("x = 'a'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ids := collect(t, New(nil), []string{p})
	if len(ids) != 1 || ids[0] != contractID(p) {
		t.Fatalf("unexpected ids %v", ids)
	}
}

// TestIterateDirStableOrder 目录遍历顺序稳定（字典序）
func TestIterateDirStableOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.py", "a.py", "c.py"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("pass\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	ids := collect(t, New(nil), []string{dir})
	if len(ids) != 3 {
		t.Fatalf("want 3 files, got %v", ids)
	}
	for i, want := range []string{"a.py", "b.py", "c.py"} {
		if filepath.Base(ids[i]) != want {
			t.Fatalf("order wrong: %v", ids)
		}
	}
}

// TestIterateExcludeDirs 排除目录名生效
func TestIterateExcludeDirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "node_modules")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "x.py"), []byte("pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.py"), []byte("pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ids := collect(t, New(&Options{ExcludeDirNames: []string{"node_modules"}}), []string{dir})
	if len(ids) != 1 || filepath.Base(ids[0]) != "a.py" {
		t.Fatalf("exclusion failed: %v", ids)
	}
}

// TestIterateDashMixRejected "-" 不能与其他根混用
func TestIterateDashMixRejected(t *testing.T) {
	err := New(nil).Iterate(context.Background(), []string{"-", "a.py"}, func(contract.FileID, io.ReadCloser) error {
		return nil
	})
	if err == nil {
		t.Fatalf("expect mix error")
	}
}

// TestIterateCancel ctx 取消立即返回
func TestIterateCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(nil).Iterate(ctx, []string{t.TempDir()}, func(contract.FileID, io.ReadCloser) error {
		return nil
	})
	if err == nil {
		t.Fatalf("expect ctx error")
	}
}

func contractID(p string) string { return string(contract.NormalizeFileID(p)) }
