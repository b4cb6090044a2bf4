package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notes"
)

// run executes the CLI in-process and returns what it printed to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "notes %s", strings.Join(args, " "))
	return out
}

func TestCLI_Lifecycle(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, "--dir", dir, "create", "购物清单", "--content", "牛奶、鸡蛋", "--tag", "购物", "--tag", "日常")
	assert.Equal(t, "Note created: 1\n", out)
	mustRun(t, "--dir", dir, "create", "Python学习", "-c", "学习Python编程", "-t", "编程")

	t.Run("Get", func(t *testing.T) {
		out := mustRun(t, "--dir", dir, "get", "1")
		assert.Contains(t, out, "Title:    购物清单")
		assert.Contains(t, out, "Tags:     购物, 日常")
		assert.Contains(t, out, "牛奶、鸡蛋")

		_, err := run(t, "--dir", dir, "get", "42")
		assert.ErrorIs(t, err, notes.ErrNotFound)

		_, err = run(t, "--dir", dir, "get", "abc")
		assert.Error(t, err)
	})

	t.Run("Update Only Passed Flags", func(t *testing.T) {
		mustRun(t, "--dir", dir, "update", "2", "--content", "Go too")

		var got []notes.Note
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "--dir", dir, "get", "2", "--json")), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Python学习", got[0].Title)
		assert.Equal(t, "Go too", got[0].Content)
		assert.Equal(t, []string{"编程"}, got[0].Tags)

		mustRun(t, "--dir", dir, "update", "2", "--clear-tags")
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "--dir", dir, "get", "2", "--json")), &got))
		assert.Equal(t, []string{}, got[0].Tags)

		_, err := run(t, "--dir", dir, "update", "2", "--tag", "x", "--clear-tags")
		assert.Error(t, err)
	})

	t.Run("Archive And List", func(t *testing.T) {
		assert.Equal(t, "Note archived: 1\n", mustRun(t, "--dir", dir, "archive", "1"))

		out := mustRun(t, "--dir", dir, "list")
		assert.NotContains(t, out, "购物清单")
		assert.Contains(t, out, "2\tPython学习")

		out = mustRun(t, "--dir", dir, "list", "--all")
		assert.Contains(t, out, "1\t购物清单\t[购物, 日常]\t(archived)")

		out = mustRun(t, "--dir", dir, "list", "--all", "--tag", "购*")
		assert.Contains(t, out, "购物清单")
		assert.NotContains(t, out, "Python学习")
	})

	t.Run("Search", func(t *testing.T) {
		out := mustRun(t, "--dir", dir, "search", "PYTHON")
		assert.Contains(t, out, "Python学习")
		assert.NotContains(t, out, "购物清单")

		out = mustRun(t, "--dir", dir, "search", "牛奶")
		assert.Contains(t, out, "购物清单", "search includes archived notes")
	})

	t.Run("Export", func(t *testing.T) {
		out := mustRun(t, "--dir", dir, "export", "--format", "txt")
		assert.Contains(t, out, "标题: 购物清单\n")
		assert.Contains(t, out, "内容: Go too\n")

		target := filepath.Join(t.TempDir(), "out.json")
		mustRun(t, "--dir", dir, "export", "-o", target)
		data, err := os.ReadFile(target)
		require.NoError(t, err)

		var exported []notes.Note
		require.NoError(t, json.Unmarshal(data, &exported))
		assert.Len(t, exported, 2)

		_, err = run(t, "--dir", dir, "export", "--format", "xml")
		assert.Error(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		assert.Equal(t, "Note deleted: 1\n", mustRun(t, "--dir", dir, "delete", "1"))
		assert.Equal(t, "Note deleted: 1\n", mustRun(t, "--dir", dir, "delete", "1"))

		out := mustRun(t, "--dir", dir, "list", "--all")
		assert.NotContains(t, out, "购物清单")
	})

	t.Run("Status", func(t *testing.T) {
		var state map[string]any
		require.NoError(t, json.Unmarshal([]byte(mustRun(t, "--dir", dir, "status")), &state))
		assert.Equal(t, float64(1), state["notes"])
		assert.Equal(t, "fs", state["repository_type"])
		assert.Equal(t, "monotonic", state["id_policy"])
	})
}

func TestCLI_ReadOnly(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, "--dir", dir, "create", "t")

	_, err := run(t, "--dir", dir, "--read-only", "create", "x")
	assert.ErrorIs(t, err, notes.ErrReadOnly)

	out := mustRun(t, "--dir", dir, "--read-only", "list")
	assert.Contains(t, out, "1\tt")
}

func TestCLI_SQLiteAdapter(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, "--dir", dir, "--adapter", "sqlite", "create", "stored in sqlite")

	_, err := os.Stat(filepath.Join(dir, "notes.db"))
	require.NoError(t, err)

	out := mustRun(t, "--dir", dir, "--adapter", "sqlite", "list")
	assert.Contains(t, out, "stored in sqlite")
}

func TestCLI_LegacyIDs(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, "--dir", dir, "create", "a")
	mustRun(t, "--dir", dir, "create", "b")
	mustRun(t, "--dir", dir, "delete", "1")

	assert.Equal(t, "Note created: 2\n", mustRun(t, "--dir", dir, "--legacy-ids", "create", "c"))
	assert.Equal(t, "Note created: 3\n", mustRun(t, "--dir", dir, "create", "d"), "monotonic resumes after the highest id")
}

func TestCLI_Configuration(t *testing.T) {
	t.Run("Environment", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("NOTES_DIR", dir)

		mustRun(t, "create", "from env")
		_, err := os.Stat(filepath.Join(dir, "notes.json"))
		assert.NoError(t, err)
	})

	t.Run("Config File", func(t *testing.T) {
		dir := t.TempDir()
		cfg := filepath.Join(t.TempDir(), "notes.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("dir: "+dir+"\nadapter: sqlite\n"), 0644))

		mustRun(t, "--config", cfg, "create", "from config")
		_, err := os.Stat(filepath.Join(dir, "notes.db"))
		assert.NoError(t, err)
	})

	t.Run("Flag Beats Environment", func(t *testing.T) {
		envDir, flagDir := t.TempDir(), t.TempDir()
		t.Setenv("NOTES_DIR", envDir)

		mustRun(t, "--dir", flagDir, "create", "from flag")
		_, err := os.Stat(filepath.Join(flagDir, "notes.json"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(envDir, "notes.json"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Missing Config File", func(t *testing.T) {
		_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "list")
		assert.Error(t, err)
	})
}

func TestCLI_Version(t *testing.T) {
	out := mustRun(t, "version")
	assert.True(t, strings.HasPrefix(out, "notes version "))
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCLI_Watch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout syncBuffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--dir", dir, "watch"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "Watching 0 notes")
	}, 3*time.Second, 20*time.Millisecond)

	mustRun(t, "--dir", dir, "create", "external")

	assert.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "(1 notes)")
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}
