package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestExpandPatterns(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a_test.md", "sub/b_test.md", "sub/notes.txt"} {
		path := filepath.Join(dir, name)
		be.Err(t, os.MkdirAll(filepath.Dir(path), 0o755), nil)
		be.Err(t, os.WriteFile(path, nil, 0o644), nil)
	}

	got, err := expandPatterns([]string{filepath.Join(dir, "**", "*_test.md")})
	be.Err(t, err, nil)
	be.Equal(t, got, []string{
		filepath.Join(dir, "a_test.md"),
		filepath.Join(dir, "sub", "b_test.md"),
	})

	missing := filepath.Join(dir, "missing.md")
	got, err = expandPatterns([]string{missing})
	be.Err(t, err, nil)
	be.Equal(t, got, []string{missing})
}

func TestReplCommands(t *testing.T) {
	st := &replState{}
	be.Equal(t, st.prompt(), "slots> ")

	be.Equal(t, st.handle(":frame fromimport"), false)
	be.Equal(t, st.prompt(), "slots[fromimport]> ")

	be.Equal(t, st.handle(":cursor 3"), false)
	be.True(t, st.opts.HasCursor)
	be.Equal(t, st.opts.CursorPos, 3)
	be.Equal(t, st.handle(":cursor -1"), false)
	be.True(t, !st.opts.HasCursor)

	be.Equal(t, st.handle(":sexpr"), false)
	be.True(t, st.sexpr)

	be.Equal(t, st.handle(":frame nonsense"), false)
	be.Equal(t, string(st.opts.FrameType), "fromimport")

	be.Equal(t, st.handle(":q"), true)
	be.Equal(t, st.handle(":quit"), true)
}

func TestRunCases(t *testing.T) {
	dir := t.TempDir()
	content := "# Cases\n\n" +
		"## Test: passing\n```slot-literal\na+b\n```\n```state\n{a}+{b}\n```\n\n" +
		"## Test: failing\n```slot-literal\na+b\n```\n```code\na-b\n```\n"
	path := filepath.Join(dir, "cases_test.md")
	be.Err(t, os.WriteFile(path, []byte(content), 0o644), nil)

	results, err := runCases([]string{path, path}, 2)
	be.Err(t, err, nil)
	be.Equal(t, len(results), 4)
	for i, r := range results {
		be.Equal(t, r.file, path)
		if i%2 == 0 {
			be.Equal(t, r.tc.Name, "passing")
			be.Err(t, r.err, nil)
		} else {
			be.Equal(t, r.tc.Name, "failing")
			be.Err(t, r.err, "code mismatch")
		}
	}

	_, err = runCases([]string{filepath.Join(dir, "missing.md")}, 1)
	be.Err(t, err)
}
