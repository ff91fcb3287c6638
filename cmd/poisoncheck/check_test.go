package main

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTree lays out a temp module for the checker to walk.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

const userGoMod = `module example.com/app

go 1.24.0

require github.com/kolkov/poisoning v0.1.0
`

const leakyFile = `package app

import "github.com/kolkov/poisoning/poison"

var p poison.Poison

func leak() error {
	g, err := p.Guard()
	if err != nil {
		return err
	}
	g.Commit()
	return nil
}
`

const cleanFile = `package app

import "github.com/kolkov/poisoning/poison"

var p poison.Poison

func update() error {
	g, err := p.Guard()
	if err != nil {
		return err
	}
	defer g.Release()
	g.Commit()
	return nil
}
`

func TestRunCheck_FindsLeak(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":  userGoMod,
		"leak.go": leakyFile,
	})

	if code := runCheck([]string{root}); code != 1 {
		t.Errorf("runCheck on leaky tree = %d, want 1", code)
	}
}

func TestRunCheck_CleanTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":   userGoMod,
		"clean.go": cleanFile,
	})

	if code := runCheck([]string{root}); code != 0 {
		t.Errorf("runCheck on clean tree = %d, want 0", code)
	}
}

func TestRunCheck_SkipsUnrelatedModule(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":  "module example.com/other\n\ngo 1.24.0\n",
		"leak.go": leakyFile, // would be a finding if not skipped
	})

	if code := runCheck([]string{root}); code != 0 {
		t.Errorf("runCheck should skip unrelated modules, got %d", code)
	}
}

func TestRunCheck_SingleFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"leak.go": leakyFile,
	})

	if code := runCheck([]string{filepath.Join(root, "leak.go")}); code != 1 {
		t.Errorf("runCheck on a single leaky file = %d, want 1", code)
	}
}

func TestRunCheck_ParseFailure(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod": userGoMod,
		"bad.go": "package app\nfunc {",
	})

	if code := runCheck([]string{root}); code != 2 {
		t.Errorf("runCheck on unparsable file = %d, want 2", code)
	}
}

func TestRunCheck_MissingPath(t *testing.T) {
	if code := runCheck([]string{filepath.Join(t.TempDir(), "nope")}); code != 2 {
		t.Errorf("runCheck on a missing path = %d, want 2", code)
	}
}

func TestCollectGoFiles_WalkRules(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":              userGoMod,
		"a.go":                "package app\n",
		"pkg/b.go":            "package pkg\n",
		"vendor/v.go":         "package vendor\n",
		"testdata/t.go":       "package testdata\n",
		"_skip/s.go":          "package skip\n",
		".hidden/h.go":        "package hidden\n",
		"pkg/notes.txt":       "not go\n",
		"pkg/nested/deep.go":  "package nested\n",
		"pkg/nested/deep.txt": "not go\n",
	})

	files, err := collectGoFiles([]string{root + string(filepath.Separator) + "..."})
	if err != nil {
		t.Fatalf("collectGoFiles failed: %v", err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		rel, _ := filepath.Rel(root, f)
		got[filepath.ToSlash(rel)] = true
	}

	want := []string{"a.go", "pkg/b.go", "pkg/nested/deep.go"}
	if len(got) != len(want) {
		t.Fatalf("collected %v, want %v", got, want)
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing %s in %v", w, got)
		}
	}
}
