package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempFS(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestSaveAndLoad(t *testing.T) {
	s := tempFS(t)
	in := []string{"one", "two"}
	if err := s.Save("items", in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var out []string
	if err := s.Load("items", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[0] != "one" || out[1] != "two" {
		t.Errorf("round trip mismatch: %v", out)
	}
}

func TestLoadMissingKeyKeepsDefault(t *testing.T) {
	s := tempFS(t)
	out := []string{"default"}
	if err := s.Load("nothing", &out); err != nil {
		t.Fatalf("Load missing: %v", err)
	}
	if len(out) != 1 || out[0] != "default" {
		t.Errorf("default was touched: %v", out)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	s := tempFS(t)
	if err := os.WriteFile(filepath.Join(s.Root(), "bad.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out []string
	if err := s.Load("bad", &out); err == nil {
		t.Error("expected decode error for corrupt file")
	}
}

func TestInvalidKeys(t *testing.T) {
	s := tempFS(t)
	cases := []string{
		"../escape",
		"a/b",
		"UPPER",
		"",
		".hidden",
	}
	for _, key := range cases {
		if err := s.Save(key, []string{}); err == nil {
			t.Errorf("expected error saving key %q", key)
		}
		var out []string
		if err := s.Load(key, &out); err == nil {
			t.Errorf("expected error loading key %q", key)
		}
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := tempFS(t)
	if err := s.Save("items", []int{1, 2, 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".promptdeck-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestIsSelfWrite(t *testing.T) {
	s := tempFS(t)
	if err := s.Save("items", []string{"a"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.Root(), "items.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsSelfWrite("items", data) {
		t.Error("freshly saved data should count as self-write")
	}
	if s.IsSelfWrite("items", append(data, '\n')) {
		t.Error("modified data should not count as self-write")
	}
	if s.IsSelfWrite("versions", data) {
		t.Error("unrelated key should not count as self-write")
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/promptdeck-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "promptdeck-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
