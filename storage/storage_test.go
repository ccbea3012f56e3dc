package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	if _, ok, _ := m.Get("absent"); ok {
		t.Error("Get(absent) reported presence")
	}
	if err := m.Set("k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, ok, _ := m.Get("k"); !ok || v != "v" {
		t.Errorf("Get(k) = %q, %v, want \"v\", true", v, ok)
	}
	if err := m.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := m.Get("k"); ok {
		t.Error("Get(k) after Delete reported presence")
	}
	// deleting an absent key is not an error
	if err := m.Delete("absent"); err != nil {
		t.Errorf("Delete(absent) error = %v", err)
	}
}

func TestFile_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if err := f.Set("transactions", `[{"id":"a"}]`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	again, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() reopen error = %v", err)
	}
	if v, ok, _ := again.Get("transactions"); !ok || v != `[{"id":"a"}]` {
		t.Errorf("Get() after reopen = %q, %v", v, ok)
	}
}

func TestFile_MissingFileIsEmpty(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "never-written.json"))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if _, ok, _ := f.Get("anything"); ok {
		t.Error("empty store reported a value")
	}
}

func TestFile_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFile(path); err == nil {
		t.Error("NewFile() on corrupt file did not error")
	}
}
