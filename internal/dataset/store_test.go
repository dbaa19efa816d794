package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func copyFixture(t *testing.T, dir string) string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join("testdata", "clusters.json"))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "clusters.json")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestStore_LoadAndReload(t *testing.T) {
	store := NewStore(NewLoader(nil))

	if store.Current() != nil {
		t.Fatal("Current should be nil before Load")
	}

	if _, err := store.Reload(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Reload before Load = %v, want ErrNotLoaded", err)
	}

	path := copyFixture(t, t.TempDir())

	first, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if store.Current() != first {
		t.Error("Current should return the loaded context")
	}

	if err := os.WriteFile(path, []byte(`{"weeks":[{"name":"only","clusters":[]}]}`), 0644); err != nil {
		t.Fatal(err)
	}

	second, err := store.Reload()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if second.DefaultWeek() != "only" || store.Current() != second {
		t.Error("Reload should swap in the new context")
	}

	if first.DefaultWeek() == "only" {
		t.Error("previous context must not be modified by a reload")
	}
}

func TestStore_ReloadFailureKeepsCurrent(t *testing.T) {
	store := NewStore(NewLoader(nil))
	path := copyFixture(t, t.TempDir())

	first, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Reload(); err == nil {
		t.Fatal("Reload should fail on invalid JSON")
	}

	if store.Current() != first {
		t.Error("failed reload must keep the previous context")
	}
}
