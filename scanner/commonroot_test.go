package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, base string, dirs ...string) []string {
	t.Helper()
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		path := filepath.Join(base, d)
		if err := os.MkdirAll(path, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		out = append(out, path)
	}
	return out
}

func Test_CommonRoot_SingleRoot(t *testing.T) {
	base := t.TempDir()
	roots := mkdirs(t, base, "proj")

	got, err := CommonRoot(roots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != roots[0] {
		t.Errorf("expected %s, got %s", roots[0], got)
	}
}

func Test_CommonRoot_Siblings(t *testing.T) {
	base := t.TempDir()
	roots := mkdirs(t, base, "proj/module-a", "proj/module-b")

	got, err := CommonRoot(roots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(base, "proj")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func Test_CommonRoot_AncestorAndDescendant(t *testing.T) {
	base := t.TempDir()
	roots := mkdirs(t, base, "proj", "proj/nested/deep")

	got, err := CommonRoot(roots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(base, "proj")
	if got != want {
		t.Errorf("expected the ancestor %s, got %s", want, got)
	}
}

func Test_CommonRoot_DuplicatesCollapse(t *testing.T) {
	base := t.TempDir()
	roots := mkdirs(t, base, "proj")

	got, err := CommonRoot([]string{roots[0], roots[0], roots[0]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != roots[0] {
		t.Errorf("expected %s, got %s", roots[0], got)
	}
}

func Test_CommonRoot_EmptyFails(t *testing.T) {
	_, err := CommonRoot(nil)
	if !errors.Is(err, ErrNoContentRoots) {
		t.Errorf("expected ErrNoContentRoots, got %v", err)
	}
}
