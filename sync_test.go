package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"promptctx/ignore"
	"promptctx/index"
	"promptctx/settings"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPolicy(rootDir string) *ignore.Policy {
	return ignore.NewPolicy(ignore.Config{
		RootDir:          rootDir,
		MaxFileSizeBytes: 1024 * 1024,
	})
}

func Test_exclusionConfig_CarriesSettings(t *testing.T) {
	cfg := settings.Default()
	cfg.ExcludedDirNames = []string{"generated", "vendor"}
	cfg.IncludedExtensions = []string{"go", "proto"}
	cfg.CustomPatterns = []string{"**/*.pb.go"}
	cfg.UseGitignore = false
	cfg.MaxFileSizeBytes = 4096

	got := exclusionConfig(cfg)

	if len(got.ExcludedDirNames) != 2 || got.ExcludedDirNames[0] != "generated" {
		t.Errorf("excluded dir names not carried: %v", got.ExcludedDirNames)
	}
	if len(got.IncludedExtensions) != 2 || got.IncludedExtensions[1] != "proto" {
		t.Errorf("included extensions not carried: %v", got.IncludedExtensions)
	}
	if len(got.CustomPatterns) != 1 {
		t.Errorf("custom patterns not carried: %v", got.CustomPatterns)
	}
	if got.UseGitignore {
		t.Error("gitignore toggle not carried")
	}
	if got.MaxFileSizeBytes != 4096 {
		t.Errorf("max file size not carried: %d", got.MaxFileSizeBytes)
	}
	if got.RootDir != "" {
		t.Errorf("RootDir must be left for the caller, got %q", got.RootDir)
	}

	policy := ignore.NewPolicy(got)
	dir := filepath.Join(t.TempDir(), "generated")
	os.MkdirAll(dir, 0755)
	if !policy.IsDirectoryExcluded(dir) {
		t.Error("expected configured directory name to be excluded by the policy")
	}
	if policy.IsFileIncluded(filepath.Join(dir, "..", "main.java")) {
		t.Error("expected extension outside the configured allow-list to be rejected")
	}
}

func Test_reconcileIndexes_IndexesMissingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	logger := testLogger()
	policy := testPolicy(tmpDir)

	projectIndex := index.NewProjectIndex(tmpDir)
	contentIndex, err := index.NewContentIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer contentIndex.Close()

	// On disk but never indexed.
	filePath := filepath.Join(tmpDir, "missing.go")
	os.WriteFile(filePath, []byte("package main\n"), 0644)

	result := reconcileIndexes([]string{tmpDir}, projectIndex, contentIndex, policy, logger)

	if result.MissingFiles != 1 {
		t.Errorf("expected 1 missing file, got %d", result.MissingFiles)
	}
	if result.StaleFiles != 0 {
		t.Errorf("expected 0 stale files, got %d", result.StaleFiles)
	}
	if result.ModifiedFiles != 0 {
		t.Errorf("expected 0 modified files, got %d", result.ModifiedFiles)
	}
	if projectIndex.Get("missing.go") == nil {
		t.Error("expected missing.go to be indexed after sync")
	}
}

func Test_reconcileIndexes_RemovesStaleFiles(t *testing.T) {
	tmpDir := t.TempDir()
	logger := testLogger()
	policy := testPolicy(tmpDir)

	projectIndex := index.NewProjectIndex(tmpDir)
	contentIndex, err := index.NewContentIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer contentIndex.Close()

	// Indexed but absent from disk.
	projectIndex.Add(&index.ProjectFile{
		Path:         filepath.Join(tmpDir, "deleted.go"),
		RelativePath: "deleted.go",
		Language:     "Go",
		SizeBytes:    100,
		ModTime:      time.Now(),
		LineCount:    5,
	})
	contentIndex.IndexFile("deleted.go", "package main\n", "Go")

	result := reconcileIndexes([]string{tmpDir}, projectIndex, contentIndex, policy, logger)

	if result.StaleFiles != 1 {
		t.Errorf("expected 1 stale file, got %d", result.StaleFiles)
	}
	if result.MissingFiles != 0 {
		t.Errorf("expected 0 missing files, got %d", result.MissingFiles)
	}
	if projectIndex.Get("deleted.go") != nil {
		t.Error("expected deleted.go to be removed from index after sync")
	}
}

func Test_reconcileIndexes_ReindexesModifiedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	logger := testLogger()
	policy := testPolicy(tmpDir)

	projectIndex := index.NewProjectIndex(tmpDir)
	contentIndex, err := index.NewContentIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer contentIndex.Close()

	filePath := filepath.Join(tmpDir, "modified.go")
	os.WriteFile(filePath, []byte("package main\nfunc main() {}\n"), 0644)

	info, _ := os.Stat(filePath)
	projectIndex.Add(&index.ProjectFile{
		Path:         filePath,
		RelativePath: "modified.go",
		Language:     "Go",
		SizeBytes:    info.Size(),
		ModTime:      info.ModTime().Add(-1 * time.Hour), // stale ModTime
		LineCount:    1,
	})
	contentIndex.IndexFile("modified.go", "package main\n", "Go")

	result := reconcileIndexes([]string{tmpDir}, projectIndex, contentIndex, policy, logger)

	if result.ModifiedFiles != 1 {
		t.Errorf("expected 1 modified file, got %d", result.ModifiedFiles)
	}
	refreshed := projectIndex.Get("modified.go")
	if refreshed == nil {
		t.Fatal("expected modified.go to remain indexed")
	}
	if !refreshed.ModTime.Equal(info.ModTime()) {
		t.Error("expected ModTime to be refreshed after re-index")
	}
}

func Test_reconcileIndexes_InSyncIsNoop(t *testing.T) {
	tmpDir := t.TempDir()
	logger := testLogger()
	policy := testPolicy(tmpDir)

	projectIndex := index.NewProjectIndex(tmpDir)
	contentIndex, err := index.NewContentIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer contentIndex.Close()

	filePath := filepath.Join(tmpDir, "steady.go")
	os.WriteFile(filePath, []byte("package main\n"), 0644)
	info, _ := os.Stat(filePath)
	projectIndex.Add(&index.ProjectFile{
		Path:         filePath,
		RelativePath: "steady.go",
		Language:     "Go",
		SizeBytes:    info.Size(),
		ModTime:      info.ModTime(),
		LineCount:    1,
	})
	contentIndex.IndexFile("steady.go", "package main\n", "Go")

	result := reconcileIndexes([]string{tmpDir}, projectIndex, contentIndex, policy, logger)

	if result.MissingFiles+result.StaleFiles+result.ModifiedFiles != 0 {
		t.Errorf("expected no discrepancies, got %+v", result)
	}
}

func Test_reconcileIndexes_CoversAllContentRoots(t *testing.T) {
	base := t.TempDir()
	rootA := filepath.Join(base, "moduleA")
	rootB := filepath.Join(base, "moduleB")
	os.MkdirAll(rootA, 0755)
	os.MkdirAll(rootB, 0755)
	os.WriteFile(filepath.Join(rootA, "a.go"), []byte("package a\n"), 0644)
	os.WriteFile(filepath.Join(rootB, "b.go"), []byte("package b\n"), 0644)

	logger := testLogger()
	policy := testPolicy(base)
	projectIndex := index.NewProjectIndex(base)
	contentIndex, err := index.NewContentIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer contentIndex.Close()

	result := reconcileIndexes([]string{rootA, rootB}, projectIndex, contentIndex, policy, logger)

	if result.MissingFiles != 2 {
		t.Errorf("expected 2 missing files across roots, got %d", result.MissingFiles)
	}
	if projectIndex.Get("moduleA/a.go") == nil || projectIndex.Get("moduleB/b.go") == nil {
		t.Error("expected files from both roots to be indexed")
	}
}
