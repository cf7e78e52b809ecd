// Package ignore decides which directories and files take part in a
// project context scan. It combines an excluded-directory name set, an
// included-extension allow-list, .gitignore rules, and custom glob patterns.
package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Gitignore is the name of the ignore file loaded from the active root.
const Gitignore = ".gitignore"

// Policy is a read-only exclusion snapshot for one root directory.
// Thread-safe: Reload acquires a write lock, the predicates a read lock.
type Policy struct {
	mu               sync.RWMutex
	rootDir          string
	excludedDirs     map[string]struct{}
	includedExts     map[string]struct{}
	useGitignore     bool
	gitIgnore        gitignore.GitIgnore
	customPatterns   []string
	maxFileSizeBytes int64
}

// Config configures a Policy.
type Config struct {
	RootDir            string
	ExcludedDirNames   []string // empty means DefaultExcludedDirectories
	IncludedExtensions []string // without dot; empty means DefaultIncludedExtensions
	UseGitignore       bool
	CustomPatterns     []string // doublestar globs matched against relative paths
	MaxFileSizeBytes   int64
}

// NewPolicy creates an exclusion policy rooted at cfg.RootDir. When
// UseGitignore is set, the root's .gitignore is loaded; an absent or
// unreadable file leaves the gitignore matcher nil, and every path passes
// that check (fail-open).
func NewPolicy(cfg Config) *Policy {
	p := &Policy{
		rootDir:          cfg.RootDir,
		excludedDirs:     make(map[string]struct{}),
		includedExts:     make(map[string]struct{}),
		useGitignore:     cfg.UseGitignore,
		customPatterns:   cfg.CustomPatterns,
		maxFileSizeBytes: cfg.MaxFileSizeBytes,
	}
	if p.maxFileSizeBytes <= 0 {
		p.maxFileSizeBytes = 1024 * 1024
	}

	dirs := cfg.ExcludedDirNames
	if len(dirs) == 0 {
		dirs = DefaultExcludedDirectories
	}
	for _, name := range dirs {
		p.excludedDirs[name] = struct{}{}
	}

	exts := cfg.IncludedExtensions
	if len(exts) == 0 {
		exts = DefaultIncludedExtensions
	}
	for _, ext := range exts {
		p.includedExts[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	if cfg.UseGitignore {
		p.gitIgnore = loadIgnoreFile(filepath.Join(cfg.RootDir, Gitignore), cfg.RootDir)
	}

	return p
}

// IsDirectoryExcluded returns true if absolutePath is a directory whose
// name is in the excluded set, or which the ignore rules exclude.
func (p *Policy) IsDirectoryExcluded(absolutePath string) bool {
	info, err := os.Stat(absolutePath)
	if err != nil || !info.IsDir() {
		return false
	}

	p.mu.RLock()
	_, byName := p.excludedDirs[filepath.Base(absolutePath)]
	p.mu.RUnlock()
	if byName {
		return true
	}
	return p.IsFileExcluded(absolutePath)
}

// IsFileExcluded returns true if the ignore rules exclude absolutePath.
// With gitignore disabled, or no ignore file present, only custom patterns
// apply; with neither configured every path passes.
func (p *Policy) IsFileExcluded(absolutePath string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	relativePath := p.relative(absolutePath)

	if p.useGitignore && p.gitIgnore != nil {
		isDir := false
		if info, err := os.Stat(absolutePath); err == nil {
			isDir = info.IsDir()
		}
		match := p.gitIgnore.Relative(relativePath, isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}

	for _, pattern := range p.customPatterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, filepath.Base(relativePath)); err == nil && matched {
			return true
		}
	}

	return false
}

// IsFileIncluded returns true if absolutePath has a non-empty extension
// whose lowercase form is in the allow-list and the file is not excluded.
// Directories are never included by extension logic.
func (p *Policy) IsFileIncluded(absolutePath string) bool {
	ext := strings.TrimPrefix(filepath.Ext(absolutePath), ".")
	if ext == "" {
		return false
	}

	p.mu.RLock()
	_, ok := p.includedExts[strings.ToLower(ext)]
	p.mu.RUnlock()
	if !ok {
		return false
	}
	return !p.IsFileExcluded(absolutePath)
}

// IsFileTooLarge returns true if the file exceeds the max file size limit.
func (p *Policy) IsFileTooLarge(fileSize int64) bool {
	return fileSize > p.maxFileSizeBytes
}

// MaxFileSizeBytes returns the configured maximum file size.
func (p *Policy) MaxFileSizeBytes() int64 {
	return p.maxFileSizeBytes
}

// RootDir returns the directory the policy is rooted at.
func (p *Policy) RootDir() string {
	return p.rootDir
}

// Reload re-reads the root's .gitignore from disk. Used when the watcher
// detects a change to it.
func (p *Policy) Reload() {
	if !p.useGitignore {
		return
	}
	newGitIgnore := loadIgnoreFile(filepath.Join(p.rootDir, Gitignore), p.rootDir)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.gitIgnore = newGitIgnore
}

// relative converts absolutePath to a root-relative forward-slash path.
func (p *Policy) relative(absolutePath string) string {
	relativePath, err := filepath.Rel(p.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	return filepath.ToSlash(relativePath)
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from
// it. Returns nil when the file cannot be opened.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
