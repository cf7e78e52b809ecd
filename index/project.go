// Package index maintains the project membership index — which files
// belong to the logical project — plus a full-text content index and the
// readiness gate scans wait on.
package index

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ProjectFile is one file known to belong to the project.
type ProjectFile struct {
	Path         string    // absolute path
	RelativePath string    // relative to the project root, forward slashes
	Language     string    // detected language
	SizeBytes    int64
	ModTime      time.Time
	LineCount    int
}

// ProjectIndex is the in-memory membership index. Content walkers consult
// it to tell project sources apart from build output and external
// libraries. A map gives O(1) membership checks; a sorted slice gives
// stable glob iteration.
type ProjectIndex struct {
	mu          sync.RWMutex
	rootDir     string
	files       map[string]*ProjectFile // key: relative path, forward slashes
	sortedPaths []string
}

// NewProjectIndex creates an empty membership index rooted at rootDir.
func NewProjectIndex(rootDir string) *ProjectIndex {
	return &ProjectIndex{
		rootDir: rootDir,
		files:   make(map[string]*ProjectFile),
	}
}

// RootDir returns the directory the index is rooted at.
func (pi *ProjectIndex) RootDir() string {
	return pi.rootDir
}

// Rel converts an absolute path to the index's relative key form.
func (pi *ProjectIndex) Rel(absolutePath string) string {
	relativePath, err := filepath.Rel(pi.rootDir, absolutePath)
	if err != nil {
		return filepath.ToSlash(absolutePath)
	}
	return filepath.ToSlash(relativePath)
}

// Add inserts or updates a file.
func (pi *ProjectIndex) Add(file *ProjectFile) {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	_, exists := pi.files[file.RelativePath]
	pi.files[file.RelativePath] = file

	if !exists {
		pi.sortedPaths = append(pi.sortedPaths, file.RelativePath)
		sort.Strings(pi.sortedPaths)
	}
}

// Remove deletes a file by relative path.
func (pi *ProjectIndex) Remove(relativePath string) {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	if _, exists := pi.files[relativePath]; !exists {
		return
	}
	delete(pi.files, relativePath)

	idx := sort.SearchStrings(pi.sortedPaths, relativePath)
	if idx < len(pi.sortedPaths) && pi.sortedPaths[idx] == relativePath {
		pi.sortedPaths = append(pi.sortedPaths[:idx], pi.sortedPaths[idx+1:]...)
	}
}

// Contains reports whether the file at absolutePath is in the project
// content. This is the walker's membership predicate.
func (pi *ProjectIndex) Contains(absolutePath string) bool {
	relativePath := pi.Rel(absolutePath)

	pi.mu.RLock()
	defer pi.mu.RUnlock()
	_, ok := pi.files[relativePath]
	return ok
}

// Get returns the ProjectFile for a relative path, or nil.
func (pi *ProjectIndex) Get(relativePath string) *ProjectFile {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	return pi.files[relativePath]
}

// FileCount returns the number of member files.
func (pi *ProjectIndex) FileCount() int {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	return len(pi.files)
}

// TotalSizeBytes returns the combined size of all member files.
func (pi *ProjectIndex) TotalSizeBytes() int64 {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	var total int64
	for _, file := range pi.files {
		total += file.SizeBytes
	}
	return total
}

// LanguageCounts returns language -> file count over the membership.
func (pi *ProjectIndex) LanguageCounts() map[string]int {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	counts := make(map[string]int)
	for _, file := range pi.files {
		counts[file.Language]++
	}
	return counts
}

// SearchByGlob returns member files matching a doublestar pattern against
// relative paths.
func (pi *ProjectIndex) SearchByGlob(pattern string, maxResults int) ([]*ProjectFile, error) {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	if maxResults <= 0 {
		maxResults = 50
	}
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var results []*ProjectFile
	for _, path := range pi.sortedPaths {
		if len(results) >= maxResults {
			break
		}
		matched, err := doublestar.Match(pattern, path)
		if err != nil || !matched {
			continue
		}
		if file, ok := pi.files[path]; ok {
			results = append(results, file)
		}
	}
	return results, nil
}

// AllFiles returns all member files in sorted order.
func (pi *ProjectIndex) AllFiles() []*ProjectFile {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	result := make([]*ProjectFile, 0, len(pi.sortedPaths))
	for _, path := range pi.sortedPaths {
		if file, ok := pi.files[path]; ok {
			result = append(result, file)
		}
	}
	return result
}

// Clear removes all files.
func (pi *ProjectIndex) Clear() {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.files = make(map[string]*ProjectFile)
	pi.sortedPaths = nil
}
