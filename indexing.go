package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"log/slog"

	"promptctx/ignore"
	"promptctx/index"
	"promptctx/language"
	"promptctx/watcher"
)

// performIndexing walks the content roots and registers every eligible
// file with the membership and content indexes. Returns the number of
// files indexed and total bytes processed.
func performIndexing(
	contentRoots []string,
	projectIndex *index.ProjectIndex,
	contentIndex *index.ContentIndex,
	policy *ignore.Policy,
	logger *slog.Logger,
) (int, int64) {
	var indexedCount int
	var totalSize int64
	var mu sync.Mutex

	// Bounded worker pool for parallel file reading.
	const workerCount = 8
	type indexJob struct {
		path string
		info os.FileInfo
	}
	jobs := make(chan indexJob, 100)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := indexSingleFile(job.path, job.info, projectIndex, contentIndex); err != nil {
					logger.Debug("skipped file", "path", job.path, "error", err)
					continue
				}
				mu.Lock()
				indexedCount++
				totalSize += job.info.Size()
				mu.Unlock()
			}
		}()
	}

	for _, root := range contentRoots {
		filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && policy.IsDirectoryExcluded(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !policy.IsFileIncluded(path) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			if policy.IsFileTooLarge(info.Size()) {
				return nil
			}
			jobs <- indexJob{path: path, info: info}
			return nil
		})
	}

	close(jobs)
	wg.Wait()
	return indexedCount, totalSize
}

// indexSingleFile reads one file and records it in both indexes.
func indexSingleFile(
	absolutePath string,
	info os.FileInfo,
	projectIndex *index.ProjectIndex,
	contentIndex *index.ContentIndex,
) error {
	content, err := readFileWithRetry(absolutePath)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	if language.IsBinaryContent(content) {
		return fmt.Errorf("binary file")
	}

	contentStr := string(content)
	relativePath := projectIndex.Rel(absolutePath)
	lang := language.Detect(absolutePath)

	projectIndex.Add(&index.ProjectFile{
		Path:         absolutePath,
		RelativePath: relativePath,
		Language:     lang,
		SizeBytes:    info.Size(),
		ModTime:      info.ModTime(),
		LineCount:    strings.Count(contentStr, "\n") + 1,
	})

	if err := contentIndex.IndexFile(relativePath, contentStr, lang); err != nil {
		return fmt.Errorf("indexing content: %w", err)
	}

	return nil
}

// readFileWithRetry reads a file, retrying once after a short delay if the
// file is locked (editors on Windows hold locks while saving).
func readFileWithRetry(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		time.Sleep(50 * time.Millisecond)
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// handleWatcherEvents applies debounced file system events to the indexes.
func handleWatcherEvents(
	fileWatcher *watcher.Watcher,
	projectIndex *index.ProjectIndex,
	contentIndex *index.ContentIndex,
	policy *ignore.Policy,
	logger *slog.Logger,
) {
	for events := range fileWatcher.Events() {
		for _, event := range events {
			relativePath := projectIndex.Rel(event.Path)

			switch event.Op {
			case watcher.OpRemove, watcher.OpRename:
				projectIndex.Remove(relativePath)
				contentIndex.RemoveFile(relativePath)
				logger.Debug("removed from index", "path", relativePath)

			case watcher.OpCreate, watcher.OpWrite:
				// A .gitignore edit changes the exclusion rules, not
				// the content.
				if filepath.Base(event.Path) == ignore.Gitignore {
					policy.Reload()
					logger.Info("reloaded ignore rules", "path", event.Path)
					continue
				}

				if !policy.IsFileIncluded(event.Path) {
					continue
				}

				info, err := os.Stat(event.Path)
				if err != nil || info.IsDir() {
					continue
				}
				if policy.IsFileTooLarge(info.Size()) {
					continue
				}

				if err := indexSingleFile(event.Path, info, projectIndex, contentIndex); err != nil {
					logger.Debug("skipped file update", "path", relativePath, "error", err)
					continue
				}
				logger.Debug("updated index", "path", relativePath)
			}
		}
	}
}
