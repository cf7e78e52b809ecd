package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"promptctx/ignore"
	"promptctx/index"
)

// SyncResult holds the outcome of a single reconciliation run.
type SyncResult struct {
	MissingFiles  int // files on disk but not in the index
	StaleFiles    int // files in the index but not on disk
	ModifiedFiles int // files whose ModTime differs
	Duration      time.Duration
}

// runPeriodicSync reconciles the indexes against the filesystem at the
// given interval, catching anything the watcher missed. Runs until stop
// is closed.
func runPeriodicSync(
	intervalSeconds int,
	contentRoots []string,
	projectIndex *index.ProjectIndex,
	contentIndex *index.ContentIndex,
	policy *ignore.Policy,
	logger *slog.Logger,
	stop <-chan struct{},
) {
	interval := time.Duration(intervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic sync started", "intervalSeconds", intervalSeconds)

	for {
		select {
		case <-stop:
			logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			result := reconcileIndexes(contentRoots, projectIndex, contentIndex, policy, logger)
			discrepancies := result.MissingFiles + result.StaleFiles + result.ModifiedFiles
			if discrepancies > 0 {
				logger.Info("sync complete",
					"missing", result.MissingFiles,
					"stale", result.StaleFiles,
					"modified", result.ModifiedFiles,
					"duration", result.Duration,
				)
			} else {
				logger.Debug("sync complete, index is current", "duration", result.Duration)
			}
		}
	}
}

// reconcileIndexes compares the filesystem with the current index state
// and re-indexes out-of-sync files.
func reconcileIndexes(
	contentRoots []string,
	projectIndex *index.ProjectIndex,
	contentIndex *index.ContentIndex,
	policy *ignore.Policy,
	logger *slog.Logger,
) SyncResult {
	start := time.Now()
	var result SyncResult

	// Snapshot of eligible files currently on disk, keyed by the index's
	// relative path form.
	type diskFile struct {
		absolutePath string
		info         os.FileInfo
	}
	diskFiles := make(map[string]diskFile)
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
			diskFiles[projectIndex.Rel(path)] = diskFile{absolutePath: path, info: info}
			return nil
		})
	}

	indexedFiles := projectIndex.AllFiles()
	indexedSet := make(map[string]*index.ProjectFile, len(indexedFiles))
	for _, f := range indexedFiles {
		indexedSet[f.RelativePath] = f
	}

	// On disk but not indexed.
	for relativePath, df := range diskFiles {
		if _, exists := indexedSet[relativePath]; !exists {
			if err := indexSingleFile(df.absolutePath, df.info, projectIndex, contentIndex); err != nil {
				logger.Debug("sync: skipped missing file", "path", relativePath, "error", err)
				continue
			}
			logger.Info("sync: indexed missing file", "path", relativePath)
			result.MissingFiles++
		}
	}

	// Indexed but gone from disk.
	for relativePath := range indexedSet {
		if _, exists := diskFiles[relativePath]; !exists {
			projectIndex.Remove(relativePath)
			contentIndex.RemoveFile(relativePath)
			logger.Info("sync: removed stale file", "path", relativePath)
			result.StaleFiles++
		}
	}

	// Modified since last indexed.
	for relativePath, df := range diskFiles {
		indexed, exists := indexedSet[relativePath]
		if !exists {
			continue // handled as missing above
		}
		if !df.info.ModTime().Equal(indexed.ModTime) {
			if err := indexSingleFile(df.absolutePath, df.info, projectIndex, contentIndex); err != nil {
				logger.Debug("sync: skipped modified file", "path", relativePath, "error", err)
				continue
			}
			logger.Info("sync: re-indexed modified file", "path", relativePath)
			result.ModifiedFiles++
		}
	}

	result.Duration = time.Since(start)
	return result
}
