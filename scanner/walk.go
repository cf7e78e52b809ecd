package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"promptctx/ignore"
	"promptctx/language"
	"promptctx/token"
)

// verdict is the per-node outcome of the content walk.
type verdict int

const (
	verdictContinue verdict = iota
	verdictSkipSubtree
	verdictStopAll
)

// Membership tells project sources apart from build output and external
// libraries.
type Membership interface {
	Contains(absolutePath string) bool
}

// contentWalker visits a directory subtree pre-order, appending per-file
// content blocks until the running token count reaches the budget.
type contentWalker struct {
	policy     *ignore.Policy
	membership Membership
	codec      token.Codec
	stripDocs  bool
	maxTokens  int
	logger     *slog.Logger

	out    *strings.Builder
	result *Result
	tokens int
}

// walk runs the content walk over dir's children. Counters and output
// accumulate in the walker's result and builder.
func (w *contentWalker) walk(dir string) verdict {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("cannot read directory", "path", dir, "error", err)
		return verdictContinue
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		v := w.visit(path, entry.IsDir())
		if v == verdictStopAll {
			return verdictStopAll
		}
		if entry.IsDir() && v == verdictContinue {
			if w.walk(path) == verdictStopAll {
				return verdictStopAll
			}
		}
	}
	return verdictContinue
}

// visit handles a single node and returns the traversal verdict.
func (w *contentWalker) visit(path string, isDir bool) verdict {
	if isDir {
		if w.policy.IsDirectoryExcluded(path) {
			w.result.SkippedDirectoryCount++
			return verdictSkipSubtree
		}
		return verdictContinue
	}

	if !w.membership.Contains(path) || w.policy.IsFileExcluded(path) || !w.policy.IsFileIncluded(path) {
		w.result.SkippedFileCount++
		return verdictContinue
	}

	w.result.FileCount++
	fmt.Fprintf(w.out, "\n--- %s ---\n", path)

	content, err := readFileText(path)
	if err != nil {
		// Recoverable per file: mark and keep walking.
		fmt.Fprintf(w.out, "Error reading file: %s\n", err)
		return verdictContinue
	}

	if w.stripDocs {
		content = StripDocComments(content)
	}
	w.out.WriteString(content)
	w.out.WriteString("\n")

	w.tokens += w.codec.Count(content)
	if w.tokens >= w.maxTokens {
		return verdictStopAll
	}
	return verdictContinue
}

// readFileText reads a file as UTF-8 text. Binary content is an error:
// it cannot be included in a prompt.
func readFileText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if language.IsBinaryContent(data) {
		return "", fmt.Errorf("binary content in %s", path)
	}
	return string(data), nil
}
