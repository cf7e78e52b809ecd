// Package scanner assembles token-budgeted project source context: an
// indented directory tree plus concatenated file contents, truncated to a
// token budget.
package scanner

// Result is the outcome of one scan. It is created fresh per scan and
// immutable once returned.
type Result struct {
	Content               string
	TokenCount            int
	FileCount             int
	SkippedFileCount      int
	SkippedDirectoryCount int
}
