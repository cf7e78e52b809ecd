package index

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"
)

// SearchQuery configures a content search.
type SearchQuery struct {
	// Query text. Plain text gives word-level matching, "quoted text" an
	// exact phrase, /pattern/ a regexp.
	Query        string
	FileGlob     string // optional doublestar pattern over relative paths
	MaxResults   int
	ContextLines int
}

// ContentMatch is all line matches within one file.
type ContentMatch struct {
	RelativePath string
	Lines        []LineMatch
}

// LineMatch is a single matching line with surrounding context.
type LineMatch struct {
	LineNumber    int // 1-based
	LineText      string
	ContextBefore []string
	ContextAfter  []string
}

// Search runs a full-text search across all indexed contents and returns
// per-file line matches plus the total match count.
func (ci *ContentIndex) Search(q SearchQuery) ([]ContentMatch, int, error) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	if q.MaxResults <= 0 {
		q.MaxResults = 50
	}
	if q.ContextLines < 0 {
		q.ContextLines = 0
	}

	request := bleve.NewSearchRequest(parseQuery(q.Query))
	// Fetch extra hits: glob filtering happens after the fact.
	request.Size = q.MaxResults * 5
	request.Fields = []string{"path", "language"}

	hits, err := ci.index.Search(request)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}

	var results []ContentMatch
	totalMatches := 0

	for _, hit := range hits.Hits {
		relativePath := hit.ID
		content, ok := ci.contents[relativePath]
		if !ok {
			continue
		}
		if q.FileGlob != "" {
			pattern := strings.ReplaceAll(q.FileGlob, "\\", "/")
			matched, globErr := doublestar.Match(pattern, relativePath)
			if globErr != nil || !matched {
				continue
			}
		}

		lines := matchLines(content, q.Query, q.ContextLines)
		if len(lines) == 0 {
			continue
		}
		totalMatches += len(lines)
		results = append(results, ContentMatch{RelativePath: relativePath, Lines: lines})

		if len(results) >= q.MaxResults {
			break
		}
	}

	return results, totalMatches, nil
}

// parseQuery turns the query string into a Bleve query.
func parseQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	if strings.HasPrefix(queryString, "/") && strings.HasSuffix(queryString, "/") && len(queryString) > 2 {
		return bleve.NewRegexpQuery(queryString[1 : len(queryString)-1])
	}
	if strings.HasPrefix(queryString, "\"") && strings.HasSuffix(queryString, "\"") && len(queryString) > 2 {
		return bleve.NewMatchPhraseQuery(queryString[1 : len(queryString)-1])
	}
	return bleve.NewMatchQuery(queryString)
}

// matchLines scans content line by line for the raw search term and
// gathers context lines around each match.
func matchLines(content string, queryString string, contextLines int) []LineMatch {
	lines := strings.Split(content, "\n")
	term := strings.ToLower(rawTerm(queryString))

	var matches []LineMatch
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), term) {
			continue
		}

		match := LineMatch{LineNumber: i + 1, LineText: line}
		for j := max(0, i-contextLines); j < i; j++ {
			match.ContextBefore = append(match.ContextBefore, lines[j])
		}
		for j := i + 1; j < min(len(lines), i+contextLines+1); j++ {
			match.ContextAfter = append(match.ContextAfter, lines[j])
		}
		matches = append(matches, match)
	}
	return matches
}

// rawTerm strips query syntax for line-level matching.
func rawTerm(queryString string) string {
	queryString = strings.TrimSpace(queryString)
	if len(queryString) > 2 {
		if strings.HasPrefix(queryString, "/") && strings.HasSuffix(queryString, "/") {
			return queryString[1 : len(queryString)-1]
		}
		if strings.HasPrefix(queryString, "\"") && strings.HasSuffix(queryString, "\"") {
			return queryString[1 : len(queryString)-1]
		}
	}
	return queryString
}
