package scanner

import "regexp"

// Doc-comment stripping is a best-effort textual transform, not a
// language parser. Delimiter-like substrings inside string literals may
// be mis-stripped; that is a documented limitation.
var (
	blockCommentPattern = regexp.MustCompile(`(?s)/\*{1,2}.*?\*/`)
	tripleSlashPattern  = regexp.MustCompile(`(?m)^[ \t]*///.*$`)
)

// StripDocComments removes block comments (including doc-comment blocks)
// and triple-slash line comments from source text.
func StripDocComments(content string) string {
	content = blockCommentPattern.ReplaceAllString(content, "")
	content = tripleSlashPattern.ReplaceAllString(content, "")
	return content
}
