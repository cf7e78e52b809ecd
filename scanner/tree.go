package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"promptctx/ignore"
)

// RenderTree renders an indented textual tree of the included files and
// directories under root, two spaces per depth level. Excluded subtrees
// render nothing and contribute no children.
func RenderTree(root string, policy *ignore.Policy) (string, error) {
	var b strings.Builder
	if err := renderNode(&b, root, 0, policy); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderNode(b *strings.Builder, dir string, depth int, policy *ignore.Policy) error {
	if policy.IsFileExcluded(dir) || policy.IsDirectoryExcluded(dir) {
		return nil
	}

	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString(filepath.Base(dir))
	b.WriteString("/\n")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		childPath := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := renderNode(b, childPath, depth+1, policy); err != nil {
				return err
			}
		} else if policy.IsFileIncluded(childPath) {
			b.WriteString(indent)
			b.WriteString("  ")
			b.WriteString(entry.Name())
			b.WriteString("\n")
		}
	}
	return nil
}
