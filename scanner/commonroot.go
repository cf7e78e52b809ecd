package scanner

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrNoContentRoots is returned when a common root is requested for an
// empty set of content roots.
var ErrNoContentRoots = errors.New("no content roots")

// CommonRoot returns the deepest directory that is an ancestor of (or
// equal to) every given content root. Ancestry is a partial order on a
// tree, so the deepest common ancestor is unique.
func CommonRoot(roots []string) (string, error) {
	distinct := make([]string, 0, len(roots))
	seen := make(map[string]struct{})
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		abs = filepath.Clean(abs)
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		distinct = append(distinct, abs)
	}
	if len(distinct) == 0 {
		return "", ErrNoContentRoots
	}

	common := strings.Split(filepath.ToSlash(distinct[0]), "/")
	for _, root := range distinct[1:] {
		parts := strings.Split(filepath.ToSlash(root), "/")
		common = commonPrefix(common, parts)
	}

	joined := strings.Join(common, "/")
	if joined == "" {
		joined = "/"
	}
	return filepath.FromSlash(joined), nil
}

func commonPrefix(a, b []string) []string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
