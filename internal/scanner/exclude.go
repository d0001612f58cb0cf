package scanner

import (
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// excluder matches scan entries against gitignore-style patterns
type excluder struct {
	root    string
	matcher *ignore.GitIgnore
}

func newExcluder(root string, patterns []string) *excluder {
	var lines []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			lines = append(lines, p)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return &excluder{
		root:    root,
		matcher: ignore.CompileIgnoreLines(lines...),
	}
}

// excluded reports whether path, below the scan root, matches a pattern
func (e *excluder) excluded(path string, isDir bool) bool {
	if e == nil {
		return false
	}
	rel, err := filepath.Rel(e.root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return e.matcher.MatchesPath(rel)
}
