package metadata

import (
	"iter"
	"path/filepath"
)

// Ancestors yields dir followed by each of its parents, ending at the root
// of the path ("/" for absolute paths, "." for relative ones). The path is
// cleaned first, so trailing separators and ".." segments never cause a
// directory to be visited twice. The sequence is always finite: it stops as
// soon as taking the parent makes no progress.
func Ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		current := filepath.Clean(dir)
		for {
			if !yield(current) {
				return
			}
			parent := filepath.Dir(current)
			if parent == current {
				return
			}
			current = parent
		}
	}
}
