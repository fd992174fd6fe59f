package hostops

import (
	"fmt"
	"path/filepath"
)

// RelPath computes the lexical relative path from base to target, both
// already-absolute and canonicalised, and returns it with forward
// slashes so the result stays portable across host operating systems.
func RelPath(base, target string) (string, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", fmt.Errorf("relative path from %s to %s: %w", base, target, err)
	}
	return filepath.ToSlash(rel), nil
}
