package texset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Candidate is one filesystem entry from a directory scan. Immutable.
type Candidate struct {
	Name string // basename
	Path string // full path
}

// ScanDir lists regular files in dir, non-recursively, in lexicographic
// order. The order matters: grouping is first-match-wins, so a stable scan
// order keeps results reproducible across runs.
func ScanDir(dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, Candidate{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
