package forge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shadekit/matforge/internal/shadegraph"
)

// MemoryHost creates each material as an in-memory graph. The default for
// tests and dry runs.
type MemoryHost struct{}

// CreateMaterial implements Host.
func (MemoryHost) CreateMaterial(string) (shadegraph.Graph, error) {
	return shadegraph.NewMaterialGraph(), nil
}

// SQLiteHost persists each material as its own graph database under Dir,
// named after the material.
type SQLiteHost struct {
	Dir string
}

// CreateMaterial implements Host.
func (h SQLiteHost) CreateMaterial(name string) (shadegraph.Graph, error) {
	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create material dir: %w", err)
	}
	path := filepath.Join(h.Dir, safeName(name)+".db")
	_ = os.Remove(path) // overwrite a previous run
	g, err := shadegraph.OpenSQLiteGraph(path)
	if err != nil {
		return nil, err
	}
	if err := g.SeedMaterial(); err != nil {
		_ = g.Close()
		return nil, err
	}
	return g, nil
}

// safeName strips path separators from a material name before using it as a
// file name.
func safeName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_")
	return r.Replace(name)
}
