package shadegraph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryGraph is the in-memory backend. Mutations are staged in a MemoryTx
// and merged into committed state on Commit, so a rollback leaves no trace.
type MemoryGraph struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	order    []string // creation order, for deterministic queries
	defaults map[string]map[string]any
	conns    []Connection

	// txMu serializes writers: the graph is process-wide shared state with a
	// single writer at a time. Held from Begin until Commit/Rollback.
	txMu sync.Mutex
}

// NewMemoryGraph returns an empty in-memory graph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		nodes:    make(map[string]*Node),
		defaults: make(map[string]map[string]any),
	}
}

// NewMaterialGraph returns a graph pre-seeded with the StandardMaterial and
// Output nodes, standing in for the host's material-preset command.
func NewMaterialGraph() *MemoryGraph {
	g := NewMemoryGraph()
	// Catalog types, cannot fail.
	_, _ = g.AddPresetNode(TypeStandardMaterial)
	_, _ = g.AddPresetNode(TypeOutput)
	return g
}

// AddPresetNode inserts a committed node outside any transaction. It models
// the external preset-instantiation step that exists before assembly begins.
func (g *MemoryGraph) AddPresetNode(typeID string) (*Node, error) {
	if _, ok := LookupType(typeID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeID)
	}
	n := &Node{ID: uuid.NewString(), TypeID: typeID}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return n, nil
}

// FindNodesByType implements Graph.
func (g *MemoryGraph) FindNodesByType(typeID string) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n != nil && n.TypeID == typeID {
			out = append(out, n)
		}
	}
	return out
}

// InputPort implements Graph.
func (g *MemoryGraph) InputPort(n *Node, portID string) (*Port, bool) {
	return resolvePort(n, portID, false)
}

// OutputPort implements Graph.
func (g *MemoryGraph) OutputPort(n *Node, portID string) (*Port, bool) {
	return resolvePort(n, portID, true)
}

// Begin implements Graph. Blocks until any open transaction finishes.
func (g *MemoryGraph) Begin() (Tx, error) {
	g.txMu.Lock()
	return &MemoryTx{graph: g, defaults: make(map[string]map[string]any)}, nil
}

// NodeCount returns the number of committed nodes.
func (g *MemoryGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Connections returns a copy of all committed connections.
func (g *MemoryGraph) Connections() []Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Connection, len(g.conns))
	copy(out, g.conns)
	return out
}

// Default returns the committed default value for a node input, if set.
func (g *MemoryGraph) Default(nodeID, portID string) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.defaults[nodeID]
	if !ok {
		return nil, false
	}
	v, ok := m[portID]
	return v, ok
}

// MemoryTx stages mutations against a MemoryGraph.
type MemoryTx struct {
	graph    *MemoryGraph
	nodes    []*Node
	defaults map[string]map[string]any
	conns    []Connection
	done     bool
}

// CreateNode implements Tx.
func (t *MemoryTx) CreateNode(typeID string) (*Node, error) {
	if t.done {
		return nil, ErrTxDone
	}
	if _, ok := LookupType(typeID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeID)
	}
	n := &Node{ID: uuid.NewString(), TypeID: typeID}
	t.nodes = append(t.nodes, n)
	return n, nil
}

// SetDefault implements Tx.
func (t *MemoryTx) SetDefault(p *Port, value any) error {
	if t.done {
		return ErrTxDone
	}
	if p == nil || p.Output {
		return fmt.Errorf("set default: %w", ErrPortDirection)
	}
	m, ok := t.defaults[p.Node.ID]
	if !ok {
		m = make(map[string]any)
		t.defaults[p.Node.ID] = m
	}
	m[p.ID] = value
	return nil
}

// Connect implements Tx.
func (t *MemoryTx) Connect(src, dst *Port) error {
	if t.done {
		return ErrTxDone
	}
	if src == nil || dst == nil || !src.Output || dst.Output {
		return fmt.Errorf("connect: %w", ErrPortDirection)
	}
	t.conns = append(t.conns, Connection{
		SrcNode: src.Node.ID,
		SrcPort: src.ID,
		DstNode: dst.Node.ID,
		DstPort: dst.ID,
	})
	return nil
}

// Commit implements Tx: staged state becomes visible atomically.
func (t *MemoryTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	g := t.graph

	g.mu.Lock()
	for _, n := range t.nodes {
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	for nodeID, m := range t.defaults {
		committed, ok := g.defaults[nodeID]
		if !ok {
			committed = make(map[string]any)
			g.defaults[nodeID] = committed
		}
		for portID, v := range m {
			committed[portID] = v
		}
	}
	g.conns = append(g.conns, t.conns...)
	g.mu.Unlock()

	g.txMu.Unlock()
	return nil
}

// Rollback implements Tx: staged state is discarded.
func (t *MemoryTx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.nodes, t.defaults, t.conns = nil, nil, nil
	t.graph.txMu.Unlock()
	return nil
}

// Verify interface compliance at compile time.
var (
	_ Graph = (*MemoryGraph)(nil)
	_ Tx    = (*MemoryTx)(nil)
)
