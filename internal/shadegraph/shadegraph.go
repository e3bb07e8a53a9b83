// Package shadegraph is the graph-authoring boundary: node and port handles,
// a fixed node-type catalog, and transactional backends. The assembler only
// ever talks to the Graph and Tx interfaces, so it is testable against the
// in-memory backend and persistable through the SQLite one.
package shadegraph

import "errors"

var (
	// ErrUnknownType indicates a node type absent from the catalog.
	ErrUnknownType = errors.New("unknown node type")

	// ErrTxDone indicates an operation on a committed or rolled-back
	// transaction. Terminal states are final; there are no retries.
	ErrTxDone = errors.New("transaction already finished")

	// ErrPortDirection indicates a connect/set-default call with the wrong
	// port direction (e.g. connecting input to input).
	ErrPortDirection = errors.New("wrong port direction")
)

// Node is an opaque handle to a graph node. Callers never inspect backend
// state through it; they hand it back to port lookups and transactions.
type Node struct {
	ID     string
	TypeID string
}

// Port is a handle to one input or output of a node.
type Port struct {
	Node   *Node
	ID     string
	Output bool
}

// Connection is one committed edge, exposed for inspection and tests.
type Connection struct {
	SrcNode string
	SrcPort string
	DstNode string
	DstPort string
}

// Graph is the read side of the authoring service plus transaction entry.
type Graph interface {
	// FindNodesByType returns committed nodes of the given type in creation
	// order. Used once per material to locate the preset-created
	// StandardMaterial and Output nodes.
	FindNodesByType(typeID string) []*Node

	// InputPort resolves an input port by ID. ok=false means the port does
	// not exist on the node's type; callers skip the connection.
	InputPort(n *Node, portID string) (*Port, bool)

	// OutputPort resolves an output port by ID.
	OutputPort(n *Node, portID string) (*Port, bool)

	// Begin opens a single-writer transaction. Lifecycle:
	// Open -> Populating -> {Committed | RolledBack}.
	Begin() (Tx, error)
}

// Tx is the write side. All mutations inside one Tx become visible atomically
// on Commit; Rollback discards them with no partial state surviving.
type Tx interface {
	// CreateNode instantiates a node of the given catalog type.
	CreateNode(typeID string) (*Node, error)

	// SetDefault stages a default value on an input port.
	SetDefault(p *Port, value any) error

	// Connect stages an edge from an output port to an input port.
	Connect(src, dst *Port) error

	Commit() error
	Rollback() error
}

// resolvePort is the shared catalog-driven port lookup. Port existence
// depends only on the node's type, never on backend state, so uncommitted
// nodes are connectable within their own transaction.
func resolvePort(n *Node, portID string, output bool) (*Port, bool) {
	if n == nil {
		return nil, false
	}
	nt, ok := LookupType(n.TypeID)
	if !ok {
		return nil, false
	}
	if !nt.hasPort(portID, output) {
		return nil, false
	}
	return &Port{Node: n, ID: portID, Output: output}, true
}
