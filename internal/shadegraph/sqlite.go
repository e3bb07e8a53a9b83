package shadegraph

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteGraph persists the node graph in a SQLite database. The Tx interface
// maps directly onto sql.Tx, so commit/rollback atomicity comes from the
// database rather than from bookkeeping of our own.
type SQLiteGraph struct {
	db   *sql.DB
	path string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	type_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type_id);

CREATE TABLE IF NOT EXISTS port_defaults (
	node_id TEXT NOT NULL,
	port_id TEXT NOT NULL,
	value TEXT,
	PRIMARY KEY (node_id, port_id)
);

CREATE TABLE IF NOT EXISTS connections (
	src_node TEXT NOT NULL,
	src_port TEXT NOT NULL,
	dst_node TEXT NOT NULL,
	dst_port TEXT NOT NULL,
	PRIMARY KEY (src_node, src_port, dst_node, dst_port)
);
`

// OpenSQLiteGraph opens (or creates) a graph database at path.
func OpenSQLiteGraph(path string) (*SQLiteGraph, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open graph db %s: %w", path, err)
	}
	// One writer connection plus one reader. WAL keeps committed state
	// readable while a transaction is populating.
	db.SetMaxOpenConns(2)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create graph schema: %w", err)
	}
	return &SQLiteGraph{db: db, path: path}, nil
}

// AddPresetNode inserts a committed node outside any transaction, modeling
// the host's preset-instantiation step.
func (g *SQLiteGraph) AddPresetNode(typeID string) (*Node, error) {
	if _, ok := LookupType(typeID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeID)
	}
	n := &Node{ID: uuid.NewString(), TypeID: typeID}
	if _, err := g.db.Exec("INSERT INTO nodes (id, type_id) VALUES (?, ?)", n.ID, n.TypeID); err != nil {
		return nil, fmt.Errorf("insert preset node: %w", err)
	}
	return n, nil
}

// SeedMaterial inserts the StandardMaterial and Output preset nodes.
func (g *SQLiteGraph) SeedMaterial() error {
	if _, err := g.AddPresetNode(TypeStandardMaterial); err != nil {
		return err
	}
	_, err := g.AddPresetNode(TypeOutput)
	return err
}

// FindNodesByType implements Graph. Must not be called while a transaction
// from this graph is still open.
func (g *SQLiteGraph) FindNodesByType(typeID string) []*Node {
	rows, err := g.db.Query("SELECT id FROM nodes WHERE type_id = ? ORDER BY rowid", typeID)
	if err != nil {
		return nil
	}
	defer func() { _ = rows.Close() }()

	var out []*Node
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		out = append(out, &Node{ID: id, TypeID: typeID})
	}
	return out
}

// InputPort implements Graph.
func (g *SQLiteGraph) InputPort(n *Node, portID string) (*Port, bool) {
	return resolvePort(n, portID, false)
}

// OutputPort implements Graph.
func (g *SQLiteGraph) OutputPort(n *Node, portID string) (*Port, bool) {
	return resolvePort(n, portID, true)
}

// Begin implements Graph.
func (g *SQLiteGraph) Begin() (Tx, error) {
	tx, err := g.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin graph tx: %w", err)
	}
	return &SQLiteTx{tx: tx}, nil
}

// NodeCount returns the number of committed nodes.
func (g *SQLiteGraph) NodeCount() (int, error) {
	var n int
	err := g.db.QueryRow("SELECT count(*) FROM nodes").Scan(&n)
	return n, err
}

// Connections returns all committed connections in insertion order.
func (g *SQLiteGraph) Connections() ([]Connection, error) {
	rows, err := g.db.Query("SELECT src_node, src_port, dst_node, dst_port FROM connections ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Connection
	for rows.Next() {
		var c Connection
		if err := rows.Scan(&c.SrcNode, &c.SrcPort, &c.DstNode, &c.DstPort); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Default returns the committed default value for a node input. JSON-decoded,
// so numeric values come back as float64.
func (g *SQLiteGraph) Default(nodeID, portID string) (any, bool) {
	var raw string
	err := g.db.QueryRow(
		"SELECT value FROM port_defaults WHERE node_id = ? AND port_id = ?",
		nodeID, portID,
	).Scan(&raw)
	if err != nil {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}
	return v, true
}

// NodeTypes returns committed node IDs mapped to their type, for inspection.
func (g *SQLiteGraph) NodeTypes() (map[string]string, error) {
	rows, err := g.db.Query("SELECT id, type_id FROM nodes ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var id, typeID string
		if err := rows.Scan(&id, &typeID); err != nil {
			return nil, err
		}
		out[id] = typeID
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (g *SQLiteGraph) Close() error {
	return g.db.Close()
}

// SQLiteTx wraps sql.Tx. sql.Tx already rejects use after commit/rollback;
// the done flag just maps those failures onto ErrTxDone.
type SQLiteTx struct {
	tx   *sql.Tx
	done bool
}

// CreateNode implements Tx.
func (t *SQLiteTx) CreateNode(typeID string) (*Node, error) {
	if t.done {
		return nil, ErrTxDone
	}
	if _, ok := LookupType(typeID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeID)
	}
	n := &Node{ID: uuid.NewString(), TypeID: typeID}
	if _, err := t.tx.Exec("INSERT INTO nodes (id, type_id) VALUES (?, ?)", n.ID, n.TypeID); err != nil {
		return nil, fmt.Errorf("insert node: %w", err)
	}
	return n, nil
}

// SetDefault implements Tx.
func (t *SQLiteTx) SetDefault(p *Port, value any) error {
	if t.done {
		return ErrTxDone
	}
	if p == nil || p.Output {
		return fmt.Errorf("set default: %w", ErrPortDirection)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode default %s.%s: %w", p.Node.ID, p.ID, err)
	}
	_, err = t.tx.Exec(
		"INSERT OR REPLACE INTO port_defaults (node_id, port_id, value) VALUES (?, ?, ?)",
		p.Node.ID, p.ID, string(raw),
	)
	if err != nil {
		return fmt.Errorf("set default %s.%s: %w", p.Node.ID, p.ID, err)
	}
	return nil
}

// Connect implements Tx.
func (t *SQLiteTx) Connect(src, dst *Port) error {
	if t.done {
		return ErrTxDone
	}
	if src == nil || dst == nil || !src.Output || dst.Output {
		return fmt.Errorf("connect: %w", ErrPortDirection)
	}
	_, err := t.tx.Exec(
		"INSERT OR IGNORE INTO connections (src_node, src_port, dst_node, dst_port) VALUES (?, ?, ?, ?)",
		src.Node.ID, src.ID, dst.Node.ID, dst.ID,
	)
	if err != nil {
		return fmt.Errorf("connect %s.%s -> %s.%s: %w", src.Node.ID, src.ID, dst.Node.ID, dst.ID, err)
	}
	return nil
}

// Commit implements Tx.
func (t *SQLiteTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	return t.tx.Commit()
}

// Rollback implements Tx.
func (t *SQLiteTx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	return t.tx.Rollback()
}

// Verify interface compliance at compile time.
var (
	_ Graph = (*SQLiteGraph)(nil)
	_ Tx    = (*SQLiteTx)(nil)
)
