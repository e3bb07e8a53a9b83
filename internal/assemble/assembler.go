// Package assemble wires a resolved texture set into a material node graph.
// Each set is processed in a single graph transaction: every node and
// connection lands atomically, or none of them do.
package assemble

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shadekit/matforge/internal/shadegraph"
	"github.com/shadekit/matforge/internal/texset"
)

// ErrNodeCreation indicates the authoring service handed back a nil node
// without an error of its own.
var ErrNodeCreation = errors.New("node creation failed")

// AssemblyError reports a failed assembly for one texture set. The
// transaction has been rolled back; other sets are unaffected.
type AssemblyError struct {
	Identifier string
	Err        error
}

func (e *AssemblyError) Error() string {
	ident := e.Identifier
	if ident == "" {
		ident = "<default>"
	}
	return fmt.Sprintf("assemble texture set %s: %v", ident, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// Assembler builds per-channel node chains into a shared material.
type Assembler struct {
	log *zap.Logger
}

// New returns an Assembler logging through log (use zap.NewNop in tests).
func New(log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{log: log}
}

// Assemble creates and wires the node chains for every channel present in
// set, inside one transaction on g. material and output are the pre-existing
// preset nodes. Any service error rolls the transaction back and is reported
// as an *AssemblyError; a failed port lookup only skips that one connection,
// with a warning naming the channel and port.
func (a *Assembler) Assemble(g shadegraph.Graph, material, output *shadegraph.Node, set *texset.TextureSet) error {
	tx, err := g.Begin()
	if err != nil {
		return &AssemblyError{Identifier: set.Identifier, Err: err}
	}

	for _, rule := range Rules(set) {
		if !set.Present(rule.Channel) {
			continue
		}
		if err := a.assembleChannel(g, tx, material, output, set, rule); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				a.log.Error("rollback failed",
					zap.String("identifier", set.Identifier),
					zap.Error(rbErr))
			}
			return &AssemblyError{Identifier: set.Identifier, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &AssemblyError{Identifier: set.Identifier, Err: err}
	}
	return nil
}

func (a *Assembler) assembleChannel(g shadegraph.Graph, tx shadegraph.Tx, material, output *shadegraph.Node, set *texset.TextureSet, rule Rule) error {
	ch := rule.Channel

	sampler, err := createNode(tx, shadegraph.TypeTextureSampler)
	if err != nil {
		return fmt.Errorf("%s sampler: %w", ch, err)
	}
	if err := a.setDefault(g, tx, ch, sampler, shadegraph.PortPath, set.Path(ch)); err != nil {
		return err
	}
	if ch.RawColorspace() {
		if err := a.setDefault(g, tx, ch, sampler, shadegraph.PortColorspace, shadegraph.ColorspaceRaw); err != nil {
			return err
		}
	}

	samplerOut, ok := g.OutputPort(sampler, shadegraph.PortOutColor)
	if !ok {
		a.warnPort(ch, sampler, shadegraph.PortOutColor)
		return nil // nothing downstream can be wired
	}

	prevOut := samplerOut
	for _, step := range rule.Steps {
		node, err := createNode(tx, step.TypeID)
		if err != nil {
			return fmt.Errorf("%s chain node %s: %w", ch, step.TypeID, err)
		}
		for portID, v := range step.Defaults {
			if err := a.setDefault(g, tx, ch, node, portID, v); err != nil {
				return err
			}
		}

		src := prevOut
		if step.FromSampler {
			src = samplerOut
		}
		if err := a.connect(g, tx, ch, src, node, step.InPort); err != nil {
			return err
		}

		out, ok := g.OutputPort(node, step.OutPort)
		if !ok {
			a.warnPort(ch, node, step.OutPort)
			return nil
		}
		prevOut = out
	}

	dest := material
	if rule.OnOutput {
		dest = output
	}
	return a.connect(g, tx, ch, prevOut, dest, rule.DestPort)
}

// connect wires src into dstNode's input port. A port that does not resolve
// skips the connection with a warning; a service failure is fatal for the set.
func (a *Assembler) connect(g shadegraph.Graph, tx shadegraph.Tx, ch texset.Channel, src *shadegraph.Port, dstNode *shadegraph.Node, dstPortID string) error {
	dst, ok := g.InputPort(dstNode, dstPortID)
	if !ok {
		a.warnPort(ch, dstNode, dstPortID)
		return nil
	}
	if err := tx.Connect(src, dst); err != nil {
		return fmt.Errorf("%s connect %s.%s -> %s.%s: %w",
			ch, src.Node.TypeID, src.ID, dstNode.TypeID, dstPortID, err)
	}
	return nil
}

func (a *Assembler) setDefault(g shadegraph.Graph, tx shadegraph.Tx, ch texset.Channel, node *shadegraph.Node, portID string, value any) error {
	port, ok := g.InputPort(node, portID)
	if !ok {
		a.warnPort(ch, node, portID)
		return nil
	}
	if err := tx.SetDefault(port, value); err != nil {
		return fmt.Errorf("%s set %s.%s: %w", ch, node.TypeID, portID, err)
	}
	return nil
}

func (a *Assembler) warnPort(ch texset.Channel, node *shadegraph.Node, portID string) {
	a.log.Warn("port not found, connection skipped",
		zap.String("channel", ch.String()),
		zap.String("node_type", node.TypeID),
		zap.String("port", portID))
}

func createNode(tx shadegraph.Tx, typeID string) (*shadegraph.Node, error) {
	n, err := tx.CreateNode(typeID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeCreation, typeID)
	}
	return n, nil
}
