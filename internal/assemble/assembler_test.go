package assemble

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shadekit/matforge/internal/shadegraph"
	"github.com/shadekit/matforge/internal/texset"
)

func materialFixture(t *testing.T) (*shadegraph.MemoryGraph, *shadegraph.Node, *shadegraph.Node) {
	t.Helper()
	g := shadegraph.NewMaterialGraph()
	mats := g.FindNodesByType(shadegraph.TypeStandardMaterial)
	require.Len(t, mats, 1)
	outs := g.FindNodesByType(shadegraph.TypeOutput)
	require.Len(t, outs, 1)
	return g, mats[0], outs[0]
}

// nodeTypes maps committed node IDs to their catalog type.
func nodeTypes(g *shadegraph.MemoryGraph) map[string]string {
	out := make(map[string]string)
	for typeID := range map[string]struct{}{
		shadegraph.TypeStandardMaterial: {},
		shadegraph.TypeOutput:           {},
		shadegraph.TypeTextureSampler:   {},
		shadegraph.TypeColorCorrect:     {},
		shadegraph.TypeBumpMap:          {},
		shadegraph.TypeDisplacement:     {},
		shadegraph.TypeRamp:             {},
		shadegraph.TypeColorSplitter:    {},
		shadegraph.TypeAmbientOcclusion: {},
	} {
		for _, n := range g.FindNodesByType(typeID) {
			out[n.ID] = typeID
		}
	}
	return out
}

// connTo returns the connection feeding dstPort on dstNode, if any.
func connTo(conns []shadegraph.Connection, dstNode, dstPort string) (shadegraph.Connection, bool) {
	for _, c := range conns {
		if c.DstNode == dstNode && c.DstPort == dstPort {
			return c, true
		}
	}
	return shadegraph.Connection{}, false
}

func fullSet() *texset.TextureSet {
	set := &texset.TextureSet{Identifier: "rock01", MaterialName: "Rock_rock01"}
	set.Paths[texset.BaseColor] = "/tex/rock01_basecolor.png"
	set.Paths[texset.Roughness] = "/tex/rock01_roughness.png"
	set.Paths[texset.Normal] = "/tex/rock01_normal.png"
	set.Paths[texset.Displacement] = "/tex/rock01_height.png"
	set.Paths[texset.Opacity] = "/tex/rock01_opacity.png"
	set.Paths[texset.Metalness] = "/tex/rock01_metalness.png"
	return set
}

func TestAssembleFullSet(t *testing.T) {
	g, mat, out := materialFixture(t)
	set := fullSet()

	require.NoError(t, New(zap.NewNop()).Assemble(g, mat, out, set))

	types := nodeTypes(g)
	conns := g.Connections()

	// One sampler per channel.
	assert.Len(t, g.FindNodesByType(shadegraph.TypeTextureSampler), 6)

	// BaseColor: sampler -> color correct -> material.base_color.
	bc, ok := connTo(conns, mat.ID, shadegraph.PortBaseColor)
	require.True(t, ok)
	assert.Equal(t, shadegraph.TypeColorCorrect, types[bc.SrcNode])
	ccIn, ok := connTo(conns, bc.SrcNode, shadegraph.PortInput)
	require.True(t, ok)
	assert.Equal(t, shadegraph.TypeTextureSampler, types[ccIn.SrcNode])

	// Roughness: sampler -> ramp -> refl_roughness (no splitter by default).
	rr, ok := connTo(conns, mat.ID, shadegraph.PortReflRoughness)
	require.True(t, ok)
	assert.Equal(t, shadegraph.TypeRamp, types[rr.SrcNode])
	assert.Empty(t, g.FindNodesByType(shadegraph.TypeColorSplitter))

	// Normal: bump map with tangent input type and raw sampler colorspace.
	bi, ok := connTo(conns, mat.ID, shadegraph.PortBumpInput)
	require.True(t, ok)
	assert.Equal(t, shadegraph.TypeBumpMap, types[bi.SrcNode])
	v, ok := g.Default(bi.SrcNode, shadegraph.PortInputType)
	require.True(t, ok)
	assert.Equal(t, shadegraph.BumpInputTangent, v)

	normalIn, ok := connTo(conns, bi.SrcNode, shadegraph.PortInput)
	require.True(t, ok)
	cs, ok := g.Default(normalIn.SrcNode, shadegraph.PortColorspace)
	require.True(t, ok)
	assert.Equal(t, shadegraph.ColorspaceRaw, cs)

	// Displacement lands on the output node, not the material.
	dp, ok := connTo(conns, out.ID, shadegraph.PortDisplacement)
	require.True(t, ok)
	assert.Equal(t, shadegraph.TypeDisplacement, types[dp.SrcNode])

	// Metalness: sampler wired straight in.
	mt, ok := connTo(conns, mat.ID, shadegraph.PortMetalness)
	require.True(t, ok)
	assert.Equal(t, shadegraph.TypeTextureSampler, types[mt.SrcNode])
	p, ok := g.Default(mt.SrcNode, shadegraph.PortPath)
	require.True(t, ok)
	assert.Equal(t, "/tex/rock01_metalness.png", p)
}

func TestAssembleMetalnessOnly(t *testing.T) {
	g, mat, out := materialFixture(t)
	set := &texset.TextureSet{MaterialName: "Bolt"}
	set.Paths[texset.Metalness] = "/tex/bolt_metalness.png"

	require.NoError(t, New(zap.NewNop()).Assemble(g, mat, out, set))

	// Presets + a single sampler; no chain nodes for other channels.
	assert.Equal(t, 3, g.NodeCount())
	conns := g.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, shadegraph.PortMetalness, conns[0].DstPort)
}

func TestAssembleAmbientOcclusion(t *testing.T) {
	g, mat, out := materialFixture(t)
	set := &texset.TextureSet{MaterialName: "Wood", AmbientOcclusion: true}
	set.Paths[texset.BaseColor] = "/tex/wood_basecolor.png"

	require.NoError(t, New(zap.NewNop()).Assemble(g, mat, out, set))

	types := nodeTypes(g)
	conns := g.Connections()

	aos := g.FindNodesByType(shadegraph.TypeAmbientOcclusion)
	require.Len(t, aos, 1)
	ao := aos[0]

	// Sampler taps the AO bright input directly.
	bright, ok := connTo(conns, ao.ID, shadegraph.PortBright)
	require.True(t, ok)
	assert.Equal(t, shadegraph.TypeTextureSampler, types[bright.SrcNode])

	// AO owns the destination; color correct stays wired from the sampler.
	bc, ok := connTo(conns, mat.ID, shadegraph.PortBaseColor)
	require.True(t, ok)
	assert.Equal(t, ao.ID, bc.SrcNode)

	ccs := g.FindNodesByType(shadegraph.TypeColorCorrect)
	require.Len(t, ccs, 1)
	_, ok = connTo(conns, ccs[0].ID, shadegraph.PortInput)
	assert.True(t, ok)
}

func TestAssembleGameAssetSplit(t *testing.T) {
	g, mat, out := materialFixture(t)
	set := &texset.TextureSet{MaterialName: "Crate", GameAssetSplit: true}
	set.Paths[texset.Roughness] = "/tex/crate_rough.png"
	set.Paths[texset.Opacity] = "/tex/crate_alpha.png"

	require.NoError(t, New(zap.NewNop()).Assemble(g, mat, out, set))

	types := nodeTypes(g)
	conns := g.Connections()

	// Roughness: sampler -> splitter(outr) -> ramp -> refl_roughness.
	rr, ok := connTo(conns, mat.ID, shadegraph.PortReflRoughness)
	require.True(t, ok)
	assert.Equal(t, shadegraph.TypeRamp, types[rr.SrcNode])
	rampIn, ok := connTo(conns, rr.SrcNode, shadegraph.PortInput)
	require.True(t, ok)
	assert.Equal(t, shadegraph.TypeColorSplitter, types[rampIn.SrcNode])
	assert.Equal(t, shadegraph.PortOutR, rampIn.SrcPort)

	// Opacity: sampler -> splitter(outr) -> opacity_color.
	op, ok := connTo(conns, mat.ID, shadegraph.PortOpacityColor)
	require.True(t, ok)
	assert.Equal(t, shadegraph.TypeColorSplitter, types[op.SrcNode])
	assert.Equal(t, shadegraph.PortOutR, op.SrcPort)

	assert.Len(t, g.FindNodesByType(shadegraph.TypeColorSplitter), 2)
}

// failingGraph wraps a real graph and injects a service failure when a node
// of failType is created, to exercise rollback.
type failingGraph struct {
	shadegraph.Graph
	failType string
}

type failingTx struct {
	shadegraph.Tx
	failType string
}

func (g *failingGraph) Begin() (shadegraph.Tx, error) {
	tx, err := g.Graph.Begin()
	if err != nil {
		return nil, err
	}
	return &failingTx{Tx: tx, failType: g.failType}, nil
}

func (t *failingTx) CreateNode(typeID string) (*shadegraph.Node, error) {
	if typeID == t.failType {
		return nil, errors.New("simulated service failure")
	}
	return t.Tx.CreateNode(typeID)
}

func TestAssembleRollbackOnFailure(t *testing.T) {
	g, mat, out := materialFixture(t)
	before := g.NodeCount()

	set := fullSet()
	wrapped := &failingGraph{Graph: g, failType: shadegraph.TypeRamp}

	err := New(zap.NewNop()).Assemble(wrapped, mat, out, set)
	require.Error(t, err)

	var asmErr *AssemblyError
	require.ErrorAs(t, err, &asmErr)
	assert.Equal(t, "rock01", asmErr.Identifier)

	// Nothing from the failed transaction survives, including the BaseColor
	// chain that was staged before the Roughness failure.
	assert.Equal(t, before, g.NodeCount())
	assert.Empty(t, g.Connections())
}

func TestAssembleNilNodeIsNodeCreationFailure(t *testing.T) {
	g, mat, out := materialFixture(t)
	set := &texset.TextureSet{Identifier: "x"}
	set.Paths[texset.Metalness] = "/tex/x_metalness.png"

	wrapped := &nilNodeGraph{Graph: g}
	err := New(zap.NewNop()).Assemble(wrapped, mat, out, set)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeCreation)
	assert.Equal(t, 2, g.NodeCount())
}

type nilNodeGraph struct{ shadegraph.Graph }

type nilNodeTx struct{ shadegraph.Tx }

func (g *nilNodeGraph) Begin() (shadegraph.Tx, error) {
	tx, err := g.Graph.Begin()
	if err != nil {
		return nil, err
	}
	return &nilNodeTx{Tx: tx}, nil
}

func (t *nilNodeTx) CreateNode(string) (*shadegraph.Node, error) {
	return nil, nil
}

func TestAssembleSQLiteEndToEnd(t *testing.T) {
	g, err := shadegraph.OpenSQLiteGraph(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	defer func() { _ = g.Close() }()
	require.NoError(t, g.SeedMaterial())

	mat := g.FindNodesByType(shadegraph.TypeStandardMaterial)[0]
	out := g.FindNodesByType(shadegraph.TypeOutput)[0]

	set := fullSet()
	require.NoError(t, New(zap.NewNop()).Assemble(g, mat, out, set))

	n, err := g.NodeCount()
	require.NoError(t, err)
	// 2 presets + 6 samplers + color correct + ramp + bump + displacement.
	assert.Equal(t, 12, n)

	conns, err := g.Connections()
	require.NoError(t, err)
	_, ok := connTo(conns, out.ID, shadegraph.PortDisplacement)
	assert.True(t, ok)
}

func TestAssembleSQLiteRollback(t *testing.T) {
	g, err := shadegraph.OpenSQLiteGraph(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	defer func() { _ = g.Close() }()
	require.NoError(t, g.SeedMaterial())

	mat := g.FindNodesByType(shadegraph.TypeStandardMaterial)[0]
	out := g.FindNodesByType(shadegraph.TypeOutput)[0]

	wrapped := &failingGraph{Graph: g, failType: shadegraph.TypeDisplacement}
	err = New(zap.NewNop()).Assemble(wrapped, mat, out, fullSet())
	require.Error(t, err)

	n, err := g.NodeCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
