package shadegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogPortResolution(t *testing.T) {
	g := NewMaterialGraph()
	mats := g.FindNodesByType(TypeStandardMaterial)
	require.Len(t, mats, 1)
	mat := mats[0]

	p, ok := g.InputPort(mat, PortBaseColor)
	require.True(t, ok)
	assert.False(t, p.Output)
	assert.Equal(t, mat.ID, p.Node.ID)

	_, ok = g.InputPort(mat, "no_such_port")
	assert.False(t, ok)

	// base_color is an input, not an output.
	_, ok = g.OutputPort(mat, PortBaseColor)
	assert.False(t, ok)

	_, ok = g.InputPort(nil, PortBaseColor)
	assert.False(t, ok)
}

func TestMemoryCommitVisibility(t *testing.T) {
	g := NewMaterialGraph()
	require.Equal(t, 2, g.NodeCount())

	tx, err := g.Begin()
	require.NoError(t, err)

	sampler, err := tx.CreateNode(TypeTextureSampler)
	require.NoError(t, err)

	// Staged nodes are not visible until commit.
	assert.Empty(t, g.FindNodesByType(TypeTextureSampler))

	pathPort, ok := g.InputPort(sampler, PortPath)
	require.True(t, ok)
	require.NoError(t, tx.SetDefault(pathPort, "/tex/wood_basecolor.png"))

	out, ok := g.OutputPort(sampler, PortOutColor)
	require.True(t, ok)
	mat := g.FindNodesByType(TypeStandardMaterial)[0]
	dst, ok := g.InputPort(mat, PortBaseColor)
	require.True(t, ok)
	require.NoError(t, tx.Connect(out, dst))

	require.NoError(t, tx.Commit())

	require.Len(t, g.FindNodesByType(TypeTextureSampler), 1)
	v, ok := g.Default(sampler.ID, PortPath)
	require.True(t, ok)
	assert.Equal(t, "/tex/wood_basecolor.png", v)

	conns := g.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, sampler.ID, conns[0].SrcNode)
	assert.Equal(t, PortBaseColor, conns[0].DstPort)
}

func TestMemoryRollbackDiscardsEverything(t *testing.T) {
	g := NewMaterialGraph()
	before := g.NodeCount()

	tx, err := g.Begin()
	require.NoError(t, err)

	sampler, err := tx.CreateNode(TypeTextureSampler)
	require.NoError(t, err)
	ramp, err := tx.CreateNode(TypeRamp)
	require.NoError(t, err)

	out, _ := g.OutputPort(sampler, PortOutColor)
	in, _ := g.InputPort(ramp, PortInput)
	require.NoError(t, tx.Connect(out, in))

	require.NoError(t, tx.Rollback())

	assert.Equal(t, before, g.NodeCount())
	assert.Empty(t, g.Connections())
	_, ok := g.Default(sampler.ID, PortPath)
	assert.False(t, ok)
}

func TestMemoryTxTerminalStates(t *testing.T) {
	g := NewMemoryGraph()
	tx, err := g.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.ErrorIs(t, tx.Commit(), ErrTxDone)
	assert.ErrorIs(t, tx.Rollback(), ErrTxDone)
	_, err = tx.CreateNode(TypeRamp)
	assert.ErrorIs(t, err, ErrTxDone)
}

func TestMemoryUnknownType(t *testing.T) {
	g := NewMemoryGraph()
	_, err := g.AddPresetNode("com.example.bogus")
	assert.ErrorIs(t, err, ErrUnknownType)

	tx, err := g.Begin()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	_, err = tx.CreateNode("com.example.bogus")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestMemoryConnectDirection(t *testing.T) {
	g := NewMemoryGraph()
	tx, err := g.Begin()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	a, err := tx.CreateNode(TypeTextureSampler)
	require.NoError(t, err)
	b, err := tx.CreateNode(TypeRamp)
	require.NoError(t, err)

	aOut, _ := g.OutputPort(a, PortOutColor)
	bIn, _ := g.InputPort(b, PortInput)

	assert.ErrorIs(t, tx.Connect(bIn, aOut), ErrPortDirection)
	assert.ErrorIs(t, tx.Connect(aOut, aOut), ErrPortDirection)
	assert.ErrorIs(t, tx.SetDefault(aOut, "x"), ErrPortDirection)
}

func TestSequentialTransactionsIndependent(t *testing.T) {
	// A rolled-back transaction must not disturb a previous commit.
	g := NewMaterialGraph()

	tx, err := g.Begin()
	require.NoError(t, err)
	_, err = tx.CreateNode(TypeTextureSampler)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	committed := g.NodeCount()

	tx, err = g.Begin()
	require.NoError(t, err)
	_, err = tx.CreateNode(TypeDisplacement)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.Equal(t, committed, g.NodeCount())
	require.Len(t, g.FindNodesByType(TypeTextureSampler), 1)
}
