package ssa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEGraph_ordering(t *testing.T) {
	g := newEGraph()
	a := g.makePureImm(OpcodeIconst, TypeI64, 1, 42)
	b := g.makePureImm(OpcodeIconst, TypeI64, 1, 43)
	sum := g.makePure(OpcodeIadd, TypeI64, 1, a, b)

	require.Equal(t, eclassID(0), a)
	require.Equal(t, eclassID(1), b)
	require.Equal(t, eclassID(2), sum)

	require.Equal(t, []eclassID{a, b}, g.node(sum).children)
	require.Equal(t, eclassIDInvalid, g.class(sum).parent1)

	// A child must strictly precede its parent in ID order.
	require.Panics(t, func() {
		n := g.nodesPool.allocate()
		*n = eclassNode{kind: nodeKindPure, op: OpcodeIadd, typ: TypeI64, children: []eclassID{5}}
		g.allocClass(n)
	})
}

func TestEGraph_parentArity(t *testing.T) {
	g := newEGraph()
	a := g.makePureImm(OpcodeIconst, TypeI64, 1, 0)
	p1 := g.makePure(OpcodeIadd, TypeI64, 1, a, a)
	p2 := g.makePure(OpcodeImul, TypeI64, 1, a, a)
	g.addParent(a, p1)
	g.addParent(a, p2)
	require.Equal(t, p1, g.class(a).parent1)
	require.Equal(t, p2, g.class(a).parent2)

	// A duplicate parent is idempotent, a third distinct one is a bug.
	g.addParent(a, p2)
	require.Equal(t, p2, g.class(a).parent2)
	p3 := g.makePure(OpcodeIsub, TypeI64, 1, a, a)
	require.Panics(t, func() {
		g.addParent(a, p3)
	})
	// A parent must strictly follow its child.
	require.Panics(t, func() {
		g.addParent(p2, a)
	})
}

func TestEGraph_union(t *testing.T) {
	g := newEGraph()
	a := g.makePureImm(OpcodeIconst, TypeI64, 10, 7)
	b := g.makePureImm(OpcodeIconst, TypeI64, 1, 7)
	g.union(a, b)

	require.Equal(t, b, g.canonical(a))
	require.Equal(t, b, g.canonical(b))
	// Merging redirects canonicality only; it must not consume a parent slot
	// on either side.
	require.Equal(t, eclassIDInvalid, g.class(a).parent1)
	require.Equal(t, eclassIDInvalid, g.class(b).parent1)

	// Chained unions resolve transitively.
	c := g.makePureImm(OpcodeIconst, TypeI64, 1, 7)
	g.union(b, c)
	require.Equal(t, c, g.canonical(a))

	require.Panics(t, func() {
		g.union(c, a) // the target must be the newer class
	})
}

func TestEGraph_loopLevel(t *testing.T) {
	g := newEGraph()
	a := g.makePureImm(OpcodeIconst, TypeI64, 1, 0)
	require.Equal(t, 0, g.level(a))
	g.setLoopLevel(a, 3)
	require.Equal(t, 3, g.level(a))
}

func TestEGraph_makePureRejectsSideEffects(t *testing.T) {
	g := newEGraph()
	require.Panics(t, func() {
		g.makePure(OpcodeStore, TypeI64, 1)
	})
}

func TestEGraph_makeResult(t *testing.T) {
	g := newEGraph()
	call := g.makeInst(OpcodeCall, TypeI32, 1, 2)
	r0 := g.makeResult(call, 0, TypeI32)
	r1 := g.makeResult(call, 1, TypeI32)

	require.Equal(t, call, g.node(r0).from)
	require.Equal(t, 1, g.node(r1).resultIdx)
	// Projections are not alternative realizations of the projected-from class.
	require.Equal(t, eclassIDInvalid, g.class(call).parent1)

	require.Panics(t, func() {
		g.makeResult(99, 0, TypeI32)
	})
}
