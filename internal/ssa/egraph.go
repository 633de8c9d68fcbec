package ssa

import (
	"fmt"
	"math"
)

// eclassID identifies an equivalence class of candidate computations.
//
// IDs are totally ordered so that any structural child of a class has a
// strictly smaller ID than the class itself, and any recorded parent has a
// strictly larger one. That acyclicity is what makes the recursive search in
// the elaboration pass terminate, so the constructors below assert it.
type eclassID uint32

const eclassIDInvalid eclassID = math.MaxUint32

// String implements fmt.Stringer.
func (id eclassID) String() string {
	return fmt.Sprintf("e%d", id)
}

// nodeKind classifies the candidate computations held by an equivalence class.
type nodeKind byte

const (
	nodeKindInvalid nodeKind = iota
	// nodeKindParam is a block parameter.
	nodeKindParam
	// nodeKindPure is a side-effect-free operation with an operand cost and children.
	nodeKindPure
	// nodeKindInst is an operation with a real machine-level side effect, e.g. a store or a call.
	nodeKindInst
	// nodeKindLoad is a memory load. Loads are kept distinct from nodeKindInst
	// so the lowering rules can pattern-match on them.
	nodeKindLoad
	// nodeKindResult projects one result out of a multi-result node.
	nodeKindResult
)

// eclassNode is a single candidate computation. The fields are interpreted
// depending on kind, in the same flattened style as Instruction.
type eclassNode struct {
	kind     nodeKind
	op       Opcode
	typ      Type
	children []eclassID

	// baseCost is the per-operation cost of a pure node before loop-depth scaling.
	baseCost uint32

	// blk and paramIdx locate a param node.
	blk      *basicBlock
	paramIdx int

	// srcPos and imm carry the source tag and immediate of inst/load nodes.
	srcPos SourcePos
	imm    uint64

	// nresults is the number of values an inst node produces.
	nresults int

	// from and resultIdx select the projected value of a result node.
	from      eclassID
	resultIdx int
}

// eclass is one equivalence class. parent1 and parent2 are back-references to
// alternative, possibly-cheaper realizations of the same value, recorded with
// addParent on classes that remain canonical. The upstream builder records at
// most two per class, and the bounded cost-search termination argument relies
// on that fixed arity.
type eclass struct {
	node             *eclassNode
	parent1, parent2 eclassID
}

// egraph is the read-only query surface of the congruence graph consumed by
// the elaboration pass. The graph itself is produced by the rewriting phase,
// which owns mutation; here we only need lookups plus the test-facing
// constructors below.
type egraph struct {
	classes   []eclass
	canon     []eclassID
	loopLevel []byte
	nodesPool pool[eclassNode]
}

func newEGraph() *egraph {
	return &egraph{nodesPool: newPool[eclassNode]()}
}

// canonical resolves id to its representative class.
func (g *egraph) canonical(id eclassID) eclassID {
	for g.canon[id] != id {
		id = g.canon[id]
	}
	return id
}

func (g *egraph) class(id eclassID) *eclass {
	return &g.classes[id]
}

func (g *egraph) node(id eclassID) *eclassNode {
	return g.classes[id].node
}

// level returns the loop-nest level annotated on the class.
func (g *egraph) level(id eclassID) int {
	return int(g.loopLevel[id])
}

func (g *egraph) allocClass(n *eclassNode) eclassID {
	id := eclassID(len(g.classes))
	for _, c := range n.children {
		if c >= id {
			panic("BUG: child " + c.String() + " must precede its parent " + id.String())
		}
	}
	g.classes = append(g.classes, eclass{node: n, parent1: eclassIDInvalid, parent2: eclassIDInvalid})
	g.canon = append(g.canon, id)
	g.loopLevel = append(g.loopLevel, 0)
	return id
}

// addParent records parent as an alternative realization of id.
func (g *egraph) addParent(id, parent eclassID) {
	if parent <= id {
		panic("BUG: parent " + parent.String() + " must follow its child " + id.String())
	}
	c := &g.classes[id]
	switch {
	case c.parent1 == eclassIDInvalid:
		c.parent1 = parent
	case c.parent1 == parent || c.parent2 == parent:
	case c.parent2 == eclassIDInvalid:
		c.parent2 = parent
	default:
		panic("BUG: more than two parents recorded for " + id.String())
	}
}

// union merges the class `from` into `into`, making `into` the representative.
// `into` must be the newer (larger) class. The best-node search always starts
// from the canonical class, so alternatives that should stay reachable after a
// merge must be recorded with addParent on `into`, not on `from`.
func (g *egraph) union(from, into eclassID) {
	if into <= from {
		panic("BUG: union target " + into.String() + " must follow " + from.String())
	}
	g.canon[from] = into
}

// setLoopLevel annotates the loop-nest level of the class, as computed by the
// loop analysis of the rewriting phase.
func (g *egraph) setLoopLevel(id eclassID, level int) {
	g.loopLevel[id] = byte(level)
}

// The constructors below build classes the way the rewriting phase does and
// are used by the tests to synthesize graphs.

func (g *egraph) makeParam(blk *basicBlock, paramIdx int, typ Type) eclassID {
	n := g.nodesPool.allocate()
	*n = eclassNode{kind: nodeKindParam, blk: blk, paramIdx: paramIdx, typ: typ}
	return g.allocClass(n)
}

func (g *egraph) makePure(op Opcode, typ Type, baseCost uint32, children ...eclassID) eclassID {
	if op.sideEffect() {
		panic("BUG: " + op.String() + " is not pure")
	}
	n := g.nodesPool.allocate()
	*n = eclassNode{kind: nodeKindPure, op: op, typ: typ, baseCost: baseCost, children: children}
	return g.allocClass(n)
}

func (g *egraph) makePureImm(op Opcode, typ Type, baseCost uint32, imm uint64) eclassID {
	n := g.nodesPool.allocate()
	*n = eclassNode{kind: nodeKindPure, op: op, typ: typ, baseCost: baseCost, imm: imm}
	return g.allocClass(n)
}

func (g *egraph) makeInst(op Opcode, typ Type, srcPos SourcePos, nresults int, children ...eclassID) eclassID {
	n := g.nodesPool.allocate()
	*n = eclassNode{kind: nodeKindInst, op: op, typ: typ, srcPos: srcPos, nresults: nresults, children: children}
	return g.allocClass(n)
}

func (g *egraph) makeLoad(typ Type, srcPos SourcePos, offset uint64, ptr eclassID) eclassID {
	n := g.nodesPool.allocate()
	*n = eclassNode{kind: nodeKindLoad, op: OpcodeLoad, typ: typ, srcPos: srcPos, imm: offset, children: []eclassID{ptr}}
	return g.allocClass(n)
}

func (g *egraph) makeResult(from eclassID, resultIdx int, typ Type) eclassID {
	if from >= eclassID(len(g.classes)) {
		panic("BUG: projection of an unallocated class " + from.String())
	}
	n := g.nodesPool.allocate()
	*n = eclassNode{kind: nodeKindResult, from: from, resultIdx: resultIdx, typ: typ}
	return g.allocClass(n)
}
