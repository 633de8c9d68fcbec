package ssa

import (
	"github.com/sirupsen/logrus"
)

// ElaborationStats carries running counters of one elaboration run. They are
// purely observational and never influence placement decisions.
type ElaborationStats struct {
	ClassesVisited int
	MemoHits       int
	MemoMisses     int
	Remats         int
	Hoists         int
}

// elabBlockParam declares that a block expects the given class as its
// parameter of the given type.
type elabBlockParam struct {
	class eclassID
	typ   Type
}

// elabFuncs bundles the caller-supplied queries the elaboration pass consumes:
// which classes each block takes as parameters, which classes must be resolved
// live in each block, and which classes are cheap enough to recompute rather
// than keep live across blocks.
type elabFuncs struct {
	blockParams func(BasicBlock) []elabBlockParam
	blockRoots  func(BasicBlock) []eclassID
	remat       map[eclassID]bool
}

// loopStackEntry tracks one loop currently being descended into: the block
// loop-invariant computations hoist to, and the memo-scope depth hoisted
// values register at so they outlive the loop body but not the function.
type loopStackEntry struct {
	hoistBlk   *basicBlock
	scopeDepth int
}

type elaborator struct {
	b   *builder
	g   *egraph
	fns elabFuncs

	memo      *scopedMap
	loopStack []loopStackEntry
	best      map[eclassID]bestEntry
	searching map[eclassID]bool

	stats ElaborationStats
}

// elaborate walks the dominator tree depth first and replaces each block's
// pending computations with a concrete, cost-minimal, loop-invariant-code-
// motion-aware instruction sequence. The function's blocks are mutated in
// place; dominators must have been calculated beforehand via RunPasses.
//
// The per-run scratch state (memo table, loop stack, best-node cache) is
// allocated fresh here and discarded when elaboration completes; nothing is
// shared across functions.
func (b *builder) elaborate(g *egraph, fns elabFuncs, log *logrus.Logger) ElaborationStats {
	e := &elaborator{
		b:         b,
		g:         g,
		fns:       fns,
		memo:      newScopedMap(),
		best:      make(map[eclassID]bestEntry),
		searching: make(map[eclassID]bool),
	}
	e.visitBlock(b.entryBlk())
	if len(e.loopStack) != 0 {
		panic("BUG: loop stack not drained after elaboration")
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"classes":  e.stats.ClassesVisited,
			"memoHits": e.stats.MemoHits,
			"memoMiss": e.stats.MemoMisses,
			"remats":   e.stats.Remats,
			"hoists":   e.stats.Hoists,
		}).Debug("elaboration finished")
	}
	return e.stats
}

func (e *elaborator) visitBlock(blk *basicBlock) {
	e.memo.push()
	if blk.loopHeader {
		if idom := e.b.dominatorOf(blk); idom != nil {
			// Values hoisted out of this loop land in the dominating block and
			// register one memo scope shallower than the loop body, so they
			// stay visible for the loop's whole lifetime but not beyond.
			e.loopStack = append(e.loopStack, loopStackEntry{
				hoistBlk:   idom,
				scopeDepth: e.memo.depth() - 1,
			})
		}
	}
	curDepth := len(e.loopStack)

	// Block parameters are always fresh, never already cached.
	for _, p := range e.fns.blockParams(blk) {
		id := e.g.canonical(p.class)
		value := blk.AddParam(e.b, p.typ)
		e.memo.insert(id, idValue{v: value, depth: curDepth, blk: blk, scope: e.memo.depth()}, e.memo.depth())
	}

	for _, r := range e.fns.blockRoots(blk) {
		id := e.g.canonical(r)
		// A root realizes itself; seed its best-node cache so a direct
		// self-reference is never mistaken for an unresolved search.
		if _, ok := e.best[id]; !ok {
			e.best[id] = bestEntry{cost: 0, id: id}
		}
		e.resolveValue(id, blk, false)
	}

	for _, child := range e.b.domChildren[blk.id] {
		e.visitBlock(child)
	}

	restored := e.memo.pop()
	if n := len(e.loopStack); n > 0 && e.loopStack[n-1].scopeDepth == restored {
		// The loop's invariant-hoisting window has closed.
		e.loopStack = e.loopStack[:n-1]
	}
}

// resolveValue resolves one equivalence class to a concrete value in the
// context of blk, emitting an instruction if the class has not been
// materialized in a scope visible here.
func (e *elaborator) resolveValue(id eclassID, blk *basicBlock, rematForced bool) idValue {
	id = e.g.canonical(id)
	e.stats.ClassesVisited++

	if v, ok := e.memo.get(id); ok {
		if v.blk != blk && e.fns.remat[id] {
			// Cached in another block but flagged cheap to recompute: drop the
			// cache and re-emit here.
			e.memo.remove(id)
			e.stats.Remats++
			rematForced = true
		} else {
			e.stats.MemoHits++
			return v
		}
	} else {
		e.stats.MemoMisses++
	}

	best, ok := e.bestNode(id, costUnbounded)
	if !ok {
		panic("BUG: no viable node for class " + id.String())
	}
	n := e.g.node(best.id)

	switch n.kind {
	case nodeKindParam:
		panic("BUG: block parameter " + best.id.String() + " reached before materialization")
	case nodeKindResult:
		// A pure projection: slice the requested result out of the underlying
		// multi-result value without emitting anything.
		under := e.resolveValue(n.from, blk, false)
		if !under.multi {
			panic("BUG: projection of a single-result class " + n.from.String())
		}
		v := idValue{
			v:     under.vs[n.resultIdx],
			depth: under.depth,
			blk:   under.blk,
			scope: under.scope,
		}
		e.memo.insert(id, v, under.scope)
		return v
	}

	args := make([]Value, len(n.children))
	maxChildDepth := 0
	for i, c := range n.children {
		cv := e.resolveValue(c, blk, false)
		if cv.multi {
			panic("BUG: multi-result class " + c.String() + " used directly as an operand")
		}
		args[i] = cv.v
		if cv.depth > maxChildDepth {
			maxChildDepth = cv.depth
		}
	}

	// Placement: side-effecting operations stay put; a pure operation whose
	// every dependency lives at a shallower loop level hoists to the recorded
	// block for that level.
	curDepth := len(e.loopStack)
	targetBlk, targetDepth, targetScope := blk, curDepth, e.memo.depth()
	if n.kind == nodeKindPure && !rematForced && maxChildDepth < curDepth {
		ent := &e.loopStack[maxChildDepth]
		targetBlk, targetDepth, targetScope = ent.hoistBlk, maxChildDepth, ent.scopeDepth
		e.stats.Hoists++
	}

	instr := e.b.AllocateInstruction()
	instr.asOperation(n.op, args, n.typ)
	instr.u64 = n.imm
	if n.kind != nodeKindPure {
		instr.srcPos = n.srcPos
	}

	nresults := 1
	if n.kind == nodeKindInst {
		nresults = n.nresults
	}
	v := idValue{depth: targetDepth, blk: targetBlk, scope: targetScope}
	switch {
	case nresults > 1:
		v.multi = true
		v.vs = make([]Value, nresults)
		for i := range v.vs {
			v.vs[i] = e.b.allocateValue(n.typ)
		}
		instr.rValue = v.vs[0]
		instr.rValues = v.vs[1:]
	case nresults == 1:
		v.v = e.b.allocateValue(n.typ)
		instr.rValue = v.v
	default:
		v.v = ValueInvalid
	}

	targetBlk.InsertInstruction(instr)
	e.memo.insert(id, v, targetScope)
	return v
}
