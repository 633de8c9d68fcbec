package ssa

import "math"

// bestEntry caches the outcome of the lowest-cost search for one class:
// the lowest found cost and the class realizing it.
type bestEntry struct {
	cost uint64
	id   eclassID
}

const (
	// costUnbounded disables the upper-cost bound.
	costUnbounded = uint64(math.MaxUint64)
	// costSaturated caps scaled costs so summation cannot overflow into the
	// costUnbounded sentinel.
	costSaturated = uint64(math.MaxUint64) >> 1
)

// scaleCost scales a base operand cost by 2^(10*level) for the given loop-nest
// level. The exponential penalty is what makes the search prefer any available
// shallower-loop-level realization over a cheaper-per-operation but
// deeper-nested one.
func scaleCost(base uint32, level int) uint64 {
	if base == 0 {
		return 0
	}
	shift := uint(10 * level)
	if shift >= 63 {
		return costSaturated
	}
	c := uint64(base) << shift
	if c>>shift != uint64(base) || c > costSaturated {
		return costSaturated
	}
	return c
}

func saturatingAdd(a, b uint64) uint64 {
	if c := a + b; c >= a && c >= b {
		return c
	}
	return costSaturated
}

// bestNode finds the lowest-cost realization of the class under the given
// upper-cost bound. A bounded search returning no solution is a normal
// pruning outcome; an unbounded search with no solution means the congruence
// graph itself is malformed and aborts loudly.
func (e *elaborator) bestNode(id eclassID, bound uint64) (bestEntry, bool) {
	id = e.g.canonical(id)
	if ent, ok := e.best[id]; ok {
		if ent.cost > bound {
			return bestEntry{}, false
		}
		return ent, true
	}
	if e.searching[id] {
		// Re-entered through a parent link while this class's own search is
		// still open; report no solution under this bound and let the outer
		// search settle it.
		return bestEntry{}, false
	}
	e.searching[id] = true
	defer delete(e.searching, id)

	best, found := e.representativeCost(id, bound)

	// Every recorded parent is an alternative, possibly-cheaper realization.
	// Tighten the bound as soon as any candidate improves on the current best.
	cls := e.g.class(id)
	for _, p := range [2]eclassID{cls.parent1, cls.parent2} {
		if p == eclassIDInvalid {
			continue
		}
		pBound := bound
		if found && best.cost < pBound {
			pBound = best.cost
		}
		if ent, ok := e.bestNode(p, pBound); ok && (!found || ent.cost < best.cost) {
			best, found = ent, true
			if best.cost == 0 {
				// Nothing can be cheaper than zero.
				break
			}
		}
	}

	if !found {
		if bound == costUnbounded {
			panic("BUG: no viable node for class " + id.String())
		}
		// A failed bounded search must not poison the unbounded-search cache.
		return bestEntry{}, false
	}
	e.best[id] = best
	return best, true
}

// representativeCost computes the cost of the class's own representative node.
func (e *elaborator) representativeCost(id eclassID, bound uint64) (bestEntry, bool) {
	n := e.g.node(id)
	if n == nil {
		return bestEntry{}, false
	}
	switch n.kind {
	case nodeKindParam, nodeKindInst, nodeKindLoad:
		// A block parameter or a side-effecting instruction has no competing
		// encoding choice.
		return bestEntry{cost: 0, id: id}, true
	case nodeKindResult:
		// A projection's cost is entirely that of the projected-from value.
		ent, ok := e.bestNode(n.from, bound)
		if !ok {
			return bestEntry{}, false
		}
		return bestEntry{cost: ent.cost, id: id}, true
	case nodeKindPure:
		cost := scaleCost(n.baseCost, e.g.level(id))
		if cost > bound {
			return bestEntry{}, false
		}
		for _, c := range n.children {
			if c >= id {
				panic("BUG: child " + c.String() + " does not precede " + id.String())
			}
			ent, ok := e.bestNode(c, bound-cost)
			if !ok {
				// The accumulated cost would exceed the bound; abandon early.
				return bestEntry{}, false
			}
			cost = saturatingAdd(cost, ent.cost)
			if cost > bound {
				return bestEntry{}, false
			}
		}
		return bestEntry{cost: cost, id: id}, true
	default:
		panic("BUG: invalid node kind")
	}
}
