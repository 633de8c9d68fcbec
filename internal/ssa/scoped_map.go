package ssa

// idValue is the cached materialization of an equivalence class: either a
// single Value or, for a multi-result node, a list of them, tagged with the
// loop depth and block at which it was produced.
type idValue struct {
	v  Value
	vs []Value
	// multi distinguishes an empty multi-value list from a single value.
	multi bool
	// depth is the loop-nest depth at which the value was produced.
	depth int
	// blk is the block the value was emitted into.
	blk *basicBlock
	// scope is the memo-scope depth the value is registered at; the value is
	// dropped when that scope pops.
	scope int
}

// scopedMap maps eclassID to idValue with push/pop scope discipline mirroring
// the dominator-tree descent: a value inserted at an outer scope stays visible
// to inner scopes and disappears when its own scope pops. It is a single map
// plus a per-scope log of insertions undone on pop, rather than a stack of
// overlay maps, so lookups stay O(1).
type scopedMap struct {
	m map[eclassID]idValue
	// inserted[d] lists the keys registered at scope depth d.
	inserted [][]eclassID
}

func newScopedMap() *scopedMap {
	return &scopedMap{m: make(map[eclassID]idValue)}
}

// depth returns the current scope depth. Zero means no scope is open.
func (s *scopedMap) depth() int {
	return len(s.inserted)
}

func (s *scopedMap) push() {
	s.inserted = append(s.inserted, nil)
}

// pop closes the innermost scope, dropping the values registered at it, and
// returns the restored depth.
func (s *scopedMap) pop() int {
	tail := len(s.inserted) - 1
	popped := s.inserted[tail]
	for _, key := range popped {
		// A rematerialization may have re-registered the key at another scope
		// in the meantime; only drop it if it still belongs to this one.
		if v, ok := s.m[key]; ok && v.scope == tail+1 {
			delete(s.m, key)
		}
	}
	s.inserted[tail] = popped[:0]
	s.inserted = s.inserted[:tail]
	return tail
}

func (s *scopedMap) get(id eclassID) (idValue, bool) {
	v, ok := s.m[id]
	return v, ok
}

// insert registers the value at the given scope depth (1-based, up to the
// current depth). The same ID must never be double-inserted; the only legal
// way to replace a cached value is an explicit remove first.
func (s *scopedMap) insert(id eclassID, v idValue, scope int) {
	if _, ok := s.m[id]; ok {
		panic("BUG: double insertion of " + id.String())
	}
	if scope < 1 || scope > len(s.inserted) {
		panic("BUG: insertion at closed scope")
	}
	v.scope = scope
	s.m[id] = v
	s.inserted[scope-1] = append(s.inserted[scope-1], id)
}

func (s *scopedMap) remove(id eclassID) {
	delete(s.m, id)
}
