package engine

// NodeKind tags a search node as an OR node (a variable choice point) or an
// AND node (a value commitment), so dispatch in the hot loop is a type
// switch on a small tag rather than a virtual call (spec "Design Notes",
// tagged-variant search nodes).
type NodeKind byte

const (
	KindOR NodeKind = iota
	KindAND
)

const noNode int32 = -1

// A SearchNode is one AND or OR node in the explicated AND/OR search graph,
// stored in a nodeArena and referenced by index rather than by pointer
// (spec "Design Notes": "encode as an arena keyed by stable indices"). Not
// every field is meaningful for both kinds: fields used only by one kind
// are commented accordingly.
type SearchNode struct {
	kind NodeKind
	v    Var
	val  Val // AND only: the value v is set to

	parent int32 // index into the owning arena, noNode for the root
	depth  int

	// children holds an OR node's AND children or an AND node's OR children.
	children []int32
	heur     []LogVal // BnB OR nodes: heuristic of each AND child, index-aligned with children

	// AND-only.
	label        LogVal // product of original factors assigned at this AND node
	subSolvedAcc LogVal // running product of solved descendant OR-child subtrees

	value      LogVal
	leaf       bool
	solved     bool
	pruned     bool
	notOptimal bool // value is an upper bound only; must not be cached (spec §4.6)

	cacheSignature int64 // OR nodes only: flattened cache-context key, for commit/lookup
	childCountFull int    // number of values v could take (for OR) / full children expected
	childCountAct  int    // number of children actually generated so far
}

// NewORNode allocates an OR node for variable v under parent (noNode for
// the root), at the given depth.
func (a *nodeArena) NewORNode(v Var, parent int32, depth int) int32 {
	idx := a.Alloc()
	n := a.Get(idx)
	n.kind = KindOR
	n.v = v
	n.parent = parent
	n.depth = depth
	n.value = ElemZero
	return idx
}

// NewANDNode allocates an AND node for v=val under parent, at depth.
func (a *nodeArena) NewANDNode(v Var, val Val, parent int32, depth int) int32 {
	idx := a.Alloc()
	n := a.Get(idx)
	n.kind = KindAND
	n.v = v
	n.val = val
	n.parent = parent
	n.depth = depth
	n.label = ElemOne
	n.subSolvedAcc = ElemOne
	n.value = ElemZero
	return idx
}
