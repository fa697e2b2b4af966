package engine

// This file generalizes the teacher's pool-based clause allocator into a
// search-node arena: since search nodes are created and destroyed at a high
// rate during AND/OR search, they are packed into one growable slice and
// referenced by stable int32 index rather than by pointer, so a freed slot
// can be reused without invalidating any index still held by a parent or
// by the cache (spec "Design Notes", "encode as an arena keyed by stable
// indices").

const nodeArenaPrealloc = 4096 // initial capacity, grown by append beyond this

// nodeArena owns every SearchNode by stable int32 index. Deletion just
// returns the slot to the free list; nodes are stored by pointer so that
// growing the index slice itself never relocates a SearchNode a caller is
// still holding (search routines commonly hold a node across several Alloc
// calls while expanding its children).
type nodeArena struct {
	nodes []*SearchNode
	free  []int32
}

func newNodeArena() *nodeArena {
	return &nodeArena{nodes: make([]*SearchNode, 0, nodeArenaPrealloc)}
}

// Alloc returns the index of a freshly zeroed node, reusing a freed slot
// when available.
func (a *nodeArena) Alloc() int32 {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		*a.nodes[idx] = SearchNode{}
		return idx
	}
	a.nodes = append(a.nodes, &SearchNode{})
	return int32(len(a.nodes) - 1)
}

// Get returns the node at idx. The returned pointer remains valid for the
// arena's lifetime, including across later Alloc calls, since growing the
// index slice only relocates the *SearchNode pointers, not the nodes they
// point to.
func (a *nodeArena) Get(idx int32) *SearchNode {
	return a.nodes[idx]
}

// Free returns idx's slot to the free list, marking the node gone. Callers
// must have already unlinked idx from its parent.
func (a *nodeArena) Free(idx int32) {
	a.free = append(a.free, idx)
}

// Live reports how many nodes are currently allocated (not on the free
// list), for stats/memory reporting.
func (a *nodeArena) Live() int {
	return len(a.nodes) - len(a.free)
}
