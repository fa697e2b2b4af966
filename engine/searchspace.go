package engine

// A searchSpace bundles the state shared by every search strategy: the
// node arena, the pseudo-tree, the heuristic, the context cache, and the
// running node/leaf profiles, mirroring the original's SearchSpace/Search
// base-class split (spec §4.6, §4.7).
type searchSpace struct {
	net *Network
	pt  *PseudoTree
	h   Heuristic

	arena *nodeArena
	cache *contextCache

	root int32

	nodeProfile []int64 // AND node count per depth
	leafProfile []int64 // leaf AND node count per depth

	assignment []Val // current partial assignment, indexed by global variable id

	expanded  int64
	processed int64
	pruned    int64
	deadEnds  int64
}

func newSearchSpace(net *Network, pt *PseudoTree, h Heuristic) *searchSpace {
	return &searchSpace{
		net:         net,
		pt:          pt,
		h:           h,
		arena:       newNodeArena(),
		cache:       newContextCache(net.Domains),
		assignment:  make([]Val, net.NbVars),
		nodeProfile: make([]int64, pt.Root.SubHeight+2),
		leafProfile: make([]int64, pt.Root.SubHeight+2),
	}
}

// bumpProfile records one AND node (and, if leaf, one leaf) at depth.
func (s *searchSpace) bumpProfile(depth int, leaf bool) {
	for len(s.nodeProfile) <= depth {
		s.nodeProfile = append(s.nodeProfile, 0)
		s.leafProfile = append(s.leafProfile, 0)
	}
	s.nodeProfile[depth]++
	if leaf {
		s.leafProfile[depth]++
	}
}

// syncAssignment records the value of an AND node into the shared
// assignment slice, used so heuristic and label evaluation always see the
// current path from root to the node being processed.
func (s *searchSpace) syncAssignment(n *SearchNode) {
	if n.kind != KindAND {
		return
	}
	s.assignment[n.v] = n.val
}
