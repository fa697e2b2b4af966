package engine

import "time"

// NewSolutionFunc is called by the propagator whenever the incumbent
// improves, for anytime use (spec §4.8).
type NewSolutionFunc func(value LogVal, assignment []Val)

// BnBSearch is the depth-first AND/OR branch-and-bound driver (spec §4.6):
// a single LIFO stack of search nodes, processed through the shared
// process/cache/prune/expand pipeline, with bound propagation run inline
// whenever a leaf is produced.
type BnBSearch struct {
	space *searchSpace

	stacks      [][]int32 // rotation cycles through these; NewBnBSearch creates exactly one
	cur         int
	rotateLimit int // 0 disables rotation
	sinceRotate int

	incumbentValue LogVal
	incumbentAssig []Val
	haveIncumbent  bool
	onSolution     NewSolutionFunc
	ancestorBound  LogVal

	deadline time.Time
	useDeadline bool

	done bool
}

// BnBOptions configures a BnBSearch run.
type BnBOptions struct {
	RotateLimit int
	Deadline    time.Time // zero value means no deadline
	OnSolution  NewSolutionFunc

	// Root restricts search to the subtree rooted at Root instead of
	// pt.Root, for subproblem-restricted solving (spec §6). nil searches
	// the whole pseudo-tree.
	Root *PseudoTreeNode
	// InitialAssignment pre-fills the variables outside Root's subtree
	// (its ancestor context) before search starts. nil for an unrestricted
	// solve.
	InitialAssignment []Val
	// AncestorBound is the product of every ancestor OR/AND value above
	// Root, combined into the reported incumbent so it reflects the whole
	// original problem rather than just the restricted subtree. The zero
	// value is ElemOne (no ancestors), correct for an unrestricted solve.
	AncestorBound LogVal
}

// NewBnBSearch builds a branch-and-bound driver over net/pt using h as the
// admissible heuristic, and pushes the root OR node onto its single stack.
// No further stacks are ever created, so a nonzero RotateLimit counts
// popped nodes but never switches stacks.
func NewBnBSearch(net *Network, pt *PseudoTree, h Heuristic, opt BnBOptions) *BnBSearch {
	space := newSearchSpace(net, pt, h)
	rootNode := pt.Root
	if opt.Root != nil {
		rootNode = opt.Root
	}
	if opt.InitialAssignment != nil {
		copy(space.assignment, opt.InitialAssignment)
	}
	root := space.arena.NewORNode(rootNode.Var, noNode, 0)
	space.root = root
	s := &BnBSearch{
		space:          space,
		stacks:         [][]int32{{root}},
		rotateLimit:    opt.RotateLimit,
		onSolution:     opt.OnSolution,
		incumbentValue: ElemZero,
		ancestorBound:  opt.AncestorBound,
	}
	if s.ancestorBound.IsZero() {
		s.ancestorBound = ElemOne
	}
	if !opt.Deadline.IsZero() {
		s.useDeadline = true
		s.deadline = opt.Deadline
	}
	return s
}

// IsDone reports whether the root has been marked solved or the search was
// otherwise terminated.
func (s *BnBSearch) IsDone() bool { return s.done }

// Run drives the search to completion (or deadline), calling onSolution as
// the incumbent improves, and returns the final status.
func (s *BnBSearch) Run() Status {
	for !s.IsDone() {
		if s.useDeadline && !time.Now().Before(s.deadline) {
			return TimedOut
		}
		leaf := s.NextLeaf()
		if leaf == noNode {
			break
		}
		s.propagate(leaf)
	}
	if s.haveIncumbent {
		return Optimal
	}
	return Infeasible
}

// NextLeaf runs the pipeline until a leaf node is produced or the stacks
// are exhausted, returning noNode in the latter case (spec §4.6).
func (s *BnBSearch) NextLeaf() int32 {
	for {
		n := s.popNode()
		if n == noNode {
			return noNode
		}
		node := s.space.arena.Get(n)

		if s.process(n, node) {
			return n
		}
		if s.cacheStep(n, node) {
			return n
		}
		if s.prune(n, node) {
			return n
		}
		if s.expand(n, node) {
			return n
		}
		// node produced children: they are now on top of the stack, loop.
	}
}

func (s *BnBSearch) popNode() int32 {
	st := s.stacks[s.cur]
	if len(st) == 0 {
		// try another stack with work, round-robin.
		for i := 1; i <= len(s.stacks); i++ {
			c := (s.cur + i) % len(s.stacks)
			if len(s.stacks[c]) > 0 {
				s.cur = c
				st = s.stacks[c]
				break
			}
		}
		if len(st) == 0 {
			return noNode
		}
	}
	top := st[len(st)-1]
	s.stacks[s.cur] = st[:len(st)-1]
	if s.rotateLimit > 0 {
		s.sinceRotate++
		if s.sinceRotate >= s.rotateLimit && len(s.stacks) > 1 {
			s.cur = (s.cur + 1) % len(s.stacks)
			s.sinceRotate = 0
		}
	}
	return top
}

func (s *BnBSearch) push(n int32) {
	s.stacks[s.cur] = append(s.stacks[s.cur], n)
}

// process is pipeline step 1 (spec §4.6): AND nodes record their value into
// the shared assignment and reject a zero label as a dead end.
func (s *BnBSearch) process(idx int32, n *SearchNode) bool {
	s.space.processed++
	if n.kind != KindAND {
		return false
	}
	s.space.syncAssignment(n)
	s.space.bumpProfile(n.depth, false)
	if n.label.IsZero() {
		n.leaf = true
		n.solved = true
		n.value = ElemZero
		s.space.deadEnds++
		s.space.bumpProfile(n.depth, true)
		return true
	}
	return false
}

// cacheStep is pipeline step 2 (spec §4.6).
func (s *BnBSearch) cacheStep(idx int32, n *SearchNode) bool {
	pt := s.space.pt
	if n.kind == KindAND {
		for _, reset := range pt.Nodes[n.v].CacheReset {
			s.space.cache.Reset(reset)
		}
		return false
	}
	// OR node.
	if n.parent == noNode {
		return false
	}
	parentNode := s.space.arena.Get(n.parent)
	ptNode := pt.Nodes[n.v]
	parentPt := pt.Nodes[parentNode.v]
	if len(ptNode.FullContext) > len(parentPt.FullContext) {
		return false
	}
	ctx := ptNode.CacheContext
	sig := s.space.cache.encodeContext(ctx, s.space.assignment)
	n.cacheSignature = sig
	if val, ok := s.space.cache.Lookup(n.v, ctx, s.space.assignment); ok {
		n.value = val
		n.leaf = true
		n.solved = true
		return true
	}
	return false
}

// prune is pipeline step 3 (spec §4.6), the PST pruning rule. Only AND
// nodes are checked; it walks upward through alternating OR/AND ancestors
// accumulating the partial-solution-tree bound: n's label times the
// heuristic its OR parent recorded for it, then each AND ancestor's label
// and already-solved OR children (subSolvedAcc). Unsolved sibling OR
// subtrees contribute no factor to the bound.
func (s *BnBSearch) prune(idx int32, n *SearchNode) bool {
	if n.kind != KindAND {
		return false
	}
	ancestor := n.parent // the OR parent of n
	pstVal := n.label.Mul(heurAtChild(s.space, s.space.arena.Get(ancestor), idx))
	for ancestor != noNode {
		orNode := s.space.arena.Get(ancestor)
		if !orNode.value.IsZero() && pstVal <= orNode.value {
			n.leaf = true
			n.pruned = true
			s.space.pruned++
			if orNode.value.IsZero() {
				orNode.value = ElemZero
			}
			markNotOptimal(s.space, orNode)
			s.space.bumpProfile(n.depth, true)
			return true
		}
		if orNode.parent == noNode {
			break
		}
		andAncestor := s.space.arena.Get(orNode.parent)
		pstVal = pstVal.Mul(andAncestor.label).Mul(andAncestor.subSolvedAcc)
		ancestor = andAncestor.parent
	}
	return false
}

// heurAtChild returns the heuristic value the OR parent assigned to the
// branch leading to cur (its own heuristic for the child actually taken),
// used to rebuild the PST bound.
func heurAtChild(space *searchSpace, or *SearchNode, childIdx int32) LogVal {
	for i, c := range or.children {
		if c == childIdx {
			if i < len(or.heur) {
				return or.heur[i]
			}
		}
	}
	return ElemOne
}

// markNotOptimal marks ancestor (and everything above it that is still
// unsolved) as not-optimally-solved, so the propagator refuses to cache it.
func markNotOptimal(space *searchSpace, n *SearchNode) {
	for n != nil {
		n.notOptimal = true
		if n.parent == noNode {
			return
		}
		n = space.arena.Get(n.parent)
		if n.solved {
			return
		}
	}
}

// expand is pipeline step 4 (spec §4.6).
func (s *BnBSearch) expand(idx int32, n *SearchNode) bool {
	s.space.expanded++
	pt := s.space.pt
	if n.kind == KindAND {
		ptNode := pt.Nodes[n.v]
		if len(ptNode.Children) == 0 {
			n.leaf = true
			n.solved = true
			n.value = n.label
			s.space.bumpProfile(n.depth, true)
			return true
		}
		n.childCountFull = len(ptNode.Children)
		for i := len(ptNode.Children) - 1; i >= 0; i-- {
			child := ptNode.Children[i]
			orIdx := s.space.arena.NewORNode(child.Var, idx, n.depth+1)
			n.children = append(n.children, orIdx)
			s.push(orIdx)
		}
		n.childCountAct = len(n.children)
		return false
	}

	// OR node: compute heur/label for every value, skip label-zero values.
	domain := s.space.net.Domains[n.v]
	heur := s.space.h.HeurAll(n.v, s.space.assignment)
	var vals []Val
	var hs []LogVal
	for val := Val(0); val < Val(domain); val++ {
		label := s.space.h.LabelOne(n.v, val, s.space.assignment)
		if label.IsZero() {
			continue
		}
		vals = append(vals, val)
		hs = append(hs, heur[val])
	}
	if len(vals) == 0 {
		n.leaf = true
		n.solved = true
		n.value = ElemZero
		s.space.deadEnds++
		return true
	}
	sortValuesByHeuristic(vals, hs)
	n.childCountFull = len(vals)
	// Push back-to-front: the best (last, largest heuristic) value is
	// pushed first and ends up at the bottom of the stack, popped last.
	for i := len(vals) - 1; i >= 0; i-- {
		val := vals[i]
		label := s.space.h.LabelOne(n.v, val, s.space.assignment)
		andIdx := s.space.arena.NewANDNode(n.v, val, idx, n.depth)
		andNode := s.space.arena.Get(andIdx)
		andNode.label = label
		n.children = append(n.children, andIdx)
		n.heur = append(n.heur, hs[i])
		s.push(andIdx)
	}
	n.childCountAct = len(n.children)
	return false
}

// propagate is the bound propagator (spec §4.8), run from a freshly
// produced leaf up toward the root, possibly cascading through several
// fully solved ancestors.
func (s *BnBSearch) propagate(leaf int32) {
	arena := s.space.arena
	n := leaf
	for n != noNode {
		node := arena.Get(n)
		if !node.leaf && !node.solved {
			return
		}
		parentIdx := node.parent
		if parentIdx == noNode {
			// true root.
			if node.kind == KindOR {
				reported := node.value.Mul(s.ancestorBound)
				if !reported.IsZero() && (!s.haveIncumbent || reported > s.incumbentValue) {
					s.haveIncumbent = true
					s.incumbentValue = reported
					s.incumbentAssig = append([]Val{}, s.space.assignment...)
					if s.onSolution != nil {
						s.onSolution(reported, s.incumbentAssig)
					}
				}
			}
			s.done = true
			return
		}
		parent := arena.Get(parentIdx)

		if parent.kind == KindAND {
			// n is one of parent's OR children.
			parent.subSolvedAcc = parent.subSolvedAcc.Mul(node.value)
			removeChild(parent, n)
			arena.Free(n)
			if len(parent.children) == 0 {
				parent.value = parent.label.Mul(parent.subSolvedAcc)
				parent.leaf = true
				parent.solved = true
				n = parentIdx
				continue
			}
			return
		}

		// parent is OR, n is an AND child.
		if node.value > parent.value || parent.value.IsZero() {
			parent.value = node.value
		}
		removeChild(parent, n)
		arena.Free(n)
		if len(parent.children) == 0 {
			if !parent.notOptimal {
				ctx := s.space.pt.Nodes[parent.v].CacheContext
				s.space.cache.Store(parent.v, ctx, s.space.assignment, parent.value)
			}
			parent.leaf = true
			parent.solved = true
			n = parentIdx
			continue
		}
		return
	}
}

func removeChild(n *SearchNode, child int32) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// Incumbent returns the best value and assignment found so far.
func (s *BnBSearch) Incumbent() (LogVal, []Val, bool) {
	return s.incumbentValue, s.incumbentAssig, s.haveIncumbent
}

// Stats returns the running node/leaf profile and aggregate counters.
func (s *BnBSearch) Stats() (nodeProfile, leafProfile []int64, expanded, processed, pruned, deadEnds int64) {
	return s.space.nodeProfile, s.space.leafProfile, s.space.expanded, s.space.processed, s.space.pruned, s.space.deadEnds
}
