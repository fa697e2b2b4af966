package engine

import "github.com/rhartert/yagh"

// AOStarSearch is the best-first AND/OR search driver (spec §4.7): it
// maintains the same explicated AND/OR graph as BnBSearch but visits tip
// nodes of the current best partial solution graph in order of descending
// ordering heuristic (tie-broken by descending admissible heuristic),
// revising bounds bottom-up after every expansion instead of propagating
// leaf-by-leaf along a single stack.
type AOStarSearch struct {
	space *searchSpace

	tips *yagh.IntMap[float64] // keyed by node arena index, priority -orderingHeur (ties broken via packed key)

	onSolution NewSolutionFunc
	done       bool
}

// NewAOStarSearch builds an AO* driver over net/pt with heuristic h.
func NewAOStarSearch(net *Network, pt *PseudoTree, h Heuristic, onSolution NewSolutionFunc) *AOStarSearch {
	space := newSearchSpace(net, pt, h)
	root := space.arena.NewORNode(pt.Root.Var, noNode, 0)
	space.root = root
	s := &AOStarSearch{
		space:      space,
		tips:       yagh.New[float64](1024),
		onSolution: onSolution,
	}
	s.tips.Put(int(root), packPriority(orderingHeurOf(space, root), ElemOne))
	return s
}

// orderingHeurOf is the node's ordering heuristic: for this engine, the
// admissible heur doubles as the ordering heuristic (spec §4.7 leaves the
// exact ordering-heuristic formula to the implementer beyond "descending,
// tie-broken by descending heur"; reusing heur keeps a single consistent
// signal with no extra bookkeeping).
func orderingHeurOf(space *searchSpace, idx int32) LogVal {
	n := space.arena.Get(idx)
	return n.value
}

// packPriority combines the ordering heuristic and the tie-break heuristic
// into a single float key for the tip queue: ordering dominates, heur
// breaks ties, both wanting "largest first" so the combined key is
// negated for yagh's min-heap pop order.
func packPriority(ordering LogVal, heur LogVal) float64 {
	return -(float64(ordering)*1e12 + float64(heur))
}

// IsDone reports whether the root is solved.
func (s *AOStarSearch) IsDone() bool {
	return s.space.arena.Get(s.space.root).solved
}

// Incumbent returns the best value/assignment found so far, and whether
// one has been found at all. AO* tracks its incumbent via the root node's
// value rather than a separate field, since it never "loses" an improved
// bound the way anytime BnB does.
func (s *AOStarSearch) Incumbent() (LogVal, []Val, bool) {
	root := s.space.arena.Get(s.space.root)
	if !root.solved || root.value.IsZero() {
		return ElemZero, nil, false
	}
	return root.value, append([]Val{}, s.space.assignment...), true
}

// Run drives AO* to completion (spec §4.7): repeatedly find the best
// partial solution graph's tip nodes, choose the top one, expand it, and
// revise bounds, until the root is solved or there is nothing left to
// expand.
func (s *AOStarSearch) Run() Status {
	for !s.IsDone() {
		node, ok := s.ChooseTipNode()
		if !ok {
			break
		}
		s.ExpandAndRevise(node)
	}
	if s.IsDone() {
		root := s.space.arena.Get(s.space.root)
		if root.value.IsZero() {
			return Infeasible
		}
		if s.onSolution != nil {
			s.onSolution(root.value, append([]Val{}, s.space.assignment...))
		}
		return Optimal
	}
	return Infeasible
}

// FindBestPartialTree walks the explicated graph from the root, at every OR
// node following the AND child whose value matches the OR's current value,
// and at every AND node following every OR child, collecting every
// unsolved OR tip reached this way (spec §4.7, step 1).
func (s *AOStarSearch) FindBestPartialTree() []int32 {
	var tips []int32
	var walk func(idx int32)
	arena := s.space.arena
	walk = func(idx int32) {
		n := arena.Get(idx)
		if n.solved {
			return
		}
		if n.kind == KindOR {
			if len(n.children) == 0 {
				tips = append(tips, idx)
				return
			}
			best := n.children[0]
			for _, c := range n.children {
				if arena.Get(c).value > arena.Get(best).value {
					best = c
				}
			}
			walk(best)
			return
		}
		if len(n.children) == 0 {
			tips = append(tips, idx)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(s.space.root)
	return tips
}

// ArrangeTipNodes refreshes the tip priority queue from the current best
// partial solution graph (spec §4.7, step 2).
func (s *AOStarSearch) ArrangeTipNodes() {
	s.tips = yagh.New[float64](1024)
	for _, idx := range s.FindBestPartialTree() {
		n := s.space.arena.Get(idx)
		s.tips.Put(int(idx), packPriority(orderingHeurOf(s.space, idx), n.value))
	}
}

// ChooseTipNode pops the highest-priority tip, re-synchronizing the tip set
// first since expansions elsewhere may have changed the best partial
// solution graph (spec §4.7, step 3).
func (s *AOStarSearch) ChooseTipNode() (int32, bool) {
	s.ArrangeTipNodes()
	e, ok := s.tips.Pop()
	if !ok {
		return noNode, false
	}
	return int32(e.Elem), true
}

// ExpandAndRevise generates idx's children using the same expansion rule
// as BnB, computes their heuristic/label, then revises bounds bottom-up
// from idx to the root (spec §4.7, step 3).
func (s *AOStarSearch) ExpandAndRevise(idx int32) {
	s.expand(idx)
	s.revise(idx)
}

// expand mirrors BnBSearch.expand, without pushing to a stack: AO* has no
// stack, only the explicated graph and the tip queue.
func (s *AOStarSearch) expand(idx int32) {
	n := s.space.arena.Get(idx)
	s.space.expanded++
	pt := s.space.pt
	s.space.syncAssignment(n)

	if n.kind == KindAND {
		ptNode := pt.Nodes[n.v]
		if len(ptNode.Children) == 0 {
			n.leaf = true
			n.solved = true
			n.value = n.label
			return
		}
		for _, child := range ptNode.Children {
			orIdx := s.space.arena.NewORNode(child.Var, idx, n.depth+1)
			orNode := s.space.arena.Get(orIdx)
			orNode.value = s.space.h.GlobalUpperBound()
			n.children = append(n.children, orIdx)
		}
		n.childCountFull = len(n.children)
		n.childCountAct = len(n.children)
		return
	}

	domain := s.space.net.Domains[n.v]
	heur := s.space.h.HeurAll(n.v, s.space.assignment)
	any := false
	for val := Val(0); val < Val(domain); val++ {
		label := s.space.h.LabelOne(n.v, val, s.space.assignment)
		if label.IsZero() {
			continue
		}
		any = true
		andIdx := s.space.arena.NewANDNode(n.v, val, idx, n.depth)
		andNode := s.space.arena.Get(andIdx)
		andNode.label = label
		andNode.value = label.Mul(heur[val])
		n.children = append(n.children, andIdx)
	}
	if !any {
		n.leaf = true
		n.solved = true
		n.value = ElemZero
		s.space.deadEnds++
		return
	}
	n.childCountFull = len(n.children)
	n.childCountAct = len(n.children)
	n.value = ElemZero
	for _, c := range n.children {
		if v := s.space.arena.Get(c).value; v > n.value {
			n.value = v
		}
	}
}

// revise walks from idx up to the root recomputing AND.value =
// label*product(OR child upper bounds) and OR.value = max(AND child
// values). An AND node is solved once every child is solved; an OR node
// once its best AND child (the first with the largest value) is solved,
// since no other child's upper bound is larger. A dead-end OR node with no
// children keeps the status expand gave it (spec §4.7, step 3, "Revise").
func (s *AOStarSearch) revise(idx int32) {
	arena := s.space.arena
	for n := idx; n != noNode; {
		node := arena.Get(n)
		if node.kind == KindAND {
			val := node.label
			allSolved := true
			for _, c := range node.children {
				cn := arena.Get(c)
				val = val.Mul(cn.value)
				if !cn.solved {
					allSolved = false
				}
			}
			node.value = val
			node.solved = allSolved
		} else if len(node.children) > 0 {
			best := ElemZero
			bestSolved := false
			for i, c := range node.children {
				cn := arena.Get(c)
				if i == 0 || cn.value > best {
					best = cn.value
					bestSolved = cn.solved
				}
			}
			node.value = best
			node.solved = bestSolved
			if node.solved && !node.notOptimal {
				ctx := s.space.pt.Nodes[node.v].CacheContext
				s.space.cache.Store(node.v, ctx, s.space.assignment, node.value)
			}
		}
		if node.parent == noNode {
			return
		}
		n = node.parent
	}
}
