package engine

// A PseudoTreeNode is one per variable, plus an optional dummy root
// (spec §3, §4.3).
type PseudoTreeNode struct {
	Var    Var
	Domain int

	Parent   *PseudoTreeNode
	Children []*PseudoTreeNode

	FullContext  []Var // ancestor variables whose removal disconnects the subtree
	CacheContext []Var // prefix of FullContext, length <= cache limit
	CacheReset   []Var // variables whose caches are cleared on entering this AND node

	Factors []*Factor // factors assigned to this node (the deepest node of their scope)

	Depth        int
	SubHeight    int
	SubWidth     int
	SubVars      []Var // variables in this node's subtree, including itself
}

// IsDummy reports whether this node is the synthetic root added to connect
// pseudo-tree components (its Var is the network's DummyVar).
func (n *PseudoTreeNode) IsDummy(net *Network) bool {
	return net.HasDummy && n.Var == net.DummyVar
}

// A PseudoTree is a rooted tree over variables induced by an elimination
// order (spec §3, §4.3).
type PseudoTree struct {
	Root     *PseudoTreeNode
	Nodes    []*PseudoTreeNode // indexed by Var
	ElimOrder []Var
	Width    int
	OrChain  bool // built as a chain (path-width) rather than a tree
}

// NodeOf returns the pseudo-tree node for variable v.
func (pt *PseudoTree) NodeOf(v Var) *PseudoTreeNode {
	return pt.Nodes[v]
}

// BuildPseudoTree constructs the pseudo-tree for net following elimination
// order elim (spec §4.3). cacheLimit bounds the adaptive-caching context
// length (use a very large value to always cache the full context).
// If chain is true, an OR chain is built instead: the same procedure, but
// every node keeps at most one child.
func BuildPseudoTree(net *Network, elim []Var, cacheLimit int, chain bool) *PseudoTree {
	g := net.InteractionGraph()
	nodes := make([]*PseudoTreeNode, net.NbVars)
	var roots []*PseudoTreeNode

	for _, v := range elim {
		nb := g.Neighbors(v)
		ctx := append([]Var{}, nb...)
		sortVars(ctx)
		node := &PseudoTreeNode{Var: v, Domain: net.Domains[v], FullContext: ctx}
		nodes[v] = node

		var remainingRoots []*PseudoTreeNode
		for _, r := range roots {
			if g.everAdjacent(v, r.Var) {
				node.Children = append(node.Children, r)
				r.Parent = node
			} else {
				remainingRoots = append(remainingRoots, r)
			}
		}
		if chain && len(node.Children) > 1 {
			node.Children = chainify(node.Children)
		}
		roots = append(remainingRoots, node)

		for i := 0; i < len(nb); i++ {
			for j := i + 1; j < len(nb); j++ {
				g.AddEdge(nb[i], nb[j])
			}
		}
		g.Remove(v)
	}

	dummyVar := net.DummyVar
	var root *PseudoTreeNode
	if len(roots) == 1 && !net.HasDummy {
		root = roots[0]
	} else {
		root = &PseudoTreeNode{Var: -1, Domain: 1}
		if net.HasDummy {
			root.Var = dummyVar
		}
		root.Children = roots
		for _, r := range roots {
			r.Parent = root
		}
		if chain {
			root.Children = chainify(root.Children)
		}
	}

	pt := &PseudoTree{Root: root, Nodes: nodes, ElimOrder: elim, OrChain: chain}
	pt.computeCacheContexts(cacheLimit)
	pt.computeDerived()
	pt.assignFactors(net)
	return pt
}

// chainify reattaches a list of sibling roots as a single-child path,
// producing path-width instead of tree-width (spec §4.3, "OR chain").
func chainify(children []*PseudoTreeNode) []*PseudoTreeNode {
	if len(children) <= 1 {
		return children
	}
	for i := 1; i < len(children); i++ {
		children[i-1].Children = append(children[i-1].Children, children[i])
		children[i].Parent = children[i-1]
	}
	return children[:1]
}

// computeCacheContexts computes, for every node, the adaptive cache context
// and cache-reset list (spec §4.3): if the full context already fits within
// cacheLimit, it is used verbatim; otherwise the cacheLimit ancestors of the
// node that lie in the full context are kept, walking upward from the
// node's parent, and a cache-reset entry is registered on the nearest
// ancestor that is in the full context but fell out of the truncated
// context.
func (pt *PseudoTree) computeCacheContexts(cacheLimit int) {
	for _, node := range pt.Nodes {
		if node == nil {
			continue
		}
		full := node.FullContext
		if len(full) <= cacheLimit {
			node.CacheContext = append([]Var{}, full...)
			continue
		}
		fullSet := map[Var]bool{}
		for _, v := range full {
			fullSet[v] = true
		}
		var kept []Var
		var droppedNearest *PseudoTreeNode
		for anc := node.Parent; anc != nil && len(kept) < cacheLimit; anc = anc.Parent {
			if fullSet[anc.Var] {
				kept = append(kept, anc.Var)
			}
		}
		sortVars(kept)
		node.CacheContext = kept
		keptSet := map[Var]bool{}
		for _, v := range kept {
			keptSet[v] = true
		}
		// Nearest ancestor (closest to node) in full context but not kept.
		for anc := node.Parent; anc != nil; anc = anc.Parent {
			if fullSet[anc.Var] && !keptSet[anc.Var] {
				droppedNearest = anc
				break
			}
		}
		if droppedNearest != nil {
			droppedNearest.CacheReset = append(droppedNearest.CacheReset, node.Var)
		}
	}
}

// computeDerived fills Depth, SubHeight, SubVars and SubWidth bottom-up.
func (pt *PseudoTree) computeDerived() {
	var visit func(n *PseudoTreeNode, depth int) (height int, vars []Var, width int)
	visit = func(n *PseudoTreeNode, depth int) (int, []Var, int) {
		n.Depth = depth
		height := 0
		vars := []Var{n.Var}
		width := len(n.FullContext)
		for _, c := range n.Children {
			ch, cv, cw := visit(c, depth+1)
			if ch+1 > height {
				height = ch + 1
			}
			vars = append(vars, cv...)
			if cw > width {
				width = cw
			}
		}
		n.SubHeight = height
		n.SubVars = vars
		n.SubWidth = width
		return height, vars, width
	}
	visit(pt.Root, 0)
	pt.Width = pt.Root.SubWidth
}

// assignFactors places every factor on the deepest pseudo-tree node of its
// scope, i.e. the node whose variable comes first in the elimination order
// among the scope, so the path from it to the root covers the whole scope (spec §3,
// §4.3).
func (pt *PseudoTree) assignFactors(net *Network) {
	pos := map[Var]int{}
	for i, v := range pt.ElimOrder {
		pos[v] = i
	}
	for _, f := range net.Factors {
		scope := f.Scope()
		if len(scope) == 0 {
			pt.Root.Factors = append(pt.Root.Factors, f)
			continue
		}
		earliest := scope[0]
		for _, v := range scope[1:] {
			if pos[v] < pos[earliest] {
				earliest = v
			}
		}
		node := pt.Nodes[earliest]
		node.Factors = append(node.Factors, f)
	}
}
