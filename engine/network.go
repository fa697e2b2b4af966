package engine

// A Network is a set of discrete variables and nonnegative factors whose
// product defines an unnormalized distribution (spec §3). It is the
// top-level input to preprocessing, ordering, pseudo-tree construction and
// search. NbVarsOrig/Evidence/Old2New are populated by the preprocessor and
// are needed to re-insert evidence into a solution assignment for output.
type Network struct {
	NbVars  int       // number of variables after preprocessing (dense ids [0, NbVars))
	Domains []int     // domain size of each variable
	Factors []*Factor // the factor set; atomically replaceable by the preprocessor

	// GlobalConstant accumulates log-factors that became fully assigned (i.e.
	// scope-empty) by evidence substitution, mirroring Problem::m_globalConstant.
	GlobalConstant LogVal

	NbVarsOrig int             // number of variables before evidence removal
	Evidence   map[Var]Val     // variable -> fixed value, in original variable ids
	Old2New    map[Var]Var     // original id -> dense id, for variables kept after preprocessing
	New2Old    map[Var]Var     // inverse of Old2New
	DummyVar   Var             // id of the dummy variable, -1 if none was inserted
	HasDummy   bool
}

// NewNetwork builds a Network directly from a variable count, domain sizes,
// and factors, with no evidence and no dummy variable (the common case for
// hand-built test fixtures and for ParseUAI).
func NewNetwork(domains []int, factors []*Factor) *Network {
	return &Network{
		NbVars:     len(domains),
		Domains:    domains,
		Factors:    factors,
		NbVarsOrig: len(domains),
		Evidence:   map[Var]Val{},
		Old2New:    map[Var]Var{},
		New2Old:    map[Var]Var{},
		DummyVar:   -1,
	}
}

// InteractionGraph returns the undirected graph whose edges are exactly the
// pairs of variables that co-occur in some factor's scope (spec §3).
func (n *Network) InteractionGraph() *Graph {
	g := NewGraph(n.NbVars)
	for _, f := range n.Factors {
		sc := f.Scope()
		for i := 0; i < len(sc); i++ {
			for j := i + 1; j < len(sc); j++ {
				g.AddEdge(sc[i], sc[j])
			}
		}
	}
	return g
}

// FullAssignmentCost evaluates the product (sum, in log-space) of all
// factors plus the global constant, for a full assignment over [0,NbVars).
func (n *Network) FullAssignmentCost(assignment []Val) LogVal {
	cost := n.GlobalConstant
	for _, f := range n.Factors {
		cost = cost.Mul(f.Eval(assignment))
		if cost.IsZero() {
			return ElemZero
		}
	}
	return cost
}

// OriginalAssignment re-inserts evidence into a dense-id assignment,
// producing an assignment indexed by original variable id, as required for
// the UAI2012 "MPE" solution-file format (spec §6).
func (n *Network) OriginalAssignment(dense []Val) []Val {
	out := make([]Val, n.NbVarsOrig)
	if len(n.Old2New) == 0 {
		// No reindexing was recorded (e.g. a NewNetwork never preprocessed):
		// dense ids are the original ids.
		copy(out, dense)
	}
	for ov, v := range n.Evidence {
		out[ov] = v
	}
	for ov, nv := range n.Old2New {
		out[ov] = dense[nv]
	}
	return out
}
