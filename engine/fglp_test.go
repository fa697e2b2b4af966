package engine

import "testing"

func threeVarChainMatchNetwork() *Network {
	// v0-v1-v2 chain: f01 favors v0==v1, f12 favors v1==v2. The joint
	// optimum (any all-equal assignment) has value ElemOne.
	f01 := NewFactor(0, []Var{0, 1}, []int{2, 2}, []LogVal{0, ElemZero, ElemZero, 0})
	f12 := NewFactor(1, []Var{1, 2}, []int{2, 2}, []LogVal{0, ElemZero, ElemZero, 0})
	return NewNetwork([]int{2, 2, 2}, []*Factor{f01, f12})
}

func buildFGLP(t *testing.T, net *Network, opt FGLPOptions) *FGLPHeuristic {
	order := []Var{0, 1, 2}
	pt := BuildPseudoTree(net, order, 1<<30, false)
	h := NewFGLPHeuristic(opt)
	if err := h.Build(net, pt); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return h
}

func TestFGLPConvergesExactlyOnChain(t *testing.T) {
	net := threeVarChainMatchNetwork()
	h := buildFGLP(t, net, FGLPOptions{Variant: FGLPPlain, MaxIterations: 50, Tolerance: 1e-12})
	if got := h.GlobalUpperBound(); got != ElemOne {
		t.Errorf("GlobalUpperBound() = %v, want %v (chain reparameterization is exact)", got, ElemOne)
	}
}

func TestFGLPResidualVariantMatchesPlain(t *testing.T) {
	net := threeVarChainMatchNetwork()
	plain := buildFGLP(t, net, FGLPOptions{Variant: FGLPPlain, MaxIterations: 50, Tolerance: 1e-12})
	residual := buildFGLP(t, net, FGLPOptions{Variant: FGLPResidual, MaxIterations: 50, Tolerance: 1e-12})
	priority := buildFGLP(t, net, FGLPOptions{Variant: FGLPPriority, MaxIterations: 50, Tolerance: 1e-12})
	if residual.GlobalUpperBound() != plain.GlobalUpperBound() {
		t.Errorf("residual bound %v != plain bound %v", residual.GlobalUpperBound(), plain.GlobalUpperBound())
	}
	if priority.GlobalUpperBound() != plain.GlobalUpperBound() {
		t.Errorf("priority bound %v != plain bound %v", priority.GlobalUpperBound(), plain.GlobalUpperBound())
	}
}

func TestFGLPHeurAllNeverUnderestimatesLabel(t *testing.T) {
	net := threeVarChainMatchNetwork()
	h := buildFGLP(t, net, FGLPOptions{Variant: FGLPPlain, MaxIterations: 50, Tolerance: 1e-12})
	assignment := []Val{0, 0, 0}
	heur := h.HeurAll(1, assignment)
	label := h.LabelOne(1, 0, assignment)
	if heur[0] < label {
		t.Errorf("HeurAll(1)[0] = %v is below LabelOne(1,0,...) = %v, violating admissibility", heur[0], label)
	}
}

func TestFGLPReparameterizedPreservesBound(t *testing.T) {
	net := threeVarChainMatchNetwork()
	h := buildFGLP(t, net, FGLPOptions{Variant: FGLPPlain, MaxIterations: 50, Tolerance: 1e-12})
	reparam := h.Reparameterized()
	if reparam.NbVars != net.NbVars {
		t.Errorf("Reparameterized().NbVars = %d, want %d", reparam.NbVars, net.NbVars)
	}
	order := []Var{0, 1, 2}
	pt := BuildPseudoTree(reparam, order, 1<<30, false)
	mbe := NewMBEHeuristic(10, false)
	if err := mbe.Build(reparam, pt); err != nil {
		t.Fatalf("Build on reparameterized network: %v", err)
	}
	if got := mbe.GlobalUpperBound(); got != h.GlobalUpperBound() {
		t.Errorf("MBE bound on reparameterized network = %v, want %v", got, h.GlobalUpperBound())
	}
}

func TestFGLPConditionRestrictsToSubproblem(t *testing.T) {
	net := threeVarChainMatchNetwork()
	h := buildFGLP(t, net, FGLPOptions{Variant: FGLPPlain, MaxIterations: 50, Tolerance: 1e-12})
	sub, err := h.Condition(map[Var]Val{0: 0}, map[Var]bool{1: true, 2: true}, 1)
	if err != nil {
		t.Fatalf("Condition: %v", err)
	}
	if sub.GlobalUpperBound() != ElemOne {
		t.Errorf("conditioned bound = %v, want %v", sub.GlobalUpperBound(), ElemOne)
	}
}
