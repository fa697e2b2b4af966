package engine

import "sort"

// PreprocessOptions controls the optional steps of Preprocess (spec §4.9).
type PreprocessOptions struct {
	Collapse bool    // merge factors with identical scopes by elementwise product
	Perturb  float64 // if > 0, replace zero entries with this epsilon (probability space)
	Evidence map[Var]Val
}

// Preprocess applies evidence, removes unary-domain variables, optionally
// collapses scope-equal factors and perturbs determinism, reindexes
// variables densely, and connects disconnected components with a dummy
// variable, in that order (spec §4.9). net is mutated in place and
// returned for chaining.
func Preprocess(net *Network, opt PreprocessOptions) (*Network, error) {
	if err := applyEvidence(net, opt.Evidence); err != nil {
		return nil, err
	}
	removeUnaryVars(net)
	if opt.Collapse {
		collapseFactors(net)
	}
	if opt.Perturb > 0 {
		perturbDeterminism(net, opt.Perturb)
	}
	reindexDense(net)
	connectComponents(net)
	return net, nil
}

// applyEvidence calls Substitute on every factor for the evidence variables
// it mentions, dropping factors whose scope becomes empty into the global
// constant (spec §4.9, mirrors Problem::removeEvidence).
func applyEvidence(net *Network, evidence map[Var]Val) error {
	for v, val := range evidence {
		if int(v) < 0 || int(v) >= net.NbVarsOrig {
			return errorf("evidence variable %d out of range", v)
		}
		if int(val) < 0 || int(val) >= net.Domains[v] {
			return errorf("evidence value %d out of range for variable %d", val, v)
		}
	}
	if evidence == nil {
		evidence = map[Var]Val{}
	}
	net.Evidence = evidence
	if len(evidence) == 0 {
		return nil
	}
	kept := make([]*Factor, 0, len(net.Factors))
	for _, f := range net.Factors {
		relevant := map[Var]Val{}
		for _, sv := range f.Scope() {
			if val, ok := evidence[sv]; ok {
				relevant[sv] = val
			}
		}
		if len(relevant) == 0 {
			kept = append(kept, f)
			continue
		}
		nf := f.Substitute(relevant)
		if len(nf.Scope()) == 0 {
			net.GlobalConstant = net.GlobalConstant.Mul(nf.table[0])
			continue
		}
		kept = append(kept, nf)
	}
	net.Factors = kept
	return nil
}

// removeUnaryVars eliminates variables whose domain size is 1 identically:
// they carry no choice, so every factor mentioning them is substituted with
// their (only) value, same mechanism as evidence removal.
func removeUnaryVars(net *Network) {
	unary := map[Var]Val{}
	for v, d := range net.Domains {
		if d == 1 {
			if _, isEvid := net.Evidence[Var(v)]; !isEvid {
				unary[Var(v)] = 0
			}
		}
	}
	if len(unary) == 0 {
		return
	}
	kept := make([]*Factor, 0, len(net.Factors))
	for _, f := range net.Factors {
		relevant := map[Var]Val{}
		for _, sv := range f.Scope() {
			if val, ok := unary[sv]; ok {
				relevant[sv] = val
			}
		}
		if len(relevant) == 0 {
			kept = append(kept, f)
			continue
		}
		nf := f.Substitute(relevant)
		if len(nf.Scope()) == 0 {
			net.GlobalConstant = net.GlobalConstant.Mul(nf.table[0])
			continue
		}
		kept = append(kept, nf)
	}
	net.Factors = kept
	for v := range unary {
		net.Evidence[v] = 0
	}
}

// collapseFactors merges every group of factors sharing an identical scope
// into a single factor by elementwise product (spec §4.9).
func collapseFactors(net *Network) {
	groups := map[string][]*Factor{}
	order := []string{}
	for _, f := range net.Factors {
		key := scopeKey(f.Scope())
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}
	merged := make([]*Factor, 0, len(order))
	nextID := 0
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			merged = append(merged, group[0])
			continue
		}
		acc := group[0].Clone()
		for _, f := range group[1:] {
			for i := range acc.table {
				acc.table[i] = acc.table[i].Mul(f.table[i])
			}
		}
		acc.id = nextID
		acc.computeTightness()
		merged = append(merged, acc)
		nextID++
	}
	net.Factors = merged
}

func scopeKey(scope []Var) string {
	b := make([]byte, 0, 4*len(scope))
	for _, v := range scope {
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return string(b)
}

// perturbDeterminism replaces zero entries with eps (given in probability
// space) in every factor table, so downstream heuristics that divide by
// max-marginals never hit a hard zero (spec §4.9).
func perturbDeterminism(net *Network, eps float64) {
	logEps := probToLog(eps)
	for _, f := range net.Factors {
		changed := false
		for i, v := range f.table {
			if v.IsZero() {
				f.table[i] = logEps
				changed = true
			}
		}
		if changed {
			f.computeTightness()
		}
	}
}

// reindexDense renumbers the surviving (non-evidence, non-unary) variables
// densely starting at 0, recording Old2New/New2Old for later output
// (spec §4.9).
func reindexDense(net *Network) {
	seen := map[Var]bool{}
	for _, f := range net.Factors {
		for _, v := range f.Scope() {
			seen[v] = true
		}
	}
	olds := make([]Var, 0, len(seen))
	for v := range seen {
		olds = append(olds, v)
	}
	sort.Slice(olds, func(i, j int) bool { return olds[i] < olds[j] })

	old2new := make(map[Var]Var, len(olds))
	new2old := make(map[Var]Var, len(olds))
	domains := make([]int, len(olds))
	for nv, ov := range olds {
		old2new[ov] = Var(nv)
		new2old[Var(nv)] = ov
		domains[nv] = net.Domains[ov]
	}
	for _, f := range net.Factors {
		*f = *f.TranslateScope(old2new)
	}
	net.Old2New = old2new
	net.New2Old = new2old
	net.Domains = domains
	net.NbVars = len(domains)
}

// connectComponents appends one dummy variable (domain size 1) with a unit
// factor connecting one variable per connected component of the
// interaction graph, if the graph is disconnected (spec §4.9, §3).
func connectComponents(net *Network) {
	g := net.InteractionGraph()
	comps := g.ConnectedComponents()
	if len(comps) <= 1 {
		net.DummyVar = -1
		net.HasDummy = false
		return
	}
	reps := make([]Var, 0, len(comps))
	for _, c := range comps {
		reps = append(reps, c[0])
	}
	dummy := Var(net.NbVars)
	net.Domains = append(net.Domains, 1)
	net.NbVars++

	scope := append([]Var{}, reps...)
	scope = append(scope, dummy)
	sortVars(scope)
	dom := make([]int, len(scope))
	size := 1
	for i, v := range scope {
		dom[i] = net.Domains[v]
		size *= dom[i]
	}
	table := make([]LogVal, size)
	for i := range table {
		table[i] = ElemOne
	}
	net.Factors = append(net.Factors, NewFactor(len(net.Factors), scope, dom, table))
	net.DummyVar = dummy
	net.HasDummy = true
}
