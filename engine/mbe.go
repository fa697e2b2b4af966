package engine

import "sort"

// MBEHeuristic is the mini-bucket elimination heuristic (spec §4.4): for
// each variable in elimination order, its bucket is partitioned into
// mini-buckets of scope <= iBound, each maximized out independently and the
// resulting message forwarded to the earliest later bucket whose scope
// contains a variable of the message. The product of every message whose
// scope still contains v (restricted to v's context) is the admissible
// heuristic at v.
type MBEHeuristic struct {
	iBound int
	match  bool

	net *Network
	pt  *PseudoTree

	// messages[v] holds every message bucket v received from an earlier
	// bucket (i.e. scope includes v and every message producer listed v as
	// the earliest later bucket containing one of its variables).
	messages [][]*Factor

	upperBound LogVal
}

// NewMBEHeuristic returns an unbuilt mini-bucket heuristic with the given
// scope limit and moment-matching flag.
func NewMBEHeuristic(iBound int, match bool) *MBEHeuristic {
	return &MBEHeuristic{iBound: iBound, match: match}
}

// Build runs bucket elimination along pt's elimination order, creating
// mini-buckets of scope <= iBound and forwarding their messages (spec
// §4.4).
func (h *MBEHeuristic) Build(net *Network, pt *PseudoTree) error {
	h.net = net
	h.pt = pt
	h.messages = make([][]*Factor, net.NbVars)

	pos := make(map[Var]int, len(pt.ElimOrder))
	for i, v := range pt.ElimOrder {
		pos[v] = i
	}

	bucket := make([][]*Factor, net.NbVars)
	for v := range bucket {
		bucket[v] = append(bucket[v], h.pt.Nodes[v].Factors...)
	}

	for _, v := range pt.ElimOrder {
		factors := append(bucket[v], h.messages[v]...)
		if len(factors) == 0 {
			continue
		}
		groups := partitionByScope(factors, h.iBound, v)
		if h.match && len(groups) > 1 {
			momentMatch(groups, v)
		}
		for _, g := range groups {
			msg := eliminateVar(g, v)
			if len(msg.Scope()) == 0 {
				h.upperBound = h.upperBound.Mul(msg.table[0])
				continue
			}
			target := earliestLaterBucket(msg.Scope(), pos, pos[v])
			h.messages[target] = append(h.messages[target], msg)
		}
	}

	h.upperBound = h.upperBound.Mul(net.GlobalConstant)
	for _, f := range h.messages[h.pt.Root.Var] {
		if len(f.Scope()) == 0 {
			h.upperBound = h.upperBound.Mul(f.table[0])
		}
	}
	return nil
}

// partitionByScope groups factors into mini-buckets each of combined scope
// size (excluding v itself) <= iBound, using a simple greedy bin-packing in
// input order: spec leaves the exact packing strategy open, greedy keeps
// the behavior deterministic and cheap.
func partitionByScope(factors []*Factor, iBound int, v Var) [][]*Factor {
	var groups [][]*Factor
	var scopes []map[Var]bool
	for _, f := range factors {
		placed := false
		for gi, sc := range scopes {
			merged := unionScope(sc, f.Scope())
			if scopeSizeExcluding(merged, v) <= iBound {
				scopes[gi] = merged
				groups[gi] = append(groups[gi], f)
				placed = true
				break
			}
		}
		if !placed {
			sc := map[Var]bool{}
			for _, sv := range f.Scope() {
				sc[sv] = true
			}
			scopes = append(scopes, sc)
			groups = append(groups, []*Factor{f})
		}
	}
	return groups
}

func unionScope(sc map[Var]bool, scope []Var) map[Var]bool {
	out := make(map[Var]bool, len(sc)+len(scope))
	for v := range sc {
		out[v] = true
	}
	for _, v := range scope {
		out[v] = true
	}
	return out
}

func scopeSizeExcluding(sc map[Var]bool, v Var) int {
	n := len(sc)
	if sc[v] {
		n--
	}
	return n
}

// eliminateVar multiplies every factor in group and maximizes out v,
// returning the resulting message over group's combined scope minus v.
func eliminateVar(group []*Factor, v Var) *Factor {
	scopeSet := map[Var]bool{}
	for _, f := range group {
		for _, sv := range f.Scope() {
			scopeSet[sv] = true
		}
	}
	scopeSet[v] = true
	scope := make([]Var, 0, len(scopeSet))
	for sv := range scopeSet {
		scope = append(scope, sv)
	}
	sort.Slice(scope, func(i, j int) bool { return scope[i] < scope[j] })

	domain := make([]int, len(scope))
	// Borrow domain sizes from the factors themselves.
	domainOf := func(sv Var) int {
		for _, f := range group {
			for i, fv := range f.Scope() {
				if fv == sv {
					return f.domain[i]
				}
			}
		}
		return 1
	}
	for i, sv := range scope {
		domain[i] = domainOf(sv)
	}
	joined := joinFactors(group, scope, domain)

	newScope := make([]Var, 0, len(scope)-1)
	newDomain := make([]int, 0, len(scope)-1)
	vPos := -1
	for i, sv := range scope {
		if sv == v {
			vPos = i
			continue
		}
		newScope = append(newScope, sv)
		newDomain = append(newDomain, domain[i])
	}
	newSize := 1
	for _, d := range newDomain {
		newSize *= d
	}
	newTable := make([]LogVal, newSize)
	for i := range newTable {
		newTable[i] = ElemZero
	}
	digits := make([]int, len(scope))
	for i := range joined.table {
		rem := i
		for k := len(scope) - 1; k >= 0; k-- {
			digits[k] = rem % domain[k]
			rem /= domain[k]
		}
		outIdx := 0
		mult := 1
		for k := len(scope) - 1; k >= 0; k-- {
			if k == vPos {
				continue
			}
			outIdx += digits[k] * mult
			mult *= domain[k]
		}
		if joined.table[i] > newTable[outIdx] {
			newTable[outIdx] = joined.table[i]
		}
	}
	return NewFactor(joined.id, newScope, newDomain, newTable)
}

// joinFactors computes the elementwise product of group's factors over the
// given combined scope/domain.
func joinFactors(group []*Factor, scope []Var, domain []int) *Factor {
	size := 1
	for _, d := range domain {
		size *= d
	}
	table := make([]LogVal, size)
	for i := range table {
		table[i] = ElemOne
	}
	assignment := make([]Val, maxVar(scope)+1)
	digits := make([]int, len(scope))
	for i := range table {
		rem := i
		for k := len(scope) - 1; k >= 0; k-- {
			digits[k] = rem % domain[k]
			rem /= domain[k]
		}
		for k, sv := range scope {
			assignment[sv] = Val(digits[k])
		}
		for _, f := range group {
			table[i] = table[i].Mul(f.Eval(assignment))
		}
	}
	return NewFactor(group[0].id, scope, domain, table)
}

func maxVar(scope []Var) Var {
	m := Var(0)
	for _, v := range scope {
		if v > m {
			m = v
		}
	}
	return m
}

// earliestLaterBucket returns, among vars, the one appearing earliest after
// fromPos in elimination order; pos maps a variable to its elimination
// position.
func earliestLaterBucket(vars []Var, pos map[Var]int, fromPos int) Var {
	best := Var(-1)
	bestPos := -1
	for _, v := range vars {
		p := pos[v]
		if p <= fromPos {
			continue
		}
		if bestPos < 0 || p < bestPos {
			bestPos = p
			best = v
		}
	}
	return best
}

// momentMatch reparameterizes the mini-buckets of a single bucket so their
// max-marginals over the shared scope agree before elimination, tightening
// the bound (spec §4.4). Implemented as: compute each mini-bucket's
// max-marginal over v, take their geometric mean in log-space, and rescale
// each mini-bucket by mean/own-marginal, applied to a copy of its first
// factor so the network's own factors are left unchanged.
func momentMatch(groups [][]*Factor, v Var) {
	n := len(groups)
	marginals := make([][]LogVal, n)
	for i, g := range groups {
		marginals[i] = maxMarginal(g, v)
	}
	d := len(marginals[0])
	mean := make([]LogVal, d)
	for a := 0; a < d; a++ {
		sum := ElemOne
		for i := 0; i < n; i++ {
			sum = sum.Mul(marginals[i][a])
		}
		if sum.IsZero() {
			mean[a] = ElemZero
		} else {
			mean[a] = LogVal(float64(sum) / float64(n))
		}
	}
	for i, g := range groups {
		scale := make([]LogVal, d)
		for a := 0; a < d; a++ {
			scale[a] = mean[a] - marginals[i][a]
		}
		g[0] = g[0].Clone()
		rescaleByValue(g[0], v, scale)
	}
}

// maxMarginal returns, for variable v, the max over all other scope
// variables of the product of group's factors, one entry per value of v.
func maxMarginal(group []*Factor, v Var) []LogVal {
	scopeSet := map[Var]bool{}
	for _, f := range group {
		for _, sv := range f.Scope() {
			scopeSet[sv] = true
		}
	}
	scopeSet[v] = true
	scope := make([]Var, 0, len(scopeSet))
	for sv := range scopeSet {
		scope = append(scope, sv)
	}
	sort.Slice(scope, func(i, j int) bool { return scope[i] < scope[j] })
	domain := make([]int, len(scope))
	for i, sv := range scope {
		domain[i] = domainOfIn(group, sv)
	}
	joined := joinFactors(group, scope, domain)
	vPos := -1
	for i, sv := range scope {
		if sv == v {
			vPos = i
		}
	}
	d := domain[vPos]
	out := make([]LogVal, d)
	for a := range out {
		out[a] = ElemZero
	}
	digits := make([]int, len(scope))
	for i, val := range joined.table {
		rem := i
		for k := len(scope) - 1; k >= 0; k-- {
			digits[k] = rem % domain[k]
			rem /= domain[k]
		}
		a := digits[vPos]
		if val > out[a] {
			out[a] = val
		}
	}
	return out
}

func domainOfIn(group []*Factor, sv Var) int {
	for _, f := range group {
		for i, fv := range f.Scope() {
			if fv == sv {
				return f.domain[i]
			}
		}
	}
	return 1
}

// rescaleByValue multiplies every entry of f consistent with v=a by
// scale[a], for every value a, leaving f's scope unchanged.
func rescaleByValue(f *Factor, v Var, scale []LogVal) {
	pos := -1
	for i, sv := range f.Scope() {
		if sv == v {
			pos = i
			break
		}
	}
	if pos < 0 {
		// v is not in f's scope: distribute evenly is not well defined, so
		// this mini-bucket does not need rescaling (it has no say on v).
		return
	}
	st := f.stride[pos]
	d := f.domain[pos]
	for base := 0; base < len(f.table); base++ {
		a := (base / st) % d
		f.table[base] = f.table[base].Mul(scale[a])
	}
}

// HeurAll returns, for each value of v, the product of every later message
// whose scope contains v, evaluated against assignment (spec §4.4).
func (h *MBEHeuristic) HeurAll(v Var, assignment []Val) []LogVal {
	d := h.net.Domains[v]
	out := make([]LogVal, d)
	for a := range out {
		out[a] = ElemOne
	}
	for _, msg := range h.messages[v] {
		vals := msg.EvalAll(v, assignment)
		for a := range out {
			out[a] = out[a].Mul(vals[a])
		}
	}
	return out
}

// HeurOne returns the single-value specialization of HeurAll.
func (h *MBEHeuristic) HeurOne(v Var, val Val, assignment []Val) LogVal {
	out := ElemOne
	a2 := append([]Val{}, assignment...)
	a2[v] = val
	for _, msg := range h.messages[v] {
		out = out.Mul(msg.Eval(a2))
	}
	return out
}

// LabelOne returns the product of the original factors assigned to v's
// pseudo-tree node, evaluated at val.
func (h *MBEHeuristic) LabelOne(v Var, val Val, assignment []Val) LogVal {
	a2 := append([]Val{}, assignment...)
	a2[v] = val
	out := ElemOne
	for _, f := range h.pt.Nodes[v].Factors {
		out = out.Mul(f.Eval(a2))
	}
	return out
}

// GlobalUpperBound returns the product of every message that never found a
// later bucket (i.e. reached the root with empty scope), plus the network's
// global constant.
func (h *MBEHeuristic) GlobalUpperBound() LogVal { return h.upperBound }

// Reset is a no-op for MBE: its tables are static once built and do not
// depend on the search-time cache state.
func (h *MBEHeuristic) Reset(v Var) {}
