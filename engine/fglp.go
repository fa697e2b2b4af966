package engine

import "math"

// FGLPVariant selects which schedule drives factor-graph linear programming
// message passing (spec §4.5).
type FGLPVariant int

const (
	// FGLPPlain updates every variable once per round, in a fixed order.
	FGLPPlain FGLPVariant = iota
	// FGLPResidual always updates the variable with the largest pending
	// residual (the change its last update would still cause).
	FGLPResidual
	// FGLPPriority is FGLPResidual but maintains the residuals in a heap
	// instead of a linear scan, for large factor graphs.
	FGLPPriority
)

// FGLPOptions configures one FGLP run (spec §4.5, §6 mplp/jglp/ndfglp
// option families all bottom out here with different budgets).
type FGLPOptions struct {
	Variant          FGLPVariant
	MaxIterations    int
	MaxTime          float64 // seconds; not read: the runs stop on MaxIterations or Tolerance only
	Tolerance        float64 // convergence threshold on max residual
	UseNullaryShift  bool
	UseShiftedLabels bool
}

// FGLPHeuristic reparameterizes a factor graph by repeated max-marginal
// matching among the factors that share a variable, until the largest
// per-value change of a round (the residual) falls below Tolerance or
// MaxIterations is used up (spec §4.5). The reparameterized factors double as messages:
// HeurAll for v is the product of every reparameterized factor containing
// v, restricted to v's context.
type FGLPHeuristic struct {
	opt FGLPOptions

	net *Network
	pt  *PseudoTree

	factors    []*Factor // reparameterized copies, grouped by scope
	byVar      [][]int   // variable -> indices into factors containing it
	nullary    LogVal    // accumulated constant shifted out of factors

	upperBound LogVal

	// parent/conditioning support for per-node conditioned reruns (spec
	// §4.5, "conditioned FGLP").
	parent     *FGLPHeuristic
	conditioned map[Var]Val
}

// NewFGLPHeuristic returns an unbuilt FGLP heuristic with the given
// options.
func NewFGLPHeuristic(opt FGLPOptions) *FGLPHeuristic {
	return &FGLPHeuristic{opt: opt}
}

// Build copies every factor, runs message passing to convergence or budget,
// and records the resulting global upper bound (spec §4.5).
func (h *FGLPHeuristic) Build(net *Network, pt *PseudoTree) error {
	h.net = net
	h.pt = pt
	h.factors = make([]*Factor, len(net.Factors))
	for i, f := range net.Factors {
		h.factors[i] = f.Clone()
	}
	h.byVar = make([][]int, net.NbVars)
	for i, f := range h.factors {
		for _, v := range f.Scope() {
			h.byVar[v] = append(h.byVar[v], i)
		}
	}
	h.run()
	h.computeUpperBound()
	return nil
}

// run executes the configured message-passing schedule.
func (h *FGLPHeuristic) run() {
	switch h.opt.Variant {
	case FGLPResidual, FGLPPriority:
		h.runResidual()
	default:
		h.runPlain()
	}
}

// runPlain updates every variable once per round in index order, spec
// §4.5's baseline schedule.
func (h *FGLPHeuristic) runPlain() {
	for it := 0; it < h.opt.MaxIterations; it++ {
		maxResidual := 0.0
		for v := 0; v < h.net.NbVars; v++ {
			r := h.updateVar(Var(v))
			if r > maxResidual {
				maxResidual = r
			}
		}
		if maxResidual < h.opt.Tolerance {
			break
		}
	}
	if h.opt.UseNullaryShift {
		h.shiftNullary()
	}
}

// runResidual always updates the variable whose last recorded residual is
// largest, using the teacher-style indexed heap (residualQueue) to avoid a
// linear scan in the priority variant, and a plain slice scan otherwise
// (spec §4.5, both mplp schedules bottom out in the same update rule).
func (h *FGLPHeuristic) runResidual() {
	residual := make([]float64, h.net.NbVars)
	for v := range residual {
		residual[v] = math.MaxFloat64 // force an initial pass over everyone
	}
	if h.opt.Variant == FGLPPriority {
		q := newResidualQueue(residual)
		iters := 0
		for !q.empty() && iters < h.opt.MaxIterations {
			v := q.removeMax()
			if residual[v] < h.opt.Tolerance {
				break
			}
			r := h.updateVar(Var(v))
			residual[v] = r
			q.insert(v)
			iters++
		}
	} else {
		for it := 0; it < h.opt.MaxIterations; it++ {
			best := -1
			bestR := h.opt.Tolerance
			for v, r := range residual {
				if r > bestR {
					bestR = r
					best = v
				}
			}
			if best < 0 {
				break
			}
			residual[best] = h.updateVar(Var(best))
		}
	}
	if h.opt.UseNullaryShift {
		h.shiftNullary()
	}
}

// updateVar performs one max-marginal matching round over the factors
// containing v: each factor is rescaled so that its max-marginal on v equals
// the log-space mean of their max-marginals. It returns the residual
// (largest per-value change observed), driving the residual schedules.
func (h *FGLPHeuristic) updateVar(v Var) float64 {
	idxs := h.byVar[v]
	if len(idxs) < 2 {
		return 0
	}
	marginals := make([][]LogVal, len(idxs))
	for i, fi := range idxs {
		marginals[i] = maxMarginalSingle(h.factors[fi], v)
	}
	d := h.net.Domains[v]
	mean := make([]LogVal, d)
	for a := 0; a < d; a++ {
		sum := LogVal(0)
		n := 0
		for i := range idxs {
			if !marginals[i][a].IsZero() {
				sum += marginals[i][a]
				n++
			}
		}
		if n > 0 {
			mean[a] = LogVal(float64(sum) / float64(n))
		} else {
			mean[a] = ElemZero
		}
	}
	residual := 0.0
	for i, fi := range idxs {
		scale := make([]LogVal, d)
		for a := 0; a < d; a++ {
			if marginals[i][a].IsZero() || mean[a].IsZero() {
				scale[a] = 0
				continue
			}
			delta := float64(mean[a] - marginals[i][a])
			if math.Abs(delta) > residual {
				residual = math.Abs(delta)
			}
			scale[a] = LogVal(delta)
		}
		rescaleByValue(h.factors[fi], v, scale)
	}
	return residual
}

// maxMarginalSingle returns, for variable v in f's scope, one entry per
// value of v equal to the max of f over all other scope variables.
func maxMarginalSingle(f *Factor, v Var) []LogVal {
	vals := make([]LogVal, 0)
	pos := -1
	for i, sv := range f.Scope() {
		if sv == v {
			pos = i
		}
	}
	if pos < 0 {
		return vals
	}
	d := f.domain[pos]
	out := make([]LogVal, d)
	for a := range out {
		out[a] = ElemZero
	}
	st := f.stride[pos]
	for base := 0; base < len(f.table); base++ {
		a := (base / st) % d
		if f.table[base] > out[a] {
			out[a] = f.table[base]
		}
	}
	return out
}

// shiftNullary removes each factor's own maximum entry into the nullary
// (constant) accumulator, tightening the bound without changing the
// argmax, and mirrors the original's "nullary shift" option (spec §4.5).
func (h *FGLPHeuristic) shiftNullary() {
	for _, f := range h.factors {
		m := ElemZero
		for _, v := range f.table {
			if v > m {
				m = v
			}
		}
		if m.IsZero() {
			continue
		}
		for i := range f.table {
			f.table[i] = LogVal(float64(f.table[i]) - float64(m))
		}
		h.nullary = h.nullary.Mul(m)
	}
}

// computeUpperBound takes the max over every factor's table (after
// reparameterization they all agree at the optimum up to the nullary
// shift) combined with the global constant.
func (h *FGLPHeuristic) computeUpperBound() {
	bound := h.net.GlobalConstant.Mul(h.nullary)
	for _, f := range h.factors {
		best := ElemZero
		for _, v := range f.table {
			if v > best {
				best = v
			}
		}
		bound = bound.Mul(best)
	}
	h.upperBound = bound
}

// HeurAll returns, for each value of v, the product of every reparameterized
// factor containing v restricted to assignment (spec §4.5).
func (h *FGLPHeuristic) HeurAll(v Var, assignment []Val) []LogVal {
	d := h.net.Domains[v]
	out := make([]LogVal, d)
	for a := range out {
		out[a] = ElemOne
	}
	for _, fi := range h.byVar[v] {
		f := h.factors[fi]
		vals := f.EvalAll(v, assignment)
		for a := range out {
			out[a] = out[a].Mul(vals[a])
		}
	}
	return out
}

// HeurOne is the single-value specialization of HeurAll.
func (h *FGLPHeuristic) HeurOne(v Var, val Val, assignment []Val) LogVal {
	a2 := append([]Val{}, assignment...)
	a2[v] = val
	out := ElemOne
	for _, fi := range h.byVar[v] {
		out = out.Mul(h.factors[fi].Eval(a2))
	}
	return out
}

// LabelOne returns the original (non-reparameterized) pseudo-tree label for
// v, unless UseShiftedLabels requests the reparameterized version instead
// (spec §4.5, §6 useShiftedLabels).
func (h *FGLPHeuristic) LabelOne(v Var, val Val, assignment []Val) LogVal {
	a2 := append([]Val{}, assignment...)
	a2[v] = val
	out := ElemOne
	if h.opt.UseShiftedLabels {
		for _, fi := range h.byVar[v] {
			if containsOnly(h.factors[fi].Scope(), h.pt.Nodes[v].FullContext, v) {
				out = out.Mul(h.factors[fi].Eval(a2))
			}
		}
		return out
	}
	for _, f := range h.pt.Nodes[v].Factors {
		out = out.Mul(f.Eval(a2))
	}
	return out
}

func containsOnly(scope []Var, ctx []Var, v Var) bool {
	ctxSet := map[Var]bool{v: true}
	for _, c := range ctx {
		ctxSet[c] = true
	}
	for _, sv := range scope {
		if !ctxSet[sv] {
			return false
		}
	}
	return true
}

// GlobalUpperBound returns the bound computed at Build time.
func (h *FGLPHeuristic) GlobalUpperBound() LogVal { return h.upperBound }

// Reset is a no-op at the top-level FGLP heuristic; per-node conditioned
// reruns are a separate *FGLPHeuristic built by Condition, not a mutation
// of this one (spec §4.5, "conditioned FGLP").
func (h *FGLPHeuristic) Reset(v Var) {}

// Reparameterized exposes the reparameterized factor set for use as a warm
// start by a mini-bucket heuristic built on top (spec §4.5).
func (h *FGLPHeuristic) Reparameterized() *Network {
	return &Network{
		NbVars:     h.net.NbVars,
		Domains:    h.net.Domains,
		Factors:    h.factors,
		GlobalConstant: h.net.GlobalConstant.Mul(h.nullary),
		NbVarsOrig: h.net.NbVarsOrig,
		Evidence:   h.net.Evidence,
		Old2New:    h.net.Old2New,
		New2Old:    h.net.New2Old,
		DummyVar:   h.net.DummyVar,
		HasDummy:   h.net.HasDummy,
	}
}

// Condition builds a fresh FGLP run over all of h's factors, with every
// factor touching the assignment's variables substituted down and factors
// left with an empty scope dropped; subVars and conditionVar are not read,
// so the factor set is not narrowed to conditionVar's subproblem. It reuses
// the parent's options (spec §4.5, "conditioned
// FGLP", grounded on PriorityFGLP's assignment-conditioned constructor).
func (h *FGLPHeuristic) Condition(assignment map[Var]Val, subVars map[Var]bool, conditionVar Var) (*FGLPHeuristic, error) {
	var kept []*Factor
	for _, f := range h.factors {
		relevant := map[Var]Val{}
		for _, sv := range f.Scope() {
			if val, ok := assignment[sv]; ok {
				relevant[sv] = val
			}
		}
		if len(relevant) == 0 {
			kept = append(kept, f.Clone())
			continue
		}
		nf := f.Substitute(relevant)
		if len(nf.Scope()) == 0 {
			continue
		}
		kept = append(kept, nf)
	}
	sub := &FGLPHeuristic{opt: h.opt, net: h.net, pt: h.pt, parent: h, conditioned: assignment}
	sub.factors = kept
	sub.byVar = make([][]int, h.net.NbVars)
	for i, f := range sub.factors {
		for _, v := range f.Scope() {
			sub.byVar[v] = append(sub.byVar[v], i)
		}
	}
	sub.run()
	sub.computeUpperBound()
	return sub, nil
}
