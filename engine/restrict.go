package engine

import (
	"encoding/binary"
	"io"
)

// PSTEntry is one (OR upper bound, AND label) pair along the ancestor
// chain above a restricted subproblem's root (spec §6, subproblem
// restriction file).
type PSTEntry struct {
	ORValue  LogVal
	ANDLabel LogVal
}

// SubproblemRestriction describes a subproblem to restrict search to: its
// root variable, the assignment fixing that root's full OR-context, and
// the ancestral partial-solution-tree values needed to reconstruct a sound
// bound above the new root (spec §6).
type SubproblemRestriction struct {
	RootVar Var
	Context map[Var]Val
	PST     []PSTEntry // top-down order after parsing, regardless of on-disk direction
}

// ParseSubproblemRestriction reads the binary subproblem restriction
// format (spec §6): root variable (int32); context length (int32) then
// that many (var, val) int32 pairs; a signed PST length (int32) — negative
// means the entries that follow are stored bottom-up and are reversed
// after reading — then that many (OR upper bound, AND label) float64
// pairs.
func ParseSubproblemRestriction(r io.Reader) (*SubproblemRestriction, error) {
	var rootVar int32
	if err := binary.Read(r, binary.LittleEndian, &rootVar); err != nil {
		return nil, wrapf(err, "cannot read subproblem root variable")
	}
	var ctxLen int32
	if err := binary.Read(r, binary.LittleEndian, &ctxLen); err != nil {
		return nil, wrapf(err, "cannot read subproblem context length")
	}
	if ctxLen < 0 {
		return nil, errorf("negative subproblem context length %d", ctxLen)
	}
	ctx := make(map[Var]Val, ctxLen)
	for i := int32(0); i < ctxLen; i++ {
		var v, val int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, wrapf(err, "cannot read context variable %d", i)
		}
		if err := binary.Read(r, binary.LittleEndian, &val); err != nil {
			return nil, wrapf(err, "cannot read context value %d", i)
		}
		ctx[Var(v)] = Val(val)
	}
	var signedLen int32
	if err := binary.Read(r, binary.LittleEndian, &signedLen); err != nil {
		return nil, wrapf(err, "cannot read PST length")
	}
	bottomUp := signedLen < 0
	n := signedLen
	if bottomUp {
		n = -n
	}
	pst := make([]PSTEntry, n)
	for i := int32(0); i < n; i++ {
		var orVal, label float64
		if err := binary.Read(r, binary.LittleEndian, &orVal); err != nil {
			return nil, wrapf(err, "cannot read PST OR value %d", i)
		}
		if err := binary.Read(r, binary.LittleEndian, &label); err != nil {
			return nil, wrapf(err, "cannot read PST AND label %d", i)
		}
		pst[i] = PSTEntry{ORValue: LogVal(orVal), ANDLabel: LogVal(label)}
	}
	if bottomUp {
		for i, j := 0, len(pst)-1; i < j; i, j = i+1, j-1 {
			pst[i], pst[j] = pst[j], pst[i]
		}
	}
	return &SubproblemRestriction{RootVar: Var(rootVar), Context: ctx, PST: pst}, nil
}

// WriteSubproblemRestriction writes s in the same top-down-signed format
// ParseSubproblemRestriction reads (always written top-down, i.e. with a
// nonnegative PST length).
func WriteSubproblemRestriction(w io.Writer, s *SubproblemRestriction) error {
	if err := binary.Write(w, binary.LittleEndian, int32(s.RootVar)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(s.Context))); err != nil {
		return err
	}
	for v, val := range s.Context {
		if err := binary.Write(w, binary.LittleEndian, int32(v)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(val)); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(s.PST))); err != nil {
		return err
	}
	for _, e := range s.PST {
		if err := binary.Write(w, binary.LittleEndian, float64(e.ORValue)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, float64(e.ANDLabel)); err != nil {
			return err
		}
	}
	return nil
}

// RestrictSubproblem re-roots pt at restr.RootVar, fixes its context into
// assignment, and returns the accumulated ancestor bound (the product of
// every PST entry's OR value and AND label) that a sound search below the
// new root must combine its own value with (spec §6, "restricts search to
// a subproblem").
func RestrictSubproblem(pt *PseudoTree, restr *SubproblemRestriction) (*PseudoTreeNode, []Val, LogVal, error) {
	if int(restr.RootVar) < 0 || int(restr.RootVar) >= len(pt.Nodes) {
		return nil, nil, 0, errorf("subproblem root variable %d not found in pseudo-tree", restr.RootVar)
	}
	node := pt.NodeOf(restr.RootVar)
	if node == nil {
		return nil, nil, 0, errorf("subproblem root variable %d not found in pseudo-tree", restr.RootVar)
	}
	assignment := make([]Val, len(pt.Nodes))
	for v, val := range restr.Context {
		if int(v) < 0 || int(v) >= len(assignment) {
			return nil, nil, 0, errorf("subproblem context variable %d out of range", v)
		}
		assignment[v] = val
	}
	ancestorBound := ElemOne
	for _, e := range restr.PST {
		ancestorBound = ancestorBound.Mul(e.ORValue).Mul(e.ANDLabel)
	}
	return node, assignment, ancestorBound, nil
}
