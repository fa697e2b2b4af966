package engine

// A Heuristic supplies an admissible (upper) bound on the best completion
// of a partial assignment, used to prune the AND/OR search space (spec
// §4.4). Both the mini-bucket and FGLP heuristics implement it, and either
// can be used standalone or as a building block of the other.
type Heuristic interface {
	// Build computes the heuristic's static structures for net along
	// pseudo-tree pt, subject to an internal size/time budget, and returns
	// an error if they cannot be built.
	Build(net *Network, pt *PseudoTree) error

	// HeurOne returns the heuristic value of assigning variable v to a
	// single value, given the current partial assignment (which must
	// already fix v's full OR-context).
	HeurOne(v Var, val Val, assignment []Val) LogVal

	// HeurAll returns the heuristic value for every value of v at once,
	// in domain order; equivalent to calling HeurOne for each value but
	// lets MBE reuse the per-bucket table lookup.
	HeurAll(v Var, assignment []Val) []LogVal

	// LabelOne returns the edge label (the product of original factors
	// assigned to v's pseudo-tree node, not already captured by ancestor
	// labels) for assigning v to val.
	LabelOne(v Var, val Val, assignment []Val) LogVal

	// GlobalUpperBound returns the heuristic value at the root, i.e. a
	// bound on the value of the best full assignment, before any variable
	// is assigned.
	GlobalUpperBound() LogVal

	// Reset releases or rebuilds any structures invalidated by a cache
	// reset at v (spec §4.4, §4.5). The search drivers in this package do
	// not call it.
	Reset(v Var)
}

// reparameterizer is the narrower capability some heuristics (FGLP) expose
// beyond Heuristic: they can also hand back a reparameterized network whose
// factors already include the message updates, for use as a warm start by
// a mini-bucket heuristic built on top (spec §4.5, "FGLP as MBE input").
type reparameterizer interface {
	Reparameterized() *Network
}
