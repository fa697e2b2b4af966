package engine

import (
	"sync"
	"time"
)

// Session threads the state that the original implementation kept as
// process-global mutable variables — the incumbent value, the wall-clock
// base, and the mutex guarding concurrent incumbent reports — as fields of
// one value passed through the driver, instead of package-level globals
// (spec "Design Notes"). A Session is safe for concurrent incumbent
// reporting (master/worker mode, §5) but otherwise single-owner.
type Session struct {
	Config Config

	mu             sync.Mutex
	start          time.Time
	incumbentValue LogVal
	incumbentAssig []Val
	haveIncumbent  bool

	net *Network
	pt  *PseudoTree
	h   Heuristic

	restrictedRoot    *PseudoTreeNode
	restrictedInitial []Val
	ancestorBound     LogVal
}

// NewSession starts a session's clock and stores the configuration used for
// the rest of the solve.
func NewSession(cfg Config) *Session {
	return &Session{Config: cfg, start: time.Now(), incumbentValue: ElemZero}
}

// Elapsed returns the wall-clock time since the session started, read off
// a monotonic clock rather than a shared mutable base.
func (s *Session) Elapsed() time.Duration { return time.Since(s.start) }

// Deadline returns the absolute deadline implied by Config.MaxTime, or the
// zero time if there is no deadline.
func (s *Session) Deadline() time.Time {
	if s.Config.MaxTime <= 0 {
		return time.Time{}
	}
	return s.start.Add(s.Config.MaxTime)
}

// Prepare runs ordering, pseudo-tree construction and heuristic build for
// net, storing the results on the session for Solve to use.
func (s *Session) Prepare(net *Network) error {
	g := net.InteractionGraph()
	order, _, err := EliminationOrder(g, s.Config.WidthLimit, s.Config.OrderTolerance, nil)
	if err != nil {
		return err
	}
	pt := BuildPseudoTree(net, order, s.Config.EffectiveCacheBound(), s.Config.OrChain)

	var h Heuristic
	if s.Config.FGLPHeur {
		fglp := NewFGLPHeuristic(s.Config.FGLPRoot)
		if err := fglp.Build(net, pt); err != nil {
			return err
		}
		if s.Config.FGLPMBEHeur {
			mbe := NewMBEHeuristic(s.Config.IBound, s.Config.Match)
			if err := mbe.Build(fglp.Reparameterized(), pt); err != nil {
				return err
			}
			h = mbe
		} else {
			h = fglp
		}
	} else {
		mbe := NewMBEHeuristic(s.Config.IBound, s.Config.Match)
		if err := mbe.Build(net, pt); err != nil {
			return err
		}
		h = mbe
	}

	s.net = net
	s.pt = pt
	s.h = h
	return nil
}

// RestrictTo narrows the session's subsequent Solve to the subproblem restr
// describes (spec §6): re-roots the search at restr.RootVar, fixes its
// ancestor context into the initial assignment, and remembers the ancestor
// bound so reported incumbent values reflect the whole original problem.
// Must be called after Prepare.
func (s *Session) RestrictTo(restr *SubproblemRestriction) error {
	node, assignment, bound, err := RestrictSubproblem(s.pt, restr)
	if err != nil {
		return err
	}
	s.restrictedRoot = node
	s.restrictedInitial = assignment
	s.ancestorBound = bound
	return nil
}

// ReportIncumbent records value/assignment as the new incumbent if it
// improves on the current one, guarded by the session mutex so it is safe
// to call from multiple propagator goroutines in master/worker mode (spec
// §5, §4.8).
func (s *Session) ReportIncumbent(value LogVal, assignment []Val) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.haveIncumbent && value <= s.incumbentValue {
		return false
	}
	s.haveIncumbent = true
	s.incumbentValue = value
	s.incumbentAssig = append([]Val{}, assignment...)
	return true
}

// Incumbent returns the best value/assignment reported so far.
func (s *Session) Incumbent() (LogVal, []Val, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incumbentValue, s.incumbentAssig, s.haveIncumbent
}

// Solve runs BnB (or AO*, per Config) and returns the final solution in
// original variable ids. BnB stops at the MaxTime deadline; AO* does not
// check it and runs to completion.
func (s *Session) Solve() (Solution, error) {
	if s.LDSDepth() > 0 {
		lds := NewLDS(s.net, s.pt, s.h, s.Config.LDSDepth)
		if v, assig, ok := lds.Run(); ok {
			s.ReportIncumbent(v, assig)
		}
	}

	onSolution := func(value LogVal, assignment []Val) {
		s.ReportIncumbent(value, assignment)
	}

	var search SearchStrategy
	if s.Config.AOStar {
		search = AsSearchStrategy(NewAOStarSearch(s.net, s.pt, s.h, onSolution))
	} else {
		search = NewBnBSearch(s.net, s.pt, s.h, BnBOptions{
			RotateLimit:       s.rotateLimitOrZero(),
			Deadline:          s.Deadline(),
			OnSolution:        onSolution,
			Root:              s.restrictedRoot,
			InitialAssignment: s.restrictedInitial,
			AncestorBound:     s.ancestorBound,
		})
	}
	status := search.Run()

	value, dense, ok := s.Incumbent()
	sol := Solution{Status: status}
	if ok {
		sol.Value = value
		sol.Assignment = s.net.OriginalAssignment(dense)
	}
	return sol, nil
}

func (s *Session) rotateLimitOrZero() int {
	if s.Config.Rotate {
		return s.Config.RotateLimit
	}
	return 0
}

// LDSDepth returns the configured limited-discrepancy search depth, 0 if
// disabled.
func (s *Session) LDSDepth() int { return s.Config.LDSDepth }
