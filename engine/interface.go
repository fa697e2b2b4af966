package engine

// Solution is the outcome of a search run: a status, the best assignment
// found so far (in original, pre-evidence variable ids), and its value.
type Solution struct {
	Status     Status
	Value      LogVal
	Assignment []Val // original variable ids; nil if no incumbent was ever found
}

// SearchStrategy is the capability set every search driver exposes (spec
// "Design Notes": "the search strategy exposes {init, next_node, process,
// cache, prune, expand, is_done, reset}"). BnBSearch and AOStarSearch are
// tagged alternatives sharing this surface; callers that only need to run
// a strategy to completion and read back the incumbent can depend on this
// interface instead of a concrete type.
type SearchStrategy interface {
	// Run drives the strategy to completion or to its configured deadline
	// and returns the final status.
	Run() Status
	// IsDone reports whether the root has been marked solved.
	IsDone() bool
	// Incumbent returns the best value/assignment found so far, and
	// whether one has been found at all.
	Incumbent() (LogVal, []Val, bool)
}

var (
	_ SearchStrategy = (*BnBSearch)(nil)
	_ SearchStrategy = (*aoStarAdapter)(nil)
)

// aoStarAdapter narrows AOStarSearch to SearchStrategy.
type aoStarAdapter struct{ *AOStarSearch }

// AsSearchStrategy adapts an AOStarSearch to the shared SearchStrategy
// interface.
func AsSearchStrategy(s *AOStarSearch) SearchStrategy { return &aoStarAdapter{s} }
