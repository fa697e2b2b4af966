package engine

import "sort"

// valueSorter orders an OR node's candidate values by ascending heuristic.
// Combined with pushing the sorted slice onto the search stack back to
// front, the most promising value ends up at the bottom of the stack and
// is popped last: a direct generalization of the teacher's clauseSorter,
// which ordered literals by decision level for an analogous "stack order
// matters" reason.
type valueSorter struct {
	vals []Val
	heur []LogVal // heur[i] is the heuristic value of vals[i]
}

func (vs *valueSorter) Len() int { return len(vs.vals) }
func (vs *valueSorter) Less(i, j int) bool {
	return vs.heur[i] < vs.heur[j]
}
func (vs *valueSorter) Swap(i, j int) {
	vs.vals[i], vs.vals[j] = vs.vals[j], vs.vals[i]
	vs.heur[i], vs.heur[j] = vs.heur[j], vs.heur[i]
}

// sortValuesByHeuristic reorders vals (and the parallel heur slice)
// ascending by heuristic value.
func sortValuesByHeuristic(vals []Val, heur []LogVal) {
	vs := &valueSorter{vals, heur}
	sort.Sort(vs)
}
