package engine

import (
	"math/rand"
	"reflect"
	"testing"
)

func buildHeuristic(t *testing.T, net *Network) (*PseudoTree, Heuristic) {
	order, _, err := EliminationOrder(net.InteractionGraph(), 1<<30, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("EliminationOrder: %v", err)
	}
	pt := BuildPseudoTree(net, order, 1<<30, false)
	h := NewMBEHeuristic(10, false)
	if err := h.Build(net, pt); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return pt, h
}

func TestLDSZeroDiscrepanciesMatchesGreedy(t *testing.T) {
	net := twoVarMaxNetwork()
	pt, h := buildHeuristic(t, net)
	lds := NewLDS(net, pt, h, 0)
	value, assignment, ok := lds.Run()
	if !ok {
		t.Fatalf("Run() found no assignment")
	}
	if value != LogVal(-2) {
		t.Errorf("value = %v, want -2", value)
	}
	if !reflect.DeepEqual(assignment, []Val{1, 0}) {
		t.Errorf("assignment = %v, want [1 0]", assignment)
	}
}

func TestLDSFindsOptimumAsBudgetGrows(t *testing.T) {
	net := twoVarMaxNetwork()
	pt, h := buildHeuristic(t, net)
	lds := NewLDS(net, pt, h, 3)
	value, _, ok := lds.Run()
	if !ok {
		t.Fatalf("Run() found no assignment")
	}
	if value != LogVal(-2) {
		t.Errorf("best value across all discrepancy budgets = %v, want -2 (the true optimum)", value)
	}
}

func TestLDSNeverExceedsBruteForceOptimum(t *testing.T) {
	net := chainNetwork()
	pt, h := buildHeuristic(t, net)
	lds := NewLDS(net, pt, h, 2)
	value, assignment, ok := lds.Run()
	if !ok {
		t.Fatalf("Run() found no assignment")
	}
	best := ElemZero
	for a := Val(0); a < 2; a++ {
		for b := Val(0); b < 2; b++ {
			v := net.FullAssignmentCost([]Val{a, b})
			if v > best {
				best = v
			}
		}
	}
	if value > best {
		t.Fatalf("LDS value %v exceeds true best %v", value, best)
	}
	if net.FullAssignmentCost(assignment) != value {
		t.Errorf("reported value %v does not match FullAssignmentCost(%v) = %v", value, assignment, net.FullAssignmentCost(assignment))
	}
}
