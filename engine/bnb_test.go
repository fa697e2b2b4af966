package engine

import (
	"math/rand"
	"reflect"
	"testing"
)

func solveBnB(t *testing.T, net *Network) (LogVal, []Val) {
	order, _, err := EliminationOrder(net.InteractionGraph(), 1<<30, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("EliminationOrder: %v", err)
	}
	pt := BuildPseudoTree(net, order, 1<<30, false)
	h := NewMBEHeuristic(10, false)
	if err := h.Build(net, pt); err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := NewBnBSearch(net, pt, h, BnBOptions{})
	status := s.Run()
	if status != Optimal {
		t.Fatalf("Run() status = %v, want Optimal", status)
	}
	value, assignment, ok := s.Incumbent()
	if !ok {
		t.Fatalf("Incumbent() reported no incumbent after an Optimal run")
	}
	return value, assignment
}

func TestBnBSearchFindsOptimum(t *testing.T) {
	net := twoVarMaxNetwork() // unique optimum at (v0=1, v1=0), value -2
	value, assignment := solveBnB(t, net)
	if value != LogVal(-2) {
		t.Fatalf("incumbent value = %v, want -2", value)
	}
	if !reflect.DeepEqual(assignment, []Val{1, 0}) {
		t.Fatalf("incumbent assignment = %v, want [1 0]", assignment)
	}
}

func TestBnBSearchMatchesBruteForce(t *testing.T) {
	// A slightly larger network: a 3-variable chain with distinct weights,
	// checked against a brute-force scan over every assignment.
	f01 := NewFactor(0, []Var{0, 1}, []int{2, 2}, []LogVal{-1, -4, -2, -3})
	f12 := NewFactor(1, []Var{1, 2}, []int{2, 2}, []LogVal{-1, -2, -5, -1})
	net := NewNetwork([]int{2, 2, 2}, []*Factor{f01, f12})

	value, _ := solveBnB(t, net)

	best := ElemZero
	for a := Val(0); a < 2; a++ {
		for b := Val(0); b < 2; b++ {
			for c := Val(0); c < 2; c++ {
				v := net.FullAssignmentCost([]Val{a, b, c})
				if v > best {
					best = v
				}
			}
		}
	}
	if value != best {
		t.Fatalf("BnB incumbent = %v, brute-force optimum = %v", value, best)
	}
}

func TestBnBSearchDeadEndIsInfeasible(t *testing.T) {
	f := NewFactor(0, []Var{0}, []int{2}, []LogVal{ElemZero, ElemZero})
	net := NewNetwork([]int{2}, []*Factor{f})
	pt := BuildPseudoTree(net, []Var{0}, 1<<30, false)
	h := NewMBEHeuristic(10, false)
	if err := h.Build(net, pt); err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := NewBnBSearch(net, pt, h, BnBOptions{})
	status := s.Run()
	if status != Infeasible {
		t.Fatalf("Run() status = %v, want Infeasible for an all-zero factor", status)
	}
	if _, _, ok := s.Incumbent(); ok {
		t.Fatalf("Incumbent() reported a solution for an infeasible problem")
	}
}

func TestBnBSearchOnSolutionCallback(t *testing.T) {
	net := twoVarMaxNetwork()
	order, _, err := EliminationOrder(net.InteractionGraph(), 1<<30, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("EliminationOrder: %v", err)
	}
	pt := BuildPseudoTree(net, order, 1<<30, false)
	h := NewMBEHeuristic(10, false)
	if err := h.Build(net, pt); err != nil {
		t.Fatalf("Build: %v", err)
	}
	var calls int
	s := NewBnBSearch(net, pt, h, BnBOptions{OnSolution: func(LogVal, []Val) { calls++ }})
	s.Run()
	if calls == 0 {
		t.Fatalf("OnSolution was never called despite finding an incumbent")
	}
}
