package engine

import (
	"math/rand"
	"reflect"
	"testing"
)

func solveAOStar(t *testing.T, net *Network) (LogVal, []Val, Status) {
	order, _, err := EliminationOrder(net.InteractionGraph(), 1<<30, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("EliminationOrder: %v", err)
	}
	pt := BuildPseudoTree(net, order, 1<<30, false)
	h := NewMBEHeuristic(10, false)
	if err := h.Build(net, pt); err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := NewAOStarSearch(net, pt, h, nil)
	status := s.Run()
	value, assignment, _ := s.Incumbent()
	return value, assignment, status
}

func TestAOStarFindsOptimum(t *testing.T) {
	net := twoVarMaxNetwork()
	value, assignment, status := solveAOStar(t, net)
	if status != Optimal {
		t.Fatalf("Run() status = %v, want Optimal", status)
	}
	if value != LogVal(-2) {
		t.Fatalf("incumbent value = %v, want -2", value)
	}
	if !reflect.DeepEqual(assignment, []Val{1, 0}) {
		t.Fatalf("incumbent assignment = %v, want [1 0]", assignment)
	}
}

func TestAOStarInfeasible(t *testing.T) {
	f := NewFactor(0, []Var{0}, []int{2}, []LogVal{ElemZero, ElemZero})
	net := NewNetwork([]int{2}, []*Factor{f})
	pt := BuildPseudoTree(net, []Var{0}, 1<<30, false)
	h := NewMBEHeuristic(10, false)
	if err := h.Build(net, pt); err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := NewAOStarSearch(net, pt, h, nil)
	status := s.Run()
	if status != Infeasible {
		t.Fatalf("Run() status = %v, want Infeasible", status)
	}
	if _, _, ok := s.Incumbent(); ok {
		t.Fatalf("Incumbent() reported a solution for an infeasible problem")
	}
}

func TestAsSearchStrategyDispatch(t *testing.T) {
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
	var strategy SearchStrategy = AsSearchStrategy(NewAOStarSearch(net, pt, h, nil))
	if strategy.Run() != Optimal {
		t.Fatalf("dispatched Run() did not return Optimal")
	}
	value, _, ok := strategy.Incumbent()
	if !ok || value != LogVal(-2) {
		t.Fatalf("dispatched Incumbent() = (%v, ok=%v), want (-2, true)", value, ok)
	}
}
