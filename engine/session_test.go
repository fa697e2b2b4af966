package engine

import (
	"reflect"
	"testing"
)

func TestSessionSolveBnBFindsOptimum(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSession(cfg)
	if err := s.Prepare(twoVarMaxNetwork()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	sol, err := s.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Optimal {
		t.Fatalf("Status = %v, want Optimal", sol.Status)
	}
	if sol.Value != LogVal(-2) {
		t.Errorf("Value = %v, want -2", sol.Value)
	}
	if !reflect.DeepEqual(sol.Assignment, []Val{1, 0}) {
		t.Errorf("Assignment = %v, want [1 0]", sol.Assignment)
	}
}

func TestSessionSolveAOStarFindsOptimum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AOStar = true
	s := NewSession(cfg)
	if err := s.Prepare(twoVarMaxNetwork()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	sol, err := s.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Optimal {
		t.Fatalf("Status = %v, want Optimal", sol.Status)
	}
	if sol.Value != LogVal(-2) {
		t.Errorf("Value = %v, want -2", sol.Value)
	}
}

func TestSessionSolveInfeasible(t *testing.T) {
	f := NewFactor(0, []Var{0}, []int{2}, []LogVal{ElemZero, ElemZero})
	net := NewNetwork([]int{2}, []*Factor{f})
	s := NewSession(DefaultConfig())
	if err := s.Prepare(net); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	sol, err := s.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Infeasible {
		t.Fatalf("Status = %v, want Infeasible", sol.Status)
	}
	if sol.Assignment != nil {
		t.Errorf("Assignment = %v, want nil for an infeasible problem", sol.Assignment)
	}
}

func TestSessionReportIncumbentOnlyImproves(t *testing.T) {
	s := NewSession(DefaultConfig())
	if !s.ReportIncumbent(LogVal(-5), []Val{0, 1}) {
		t.Fatalf("first ReportIncumbent should always succeed")
	}
	if s.ReportIncumbent(LogVal(-10), []Val{1, 0}) {
		t.Errorf("ReportIncumbent accepted a worse value")
	}
	value, assignment, ok := s.Incumbent()
	if !ok || value != LogVal(-5) || !reflect.DeepEqual(assignment, []Val{0, 1}) {
		t.Errorf("Incumbent() = (%v, %v, %v), want (-5, [0 1], true)", value, assignment, ok)
	}
	if !s.ReportIncumbent(LogVal(-1), []Val{1, 1}) {
		t.Errorf("ReportIncumbent rejected a strictly better value")
	}
}

func TestSessionElapsedAndDeadline(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSession(cfg)
	if !s.Deadline().IsZero() {
		t.Errorf("Deadline() = %v, want zero value when MaxTime is unset", s.Deadline())
	}
	if s.Elapsed() < 0 {
		t.Errorf("Elapsed() = %v, want non-negative", s.Elapsed())
	}
}
