package engine

import "testing"

func TestNewSearchSpaceSizesProfilesToTreeHeight(t *testing.T) {
	net := chainNetwork()
	pt := BuildPseudoTree(net, []Var{0, 1}, 1<<30, false)
	s := newSearchSpace(net, pt, NewMBEHeuristic(10, false))
	if len(s.nodeProfile) != pt.Root.SubHeight+2 {
		t.Errorf("len(nodeProfile) = %d, want %d", len(s.nodeProfile), pt.Root.SubHeight+2)
	}
	if len(s.assignment) != net.NbVars {
		t.Errorf("len(assignment) = %d, want %d", len(s.assignment), net.NbVars)
	}
}

func TestBumpProfileGrowsAndCounts(t *testing.T) {
	net := chainNetwork()
	pt := BuildPseudoTree(net, []Var{0, 1}, 1<<30, false)
	s := newSearchSpace(net, pt, NewMBEHeuristic(10, false))
	deepDepth := len(s.nodeProfile) + 3
	s.bumpProfile(deepDepth, true)
	if s.nodeProfile[deepDepth] != 1 {
		t.Errorf("nodeProfile[%d] = %d, want 1", deepDepth, s.nodeProfile[deepDepth])
	}
	if s.leafProfile[deepDepth] != 1 {
		t.Errorf("leafProfile[%d] = %d, want 1", deepDepth, s.leafProfile[deepDepth])
	}
	s.bumpProfile(0, false)
	if s.nodeProfile[0] != 1 {
		t.Errorf("nodeProfile[0] = %d, want 1", s.nodeProfile[0])
	}
	if s.leafProfile[0] != 0 {
		t.Errorf("leafProfile[0] = %d, want 0 (non-leaf bump)", s.leafProfile[0])
	}
}

func TestSyncAssignmentOnlyWritesANDNodes(t *testing.T) {
	net := chainNetwork()
	pt := BuildPseudoTree(net, []Var{0, 1}, 1<<30, false)
	s := newSearchSpace(net, pt, NewMBEHeuristic(10, false))
	or := s.arena.NewORNode(0, noNode, 0)
	s.syncAssignment(s.arena.Get(or))
	if s.assignment[0] != 0 {
		t.Errorf("syncAssignment mutated assignment from an OR node: %v", s.assignment)
	}
	andIdx := s.arena.NewANDNode(0, 1, or, 1)
	s.syncAssignment(s.arena.Get(andIdx))
	if s.assignment[0] != 1 {
		t.Errorf("assignment[0] = %v after syncAssignment on an AND node, want 1", s.assignment[0])
	}
}
