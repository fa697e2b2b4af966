package engine

import "testing"

func TestNewORNodeDefaults(t *testing.T) {
	a := newNodeArena()
	idx := a.NewORNode(3, noNode, 0)
	n := a.Get(idx)
	if n.kind != KindOR {
		t.Errorf("kind = %v, want KindOR", n.kind)
	}
	if n.v != 3 {
		t.Errorf("v = %v, want 3", n.v)
	}
	if n.parent != noNode {
		t.Errorf("parent = %v, want noNode", n.parent)
	}
	if !n.value.IsZero() {
		t.Errorf("value = %v, want ElemZero", n.value)
	}
}

func TestNewANDNodeDefaults(t *testing.T) {
	a := newNodeArena()
	or := a.NewORNode(0, noNode, 0)
	idx := a.NewANDNode(0, 1, or, 1)
	n := a.Get(idx)
	if n.kind != KindAND {
		t.Errorf("kind = %v, want KindAND", n.kind)
	}
	if n.val != 1 {
		t.Errorf("val = %v, want 1", n.val)
	}
	if n.parent != or {
		t.Errorf("parent = %v, want %v", n.parent, or)
	}
	if n.label != ElemOne {
		t.Errorf("label = %v, want ElemOne", n.label)
	}
	if n.subSolvedAcc != ElemOne {
		t.Errorf("subSolvedAcc = %v, want ElemOne", n.subSolvedAcc)
	}
}
