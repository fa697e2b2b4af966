package engine

import "testing"

func TestArenaAllocGetRoundTrip(t *testing.T) {
	a := newNodeArena()
	idx := a.Alloc()
	n := a.Get(idx)
	n.v = 42
	if a.Get(idx).v != 42 {
		t.Errorf("Get after a write did not observe it")
	}
}

func TestArenaFreeReuse(t *testing.T) {
	a := newNodeArena()
	idx := a.Alloc()
	a.Get(idx).v = 7
	a.Free(idx)
	idx2 := a.Alloc()
	if idx2 != idx {
		t.Fatalf("Alloc after Free did not reuse the freed slot: got %d, want %d", idx2, idx)
	}
	if a.Get(idx2).v != 0 {
		t.Errorf("reused slot was not zeroed: v = %d", a.Get(idx2).v)
	}
}

func TestArenaLive(t *testing.T) {
	a := newNodeArena()
	a.Alloc()
	idx := a.Alloc()
	a.Alloc()
	if a.Live() != 3 {
		t.Fatalf("Live() = %d, want 3", a.Live())
	}
	a.Free(idx)
	if a.Live() != 2 {
		t.Fatalf("Live() after Free = %d, want 2", a.Live())
	}
}

// TestArenaPointerStableAcrossGrowth exercises the property that motivated
// storing *SearchNode in the backing slice: a pointer obtained from Get must
// stay valid even after many more Alloc calls force the slice to grow.
func TestArenaPointerStableAcrossGrowth(t *testing.T) {
	a := newNodeArena()
	first := a.Alloc()
	held := a.Get(first)
	held.v = 99

	for i := 0; i < nodeArenaPrealloc*4; i++ {
		a.Alloc()
	}

	if held.v != 99 {
		t.Errorf("pointer held across growth lost its value: got %d, want 99", held.v)
	}
	if a.Get(first).v != 99 {
		t.Errorf("Get(first) after growth = %d, want 99", a.Get(first).v)
	}
	if a.Get(first) != held {
		t.Errorf("Get(first) returned a different pointer than the one held across growth")
	}
}
