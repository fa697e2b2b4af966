package engine

import "testing"

func TestBlockStoreSetGetRoundTrip(t *testing.T) {
	bs, err := NewBlockStore(10, 2)
	if err != nil {
		t.Fatalf("NewBlockStore: %v", err)
	}
	defer bs.Close()
	if err := bs.Set(3, LogVal(-1.5)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := bs.Get(3)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != LogVal(-1.5) {
		t.Errorf("Get(3) = %v, want -1.5", got)
	}
}

func TestBlockStoreUntouchedEntriesAreZero(t *testing.T) {
	bs, err := NewBlockStore(blockSize+1, 4)
	if err != nil {
		t.Fatalf("NewBlockStore: %v", err)
	}
	defer bs.Close()
	got, err := bs.Get(blockSize)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Get on an untouched entry = %v, want ElemZero", got)
	}
}

func TestBlockStoreEvictsLeastRecentlyUsed(t *testing.T) {
	bs, err := NewBlockStore(3*blockSize, 2)
	if err != nil {
		t.Fatalf("NewBlockStore: %v", err)
	}
	defer bs.Close()

	if err := bs.Set(0, LogVal(-1)); err != nil { // block 0
		t.Fatalf("Set: %v", err)
	}
	if err := bs.Set(blockSize, LogVal(-2)); err != nil { // block 1
		t.Fatalf("Set: %v", err)
	}
	if !bs.present[0] || !bs.present[1] {
		t.Fatalf("present = %v, want blocks 0 and 1 cached", bs.PresenceBitmap())
	}
	// Touch block 0 so block 1 becomes the least-recently-used.
	if _, err := bs.Get(0); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := bs.Set(2*blockSize, LogVal(-3)); err != nil { // block 2, forces an eviction
		t.Fatalf("Set: %v", err)
	}
	if bs.present[1] {
		t.Errorf("block 1 (least recently used) was not evicted")
	}
	if !bs.present[0] || !bs.present[2] {
		t.Errorf("present = %v, want blocks 0 and 2 cached after eviction", bs.PresenceBitmap())
	}
	// Values still round-trip from disk even after eviction.
	got, err := bs.Get(blockSize)
	if err != nil {
		t.Fatalf("Get after eviction: %v", err)
	}
	if got != LogVal(-2) {
		t.Errorf("Get(blockSize) after eviction = %v, want -2", got)
	}
}
