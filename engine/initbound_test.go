package engine

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestInitialBoundRoundTripWithAssignment(t *testing.T) {
	ib := &InitialBound{Value: -7, NodeCount: 1000, Assignment: []Val{0, 1, 1}}
	var buf bytes.Buffer
	if err := SaveInitialBound(&buf, ib); err != nil {
		t.Fatalf("SaveInitialBound: %v", err)
	}
	got, err := LoadInitialBound(&buf)
	if err != nil {
		t.Fatalf("LoadInitialBound: %v", err)
	}
	if got.Value != ib.Value {
		t.Errorf("Value = %v, want %v", got.Value, ib.Value)
	}
	if got.NodeCount != ib.NodeCount {
		t.Errorf("NodeCount = %v, want %v", got.NodeCount, ib.NodeCount)
	}
	if len(got.Assignment) != len(ib.Assignment) {
		t.Fatalf("Assignment length = %d, want %d", len(got.Assignment), len(ib.Assignment))
	}
	for i := range ib.Assignment {
		if got.Assignment[i] != ib.Assignment[i] {
			t.Errorf("Assignment[%d] = %v, want %v", i, got.Assignment[i], ib.Assignment[i])
		}
	}
}

func TestInitialBoundRoundTripValueOnly(t *testing.T) {
	ib := &InitialBound{Value: -3, NodeCount: -1, Assignment: nil}
	var buf bytes.Buffer
	if err := SaveInitialBound(&buf, ib); err != nil {
		t.Fatalf("SaveInitialBound: %v", err)
	}
	got, err := LoadInitialBound(&buf)
	if err != nil {
		t.Fatalf("LoadInitialBound: %v", err)
	}
	if got.Value != ib.Value {
		t.Errorf("Value = %v, want %v", got.Value, ib.Value)
	}
	if got.Assignment != nil {
		t.Errorf("Assignment = %v, want nil", got.Assignment)
	}
}

func TestLoadInitialBoundValueOnlyStream(t *testing.T) {
	// A stream holding only the value field (legitimate EOF right after),
	// as LoadInitialBound's doc says the node count may be entirely absent.
	ib := &InitialBound{Value: -9}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, float64(ib.Value)); err != nil {
		t.Fatalf("binary.Write: %v", err)
	}
	got, err := LoadInitialBound(&buf)
	if err != nil {
		t.Fatalf("LoadInitialBound: %v", err)
	}
	if got.Value != ib.Value {
		t.Errorf("Value = %v, want %v", got.Value, ib.Value)
	}
	if got.NodeCount != -1 {
		t.Errorf("NodeCount = %v, want -1 when absent from the stream", got.NodeCount)
	}
}
