package engine

import (
	"encoding/binary"
	"io"
)

// InitialBound is the content of an initial-bound file (spec §6): a single
// double, optionally followed by node counts and a full original-space
// assignment, for seeding a search run with a known-good incumbent (e.g.
// one found by a previous, interrupted run).
type InitialBound struct {
	Value      LogVal
	NodeCount  int64 // -1 if not present
	Assignment []Val // nil if not present
}

// LoadInitialBound reads the binary initial-bound format (spec §6): a
// float64 value; then an int64 node count, -1 meaning "not present and no
// assignment follows"; then, if the node count was present and
// nonnegative, an int32 assignment length followed by that many int32
// values in original variable order. The stream may also end right after
// the value, in which case NodeCount is -1 and Assignment is nil.
func LoadInitialBound(r io.Reader) (*InitialBound, error) {
	var value float64
	if err := binary.Read(r, binary.LittleEndian, &value); err != nil {
		return nil, wrapf(err, "cannot read initial bound value")
	}
	ib := &InitialBound{Value: LogVal(value), NodeCount: -1}

	var nodeCount int64
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		if err == io.EOF {
			return ib, nil
		}
		return nil, wrapf(err, "cannot read initial bound node count")
	}
	ib.NodeCount = nodeCount
	if nodeCount < 0 {
		return ib, nil
	}

	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, wrapf(err, "cannot read initial bound assignment length")
	}
	assignment := make([]Val, n)
	for i := range assignment {
		var v int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, wrapf(err, "cannot read initial bound assignment entry %d", i)
		}
		assignment[i] = Val(v)
	}
	ib.Assignment = assignment
	return ib, nil
}

// SaveInitialBound writes ib in the format LoadInitialBound reads, always
// including the node count and assignment fields (writing -1 and no
// assignment bytes when ib.Assignment is nil).
func SaveInitialBound(w io.Writer, ib *InitialBound) error {
	if err := binary.Write(w, binary.LittleEndian, float64(ib.Value)); err != nil {
		return err
	}
	nodeCount := ib.NodeCount
	if ib.Assignment == nil {
		nodeCount = -1
	}
	if err := binary.Write(w, binary.LittleEndian, nodeCount); err != nil {
		return err
	}
	if nodeCount < 0 {
		return nil
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(ib.Assignment))); err != nil {
		return err
	}
	for _, v := range ib.Assignment {
		if err := binary.Write(w, binary.LittleEndian, int32(v)); err != nil {
			return err
		}
	}
	return nil
}
