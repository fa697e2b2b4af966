package engine

import (
	"container/list"
	"io"
	"math"
	"os"
)

// blockSize is the number of LogVal entries per on-disk block.
const blockSize = 4096

// BlockStore backs a single factor's table with disk-resident blocks, for
// external-memory bucket elimination on factors too large to hold in
// memory (spec §5, "Factor tables may optionally be backed by disk-
// resident blocks... with block-level presence bitmaps and a max-in-
// memory-blocks cap"). It is standalone: Factor keeps its table as an
// in-memory []LogVal, and no code in this package stores a Factor in a
// BlockStore.
type BlockStore struct {
	file    *os.File
	size    int // total number of entries
	nBlocks int

	present []bool // presence bitmap, one bit (as a bool) per block
	cache   map[int][]LogVal
	lru     *list.List // most-recently-used block indices, front = most recent
	lruElem map[int]*list.Element

	maxInMemory int
}

// NewBlockStore creates an external-memory table of size entries backed by
// a temporary file, with at most maxInMemory blocks held in memory at
// once. Every entry starts as ElemZero.
func NewBlockStore(size int, maxInMemory int) (*BlockStore, error) {
	f, err := os.CreateTemp("", "daoopt-block-*.bin")
	if err != nil {
		return nil, wrapf(err, "cannot create block store temp file")
	}
	nBlocks := (size + blockSize - 1) / blockSize
	bs := &BlockStore{
		file:        f,
		size:        size,
		nBlocks:     nBlocks,
		present:     make([]bool, nBlocks),
		cache:       make(map[int][]LogVal),
		lru:         list.New(),
		lruElem:     make(map[int]*list.Element),
		maxInMemory: maxInMemory,
	}
	zero := make([]LogVal, blockSize)
	for i := range zero {
		zero[i] = ElemZero
	}
	for b := 0; b < nBlocks; b++ {
		if err := bs.writeBlock(b, zero); err != nil {
			f.Close()
			return nil, err
		}
	}
	return bs, nil
}

// Close releases the backing temp file.
func (bs *BlockStore) Close() error {
	name := bs.file.Name()
	err := bs.file.Close()
	os.Remove(name)
	return err
}

// Get returns the entry at index i, loading its block if necessary.
func (bs *BlockStore) Get(i int) (LogVal, error) {
	b, off := i/blockSize, i%blockSize
	block, err := bs.loadBlock(b)
	if err != nil {
		return 0, err
	}
	return block[off], nil
}

// Set writes the entry at index i, loading its block first if necessary
// and marking it dirty by writing through immediately (a simple
// write-through policy, since bucket elimination writes each entry once).
func (bs *BlockStore) Set(i int, v LogVal) error {
	b, off := i/blockSize, i%blockSize
	block, err := bs.loadBlock(b)
	if err != nil {
		return err
	}
	block[off] = v
	return bs.writeBlock(b, block)
}

// loadBlock returns block b, pulling it from disk into the in-memory cache
// if it is not present there, and evicting the least-recently-used block
// first if the cache is at capacity (spec §5).
func (bs *BlockStore) loadBlock(b int) ([]LogVal, error) {
	if block, ok := bs.cache[b]; ok {
		bs.touch(b)
		return block, nil
	}
	block, err := bs.readBlock(b)
	if err != nil {
		return nil, err
	}
	if len(bs.cache) >= bs.maxInMemory && bs.maxInMemory > 0 {
		bs.evictOne()
	}
	bs.cache[b] = block
	bs.present[b] = true
	bs.lruElem[b] = bs.lru.PushFront(b)
	return block, nil
}

func (bs *BlockStore) touch(b int) {
	if e, ok := bs.lruElem[b]; ok {
		bs.lru.MoveToFront(e)
	}
}

func (bs *BlockStore) evictOne() {
	back := bs.lru.Back()
	if back == nil {
		return
	}
	b := back.Value.(int)
	bs.lru.Remove(back)
	delete(bs.lruElem, b)
	delete(bs.cache, b)
	bs.present[b] = false
}

func (bs *BlockStore) readBlock(b int) ([]LogVal, error) {
	buf := make([]byte, blockSize*8)
	_, err := bs.file.ReadAt(buf, int64(b)*int64(blockSize)*8)
	if err != nil && err != io.EOF {
		return nil, wrapf(err, "cannot read block %d", b)
	}
	out := make([]LogVal, blockSize)
	for i := range out {
		out[i] = bytesToLogVal(buf[i*8 : i*8+8])
	}
	return out, nil
}

func (bs *BlockStore) writeBlock(b int, block []LogVal) error {
	buf := make([]byte, blockSize*8)
	for i, v := range block {
		logValToBytes(v, buf[i*8:i*8+8])
	}
	_, err := bs.file.WriteAt(buf, int64(b)*int64(blockSize)*8)
	if err != nil {
		return wrapf(err, "cannot write block %d", b)
	}
	return nil
}

// PresenceBitmap returns a copy of the block-level presence bitmap, for
// stats/reporting.
func (bs *BlockStore) PresenceBitmap() []bool {
	return append([]bool{}, bs.present...)
}

func bytesToLogVal(b []byte) LogVal {
	var bits uint64
	for i := 7; i >= 0; i-- {
		bits = bits<<8 | uint64(b[i])
	}
	return LogVal(math.Float64frombits(bits))
}

func logValToBytes(v LogVal, b []byte) {
	bits := math.Float64bits(float64(v))
	for i := 0; i < 8; i++ {
		b[i] = byte(bits)
		bits >>= 8
	}
}
