package freelist

import (
	"fmt"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/pavanmanishd/freelist/internal/ptrvec"
)

// FreeList is a growable arena built from fixed-capacity chunks. It is not
// goroutine-safe.
//
// Chunks are stored by pointer, so growth never moves a value: pointers
// returned by Emplace are valid until the value is erased or relocated by
// OptimizeAt. Every live value also has a stable composite Index. Indices
// stay valid across growth and across erasure of other values because only
// the last chunk is ever removed.
type FreeList[T any] struct {
	chunks        ptrvec.Vector[Chunk[T]]
	chunkCapacity int
	opts          options
}

// New creates an empty FreeList whose chunks hold chunkCapacity values each.
// No chunk is allocated until the first Emplace.
func New[T any](chunkCapacity int, opts ...Option) (*FreeList[T], error) {
	if err := validateCapacity[T](chunkCapacity); err != nil {
		return nil, err
	}
	l := &FreeList[T]{
		chunkCapacity: chunkCapacity,
		opts:          defaultOptions(),
	}
	for _, opt := range opts {
		opt(&l.opts)
	}
	return l, nil
}

// ChunkCapacity returns the number of slots per chunk.
func (l *FreeList[T]) ChunkCapacity() int { return l.chunkCapacity }

// NumChunks returns the number of chunks currently held.
func (l *FreeList[T]) NumChunks() int { return l.chunks.Len() }

// Cap returns the total number of slots across all chunks.
func (l *FreeList[T]) Cap() int { return l.chunks.Len() * l.chunkCapacity }

// Len returns the number of live values.
func (l *FreeList[T]) Len() int {
	n := 0
	for _, c := range l.chunks.All() {
		n += c.Len()
	}
	return n
}

// Empty reports whether the free list holds no values.
func (l *FreeList[T]) Empty() bool { return l.Len() == 0 }

// Chunk returns the chunk with ordinal i.
func (l *FreeList[T]) Chunk(i int) *Chunk[T] { return l.chunks.At(i) }

// Chunks iterates over the chunks in ordinal order.
func (l *FreeList[T]) Chunks() iter.Seq2[int, *Chunk[T]] { return l.chunks.All() }

// Emplace stores v in the first chunk with a vacant slot, appending a chunk
// if every chunk is full.
func (l *FreeList[T]) Emplace(v T) (*T, error) {
	c, _, err := l.allocationChunk()
	if err != nil {
		return nil, err
	}
	p, _ := c.Emplace(v)
	return p, nil
}

// Insert is Emplace returning the composite index of the new value.
func (l *FreeList[T]) Insert(v T) (Index, error) {
	c, ord, err := l.allocationChunk()
	if err != nil {
		return InvalidIndex, err
	}
	off, _ := c.Insert(v)
	return PackIndex(uint16(ord), off), nil
}

func (l *FreeList[T]) allocationChunk() (*Chunk[T], int, error) {
	for i, c := range l.chunks.All() {
		if !c.Full() {
			return c, i, nil
		}
	}
	c, err := l.grow()
	if err != nil {
		return nil, 0, err
	}
	return c, l.chunks.Len() - 1, nil
}

// FirstFreeIndex returns the index the next Emplace will use if it doesn't
// need to grow. It returns false if every chunk is full.
func (l *FreeList[T]) FirstFreeIndex() (Index, bool) {
	for i, c := range l.chunks.All() {
		if !c.Full() {
			return PackIndex(uint16(i), c.FirstFree()), true
		}
	}
	return InvalidIndex, false
}

// Erase releases the slot p points to. If it was the last value of the last
// chunk, that chunk is dropped. p must be a live slot of this free list.
func (l *FreeList[T]) Erase(p *T) {
	c, i := l.OwningChunk(p)
	if c == nil {
		panic("freelist: free list doesn't own this pointer")
	}
	c.Erase(p)
	l.dropIfTrailingEmpty(i)
}

// EraseAt releases the slot at idx. The slot must be live.
func (l *FreeList[T]) EraseAt(idx Index) {
	ord, off := idx.Unpack()
	l.chunkAt(ord).EraseAt(off)
	l.dropIfTrailingEmpty(int(ord))
}

func (l *FreeList[T]) dropIfTrailingEmpty(i int) {
	if i == l.chunks.Len()-1 && l.chunks.At(i).Empty() {
		l.popLast()
	}
}

// OwningChunk returns the chunk whose slot array contains p and its
// ordinal, or nil and -1.
func (l *FreeList[T]) OwningChunk(p *T) (*Chunk[T], int) {
	for i, c := range l.chunks.All() {
		if c.Owns(p) {
			return c, i
		}
	}
	return nil, -1
}

// Owns reports whether p points into one of the chunks.
func (l *FreeList[T]) Owns(p *T) bool {
	c, _ := l.OwningChunk(p)
	return c != nil
}

// HoldsValue reports whether p points to a live slot.
func (l *FreeList[T]) HoldsValue(p *T) bool {
	c, _ := l.OwningChunk(p)
	return c != nil && c.HoldsValue(p)
}

// IndexOf returns the composite index of the slot p points to. It panics if
// the free list doesn't own p.
func (l *FreeList[T]) IndexOf(p *T) Index {
	c, i := l.OwningChunk(p)
	if c == nil {
		panic("freelist: free list doesn't own this pointer")
	}
	return PackIndex(uint16(i), c.IndexOf(p))
}

// HoldsValueAt reports whether idx names a live slot. Indices outside the
// current chunks hold nothing.
func (l *FreeList[T]) HoldsValueAt(idx Index) bool {
	ord, off := idx.Unpack()
	if int(ord) >= l.chunks.Len() {
		return false
	}
	return l.chunks.At(int(ord)).HoldsValueAt(off)
}

// At returns the value at idx. The error wraps ErrIndexOutOfRange when idx
// names a slot beyond the current chunks and ErrVacantSlot when the slot
// holds no value.
func (l *FreeList[T]) At(idx Index) (*T, error) {
	ord, off := idx.Unpack()
	if int(ord) >= l.chunks.Len() || int(off) >= l.chunkCapacity {
		return nil, &IndexError{Index: idx, Err: ErrIndexOutOfRange}
	}
	c := l.chunks.At(int(ord))
	if !c.HoldsValueAt(off) {
		return nil, &IndexError{Index: idx, Err: ErrVacantSlot}
	}
	return &c.slots[off].value, nil
}

// Get returns the value at idx without checking that the slot is live.
func (l *FreeList[T]) Get(idx Index) *T {
	ord, off := idx.Unpack()
	return l.chunkAt(ord).Get(off)
}

func (l *FreeList[T]) chunkAt(ord uint16) *Chunk[T] {
	if int(ord) >= l.chunks.Len() {
		panic(fmt.Sprintf("freelist: chunk %d out of range [0, %d)", ord, l.chunks.Len()))
	}
	return l.chunks.At(int(ord))
}

// slotAt returns the address of a slot regardless of liveness.
func (l *FreeList[T]) slotAt(idx Index) *T {
	ord, off := idx.Unpack()
	return &l.chunks.At(int(ord)).slots[off].value
}

// All iterates over live values in index order.
func (l *FreeList[T]) All() iter.Seq2[Index, *T] {
	return func(yield func(Index, *T) bool) {
		for i, c := range l.chunks.All() {
			for off, p := range c.All() {
				if !yield(PackIndex(uint16(i), off), p) {
					return
				}
			}
		}
	}
}

// Live returns the set of composite indices that hold a value.
func (l *FreeList[T]) Live() *roaring.Bitmap {
	bm := roaring.New()
	for idx := range l.All() {
		bm.Add(uint32(idx))
	}
	return bm
}

// Sort rethreads every chunk's free chain in ascending order. Values are
// not moved.
func (l *FreeList[T]) Sort() {
	for _, c := range l.chunks.All() {
		c.Sort()
	}
}

// IsSorted reports whether every chunk's free chain is ascending.
func (l *FreeList[T]) IsSorted() bool {
	for _, c := range l.chunks.All() {
		if !c.IsSorted() {
			return false
		}
	}
	return true
}

// Clear drops every chunk and returns their reservations. The chunk table
// keeps its capacity for reuse.
func (l *FreeList[T]) Clear() {
	n := l.chunks.Len()
	if n == 0 {
		return
	}
	left := n
	for _, c := range l.chunks.All() {
		bytes := c.footprint()
		if l.opts.acquirer != nil {
			l.opts.acquirer.ReleaseMemory(bytes)
		}
		left--
		l.opts.observer.ChunkDropped(left, bytes)
	}
	l.chunks.Clear()
	l.opts.logger.Debug("freelist cleared", "dropped", n)
}

// Shrink drops trailing empty chunks and releases spare capacity in the
// chunk table. Interior empty chunks are kept so indices stay valid.
func (l *FreeList[T]) Shrink() {
	if l.chunks.Len() == 0 {
		return
	}
	before := l.chunks.Len()
	for l.chunks.Len() > 0 && l.chunks.Last().Empty() {
		l.popLast()
	}
	l.chunks.ShrinkToFit()
	if dropped := before - l.chunks.Len(); dropped > 0 {
		l.opts.logger.Debug("freelist shrunk", "dropped", dropped, "chunks", l.chunks.Len())
	}
}

// Clone returns a deep copy in which every index of l names the same value.
// The copy shares l's options, so it reserves through the same acquirer
// and reports to the same observer as l.
func (l *FreeList[T]) Clone() (*FreeList[T], error) {
	dst := &FreeList[T]{
		chunkCapacity: l.chunkCapacity,
		opts:          l.opts,
	}
	for _, c := range l.chunks.All() {
		nc, err := dst.grow()
		if err != nil {
			dst.Clear()
			return nil, err
		}
		nc.CopyFrom(c)
	}
	return dst, nil
}

func (l *FreeList[T]) grow() (*Chunk[T], error) {
	n := l.chunks.Len()
	if n >= MaxChunks {
		return nil, ErrMaxChunksExceeded
	}
	bytes := chunkFootprint[T](l.chunkCapacity)
	if l.opts.acquirer != nil {
		if err := l.opts.acquirer.AcquireMemory(bytes); err != nil {
			l.opts.logger.Warn("freelist chunk allocation failed", "chunk", n, "bytes", bytes, "error", err)
			return nil, fmt.Errorf("%w: chunk %d: %w", ErrAllocationFailed, n, err)
		}
	}
	c := newChunk[T](l.chunkCapacity)
	l.chunks.Push(c)
	l.opts.logger.Debug("freelist chunk added", "chunk", n, "chunks", n+1, "bytes", bytes)
	l.opts.observer.ChunkAdded(n+1, bytes)
	return c, nil
}

func (l *FreeList[T]) popLast() {
	c := l.chunks.Pop()
	bytes := c.footprint()
	if l.opts.acquirer != nil {
		l.opts.acquirer.ReleaseMemory(bytes)
	}
	n := l.chunks.Len()
	l.opts.logger.Debug("freelist chunk dropped", "chunk", n, "chunks", n, "bytes", bytes)
	l.opts.observer.ChunkDropped(n, bytes)
}
