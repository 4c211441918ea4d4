package freelist

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/bits-and-blooms/bitset"
)

// slot is one storage cell. While live, value holds the element and next is
// stale. While vacant, value is zero and next links to the following vacant
// slot, or to the chunk's sentinel.
type slot[T any] struct {
	value T
	next  uint16
}

// Chunk is a fixed-capacity slot arena for values of type T.
//
// Vacant slots are threaded into a singly linked free chain through their
// own link field, so Emplace and Erase are O(1). Which slots are live is
// never stored: it is derived by walking the chain (see FreeMask).
//
// The slot array is allocated once, so pointers returned by Emplace stay
// valid until the slot is erased or the chunk is compacted.
type Chunk[T any] struct {
	slots     []slot[T]
	firstFree uint16
	size      int
	sentinel  uint16
}

// Cloner is implemented by element types that need a deep copy when a chunk
// or free list is cloned. Types that don't implement it are copied by value.
type Cloner[T any] interface {
	Clone() T
}

// sentinelFor returns the "no next" link value for T. One-byte elements get
// a one-byte link range, everything else gets sixteen bits.
func sentinelFor[T any]() uint16 {
	var zero T
	if unsafe.Sizeof(zero) == 1 {
		return 0xFF
	}
	return 0xFFFF
}

func validateCapacity[T any](capacity int) error {
	sentinel := sentinelFor[T]()
	if capacity <= 0 || capacity >= int(sentinel) {
		return fmt.Errorf("%w: %d (must be in [1, %d))", ErrInvalidCapacity, capacity, sentinel)
	}
	return nil
}

// NewChunk creates an empty chunk with room for capacity values.
func NewChunk[T any](capacity int) (*Chunk[T], error) {
	if err := validateCapacity[T](capacity); err != nil {
		return nil, err
	}
	return newChunk[T](capacity), nil
}

// newChunk skips validation; callers have already checked capacity.
func newChunk[T any](capacity int) *Chunk[T] {
	c := &Chunk[T]{
		slots:    make([]slot[T], capacity),
		sentinel: sentinelFor[T](),
	}
	c.initEmpty()
	return c
}

// initEmpty threads every slot onto one ascending free chain. A chunk
// without slots is left full so Emplace refuses it.
func (c *Chunk[T]) initEmpty() {
	c.size = 0
	c.sentinel = sentinelFor[T]()
	if len(c.slots) == 0 {
		c.firstFree = c.sentinel
		return
	}
	c.firstFree = 0
	for i := range c.slots {
		c.slots[i].next = uint16(i + 1)
	}
	c.slots[len(c.slots)-1].next = c.sentinel
}

// Cap returns the number of slots in the chunk.
func (c *Chunk[T]) Cap() int { return len(c.slots) }

// Len returns the number of live values.
func (c *Chunk[T]) Len() int { return c.size }

// Empty reports whether the chunk holds no values.
func (c *Chunk[T]) Empty() bool { return c.size == 0 }

// Full reports whether every slot is live.
func (c *Chunk[T]) Full() bool { return c.firstFree == c.sentinel }

// FirstFree returns the head of the free chain, or Sentinel if full.
func (c *Chunk[T]) FirstFree() uint16 { return c.firstFree }

// Sentinel returns the link value that terminates the free chain.
func (c *Chunk[T]) Sentinel() uint16 { return c.sentinel }

// Emplace stores v in the slot at the head of the free chain and returns a
// pointer to it. It returns false if the chunk is full.
func (c *Chunk[T]) Emplace(v T) (*T, bool) {
	if c.firstFree == c.sentinel {
		return nil, false
	}
	s := &c.slots[c.firstFree]
	c.firstFree = s.next
	s.value = v
	c.size++
	return &s.value, true
}

// Insert is Emplace returning the slot offset instead of a pointer.
func (c *Chunk[T]) Insert(v T) (uint16, bool) {
	off := c.firstFree
	if _, ok := c.Emplace(v); !ok {
		return c.sentinel, false
	}
	return off, true
}

// Erase releases the slot p points to. p must be a live slot of this chunk.
func (c *Chunk[T]) Erase(p *T) {
	c.EraseAt(c.IndexOf(p))
}

// EraseAt releases the slot at off. The slot must be live.
func (c *Chunk[T]) EraseAt(off uint16) {
	if debugChecks {
		c.assertHoldsValue(off)
	}
	s := &c.slots[off]
	var zero T
	s.value = zero
	s.next = c.firstFree
	c.firstFree = off
	c.size--
}

// Clear drops every value and resets the free chain.
func (c *Chunk[T]) Clear() {
	clear(c.slots)
	c.initEmpty()
}

func (c *Chunk[T]) offsetOf(p *T) (uint16, bool) {
	if p == nil || len(c.slots) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(&c.slots[0]))
	addr := uintptr(unsafe.Pointer(p))
	stride := unsafe.Sizeof(c.slots[0])
	if addr < base || addr >= base+stride*uintptr(len(c.slots)) {
		return 0, false
	}
	delta := addr - base
	if delta%stride != 0 {
		return 0, false
	}
	return uint16(delta / stride), true
}

// Owns reports whether p points into this chunk's slot array.
func (c *Chunk[T]) Owns(p *T) bool {
	_, ok := c.offsetOf(p)
	return ok
}

// IndexOf returns the offset of the slot p points to. It panics if the
// chunk doesn't own p.
func (c *Chunk[T]) IndexOf(p *T) uint16 {
	off, ok := c.offsetOf(p)
	if !ok {
		panic("freelist: chunk doesn't own this pointer")
	}
	return off
}

// HoldsValue reports whether p points to a live slot of this chunk.
func (c *Chunk[T]) HoldsValue(p *T) bool {
	off, ok := c.offsetOf(p)
	return ok && c.HoldsValueAt(off)
}

// HoldsValueAt reports whether the slot at off is live. Offsets beyond the
// capacity hold nothing. The answer is derived from the free chain, so the
// cost is proportional to the number of vacant slots.
func (c *Chunk[T]) HoldsValueAt(off uint16) bool {
	if int(off) >= len(c.slots) {
		return false
	}
	for i := c.firstFree; i != c.sentinel; i = c.slots[i].next {
		if i == off {
			return false
		}
	}
	return true
}

// At returns the value at off. The error wraps ErrIndexOutOfRange when off
// is beyond the capacity and ErrVacantSlot when the slot is vacant.
func (c *Chunk[T]) At(off int) (*T, error) {
	if off < 0 || off >= len(c.slots) {
		return nil, &IndexError{Index: Index(uint32(off)), Err: ErrIndexOutOfRange}
	}
	if !c.HoldsValueAt(uint16(off)) {
		return nil, &IndexError{Index: Index(uint32(off)), Err: ErrVacantSlot}
	}
	return &c.slots[off].value, nil
}

// Get returns the value at off without checking that the slot is live.
func (c *Chunk[T]) Get(off uint16) *T {
	if debugChecks {
		c.assertHoldsValue(off)
	}
	return &c.slots[off].value
}

// FreeMask returns the set of vacant offsets. It walks the free chain on
// every call.
func (c *Chunk[T]) FreeMask() *bitset.BitSet {
	mask := bitset.New(uint(len(c.slots)))
	for i := c.firstFree; i != c.sentinel; i = c.slots[i].next {
		mask.Set(uint(i))
	}
	return mask
}

// All iterates over live slots in offset order.
func (c *Chunk[T]) All() iter.Seq2[uint16, *T] {
	return func(yield func(uint16, *T) bool) {
		mask := c.FreeMask()
		for i := range c.slots {
			if mask.Test(uint(i)) {
				continue
			}
			if !yield(uint16(i), &c.slots[i].value) {
				return
			}
		}
	}
}

// Clone returns a copy with the same live offsets and the same free chain,
// so offsets issued by c remain valid in the copy.
func (c *Chunk[T]) Clone() *Chunk[T] {
	dst := &Chunk[T]{
		slots:    make([]slot[T], len(c.slots)),
		sentinel: c.sentinel,
	}
	dst.copyLayout(c)
	return dst
}

// CopyFrom replaces the contents of c with a copy of src.
func (c *Chunk[T]) CopyFrom(src *Chunk[T]) {
	if c == src {
		return
	}
	if len(c.slots) != len(src.slots) {
		c.slots = make([]slot[T], len(src.slots))
	}
	c.sentinel = src.sentinel
	c.copyLayout(src)
}

// MoveFrom transfers the slots of src to c and leaves src empty. Pointers
// into src's slots now refer to c.
func (c *Chunk[T]) MoveFrom(src *Chunk[T]) {
	if c == src {
		return
	}
	c.slots, c.firstFree, c.size, c.sentinel = src.slots, src.firstFree, src.size, src.sentinel
	src.slots = make([]slot[T], len(c.slots))
	src.initEmpty()
}

// copyLayout copies the slot array verbatim, links included, then deep
// copies live values that implement Cloner.
func (c *Chunk[T]) copyLayout(src *Chunk[T]) {
	c.firstFree = src.firstFree
	c.size = src.size
	copy(c.slots, src.slots)

	mask := src.FreeMask()
	for i := range src.slots {
		if mask.Test(uint(i)) {
			continue
		}
		if cl, ok := any(src.slots[i].value).(Cloner[T]); ok {
			c.slots[i].value = cl.Clone()
		}
	}
}

// footprint is the number of bytes the slot array occupies.
func (c *Chunk[T]) footprint() int64 {
	return int64(unsafe.Sizeof(c.slots[0])) * int64(len(c.slots))
}

func chunkFootprint[T any](capacity int) int64 {
	var s slot[T]
	return int64(unsafe.Sizeof(s)) * int64(capacity)
}

func (c *Chunk[T]) assertHoldsValue(off uint16) {
	if int(off) >= len(c.slots) {
		panic(fmt.Sprintf("freelist: offset %d out of range [0, %d)", off, len(c.slots)))
	}
	if !c.HoldsValueAt(off) {
		panic(fmt.Sprintf("freelist: offset %d doesn't hold value", off))
	}
}
