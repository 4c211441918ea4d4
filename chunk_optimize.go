package freelist

// IsSorted reports whether following the free chain visits vacant offsets in
// strictly increasing order.
func (c *Chunk[T]) IsSorted() bool {
	for i := c.firstFree; i != c.sentinel; {
		next := c.slots[i].next
		if next <= i {
			return false
		}
		i = next
	}
	return true
}

// Sort rethreads the free chain in ascending offset order. Live values are
// not touched.
func (c *Chunk[T]) Sort() {
	mask := c.FreeMask()
	next := c.sentinel
	for i := len(c.slots) - 1; i >= 0; i-- {
		if mask.Test(uint(i)) {
			c.slots[i].next = next
			next = uint16(i)
		}
	}
	c.firstFree = next
}

// OptimizeAt compacts the chunk so that live values occupy offsets
// [0, Len()). Each value that moves is reported once as cb(from, to), after
// the move. Values that don't move are not reported. cb may be nil.
//
// Offsets and pointers into the chunk are stale for moved values until cb
// has seen them.
func (c *Chunk[T]) OptimizeAt(cb func(from, to uint16)) {
	mask := c.FreeMask()
	left, right := 0, len(c.slots)-1
	for left < right {
		switch {
		case !mask.Test(uint(left)):
			left++
		case mask.Test(uint(right)):
			right--
		default:
			var zero T
			c.slots[left].value = c.slots[right].value
			c.slots[right].value = zero
			mask.Clear(uint(left))
			mask.Set(uint(right))
			if cb != nil {
				cb(uint16(right), uint16(left))
			}
			left++
			right--
		}
	}
	c.threadTail()
}

// Optimize is OptimizeAt reporting element addresses. The from pointer
// refers to a slot that is vacant by the time cb runs.
func (c *Chunk[T]) Optimize(cb func(from, to *T)) {
	if cb == nil {
		c.OptimizeAt(nil)
		return
	}
	c.OptimizeAt(func(from, to uint16) {
		cb(&c.slots[from].value, &c.slots[to].value)
	})
}

// threadTail rebuilds the free chain over the contiguous vacant tail
// [size, cap) left behind by compaction.
func (c *Chunk[T]) threadTail() {
	n := len(c.slots)
	if c.size == n {
		c.firstFree = c.sentinel
		return
	}
	for i := c.size; i < n-1; i++ {
		c.slots[i].next = uint16(i + 1)
	}
	c.slots[n-1].next = c.sentinel
	c.firstFree = uint16(c.size)
}
