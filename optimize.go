package freelist

// OptimizeAt compacts the free list toward low chunk ordinals and low
// offsets, then drops trailing empty chunks. Every relocation is reported
// once as cb(from, to) after the value has moved. cb may be nil.
//
// Values are taken from the highest chunk that still holds any, last offset
// first, and placed into the lowest chunk with room. When both cursors meet
// the remaining chunk is compacted in place. A free list with no chunks is
// left alone.
func (l *FreeList[T]) OptimizeAt(cb func(from, to Index)) {
	n := l.chunks.Len()
	if n == 0 {
		return
	}

	moves := 0
	report := func(from, to Index) {
		moves++
		if cb != nil {
			cb(from, to)
		}
	}

	i, j := 0, n-1
	for i <= j {
		ci := l.chunks.At(i)
		if ci.Full() {
			i++
			continue
		}
		ci.Sort()

		if i == j {
			ord := uint16(i)
			ci.OptimizeAt(func(from, to uint16) {
				report(PackIndex(ord, from), PackIndex(ord, to))
			})
			break
		}

		cj := l.chunks.At(j)
		vacant := cj.FreeMask()
		for off := l.chunkCapacity - 1; off >= 0 && !ci.Full(); off-- {
			if vacant.Test(uint(off)) {
				continue
			}
			src := uint16(off)
			dst, _ := ci.Insert(cj.slots[src].value)
			cj.EraseAt(src)
			report(PackIndex(uint16(j), src), PackIndex(uint16(i), dst))
		}

		if ci.Full() {
			i++
		}
		if cj.Empty() {
			j--
		}
	}

	l.Shrink()
	l.opts.logger.Debug("freelist compacted", "moves", moves, "chunks_before", n, "chunks_after", l.chunks.Len())
	l.opts.observer.Compacted(moves)
}

// Optimize is OptimizeAt reporting element addresses. The from pointer
// refers to a vacated slot when cb runs.
func (l *FreeList[T]) Optimize(cb func(from, to *T)) {
	if cb == nil {
		l.OptimizeAt(nil)
		return
	}
	l.OptimizeAt(func(from, to Index) {
		cb(l.slotAt(from), l.slotAt(to))
	})
}
