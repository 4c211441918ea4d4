// Package freelist implements a slot-based object arena for Go.
//
// # Overview
//
// A FreeList hands out storage slots for values of a single type from
// fixed-capacity chunks. Freed slots are threaded into a per-chunk free
// chain and reused in O(1). This is particularly useful for:
//
//   - Entity, node or handle tables addressed by small integer ids
//   - Object pools where values are created and destroyed individually
//   - Graphs and trees that store links as compact indices instead of pointers
//
// # Basic Usage
//
//	l, err := freelist.New[Particle](256) // 256 slots per chunk
//	if err != nil {
//	    return err
//	}
//
//	// Store a value and keep its composite index
//	idx, err := l.Insert(Particle{X: 1})
//
//	// Checked lookup distinguishes out-of-range from vacant
//	p, err := l.At(idx)
//	if errors.Is(err, freelist.ErrVacantSlot) {
//	    // idx was erased
//	}
//
//	// Release the slot for reuse
//	l.EraseAt(idx)
//
// # Indices
//
// An Index packs a 16-bit chunk ordinal and a 16-bit in-chunk offset. Chunks
// are only ever removed from the end of the list, and only once empty, so an
// index stays valid for as long as its value is live.
//
// # Compaction
//
// OptimizeAt relocates live values toward low indices and drops the trailing
// chunks it empties. Every move is reported through a callback so external
// index tables can be rewritten in step:
//
//	l.OptimizeAt(func(from, to freelist.Index) {
//	    handles[owner[from]] = to
//	})
//
// # Thread Safety
//
// FreeList and Chunk are not thread-safe. Callers that share them across
// goroutines must provide their own synchronization.
//
// # Performance Characteristics
//
//   - Emplace: O(1) within a chunk, plus a scan for the first non-full chunk
//   - Erase by index: O(1); erase by pointer scans chunks by address range
//   - At, HoldsValueAt: O(vacant slots in the chunk)
//   - FreeMask, Sort, OptimizeAt: O(capacity)
//
// # Debug Checks
//
// Erasing or dereferencing a vacant slot through the unchecked accessors is
// a programming error. Build with -tags freelistdebug to turn on the
// liveness assertions that catch it; they cost O(capacity) per call.
//
// # Metrics and Monitoring
//
//	m := l.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	fmt.Printf("Live values: %d of %d slots\n", m.Len, m.Cap)
//
// Install an Observer with WithObserver to receive growth, drop and
// compaction events; package promobserver exports them to Prometheus.
package freelist
