package freelist

// Observer receives notifications about structural changes of a FreeList.
// Implement it to export arena statistics to a monitoring system; see the
// promobserver package for a Prometheus implementation.
//
// A clone reports to the observer of the list it was cloned from, so an
// implementation should aggregate by deltas rather than store the chunks
// argument of a single list.
type Observer interface {
	// ChunkAdded is called after a chunk has been appended. chunks is the
	// new chunk count and bytes the footprint of the added chunk.
	ChunkAdded(chunks int, bytes int64)

	// ChunkDropped is called after a trailing chunk has been removed.
	ChunkDropped(chunks int, bytes int64)

	// Compacted is called once per OptimizeAt pass with the number of
	// relocations it reported.
	Compacted(moves int)
}

// NoopObserver ignores every notification.
type NoopObserver struct{}

func (NoopObserver) ChunkAdded(int, int64)   {}
func (NoopObserver) ChunkDropped(int, int64) {}
func (NoopObserver) Compacted(int)           {}

// Metrics contains statistical information about a free list.
type Metrics struct {
	Len           int     // Live values
	Cap           int     // Total slots across all chunks
	NumChunks     int     // Number of chunks
	ChunkCapacity int     // Slots per chunk
	FreeSlots     int     // Cap - Len
	Bytes         int64   // Footprint of all slot arrays
	Utilization   float64 // Ratio of live to total slots (0.0-1.0)
}

// Utilization returns the ratio of live values to total slots (0.0 to 1.0).
// Returns 0.0 if the free list has no chunks.
func (l *FreeList[T]) Utilization() float64 {
	capacity := l.Cap()
	if capacity == 0 {
		return 0
	}
	return float64(l.Len()) / float64(capacity)
}

// Bytes returns the footprint of all chunk slot arrays.
func (l *FreeList[T]) Bytes() int64 {
	return int64(l.chunks.Len()) * chunkFootprint[T](l.chunkCapacity)
}

// Metrics returns a snapshot of free list statistics.
func (l *FreeList[T]) Metrics() Metrics {
	n, capacity := l.Len(), l.Cap()
	return Metrics{
		Len:           n,
		Cap:           capacity,
		NumChunks:     l.NumChunks(),
		ChunkCapacity: l.chunkCapacity,
		FreeSlots:     capacity - n,
		Bytes:         l.Bytes(),
		Utilization:   l.Utilization(),
	}
}
