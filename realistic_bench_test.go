package freelist

import (
	"math/rand/v2"
	"runtime"
	"testing"
)

type entity struct {
	ID   int64
	Data [56]byte // Total 64 bytes
}

// BenchmarkRealisticUsage compares the free list with the structures it
// usually replaces: a map keyed by id and individually allocated values.
func BenchmarkRealisticUsage(b *testing.B) {

	// Test 1: Churn with handles, half the live set replaced per round
	b.Run("HandleChurn/FreeList", func(b *testing.B) {
		l, _ := New[entity](1024)
		live := make([]Index, 0, 4096)
		for j := range 4096 {
			idx, _ := l.Insert(entity{ID: int64(j)})
			live = append(live, idx)
		}
		rng := rand.New(rand.NewPCG(1, 2))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			k := rng.IntN(len(live))
			l.EraseAt(live[k])
			live[k], _ = l.Insert(entity{ID: int64(i)})
		}
	})

	b.Run("HandleChurn/Map", func(b *testing.B) {
		m := make(map[int64]*entity, 4096)
		keys := make([]int64, 0, 4096)
		for j := range 4096 {
			m[int64(j)] = &entity{ID: int64(j)}
			keys = append(keys, int64(j))
		}
		rng := rand.New(rand.NewPCG(1, 2))
		next := int64(4096)
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			k := rng.IntN(len(keys))
			delete(m, keys[k])
			m[next] = &entity{ID: next}
			keys[k] = next
			next++
		}
	})

	// Test 2: Lookup by handle
	b.Run("Lookup/FreeList", func(b *testing.B) {
		l, _ := New[entity](1024)
		live := make([]Index, 0, 4096)
		for j := range 4096 {
			idx, _ := l.Insert(entity{ID: int64(j)})
			live = append(live, idx)
		}
		b.ResetTimer()

		var sum int64
		for i := 0; i < b.N; i++ {
			sum += l.Get(live[i%len(live)]).ID
		}
		_ = sum
	})

	b.Run("Lookup/Map", func(b *testing.B) {
		m := make(map[int64]*entity, 4096)
		for j := range 4096 {
			m[int64(j)] = &entity{ID: int64(j)}
		}
		b.ResetTimer()

		var sum int64
		for i := 0; i < b.N; i++ {
			sum += m[int64(i%4096)].ID
		}
		_ = sum
	})

	// Test 3: Iteration over a sparse live set
	b.Run("Iterate/FreeList", func(b *testing.B) {
		l, _ := New[entity](1024)
		for j := range 8192 {
			idx, _ := l.Insert(entity{ID: int64(j)})
			if j%2 == 0 {
				l.EraseAt(idx)
			}
		}
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			var sum int64
			for _, e := range l.All() {
				sum += e.ID
			}
			_ = sum
		}
	})

	b.Run("Iterate/Map", func(b *testing.B) {
		m := make(map[int64]*entity, 4096)
		for j := 1; j < 8192; j += 2 {
			m[int64(j)] = &entity{ID: int64(j)}
		}
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			var sum int64
			for _, e := range m {
				sum += e.ID
			}
			_ = sum
		}
	})

	// Test 4: GC pressure with many live values
	b.Run("GCPressure/FreeList", func(b *testing.B) {
		l, _ := New[entity](4096)
		for j := range 1 << 16 {
			l.Insert(entity{ID: int64(j)})
		}
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			runtime.GC()
		}
		runtime.KeepAlive(l)
	})

	b.Run("GCPressure/Builtin", func(b *testing.B) {
		objs := make([]*entity, 1<<16)
		for j := range objs {
			objs[j] = &entity{ID: int64(j)}
		}
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			runtime.GC()
		}
		runtime.KeepAlive(objs)
	})
}
