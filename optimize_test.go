package freelist

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relocation struct {
	from, to Index
}

func TestOptimizeAtMovesTrailingChunkIntoGap(t *testing.T) {
	l, err := New[string](4)
	require.NoError(t, err)

	idx := make([]Index, 8)
	for i, v := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		idx[i], err = l.Insert(v)
		require.NoError(t, err)
	}
	// Chunk 0 keeps offsets 0 and 1; chunk 1 keeps offsets 2 and 3.
	l.EraseAt(idx[2])
	l.EraseAt(idx[3])
	l.EraseAt(idx[4])
	l.EraseAt(idx[5])
	require.Equal(t, 2, l.NumChunks())

	var moves []relocation
	l.OptimizeAt(func(from, to Index) {
		moves = append(moves, relocation{from, to})
	})

	assert.Equal(t, []relocation{
		{PackIndex(1, 3), PackIndex(0, 2)},
		{PackIndex(1, 2), PackIndex(0, 3)},
	}, moves)
	assert.Equal(t, 1, l.NumChunks(), "emptied trailing chunk must be dropped")

	got := make([]string, 0, 4)
	for off := range 4 {
		p, err := l.At(PackIndex(0, uint16(off)))
		require.NoError(t, err)
		got = append(got, *p)
	}
	assert.Equal(t, []string{"a", "b", "h", "g"}, got)
}

func TestOptimizeAtNoChunks(t *testing.T) {
	l, err := New[int](4)
	require.NoError(t, err)

	calls := 0
	assert.NotPanics(t, func() {
		l.OptimizeAt(func(from, to Index) { calls++ })
	})
	assert.Zero(t, calls)
	assert.Equal(t, 0, l.NumChunks())
}

func TestOptimizeAtSingleChunk(t *testing.T) {
	l, err := New[int](8)
	require.NoError(t, err)
	var idx []Index
	for i := range 8 {
		x, err := l.Insert(i)
		require.NoError(t, err)
		idx = append(idx, x)
	}
	l.EraseAt(idx[0])
	l.EraseAt(idx[1])

	expected := map[Index]int{}
	for i := 2; i < 8; i++ {
		expected[idx[i]] = i
	}
	l.OptimizeAt(func(from, to Index) {
		expected[to] = expected[from]
		delete(expected, from)
	})

	for off := range 6 {
		assert.True(t, l.HoldsValueAt(PackIndex(0, uint16(off))))
	}
	for i, v := range expected {
		assert.Equal(t, v, *l.Get(i))
	}
}

func TestOptimizeAtWithInteriorEmptyChunks(t *testing.T) {
	l, err := New[int](2)
	require.NoError(t, err)
	var idx []Index
	for i := range 10 {
		x, err := l.Insert(i)
		require.NoError(t, err)
		idx = append(idx, x)
	}
	// Empty chunks 1 and 3 entirely; chunk 4 keeps one value.
	for _, i := range []int{2, 3, 6, 7, 9} {
		l.EraseAt(idx[i])
	}
	require.Equal(t, 5, l.NumChunks())

	expected := map[Index]int{}
	for _, i := range []int{0, 1, 4, 5, 8} {
		expected[idx[i]] = i
	}
	l.OptimizeAt(func(from, to Index) {
		v, ok := expected[from]
		require.True(t, ok)
		delete(expected, from)
		expected[to] = v
	})

	assert.Equal(t, 3, l.NumChunks())
	assert.Equal(t, 5, l.Len())
	for i, v := range expected {
		p, err := l.At(i)
		require.NoError(t, err)
		assert.Equal(t, v, *p)
	}
}

func TestOptimizeAtRandom(t *testing.T) {
	for seed := uint64(0); seed < 8; seed++ {
		rng := rand.New(rand.NewPCG(seed, 77))
		l, err := New[int](16)
		require.NoError(t, err)

		expected := make(map[Index]int)
		for range 200 {
			v := rng.Int()
			idx, err := l.Insert(v)
			require.NoError(t, err)
			expected[idx] = v
		}
		for idx := range expected {
			if rng.IntN(3) > 0 {
				l.EraseAt(idx)
				delete(expected, idx)
			}
		}

		moved := make(map[Index]bool)
		l.OptimizeAt(func(from, to Index) {
			v, ok := expected[from]
			require.True(t, ok, "relocation from vacant index %s", from)
			require.NotEqual(t, from, to)
			require.False(t, moved[from])
			moved[from] = true
			assert.Equal(t, v, *l.Get(to))
			delete(expected, from)
			expected[to] = v
		})

		n := len(expected)
		require.Equal(t, n, l.Len())
		wantChunks := (n + 15) / 16
		assert.Equal(t, wantChunks, l.NumChunks(), "seed %d", seed)

		// Live values now form a dense prefix of the index space.
		for k := range n {
			i := PackIndex(uint16(k/16), uint16(k%16))
			v, ok := expected[i]
			require.True(t, ok, "seed %d: %s should be live", seed, i)
			assert.Equal(t, v, *l.Get(i))
		}
	}
}

func TestOptimize(t *testing.T) {
	l, err := New[int](4)
	require.NoError(t, err)
	ptrs := make([]*int, 8)
	for i := range ptrs {
		ptrs[i], err = l.Emplace(i)
		require.NoError(t, err)
	}
	l.Erase(ptrs[0])
	l.Erase(ptrs[5])

	expected := map[*int]int{}
	for i, p := range ptrs {
		if i != 0 && i != 5 {
			expected[p] = i
		}
	}
	l.Optimize(func(from, to *int) {
		v := expected[from]
		delete(expected, from)
		expected[to] = v
	})

	require.Equal(t, 6, l.Len())
	for p, v := range expected {
		assert.True(t, l.HoldsValue(p))
		assert.Equal(t, v, *p)
	}
}

func BenchmarkOptimizeAt(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		l, _ := New[int](256)
		var idx []Index
		for j := range 4096 {
			x, _ := l.Insert(j)
			idx = append(idx, x)
		}
		for _, x := range idx {
			if rng.IntN(2) == 0 {
				l.EraseAt(x)
			}
		}
		b.StartTimer()
		l.OptimizeAt(nil)
	}
}
