package cmap

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{2, 2},
		{8, 8},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[int32, int](tt.input)
			assert.Equal(t, tt.expected, m.ShardCount())
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	m := New[int32, string]()

	m.Set(1, "Alice")
	m.Set(2, "Bob")

	v, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Alice", v)
	assert.True(t, m.Has(2))
	assert.False(t, m.Has(3))
	assert.Equal(t, 2, m.Count())

	m.Delete(1)
	assert.False(t, m.Has(1))
	assert.Equal(t, 1, m.Count())

	// Deleting a missing key is a no-op.
	m.Delete(99)
	assert.Equal(t, 1, m.Count())
}

func TestSetIfAbsent(t *testing.T) {
	m := New[int32, int]()

	assert.True(t, m.SetIfAbsent(5, 1))
	assert.False(t, m.SetIfAbsent(5, 2))

	v, _ := m.Get(5)
	assert.Equal(t, 1, v)
}

func TestPop(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)

	v, ok := m.Pop("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = m.Pop("a")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	m := New[int64, int]()
	for i := int64(0); i < 100; i++ {
		m.Set(i, int(i))
	}
	m.Clear()
	assert.Zero(t, m.Count())
}

func TestRangeAndKeys(t *testing.T) {
	m := New[int32, int]()
	for i := int32(1); i <= 50; i++ {
		m.Set(i, int(i)*2)
	}

	sum := 0
	m.Range(func(_ int32, v int) bool {
		sum += v
		return true
	})
	assert.Equal(t, 2550, sum)

	visited := 0
	m.Range(func(int32, int) bool {
		visited++
		return visited < 10
	})
	assert.Equal(t, 10, visited)

	keys := m.Keys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	require.Len(t, keys, 50)
	assert.Equal(t, int32(1), keys[0])
	assert.Equal(t, int32(50), keys[49])
}

func TestShardIndexStable(t *testing.T) {
	a := New[int32, int]()
	b := New[int32, int]()

	used := make(map[int]bool)
	for i := int32(0); i < 256; i++ {
		assert.Equal(t, a.ShardIndex(i), b.ShardIndex(i))
		idx := a.ShardIndex(i)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, a.ShardCount())
		used[idx] = true
	}
	// 256 sequential ids should touch more than one shard.
	assert.Greater(t, len(used), 1)
}

func TestConcurrentAccess(t *testing.T) {
	m := New[int32, int]()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := int32(w*1000 + i)
				m.Set(id, i)
				m.Get(id)
				if i%2 == 0 {
					m.Delete(id)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 8*100, m.Count())
}
