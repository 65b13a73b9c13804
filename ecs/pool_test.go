package ecs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pooledThing struct {
	N int
}

func TestObjectPool(t *testing.T) {
	t.Run("initial size builds idle instances", func(t *testing.T) {
		built := 0
		p := NewObjectPool(func() *pooledThing {
			built++
			return &pooledThing{}
		}, 10)
		assert.Equal(t, 10, built)
		assert.Equal(t, 10, p.Size())
		assert.Equal(t, 10, p.Available())
		assert.Equal(t, 0, p.Used())
	})

	t.Run("grow and shrink hysteresis", func(t *testing.T) {
		p := NewObjectPool[pooledThing](nil, 100)
		items := make([]*pooledThing, 0, 101)
		for range 101 {
			items = append(items, p.Request())
		}
		assert.Equal(t, 121, p.Size())
		assert.Equal(t, 20, p.Available())
		assert.Equal(t, 101, p.Used())

		for _, item := range items[:20] {
			require.NoError(t, p.Recycle(item))
		}
		assert.Equal(t, 102, p.Size())
		assert.Equal(t, 21, p.Available())
		assert.Equal(t, 81, p.Used())
	})

	t.Run("empty pool grows by one", func(t *testing.T) {
		p := NewObjectPool[pooledThing](nil, 0)
		item := p.Request()
		require.NotNil(t, item)
		assert.Equal(t, 1, p.Size())
		assert.Equal(t, 0, p.Available())
		assert.True(t, p.Owns(item))
	})

	t.Run("request never hands out an instance twice", func(t *testing.T) {
		p := NewObjectPool[pooledThing](nil, 4)
		seen := make(map[*pooledThing]bool)
		for range 50 {
			item := p.Request()
			assert.False(t, seen[item])
			seen[item] = true
		}
	})

	t.Run("double recycle fails fast", func(t *testing.T) {
		p := NewObjectPool[pooledThing](nil, 0)
		item := p.Request()
		require.NoError(t, p.Recycle(item))
		stats := p.Stats()

		err := p.Recycle(item)
		var misuse PoolMisuseError
		require.True(t, errors.As(err, &misuse))
		assert.Equal(t, stats, p.Stats())
	})

	t.Run("foreign and nil recycle fail", func(t *testing.T) {
		p := NewObjectPool[pooledThing](nil, 2)
		assert.Error(t, p.Recycle(&pooledThing{}))
		assert.Error(t, p.Recycle(nil))
		assert.Equal(t, 2, p.Available())
	})

	t.Run("free discards idle instances", func(t *testing.T) {
		p := NewObjectPool[pooledThing](nil, 5)
		item := p.Request()
		assert.Equal(t, 4, p.Free(10))
		assert.Equal(t, 1, p.Size())
		assert.Equal(t, 0, p.Free(3))
		require.NoError(t, p.Recycle(item))
		assert.Equal(t, 1, p.Available())
	})
}

func TestCeilFifth(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 5: 1, 6: 2, 100: 20, 121: 25}
	for n, want := range cases {
		assert.Equal(t, want, ceilFifth(n), "n=%d", n)
	}
}

func BenchmarkObjectPool(b *testing.B) {
	p := NewObjectPool[pooledThing](nil, 64)
	items := make([]*pooledThing, 0, 64)
	for b.Loop() {
		for range 64 {
			items = append(items, p.Request())
		}
		for _, item := range items {
			_ = p.Recycle(item)
		}
		items = items[:0]
	}
}
