package ecs_test

import (
	"errors"
	"testing"

	"github.com/plus3/spaces/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityId(t *testing.T) {
	id := ecs.NewEntityId(3, 42)
	assert.Equal(t, uint32(3), id.SpaceId())
	assert.Equal(t, uint32(42), id.Serial())
	assert.Equal(t, "3:42", id.String())
}

func TestEntityComponents(t *testing.T) {
	t.Run("add get has", func(t *testing.T) {
		w := newTestWorld(t)
		e := spawn(t, w)

		pos, err := ecs.Add(e, Position{X: 1, Y: 2})
		require.NoError(t, err)
		assert.Equal(t, Position{X: 1, Y: 2}, *pos)

		got, ok := ecs.Get[Position](e)
		require.True(t, ok)
		assert.Same(t, pos, got)
		assert.True(t, ecs.Has[Position](e))
		assert.False(t, ecs.Has[Velocity](e))

		idx, _ := ecs.IndexOf[Position](w.Registry())
		assert.True(t, e.HasIndex(idx))
		assert.Same(t, pos, e.Component(idx))
		assert.Len(t, e.Components(), 1)
	})

	t.Run("mask bit tracks presence", func(t *testing.T) {
		w := newTestWorld(t)
		e := spawn(t, w, with(Position{}), with(Health{Current: 1}))
		pi, _ := ecs.IndexOf[Position](w.Registry())
		hi, _ := ecs.IndexOf[Health](w.Registry())

		assert.True(t, e.Mask().Has(uint32(pi)))
		require.NoError(t, ecs.Remove[Position](e))
		assert.False(t, e.Mask().Has(uint32(pi)))
		assert.True(t, e.Mask().Has(uint32(hi)))
		assert.Nil(t, e.Component(pi))
	})

	t.Run("duplicate add", func(t *testing.T) {
		w := newTestWorld(t)
		e := spawn(t, w, with(Name{Value: "a"}))
		_, err := ecs.Add(e, Name{Value: "b"})

		var dup ecs.DuplicateComponentError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, e.Id(), dup.Entity)
		name, _ := ecs.Get[Name](e)
		assert.Equal(t, "a", name.Value)
	})

	t.Run("replace keeps the instance", func(t *testing.T) {
		w := newTestWorld(t)
		e := spawn(t, w)
		first, err := ecs.Replace(e, Score(1))
		require.NoError(t, err)
		second, err := ecs.Replace(e, Score(2))
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, Score(2), *second)
	})

	t.Run("remove absent component", func(t *testing.T) {
		w := newTestWorld(t)
		e := spawn(t, w)
		err := ecs.Remove[Position](e)

		var notPresent ecs.ComponentNotPresentError
		require.True(t, errors.As(err, &notPresent))
		assert.Equal(t, e.Id(), notPresent.Entity)
	})

	t.Run("unregistered type in strict world", func(t *testing.T) {
		w := ecs.NewWorld()
		e := spawn(t, w)
		_, err := ecs.Add(e, Position{})

		var notRegistered ecs.ComponentNotRegisteredError
		assert.True(t, errors.As(err, &notRegistered))
	})

	t.Run("auto registered types are transient", func(t *testing.T) {
		w := ecs.NewWorld(ecs.WithAutoRegister(true))
		e := spawn(t, w, with(Position{X: 5}))
		pos, ok := ecs.Get[Position](e)
		require.True(t, ok)
		assert.Equal(t, float32(5), pos.X)
		assert.False(t, w.Registry().Types()[0].Pooled)
	})

	t.Run("pooled instance is zeroed before reuse", func(t *testing.T) {
		w := newTestWorld(t)
		resets := 0
		ecs.RegisterComponent[Inventory](w.Registry(), ecs.OnReset(func(inv *Inventory) {
			resets++
		}))
		e := spawn(t, w)
		inv, err := ecs.Add(e, Inventory{Items: []string{"sword"}})
		require.NoError(t, err)
		require.NoError(t, ecs.Remove[Inventory](e))

		// Inventory was already registered by newTestWorld, so OnReset is ignored
		assert.Equal(t, 0, resets)

		again, err := ecs.Add(e, Inventory{})
		require.NoError(t, err)
		assert.Same(t, inv, again)
		assert.Empty(t, again.Items)
	})

	t.Run("read component through a reader", func(t *testing.T) {
		w := newTestWorld(t)
		e := spawn(t, w, with(Health{Current: 7, Max: 10}))
		h, err := ecs.ReadComponent[Health](w, e)
		require.NoError(t, err)
		assert.Equal(t, 7, h.Current)

		_, err = ecs.ReadComponent[Velocity](w, e)
		assert.Error(t, err)
	})
}

func TestComponentHooks(t *testing.T) {
	t.Run("init runs at once in an initialized world", func(t *testing.T) {
		w := ecs.NewWorld()
		var inits []string
		ecs.RegisterComponent[Name](w.Registry(), ecs.OnInit(func(e *ecs.Entity, n *Name) {
			inits = append(inits, n.Value)
		}))
		require.NoError(t, w.Init())

		spawn(t, w, with(Name{Value: "a"}))
		assert.Equal(t, []string{"a"}, inits)
	})

	t.Run("init hooks queued until world init in creation order", func(t *testing.T) {
		w := ecs.NewWorld()
		var inits []string
		ecs.RegisterComponent[Name](w.Registry(), ecs.OnInit(func(e *ecs.Entity, n *Name) {
			inits = append(inits, n.Value)
		}))

		spawn(t, w, with(Name{Value: "first"}))
		removed := spawn(t, w, with(Name{Value: "removed"}))
		spawn(t, w, with(Name{Value: "second"}))
		require.NoError(t, ecs.Remove[Name](removed))
		assert.Empty(t, inits)

		require.NoError(t, w.Init())
		assert.Equal(t, []string{"first", "second"}, inits)

		require.NoError(t, w.Init())
		assert.Len(t, inits, 2)
	})

	t.Run("destroy hook sees the instance before release", func(t *testing.T) {
		w := ecs.NewWorld()
		var destroyed []float32
		ecs.RegisterComponent[Position](w.Registry(),
			ecs.Pooled[Position](4),
			ecs.OnDestroy(func(e *ecs.Entity, p *Position) {
				destroyed = append(destroyed, p.X)
			}))
		e := spawn(t, w, with(Position{X: 9}))
		require.NoError(t, ecs.Remove[Position](e))
		assert.Equal(t, []float32{9}, destroyed)
	})
}

func TestEntityDestroy(t *testing.T) {
	t.Run("deferred destroy", func(t *testing.T) {
		w := newTestWorld(t)
		require.NoError(t, w.Init())
		e := spawn(t, w, with(Position{}))

		require.NoError(t, e.Destroy())
		assert.Equal(t, ecs.EntityPendingDestroy, e.State())
		assert.False(t, e.Alive())
		assert.Equal(t, 1, w.PendingDestroyCount())
		assert.True(t, ecs.Has[Position](e))

		// destroying twice while pending is a no-op
		require.NoError(t, e.Destroy())

		_, err := ecs.Add(e, Velocity{})
		var destroyed ecs.EntityDestroyedError
		require.True(t, errors.As(err, &destroyed))

		require.NoError(t, w.Update(0.016))
		assert.Equal(t, ecs.EntityRemoved, e.State())
		assert.False(t, ecs.Has[Position](e))
		_, found := w.Entity(e.Id())
		assert.False(t, found)
		assert.Equal(t, 0, w.PendingDestroyCount())

		assert.Error(t, e.Destroy())
		assert.Error(t, ecs.Remove[Position](e))
	})

	t.Run("immediate destroy", func(t *testing.T) {
		w := newTestWorld(t)
		e := spawn(t, w, with(Position{}), with(Velocity{}))
		posPool := w.Registry().Types()[0].Pool

		require.NoError(t, e.DestroyImmediate())
		assert.Equal(t, ecs.EntityRemoved, e.State())
		assert.Equal(t, 0, w.Space().Len())
		assert.Equal(t, posPool.Used-1, w.Registry().Types()[0].Pool.Used)
		assert.Error(t, e.DestroyImmediate())
	})

	t.Run("reads on a finalized entity", func(t *testing.T) {
		w := newTestWorld(t)
		e := spawn(t, w, with(Position{X: 1}))
		require.NoError(t, e.DestroyImmediate())

		pos, ok := ecs.Get[Position](e)
		assert.False(t, ok)
		assert.Nil(t, pos)
		assert.False(t, ecs.Has[Position](e))

		_, err := ecs.ReadComponent[Position](w, e)
		var destroyed ecs.EntityDestroyedError
		require.True(t, errors.As(err, &destroyed))
		assert.Equal(t, e.Id(), destroyed.Entity)
	})

	t.Run("immediate destroy of a pending entity", func(t *testing.T) {
		w := newTestWorld(t)
		require.NoError(t, w.Init())
		e := spawn(t, w, with(Health{}))
		require.NoError(t, e.Destroy())
		require.NoError(t, e.DestroyImmediate())
		assert.Equal(t, ecs.EntityRemoved, e.State())
		require.NoError(t, w.Update(0))
	})
}

func TestSpaces(t *testing.T) {
	w := newTestWorld(t)
	arena, err := w.CreateSpace("arena")
	require.NoError(t, err)
	again, err := w.CreateSpace("arena")
	require.NoError(t, err)
	assert.Same(t, arena, again)

	a, err := arena.CreateEntity()
	require.NoError(t, err)
	b, err := arena.CreateEntity()
	require.NoError(t, err)
	d := spawn(t, w)

	assert.Equal(t, arena.ID(), a.Id().SpaceId())
	assert.Equal(t, uint32(1), a.Id().Serial())
	assert.Equal(t, uint32(2), b.Id().Serial())
	assert.NotEqual(t, a.Id(), d.Id())
	assert.Same(t, arena, a.Space())
	assert.Same(t, w, a.World())

	got, ok := w.Entity(b.Id())
	require.True(t, ok)
	assert.Same(t, b, got)

	var order []*ecs.Entity
	for e := range arena.Entities() {
		order = append(order, e)
	}
	assert.Equal(t, []*ecs.Entity{a, b}, order)
	assert.Equal(t, 3, w.EntityCount())

	_, err = ecs.Add(a, Health{Current: 1})
	require.NoError(t, err)
	arena.Destroy()
	assert.Equal(t, ecs.EntityRemoved, a.State())
	assert.Equal(t, ecs.EntityRemoved, b.State())
	assert.Equal(t, ecs.EntityAlive, d.State())

	_, ok = w.SpaceByName("arena")
	assert.False(t, ok)
	_, err = arena.CreateEntity()
	var spaceErr ecs.SpaceDestroyedError
	assert.True(t, errors.As(err, &spaceErr))

	_, err = w.CreateSpace("$world")
	assert.Error(t, err)
}
