package ecs_test

import (
	"testing"

	"github.com/plus3/spaces/ecs"
	"github.com/stretchr/testify/require"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Frozen struct{}

type Score int32

type Inventory struct {
	Items []string
}

func newTestWorld(t testing.TB, opts ...ecs.WorldOption) *ecs.World {
	t.Helper()
	w := ecs.NewWorld(opts...)
	r := w.Registry()
	ecs.RegisterComponent[Position](r, ecs.Pooled[Position](16))
	ecs.RegisterComponent[Velocity](r, ecs.Pooled[Velocity](16))
	ecs.RegisterComponent[Name](r)
	ecs.RegisterComponent[Health](r)
	ecs.RegisterComponent[Frozen](r)
	ecs.RegisterComponent[Score](r)
	ecs.RegisterComponent[Inventory](r, ecs.Pooled[Inventory](0))
	return w
}

func spawn(t testing.TB, w *ecs.World, components ...func(*ecs.Entity) error) *ecs.Entity {
	t.Helper()
	e, err := w.CreateEntity()
	require.NoError(t, err)
	for _, add := range components {
		require.NoError(t, add(e))
	}
	return e
}

func with[T any](value T) func(*ecs.Entity) error {
	return func(e *ecs.Entity) error {
		_, err := ecs.Add(e, value)
		return err
	}
}
