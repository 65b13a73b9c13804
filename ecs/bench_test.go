package ecs_test

import (
	"testing"

	"github.com/plus3/spaces/ecs"
)

func BenchmarkAddRemove(b *testing.B) {
	w := newTestWorld(b)
	_, _ = w.Query(ecs.QueryDescriptor{All: ecs.Types(Position{}, Velocity{})})
	_, _ = w.Query(ecs.QueryDescriptor{All: ecs.Types(Position{}), None: ecs.Types(Frozen{})})
	e := spawn(b, w, with(Position{}))

	b.ReportAllocs()
	for b.Loop() {
		_, _ = ecs.Add(e, Velocity{DX: 1})
		_ = ecs.Remove[Velocity](e)
	}
}

func BenchmarkSpawnDestroy(b *testing.B) {
	w := newTestWorld(b)
	if err := w.Init(); err != nil {
		b.Fatal(err)
	}
	_, _ = w.Query(ecs.QueryDescriptor{All: ecs.Types(Position{}, Velocity{})})

	b.ReportAllocs()
	for b.Loop() {
		for range 100 {
			e, _ := w.CreateEntity()
			_, _ = ecs.Add(e, Position{})
			_, _ = ecs.Add(e, Velocity{})
			_ = e.Destroy()
		}
		_ = w.Update(0)
	}
}

func BenchmarkQueryIteration(b *testing.B) {
	for _, size := range []struct {
		name  string
		count int
	}{
		{"1k", 1_000},
		{"10k", 10_000},
	} {
		b.Run(size.name, func(b *testing.B) {
			w := newTestWorld(b)
			q, _ := w.Query(ecs.QueryDescriptor{All: ecs.Types(Position{}, Velocity{})})
			for i := range size.count {
				e := spawn(b, w, with(Position{}))
				if i%2 == 0 {
					_, _ = ecs.Add(e, Velocity{DX: 1})
				}
			}

			for b.Loop() {
				for e := range q.Entities() {
					pos, _ := ecs.Get[Position](e)
					vel, _ := ecs.Get[Velocity](e)
					pos.X += vel.DX
				}
			}
		})
	}
}

func BenchmarkViewIteration(b *testing.B) {
	w := newTestWorld(b)
	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](w)
	q, _ := view.Query()
	for range 10_000 {
		spawn(b, w, with(Position{}), with(Velocity{DX: 1}))
	}

	for b.Loop() {
		for _, item := range view.Iter(q) {
			item.Position.X += item.Velocity.DX
		}
	}
}
