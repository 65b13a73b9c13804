package ecs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plus3/spaces/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func recordingSystem(order *[]string, name string) ecs.SystemHooks {
	return ecs.SystemHooks{
		Update: func(s *ecs.System, frame *ecs.UpdateFrame) error {
			*order = append(*order, name)
			return nil
		},
	}
}

func TestScheduler(t *testing.T) {
	t.Run("registration order", func(t *testing.T) {
		w := ecs.NewWorld()
		var order []string
		for _, name := range []string{"a", "b", "c"} {
			_, err := w.RegisterSystem(name, recordingSystem(&order, name))
			require.NoError(t, err)
		}
		require.NoError(t, w.Init())
		require.NoError(t, w.Update(1))
		require.NoError(t, w.Update(1))
		assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, order)
	})

	t.Run("priority is a stable sort", func(t *testing.T) {
		w := ecs.NewWorld()
		var order []string
		register := func(name string, priority int) {
			_, err := w.RegisterSystem(name, recordingSystem(&order, name), ecs.WithPriority(priority))
			require.NoError(t, err)
		}
		register("late", 10)
		register("early-1", -1)
		register("default-1", 0)
		register("early-2", -1)
		register("default-2", 0)
		require.NoError(t, w.Init())
		require.NoError(t, w.Update(0))

		assert.Equal(t, []string{"early-1", "early-2", "default-1", "default-2", "late"}, order)
	})

	t.Run("registering during a step takes effect next step", func(t *testing.T) {
		w := ecs.NewWorld()
		var order []string
		registered := false
		_, err := w.RegisterSystem("a", ecs.SystemHooks{
			Update: func(s *ecs.System, frame *ecs.UpdateFrame) error {
				order = append(order, "a")
				if !registered {
					registered = true
					_, err := s.World().RegisterSystem("early", recordingSystem(&order, "early"), ecs.WithPriority(-1))
					return err
				}
				return nil
			},
		})
		require.NoError(t, err)
		for _, name := range []string{"b", "c"} {
			_, err := w.RegisterSystem(name, recordingSystem(&order, name))
			require.NoError(t, err)
		}
		require.NoError(t, w.Init())

		require.NoError(t, w.Update(0))
		assert.Equal(t, []string{"a", "b", "c"}, order)

		order = nil
		require.NoError(t, w.Update(0))
		assert.Equal(t, []string{"early", "a", "b", "c"}, order)

		names := make([]string, 0, 4)
		for _, sys := range w.Scheduler().Systems() {
			names = append(names, sys.Name())
		}
		assert.Equal(t, []string{"early", "a", "b", "c"}, names)
	})

	t.Run("systems without update are never dispatched", func(t *testing.T) {
		w := ecs.NewWorld()
		inits := 0
		sys, err := w.RegisterSystem("setup-only", ecs.SystemHooks{
			Init: func(*ecs.System) error { inits++; return nil },
		})
		require.NoError(t, err)
		var order []string
		_, err = w.RegisterSystem("updater", recordingSystem(&order, "updater"))
		require.NoError(t, err)

		require.NoError(t, w.Init())
		require.NoError(t, w.Update(0))
		assert.False(t, sys.Updates())
		assert.Equal(t, 1, inits)
		assert.Equal(t, []string{"updater"}, order)

		stats := w.Scheduler().GetStats()
		assert.Equal(t, int64(0), stats.Systems[0].ExecutionCount)
		assert.Equal(t, int64(1), stats.Systems[1].ExecutionCount)
		assert.Equal(t, int64(1), stats.TotalExecutions)
	})

	t.Run("failing system aborts the step", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		w := ecs.NewWorld(ecs.WithLogger(zap.New(core)))
		boom := errors.New("boom")
		var order []string
		_, err := w.RegisterSystem("first", recordingSystem(&order, "first"))
		require.NoError(t, err)
		_, err = w.RegisterSystem("broken", ecs.SystemHooks{
			Update: func(*ecs.System, *ecs.UpdateFrame) error { return boom },
		})
		require.NoError(t, err)
		_, err = w.RegisterSystem("last", recordingSystem(&order, "last"))
		require.NoError(t, err)
		require.NoError(t, w.Init())

		err = w.Update(0)
		require.Error(t, err)
		assert.ErrorContains(t, err, `system "broken" update`)
		assert.ErrorContains(t, err, "boom")
		assert.Equal(t, []string{"first"}, order)
		assert.Equal(t, 1, logs.FilterMessage("system update failed").Len())
	})

	t.Run("queries resolve at init", func(t *testing.T) {
		w := newTestWorld(t)
		spawn(t, w, with(Position{X: 1}), with(Velocity{DX: 2}))
		spawn(t, w, with(Position{X: 10}))

		sys, err := w.RegisterSystem("movement", ecs.SystemHooks{
			Update: func(s *ecs.System, frame *ecs.UpdateFrame) error {
				for e := range s.Query("movers").Entities() {
					pos, _ := ecs.Get[Position](e)
					vel, _ := ecs.Get[Velocity](e)
					pos.X += vel.DX * float32(frame.DeltaTime)
				}
				return nil
			},
		}, ecs.WithQuery("movers", ecs.QueryDescriptor{All: ecs.Types(Position{}, Velocity{})}))
		require.NoError(t, err)
		assert.Nil(t, sys.Query("movers"))

		require.NoError(t, w.Init())
		require.NotNil(t, sys.Query("movers"))
		assert.Equal(t, 1, sys.Query("movers").Len())

		require.NoError(t, w.Update(0.5))
		for e := range sys.Query("movers").Entities() {
			pos, _ := ecs.Get[Position](e)
			assert.Equal(t, float32(2), pos.X)
		}
	})

	t.Run("late registration initializes at once", func(t *testing.T) {
		w := ecs.NewWorld()
		require.NoError(t, w.Init())
		inits := 0
		_, err := w.RegisterSystem("late", ecs.SystemHooks{
			Init: func(*ecs.System) error { inits++; return nil },
		})
		require.NoError(t, err)
		assert.Equal(t, 1, inits)
	})

	t.Run("init failure", func(t *testing.T) {
		w := ecs.NewWorld()
		_, err := w.RegisterSystem("bad", ecs.SystemHooks{
			Init: func(*ecs.System) error { return errors.New("nope") },
		})
		require.NoError(t, err)
		err = w.Init()
		assert.ErrorContains(t, err, "nope")
		assert.False(t, w.Initialized())
	})

	t.Run("update frame", func(t *testing.T) {
		w := ecs.NewWorld()
		var frames []ecs.UpdateFrame
		_, err := w.RegisterSystem("frames", ecs.SystemHooks{
			Update: func(s *ecs.System, frame *ecs.UpdateFrame) error {
				frames = append(frames, *frame)
				return nil
			},
		})
		require.NoError(t, err)
		require.NoError(t, w.Init())
		require.NoError(t, w.Update(0.25))
		require.NoError(t, w.Update(0.5))

		require.Len(t, frames, 2)
		assert.Equal(t, 0.5, frames[1].DeltaTime)
		assert.Equal(t, 0.75, frames[1].Elapsed)
		assert.Equal(t, uint64(2), frames[1].Step)
		assert.Same(t, w, frames[1].World)
		assert.Equal(t, 0.75, w.Elapsed())
	})
}

func TestWorldLifecycle(t *testing.T) {
	t.Run("update before init", func(t *testing.T) {
		w := ecs.NewWorld()
		err := w.Update(0)
		var notInit ecs.WorldNotInitializedError
		require.True(t, errors.As(err, &notInit))
		assert.Equal(t, "update", notInit.Op)
	})

	t.Run("destroy tears everything down", func(t *testing.T) {
		w := ecs.NewWorld()
		var destroyed []string
		ecs.RegisterComponent[Name](w.Registry(), ecs.OnDestroy(func(e *ecs.Entity, n *Name) {
			destroyed = append(destroyed, n.Value)
		}))

		var systems []string
		for _, name := range []string{"a", "b"} {
			_, err := w.RegisterSystem(name, ecs.SystemHooks{
				Destroy: func(*ecs.System) { systems = append(systems, name) },
			})
			require.NoError(t, err)
		}
		require.NoError(t, w.Init())

		e := spawn(t, w, with(Name{Value: "default"}))
		arena, err := w.CreateSpace("arena")
		require.NoError(t, err)
		other, err := arena.CreateEntity()
		require.NoError(t, err)
		_, err = ecs.Add(other, Name{Value: "arena"})
		require.NoError(t, err)

		calls := 0
		w.Events().On("x", func(ecs.Event) { calls++ })

		w.Destroy()
		assert.Equal(t, []string{"b", "a"}, systems)
		assert.ElementsMatch(t, []string{"default", "arena"}, destroyed)
		assert.Equal(t, ecs.EntityRemoved, e.State())
		assert.Equal(t, ecs.EntityRemoved, other.State())
		assert.True(t, w.Destroyed())
		assert.False(t, w.Initialized())
		assert.Equal(t, 0, w.Registry().Len())

		w.Emit(ecs.Message{Name: "x"})
		w.Events().Tick()
		assert.Equal(t, 0, calls)

		assert.Error(t, w.Update(0))
		assert.Error(t, w.Init())
		_, err = w.CreateEntity()
		assert.Error(t, err)
		_, err = w.Query(ecs.QueryDescriptor{})
		assert.Error(t, err)

		w.Destroy()
	})

	t.Run("run stops on cancel", func(t *testing.T) {
		w := ecs.NewWorld()
		steps := 0
		ctx, cancel := context.WithCancel(context.Background())
		_, err := w.RegisterSystem("counter", ecs.SystemHooks{
			Update: func(*ecs.System, *ecs.UpdateFrame) error {
				steps++
				if steps >= 3 {
					cancel()
				}
				return nil
			},
		})
		require.NoError(t, err)
		require.NoError(t, w.Init())

		require.NoError(t, w.Run(ctx, time.Millisecond))
		assert.GreaterOrEqual(t, steps, 3)
	})

	t.Run("run returns the first update error", func(t *testing.T) {
		w := ecs.NewWorld()
		_, err := w.RegisterSystem("broken", ecs.SystemHooks{
			Update: func(*ecs.System, *ecs.UpdateFrame) error { return errors.New("stop") },
		})
		require.NoError(t, err)
		require.NoError(t, w.Init())
		assert.ErrorContains(t, w.Run(context.Background(), time.Millisecond), "stop")
	})
}
