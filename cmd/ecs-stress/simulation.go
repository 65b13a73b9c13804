package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/plus3/spaces/ecs"
	"github.com/plus3/spaces/internal/config"
	"go.uber.org/zap"
)

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Health struct {
	Current, Max int
}

// Lifetime entities expire and are replaced by the lifetime system. Everything
// else is fair game for churn.
type Lifetime struct {
	Remaining float64
}

type Label struct {
	Name string
}

type Burning struct{}

const (
	topicExpired      = "expired"
	topicExtinguished = "extinguished"
)

type simulation struct {
	world  *ecs.World
	spaces []*ecs.Space
	rng    *rand.Rand
	cfg    config.StressConfig
	log    *zap.Logger

	live         *ecs.Query
	spawned      int
	destroyed    int
	expired      int
	extinguished int
}

func parseEventMode(s string) ecs.EventMode {
	if s == "immediate" {
		return ecs.Immediate
	}
	return ecs.Queued
}

func newSimulation(cfg *config.Config, log *zap.Logger) (*simulation, error) {
	w := ecs.NewWorld(
		ecs.WithLogger(log.Named("world")),
		ecs.WithDefaultPoolSize(cfg.World.DefaultPoolSize),
		ecs.WithEventMode(parseEventMode(cfg.World.EventMode)),
	)
	r := w.Registry()
	ecs.RegisterComponent[Position](r, ecs.Pooled[Position](0))
	ecs.RegisterComponent[Velocity](r, ecs.Pooled[Velocity](0))
	ecs.RegisterComponent[Health](r, ecs.Pooled[Health](0))
	ecs.RegisterComponent[Lifetime](r)
	ecs.RegisterComponent[Label](r)
	ecs.RegisterComponent[Burning](r)

	sim := &simulation{
		world: w,
		rng:   rand.New(rand.NewPCG(uint64(cfg.Stress.Seed), 0)),
		cfg:   cfg.Stress,
		log:   log,
	}

	for i := range cfg.Stress.Spaces {
		space, err := w.CreateSpace(fmt.Sprintf("zone-%d", i))
		if err != nil {
			return nil, err
		}
		sim.spaces = append(sim.spaces, space)
	}

	live, err := w.Query(ecs.QueryDescriptor{All: ecs.Types(Position{})})
	if err != nil {
		return nil, err
	}
	sim.live = live

	w.Events().On(topicExpired, func(ecs.Event) { sim.expired++ })
	w.Events().On(topicExtinguished, func(ecs.Event) { sim.extinguished++ })

	if err := sim.registerSystems(); err != nil {
		return nil, err
	}

	for range cfg.Stress.Entities {
		e, err := sim.randomSpace().CreateEntity()
		if err != nil {
			return nil, err
		}
		if err := sim.build(e); err != nil {
			return nil, err
		}
	}
	return sim, w.Init()
}

func (sim *simulation) randomSpace() *ecs.Space {
	return sim.spaces[sim.rng.IntN(len(sim.spaces))]
}

// build gives e a position plus a random mix of the other components.
func (sim *simulation) build(e *ecs.Entity) error {
	rng := sim.rng
	if _, err := ecs.Add(e, Position{X: rng.Float32() * 1000, Y: rng.Float32() * 1000}); err != nil {
		return err
	}
	if rng.IntN(2) == 0 {
		if _, err := ecs.Add(e, Velocity{DX: rng.Float32()*2 - 1, DY: rng.Float32()*2 - 1}); err != nil {
			return err
		}
	}
	if rng.IntN(2) == 0 {
		if _, err := ecs.Add(e, Health{Current: 10, Max: 10}); err != nil {
			return err
		}
		if rng.IntN(4) == 0 {
			if _, err := ecs.Add(e, Burning{}); err != nil {
				return err
			}
		}
	}
	if rng.IntN(3) == 0 {
		if _, err := ecs.Add(e, Lifetime{Remaining: 0.5 + rng.Float64()*2.5}); err != nil {
			return err
		}
	}
	if rng.IntN(8) == 0 {
		if _, err := ecs.Add(e, Label{Name: e.Id().String()}); err != nil {
			return err
		}
	}
	sim.spawned++
	return nil
}

// replace swaps e for a freshly built entity in a random space.
func (sim *simulation) replace(c *ecs.Commands, e *ecs.Entity) {
	c.Destroy(e)
	sim.destroyed++
	c.Spawn(sim.randomSpace(), sim.build)
}

func (sim *simulation) registerSystems() error {
	w := sim.world

	if _, err := w.RegisterSystem("churn", ecs.SystemHooks{
		Update: func(s *ecs.System, frame *ecs.UpdateFrame) error {
			candidates := s.Query("candidates").Snapshot()
			n := min(sim.cfg.ChurnPerFrame, len(candidates))
			for i := range n {
				j := i + sim.rng.IntN(len(candidates)-i)
				candidates[i], candidates[j] = candidates[j], candidates[i]
				sim.replace(frame.Commands, candidates[i])
			}
			return nil
		},
	}, ecs.WithPriority(-10), ecs.WithQuery("candidates", ecs.QueryDescriptor{
		All:  ecs.Types(Position{}),
		None: ecs.Types(Lifetime{}),
	})); err != nil {
		return err
	}

	if _, err := w.RegisterSystem("movement", ecs.SystemHooks{
		Init: func(s *ecs.System) error {
			s.State = ecs.NewView[struct {
				*Position
				*Velocity
			}](s.World())
			return nil
		},
		Update: func(s *ecs.System, frame *ecs.UpdateFrame) error {
			view := s.State.(*ecs.View[struct {
				*Position
				*Velocity
			}])
			dt := float32(frame.DeltaTime)
			for _, m := range view.Iter(s.Query("movers")) {
				m.Position.X += m.Velocity.DX * dt
				m.Position.Y += m.Velocity.DY * dt
			}
			return nil
		},
	}, ecs.WithQuery("movers", ecs.QueryDescriptor{All: ecs.Types(Position{}, Velocity{})})); err != nil {
		return err
	}

	if _, err := w.RegisterSystem("burn", ecs.SystemHooks{
		Update: func(s *ecs.System, frame *ecs.UpdateFrame) error {
			for e := range s.Query("burning").Entities() {
				hp, _ := ecs.Get[Health](e)
				hp.Current--
				if hp.Current <= 0 {
					hp.Current = hp.Max
					ecs.DeferRemove[Burning](frame.Commands, e)
					frame.Events().Emit(ecs.Message{Name: topicExtinguished, Payload: e.Id()})
				}
			}
			return nil
		},
	}, ecs.WithPriority(10), ecs.WithQuery("burning", ecs.QueryDescriptor{All: ecs.Types(Health{}, Burning{})})); err != nil {
		return err
	}

	_, err := w.RegisterSystem("lifetime", ecs.SystemHooks{
		Update: func(s *ecs.System, frame *ecs.UpdateFrame) error {
			for e := range s.Query("mortal").Entities() {
				lt, _ := ecs.Get[Lifetime](e)
				lt.Remaining -= frame.DeltaTime
				if lt.Remaining <= 0 {
					sim.replace(frame.Commands, e)
					frame.Events().Emit(ecs.Message{Name: topicExpired, Payload: e.Id()})
				}
			}
			return nil
		},
	}, ecs.WithPriority(10), ecs.WithQuery("mortal", ecs.QueryDescriptor{All: ecs.Types(Lifetime{})}))
	return err
}
