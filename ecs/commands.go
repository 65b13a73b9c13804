package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
	"go.uber.org/multierr"
)

// Commands buffers structural changes requested while systems run. The world
// flushes the buffer once after every system has updated.
type Commands struct {
	spawns   []spawnCommand
	destroys []*Entity
	adds     []addComponentCommand
	removes  []removeComponentCommand
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	space *Space
	build func(*Entity) error
}

type addComponentCommand struct {
	entity *Entity
	apply  func(*Entity) error
}

type removeComponentCommand struct {
	entity   *Entity
	compType reflect.Type
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.destroys) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Defer queues fn to run after the other queued commands.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues the creation of an entity in space. build, if not nil, runs on the
// new entity to attach its components.
func (c *Commands) Spawn(space *Space, build func(*Entity) error) {
	c.spawns = append(c.spawns, spawnCommand{space: space, build: build})
}

// Destroy queues a deferred destroy of e.
func (c *Commands) Destroy(e *Entity) {
	c.destroys = append(c.destroys, e)
}

// AddComponent queues apply to run against e, unless e is destroyed first.
func (c *Commands) AddComponent(e *Entity, apply func(*Entity) error) {
	c.adds = append(c.adds, addComponentCommand{entity: e, apply: apply})
}

// RemoveComponent queues the removal of the component of type t from e.
func (c *Commands) RemoveComponent(e *Entity, t reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{entity: e, compType: t})
}

// DeferAdd queues Add(e, value).
func DeferAdd[T any](c *Commands, e *Entity, value T) {
	c.AddComponent(e, func(e *Entity) error {
		_, err := Add(e, value)
		return err
	})
}

// DeferRemove queues Remove[T](e).
func DeferRemove[T any](c *Commands, e *Entity) {
	c.RemoveComponent(e, reflect.TypeFor[T]())
}

// Flush applies the queued commands in order: destroys, removes, adds, spawns,
// then deferred functions. Removes and adds targeting an entity that is no longer
// alive are dropped. Every command runs; the failures are combined.
func (c *Commands) Flush(w *World) error {
	var errs error

	for _, e := range c.destroys {
		if e.state == EntityRemoved {
			continue
		}
		errs = multierr.Append(errs, e.Destroy())
	}

	for _, cmd := range c.removes {
		if !cmd.entity.Alive() {
			continue
		}
		ct, err := w.resolve(cmd.compType)
		if err == nil {
			err = w.detach(cmd.entity, ct.index)
		}
		errs = multierr.Append(errs, eris.Wrapf(err, "remove %v from %v", cmd.compType, cmd.entity.id))
	}

	for _, cmd := range c.adds {
		if !cmd.entity.Alive() {
			continue
		}
		errs = multierr.Append(errs, eris.Wrapf(cmd.apply(cmd.entity), "add to %v", cmd.entity.id))
	}

	for _, cmd := range c.spawns {
		space := cmd.space
		if space == nil {
			space = w.Space()
		}
		e, err := space.CreateEntity()
		if err == nil && cmd.build != nil {
			err = cmd.build(e)
		}
		errs = multierr.Append(errs, eris.Wrapf(err, "spawn in %q", space.name))
	}

	for _, fn := range c.defers {
		fn()
	}

	c.reset()
	return errs
}

func (c *Commands) reset() {
	clear(c.spawns)
	clear(c.destroys)
	clear(c.adds)
	clear(c.removes)
	clear(c.defers)
	c.spawns = c.spawns[:0]
	c.destroys = c.destroys[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
