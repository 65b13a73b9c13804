package ecs

import (
	"context"
	"reflect"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultSpaceName names the space World.CreateEntity creates entities in.
const DefaultSpaceName = "default"

// World owns the component registry, the live queries, the event system, the
// spaces with their entities and the registered systems. A World is not safe for
// concurrent use.
type World struct {
	registry  *ComponentRegistry
	queries   *queryEngine
	events    *EventSystem
	scheduler *Scheduler
	commands  *Commands
	frame     UpdateFrame

	spaces       []*Space
	spacesByName map[string]*Space
	spacesById   map[uint32]*Space
	nextSpaceId  uint32
	defaultSpace *Space

	// reserved space and entity holding singletons
	worldSpace *Space
	singletons *Entity

	initialized bool
	destroyed   bool
	elapsed     float64
	step        uint64

	pendingDestroy []*Entity
	pendingInits   []pendingInit

	log *zap.Logger
}

type pendingInit struct {
	entity *Entity
	ct     *componentType
	inst   any
}

// NewWorld creates an uninitialized world with a default space.
func NewWorld(opts ...WorldOption) *World {
	o := worldOptions{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	w := &World{
		registry:     NewComponentRegistry(o.autoRegister, o.log.Named("registry")),
		events:       NewEventSystem(o.eventMode),
		scheduler:    newScheduler(o.log.Named("scheduler")),
		commands:     newCommands(),
		spacesByName: make(map[string]*Space),
		spacesById:   make(map[uint32]*Space),
		log:          o.log,
	}
	w.registry.SetDefaultPoolSize(o.poolSize)
	w.queries = newQueryEngine(w.registry, o.log.Named("query"))
	w.frame.World = w
	w.frame.Commands = w.commands
	w.defaultSpace = w.newSpace(DefaultSpaceName)
	return w
}

// Registry returns the world's component registry.
func (w *World) Registry() *ComponentRegistry { return w.registry }

// Events returns the world's event system.
func (w *World) Events() *EventSystem { return w.events }

// Scheduler returns the world's system scheduler.
func (w *World) Scheduler() *Scheduler { return w.scheduler }

// Commands returns the buffer flushed after the systems of each step.
func (w *World) Commands() *Commands { return w.commands }

// Logger returns the world's logger.
func (w *World) Logger() *zap.Logger { return w.log }

// Initialized reports whether Init has run and Destroy has not.
func (w *World) Initialized() bool { return w.initialized }

// Destroyed reports whether Destroy has run.
func (w *World) Destroyed() bool { return w.destroyed }

// Elapsed returns the sum of every delta passed to Update.
func (w *World) Elapsed() float64 { return w.elapsed }

// Step returns the number of completed or running Update calls.
func (w *World) Step() uint64 { return w.step }

// Emit is shorthand for Events().Emit.
func (w *World) Emit(ev Event) { w.events.Emit(ev) }

func (w *World) newSpace(name string) *Space {
	s := newSpace(w, w.nextSpaceId, name)
	w.nextSpaceId++
	return w.addSpace(s)
}

func (w *World) addSpace(s *Space) *Space {
	w.spaces = append(w.spaces, s)
	w.spacesByName[s.name] = s
	w.spacesById[s.id] = s
	return s
}

// CreateSpace returns the space called name, creating it if needed.
func (w *World) CreateSpace(name string) (*Space, error) {
	if err := w.checkUsable("create space"); err != nil {
		return nil, err
	}
	if name == worldSpaceName {
		return nil, eris.Errorf("space name %q is reserved", name)
	}
	if s, ok := w.spacesByName[name]; ok {
		return s, nil
	}
	return w.newSpace(name), nil
}

// Space returns the default space.
func (w *World) Space() *Space { return w.defaultSpace }

// SpaceByName looks up a space created with CreateSpace.
func (w *World) SpaceByName(name string) (*Space, bool) {
	s, ok := w.spacesByName[name]
	return s, ok
}

// Spaces returns the live spaces in creation order.
func (w *World) Spaces() []*Space { return slices.Clone(w.spaces) }

// CreateEntity creates an entity in the default space.
func (w *World) CreateEntity() (*Entity, error) {
	return w.defaultSpace.CreateEntity()
}

// Entity looks up an entity by ID in whichever space owns it.
func (w *World) Entity(id EntityId) (*Entity, bool) {
	s, ok := w.spacesById[id.SpaceId()]
	if !ok {
		return nil, false
	}
	return s.Entity(id)
}

// EntityCount returns the number of entities over all spaces, pending destroys included.
func (w *World) EntityCount() int {
	n := 0
	for _, s := range w.spaces {
		n += s.Len()
	}
	return n
}

// Query returns the live query for desc, registering it on first use.
func (w *World) Query(desc QueryDescriptor) (*Query, error) {
	if err := w.checkUsable("query"); err != nil {
		return nil, err
	}
	return w.queries.register(desc, func(visit func(*Entity)) {
		for _, s := range w.spaces {
			for e := range s.Entities() {
				visit(e)
			}
		}
	})
}

// Queries returns every live query in registration order.
func (w *World) Queries() []*Query { return slices.Clone(w.queries.queries) }

// RegisterSystem adds a system. Registering into an initialized world resolves
// the system's queries and runs its init hook at once.
func (w *World) RegisterSystem(name string, hooks SystemHooks, opts ...SystemOption) (*System, error) {
	if err := w.checkUsable("register system"); err != nil {
		return nil, err
	}
	sys := &System{
		name:    name,
		hooks:   hooks,
		updates: hooks.Update != nil,
		world:   w,
	}
	for _, opt := range opts {
		opt(sys)
	}
	w.scheduler.add(sys)
	if w.initialized {
		if err := sys.init(); err != nil {
			return sys, eris.Wrapf(err, "system %q init", name)
		}
	}
	return sys, nil
}

// Init initializes every registered system in order, marks the world initialized
// and fires the init hooks of components attached before this call, in the order
// they were attached. Calling Init again is a no-op.
func (w *World) Init() error {
	if w.destroyed {
		return WorldNotInitializedError{Op: "init"}
	}
	if w.initialized {
		return nil
	}
	if err := w.scheduler.initAll(); err != nil {
		return err
	}
	w.initialized = true

	pending := w.pendingInits
	w.pendingInits = nil
	fired := 0
	for _, p := range pending {
		e := p.entity
		if e.state == EntityRemoved || !e.mask.Has(uint32(p.ct.index)) || e.components[p.ct.index] != p.inst {
			continue
		}
		p.ct.runInit(e, p.inst)
		fired++
	}

	w.log.Debug("world initialized",
		zap.Int("systems", w.scheduler.Len()),
		zap.Int("component_inits", fired))
	return nil
}

// Update runs one world step: finalize deferred destroys, publish the query
// deltas gathered since the previous step, run the systems, flush queued
// commands and deliver queued events. A failing system aborts the step.
func (w *World) Update(dt float64) error {
	if !w.initialized || w.destroyed {
		return WorldNotInitializedError{Op: "update"}
	}
	w.step++
	w.elapsed += dt

	w.sweep()
	w.queries.rotate()

	w.frame.reset(dt, w.elapsed, w.step)
	if err := w.scheduler.once(&w.frame); err != nil {
		return err
	}
	if err := w.commands.Flush(w); err != nil {
		return eris.Wrap(err, "flush commands")
	}
	w.events.Tick()
	return nil
}

// Run calls Update at the given interval until ctx is cancelled or a step fails.
func (w *World) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := w.Update(dt); err != nil {
				return err
			}
		}
	}
}

// Destroy tears the world down: system destroy hooks run in reverse order, every
// space is destroyed with its entities, and all handlers, queries and component
// registrations are dropped. The world cannot be used afterwards.
func (w *World) Destroy() {
	if w.destroyed {
		return
	}
	w.scheduler.destroyAll()

	entities := w.EntityCount()
	for _, s := range slices.Backward(slices.Clone(w.spaces)) {
		s.Destroy()
	}
	if w.worldSpace != nil {
		w.worldSpace.Destroy()
	}

	w.events.Reset()
	w.queries.reset()
	w.registry.reset()
	w.commands.reset()
	w.pendingDestroy = nil
	w.pendingInits = nil
	w.initialized = false
	w.destroyed = true

	w.log.Debug("world destroyed", zap.Int("entities", entities))
}

func (w *World) checkUsable(op string) error {
	if w.destroyed {
		return WorldNotInitializedError{Op: op}
	}
	return nil
}

func (w *World) dropSpace(s *Space) {
	if s == w.worldSpace {
		w.worldSpace = nil
		w.singletons = nil
		return
	}
	w.spaces = slices.DeleteFunc(w.spaces, func(other *Space) bool { return other == s })
	delete(w.spacesByName, s.name)
	delete(w.spacesById, s.id)
}

func (w *World) worldEntity() (*Entity, error) {
	if w.singletons != nil {
		return w.singletons, nil
	}
	if err := w.checkUsable("create singleton"); err != nil {
		return nil, err
	}
	w.worldSpace = newSpace(w, w.nextSpaceId, worldSpaceName)
	w.nextSpaceId++
	e, err := w.worldSpace.CreateEntity()
	if err != nil {
		return nil, err
	}
	w.singletons = e
	return e, nil
}

func (w *World) resolve(t reflect.Type) (*componentType, error) {
	if err := w.checkUsable("resolve component"); err != nil {
		return nil, err
	}
	return w.registry.lookup(t)
}

// attach acquires an instance of ct for e, lets assign fill it, and publishes
// the mask transition.
func (w *World) attach(e *Entity, ct *componentType, assign func(any)) (any, error) {
	if err := w.checkUsable("add component"); err != nil {
		return nil, err
	}
	if e.state != EntityAlive {
		return nil, EntityDestroyedError{Entity: e.id}
	}
	if e.mask.Has(uint32(ct.index)) {
		return nil, DuplicateComponentError{Type: ct.rtype, Entity: e.id}
	}

	inst := ct.storage.acquire()
	assign(inst)
	e.setComponent(ct.index, inst)

	if w.initialized {
		ct.runInit(e, inst)
	} else if ct.onInit != nil {
		w.pendingInits = append(w.pendingInits, pendingInit{entity: e, ct: ct, inst: inst})
	}

	if e.space != w.worldSpace {
		w.queries.onMaskChanged(e, ct.index)
	}
	return inst, nil
}

// detach runs the destroy hook, clears the mask bit and publishes the transition
// before the instance goes back to its storage.
func (w *World) detach(e *Entity, idx ComponentIndex) error {
	if err := w.checkUsable("remove component"); err != nil {
		return err
	}
	if e.state == EntityRemoved {
		return EntityDestroyedError{Entity: e.id}
	}
	if !e.mask.Has(uint32(idx)) {
		t, _ := w.registry.TypeAt(idx)
		return ComponentNotPresentError{Type: t, Entity: e.id}
	}

	ct := w.registry.types[idx]
	inst := e.components[idx]
	ct.runDestroy(e, inst)
	e.mask.Remove(uint32(idx))
	if e.space != w.worldSpace {
		w.queries.onMaskChanged(e, idx)
	}
	e.components[idx] = nil
	return ct.storage.release(inst)
}

// markDestroyed moves e to PendingDestroy and out of every query.
func (w *World) markDestroyed(e *Entity) {
	e.state = EntityPendingDestroy
	w.queries.evict(e)
	w.pendingDestroy = append(w.pendingDestroy, e)
}

// finalize releases every component of a pending entity and forgets it.
func (w *World) finalize(e *Entity) {
	if e.state != EntityPendingDestroy {
		return
	}
	indices := make([]ComponentIndex, 0, e.mask.Len())
	e.mask.Each(func(i uint32) {
		indices = append(indices, ComponentIndex(i))
	})
	for _, idx := range indices {
		ct := w.registry.types[idx]
		inst := e.components[idx]
		ct.runDestroy(e, inst)
		e.components[idx] = nil
		if err := ct.storage.release(inst); err != nil {
			w.log.Error("release component",
				zap.Stringer("entity", e.id),
				zap.Stringer("type", ct.rtype),
				zap.Error(err))
		}
	}
	e.mask.Reset()
	e.state = EntityRemoved
	e.space.forget(e)
}

// sweep finalizes every entity destroyed since the previous sweep.
func (w *World) sweep() {
	if len(w.pendingDestroy) == 0 {
		return
	}
	pending := w.pendingDestroy
	w.pendingDestroy = nil
	swept := 0
	for _, e := range pending {
		if e.state == EntityPendingDestroy {
			w.finalize(e)
			swept++
		}
	}
	w.log.Debug("destroyed entities swept",
		zap.Uint64("step", w.step),
		zap.Int("count", swept))
}

// PendingDestroyCount returns the number of entities awaiting the next sweep.
func (w *World) PendingDestroyCount() int {
	n := 0
	for _, e := range w.pendingDestroy {
		if e.state == EntityPendingDestroy {
			n++
		}
	}
	return n
}

// ComponentOf returns the component of type t held by e.
func (w *World) ComponentOf(e *Entity, t reflect.Type) (any, error) {
	if e.state == EntityRemoved {
		return nil, EntityDestroyedError{Entity: e.id}
	}
	ct, ok := w.registry.byType[t]
	if !ok || !e.mask.Has(uint32(ct.index)) {
		return nil, ComponentNotPresentError{Type: t, Entity: e.id}
	}
	return e.components[ct.index], nil
}
