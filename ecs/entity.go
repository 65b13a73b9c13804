package ecs

import "fmt"

// EntityId encodes both the space ID (upper 32 bits) and the entity serial within that space (lower 32 bits)
type EntityId uint64

// NewEntityId creates an EntityId from a space ID and serial
func NewEntityId(spaceId uint32, serial uint32) EntityId {
	return EntityId(uint64(spaceId)<<32 | uint64(serial))
}

// SpaceId extracts the space ID from the entity ID
func (e EntityId) SpaceId() uint32 {
	return uint32(e >> 32)
}

// Serial extracts the per-space serial from the entity ID
func (e EntityId) Serial() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

func (e EntityId) String() string {
	return fmt.Sprintf("%d:%d", e.SpaceId(), e.Serial())
}

// EntityState tracks where an entity is in its destruction lifecycle.
type EntityState uint8

const (
	// EntityAlive entities take part in queries and accept component changes.
	EntityAlive EntityState = iota
	// EntityPendingDestroy entities have left every query; their components
	// are released by the sweep at the start of the next step.
	EntityPendingDestroy
	// EntityRemoved entities are gone. Every operation on them fails.
	EntityRemoved
)

func (s EntityState) String() string {
	switch s {
	case EntityAlive:
		return "alive"
	case EntityPendingDestroy:
		return "pending-destroy"
	case EntityRemoved:
		return "removed"
	}
	return "unknown"
}

// Entity correlates a set of components. The mask bit for a component index is
// set exactly when the entity holds an instance at that index.
type Entity struct {
	id         EntityId
	space      *Space
	mask       BitSet
	components []any
	state      EntityState
}

// Id returns the entity's identifier.
func (e *Entity) Id() EntityId { return e.id }

// Space returns the space that owns the entity.
func (e *Entity) Space() *Space { return e.space }

// World returns the world the entity's space belongs to.
func (e *Entity) World() *World { return e.space.world }

// State returns the lifecycle state.
func (e *Entity) State() EntityState { return e.state }

// Alive reports whether the entity has not been destroyed.
func (e *Entity) Alive() bool { return e.state == EntityAlive }

// Mask returns a copy of the entity's component mask.
func (e *Entity) Mask() *BitSet { return e.mask.Clone() }

// HasIndex reports whether the entity holds a component at idx.
func (e *Entity) HasIndex(idx ComponentIndex) bool {
	return e.mask.Has(uint32(idx))
}

// Component returns the instance stored at idx, or nil.
func (e *Entity) Component(idx ComponentIndex) any {
	if !e.mask.Has(uint32(idx)) {
		return nil
	}
	return e.components[idx]
}

// Components returns the held instances in component index order.
func (e *Entity) Components() []any {
	out := make([]any, 0, e.mask.Len())
	e.mask.Each(func(i uint32) {
		out = append(out, e.components[i])
	})
	return out
}

// RemoveIndex detaches the component at idx.
func (e *Entity) RemoveIndex(idx ComponentIndex) error {
	return e.space.world.detach(e, idx)
}

// Destroy marks the entity for destruction. It leaves every query immediately;
// its components are released at the start of the next world step.
// Destroying a pending entity again is a no-op.
func (e *Entity) Destroy() error {
	switch e.state {
	case EntityRemoved:
		return EntityDestroyedError{Entity: e.id}
	case EntityPendingDestroy:
		return nil
	}
	e.space.world.markDestroyed(e)
	return nil
}

// DestroyImmediate destroys the entity and releases its components now.
func (e *Entity) DestroyImmediate() error {
	if e.state == EntityRemoved {
		return EntityDestroyedError{Entity: e.id}
	}
	w := e.space.world
	if e.state == EntityAlive {
		w.markDestroyed(e)
	}
	w.finalize(e)
	return nil
}

func (e *Entity) setComponent(idx ComponentIndex, inst any) {
	if int(idx) >= len(e.components) {
		grown := make([]any, int(idx)+1, max(int(idx)+1, 2*len(e.components)))
		copy(grown, e.components)
		e.components = grown
	}
	e.components[idx] = inst
	e.mask.Add(uint32(idx))
}

func (e *Entity) String() string {
	return fmt.Sprintf("Entity(%v %s %v)", e.id, e.state, &e.mask)
}
