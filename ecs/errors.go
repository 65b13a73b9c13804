package ecs

import (
	"fmt"
	"reflect"
)

// ComponentNotRegisteredError is returned when a component type is looked up
// in a registry that has never seen it and does not auto-register.
type ComponentNotRegisteredError struct {
	Type reflect.Type
}

func (e ComponentNotRegisteredError) Error() string {
	return fmt.Sprintf("component type not registered: %v", e.Type)
}

// ComponentNotPresentError is returned when removing or reading a component the entity does not hold.
type ComponentNotPresentError struct {
	Type   reflect.Type
	Entity EntityId
}

func (e ComponentNotPresentError) Error() string {
	return fmt.Sprintf("component %v not present on entity %v", e.Type, e.Entity)
}

// DuplicateComponentError is returned when adding a component the entity already holds.
type DuplicateComponentError struct {
	Type   reflect.Type
	Entity EntityId
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("component %v already present on entity %v", e.Type, e.Entity)
}

// WorldNotInitializedError is returned when an operation needs an initialized,
// not yet destroyed world.
type WorldNotInitializedError struct {
	Op string
}

func (e WorldNotInitializedError) Error() string {
	return fmt.Sprintf("world not initialized: %s", e.Op)
}

// EntityDestroyedError is returned for operations on an entity whose destruction
// has been requested or finalized.
type EntityDestroyedError struct {
	Entity EntityId
}

func (e EntityDestroyedError) Error() string {
	return fmt.Sprintf("entity %v has been destroyed", e.Entity)
}

// PoolMisuseError is returned when an instance is recycled into a pool that
// did not hand it out, or is recycled twice.
type PoolMisuseError struct {
	Reason string
}

func (e PoolMisuseError) Error() string {
	return "object pool misuse: " + e.Reason
}

// SpaceDestroyedError is returned when creating entities in a destroyed space.
type SpaceDestroyedError struct {
	Name string
}

func (e SpaceDestroyedError) Error() string {
	return fmt.Sprintf("space %q has been destroyed", e.Name)
}
