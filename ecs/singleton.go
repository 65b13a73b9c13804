package ecs

import "reflect"

// reserved name of the space holding the world entity
const worldSpaceName = "$world"

// Singleton provides access to a single world-scoped component instance. The
// instance lives on a reserved world entity that never takes part in queries,
// so global state such as configuration or input snapshots does not show up
// next to regular entities.
type Singleton[T any] struct {
	world *World
}

// NewSingleton returns the accessor for T, creating the instance if it does not
// exist yet. The instance starts from initializer when one is given, otherwise
// from the zero value.
func NewSingleton[T any](w *World, initializer ...T) (*Singleton[T], error) {
	s := &Singleton[T]{world: w}
	if s.Get() != nil {
		return s, nil
	}
	var value T
	if len(initializer) > 0 {
		value = initializer[0]
	}
	e, err := w.worldEntity()
	if err != nil {
		return nil, err
	}
	if _, err := Add(e, value); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the singleton instance, or nil if it has been removed.
func (s *Singleton[T]) Get() *T {
	e := s.world.singletons
	if e == nil {
		return nil
	}
	ptr, _ := Get[T](e)
	return ptr
}

// Exists reports whether the singleton instance is present.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

// Remove detaches the singleton instance from the world entity.
func (s *Singleton[T]) Remove() error {
	e := s.world.singletons
	if e == nil || !Has[T](e) {
		return ComponentNotPresentError{Type: reflect.TypeFor[T]()}
	}
	return Remove[T](e)
}

// SingletonTypes returns the types of every singleton currently held by w.
func (w *World) SingletonTypes() []reflect.Type {
	if w.singletons == nil {
		return nil
	}
	var out []reflect.Type
	w.singletons.mask.Each(func(i uint32) {
		if t, ok := w.registry.TypeAt(ComponentIndex(i)); ok {
			out = append(out, t)
		}
	})
	return out
}
