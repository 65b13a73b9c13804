package ecs

import "reflect"

// Add attaches a T holding value to e and returns the stored instance.
// Pooled types reuse a recycled instance; the value overwrites its previous contents.
func Add[T any](e *Entity, value T) (*T, error) {
	w := e.space.world
	ct, err := w.resolve(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	inst, err := w.attach(e, ct, func(inst any) {
		*inst.(*T) = value
	})
	if err != nil {
		return nil, err
	}
	return inst.(*T), nil
}

// Replace overwrites the T held by e, or attaches one if e has none.
// Overwriting keeps the instance and does not touch queries.
func Replace[T any](e *Entity, value T) (*T, error) {
	if c, ok := Get[T](e); ok {
		*c = value
		return c, nil
	}
	return Add(e, value)
}

// Remove detaches the T held by e.
func Remove[T any](e *Entity) error {
	w := e.space.world
	ct, err := w.resolve(reflect.TypeFor[T]())
	if err != nil {
		return err
	}
	return w.detach(e, ct.index)
}

// Get returns the T held by e. A finalized entity holds nothing, so Get reports
// false; use ReadComponent to tell that apart with EntityDestroyedError.
func Get[T any](e *Entity) (*T, bool) {
	if e.state == EntityRemoved {
		return nil, false
	}
	ct, ok := e.space.world.registry.byType[reflect.TypeFor[T]()]
	if !ok || !e.mask.Has(uint32(ct.index)) {
		return nil, false
	}
	return e.components[ct.index].(*T), true
}

// Has reports whether e holds a T. It is false once e is finalized.
func Has[T any](e *Entity) bool {
	_, ok := Get[T](e)
	return ok
}

// ComponentReader is implemented by anything that can look up a component by type.
type ComponentReader interface {
	ComponentOf(e *Entity, t reflect.Type) (any, error)
}

// ReadComponent returns the T held by e through reader, failing with
// ComponentNotPresentError when e lacks it.
func ReadComponent[T any](reader ComponentReader, e *Entity) (*T, error) {
	c, err := reader.ComponentOf(e, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return c.(*T), nil
}
