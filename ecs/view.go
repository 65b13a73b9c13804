package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View maps entities onto a struct of component pointers.
// The type T should be a struct with embedded or named pointer fields for each component type.
// Named fields can be marked as optional using the `ecs:"optional"` struct tag.
type View[T any] struct {
	world       *World
	registry    *ComponentRegistry
	types       []reflect.Type
	indices     []ComponentIndex
	resolved    []bool
	optional    []bool
	fieldOffset []uintptr
}

// NewView creates a new view for the given struct type.
// Embedded fields are always required.
// Named fields can be marked as optional using the `ecs:"optional"` struct tag.
func NewView[T any](w *World) *View[T] {
	v := newView[T](w.registry)
	v.world = w
	return v
}

func newView[T any](registry *ComponentRegistry) *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	n := structType.NumField()
	v := &View[T]{
		registry:    registry,
		types:       make([]reflect.Type, 0, n),
		indices:     make([]ComponentIndex, n),
		resolved:    make([]bool, n),
		optional:    make([]bool, 0, n),
		fieldOffset: make([]uintptr, 0, n),
	}

	for i := 0; i < n; i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		v.types = append(v.types, fieldType.Elem())
		v.fieldOffset = append(v.fieldOffset, field.Offset)

		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}
		v.optional = append(v.optional, isOptional)
	}
	return v
}

// Descriptor returns a query descriptor requiring the view's non-optional components.
func (v *View[T]) Descriptor() QueryDescriptor {
	var desc QueryDescriptor
	for i, t := range v.types {
		if !v.optional[i] {
			desc.All = append(desc.All, t)
		}
	}
	return desc
}

// Query registers, or returns the existing, live query for the view's required components.
func (v *View[T]) Query() (*Query, error) {
	return v.world.Query(v.Descriptor())
}

// index returns the component index of field i, resolving types registered
// after the view was built.
func (v *View[T]) index(i int) (ComponentIndex, bool) {
	if v.resolved[i] {
		return v.indices[i], true
	}
	ct, ok := v.registry.byType[v.types[i]]
	if !ok {
		return 0, false
	}
	v.indices[i] = ct.index
	v.resolved[i] = true
	return ct.index, true
}

// Fill populates the provided struct pointer with component data for e.
// Returns false if e is missing any required component.
// Optional components are set to nil if not present.
func (v *View[T]) Fill(e *Entity, ptr *T) bool {
	structPtr := unsafe.Pointer(ptr)

	for i := range v.types {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])

		var component any
		if idx, ok := v.index(i); ok && e.mask.Has(uint32(idx)) {
			component = e.components[idx]
		}

		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}
		*(*unsafe.Pointer)(fieldPtr) = instancePointer(component)
	}
	return true
}

// Get returns a populated view struct for e, or nil if e lacks a required component.
func (v *View[T]) Get(e *Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}

// Iter yields (entity, view) pairs for the members of q that fill the view.
func (v *View[T]) Iter(q *Query) iter.Seq2[*Entity, T] {
	return func(yield func(*Entity, T) bool) {
		var result T
		for e := range q.Entities() {
			if !v.Fill(e, &result) {
				continue
			}
			if !yield(e, result) {
				return
			}
		}
	}
}

// Values yields only the view structs of q's members.
func (v *View[T]) Values(q *Query) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter(q) {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates an entity in space holding a copy of every non-nil component in data.
func (v *View[T]) Spawn(space *Space, data T) (*Entity, error) {
	e, err := space.CreateEntity()
	if err != nil {
		return nil, err
	}
	structPtr := unsafe.Pointer(&data)

	for i, componentType := range v.types {
		componentPtr := *(*unsafe.Pointer)(unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i]))
		if componentPtr == nil {
			if !v.optional[i] {
				_ = e.DestroyImmediate()
				return nil, ComponentNotPresentError{Type: componentType, Entity: e.id}
			}
			continue
		}

		ct, err := space.world.resolve(componentType)
		if err != nil {
			_ = e.DestroyImmediate()
			return nil, err
		}
		src := reflect.NewAt(componentType, componentPtr).Elem()
		if _, err := space.world.attach(e, ct, func(inst any) {
			reflect.ValueOf(inst).Elem().Set(src)
		}); err != nil {
			_ = e.DestroyImmediate()
			return nil, err
		}
	}
	return e, nil
}

// eface mirrors the runtime layout of an empty interface.
type eface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// instancePointer returns the *C stored in inst. Component instances are always
// pointers, so the interface data word is the pointer itself.
func instancePointer(inst any) unsafe.Pointer {
	return (*eface)(unsafe.Pointer(&inst)).data
}

// Each iterates the members of q as populated view structs of type T.
func Each[T any](q *Query) iter.Seq2[*Entity, T] {
	return newView[T](q.engine.registry).Iter(q)
}
