package ecs

import "iter"

// Space is a named group of entities sharing a destruction lifecycle.
// It owns entity creation and destruction; components belong to the entities.
type Space struct {
	id         uint32
	name       string
	world      *World
	nextSerial uint32
	entities   *entitySet
	destroyed  bool
}

func newSpace(w *World, id uint32, name string) *Space {
	return &Space{
		id:       id,
		name:     name,
		world:    w,
		entities: newEntitySet(64),
	}
}

// ID returns the space's identifier, encoded in the upper bits of its entity IDs.
func (s *Space) ID() uint32 { return s.id }

// Name returns the name the space was created with.
func (s *Space) Name() string { return s.name }

// World returns the owning world.
func (s *Space) World() *World { return s.world }

// Len returns the number of entities in the space, including pending destroys.
func (s *Space) Len() int { return s.entities.len() }

// CreateEntity creates an empty entity in this space.
func (s *Space) CreateEntity() (*Entity, error) {
	if err := s.world.checkUsable("create entity"); err != nil {
		return nil, err
	}
	if s.destroyed {
		return nil, SpaceDestroyedError{Name: s.name}
	}
	s.nextSerial++
	e := &Entity{
		id:    NewEntityId(s.id, s.nextSerial),
		space: s,
	}
	s.entities.add(e)
	if s != s.world.worldSpace {
		s.world.queries.onCreated(e)
	}
	return e, nil
}

// Entity looks up an entity of this space by ID.
func (s *Space) Entity(id EntityId) (*Entity, bool) {
	return s.entities.get(id)
}

// Entities iterates the space's entities in creation order.
func (s *Space) Entities() iter.Seq[*Entity] {
	return s.entities.all()
}

// Destroy immediately destroys every entity in the space and detaches the space
// from its world.
func (s *Space) Destroy() {
	if s.destroyed {
		return
	}
	for _, e := range s.entities.snapshot() {
		_ = e.DestroyImmediate()
	}
	s.destroyed = true
	s.world.dropSpace(s)
}

func (s *Space) forget(e *Entity) {
	s.entities.remove(e)
}
