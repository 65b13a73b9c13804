package ecs

import (
	"iter"

	"github.com/kamstrup/intmap"
)

// entitySet is an insertion-ordered set of entities with O(1) membership.
// Removal leaves a nil hole so indices held by an in-progress iteration stay
// valid; holes are compacted away once they outnumber live entries and no
// iteration is running.
type entitySet struct {
	items     []*Entity
	positions *intmap.Map[EntityId, int]
	holes     int
	iterating int
}

func newEntitySet(capacity int) *entitySet {
	return &entitySet{
		items:     make([]*Entity, 0, capacity),
		positions: intmap.New[EntityId, int](capacity),
	}
}

func (s *entitySet) add(e *Entity) bool {
	if _, ok := s.positions.Get(e.id); ok {
		return false
	}
	s.positions.Put(e.id, len(s.items))
	s.items = append(s.items, e)
	return true
}

func (s *entitySet) remove(e *Entity) bool {
	pos, ok := s.positions.Get(e.id)
	if !ok {
		return false
	}
	s.positions.Del(e.id)
	s.items[pos] = nil
	s.holes++
	s.maybeCompact()
	return true
}

func (s *entitySet) has(e *Entity) bool {
	_, ok := s.positions.Get(e.id)
	return ok
}

func (s *entitySet) get(id EntityId) (*Entity, bool) {
	pos, ok := s.positions.Get(id)
	if !ok {
		return nil, false
	}
	return s.items[pos], true
}

func (s *entitySet) len() int {
	return len(s.items) - s.holes
}

func (s *entitySet) maybeCompact() {
	if s.iterating > 0 || s.holes*2 <= len(s.items) {
		return
	}
	write := 0
	for _, e := range s.items {
		if e == nil {
			continue
		}
		s.items[write] = e
		s.positions.Put(e.id, write)
		write++
	}
	clear(s.items[write:])
	s.items = s.items[:write]
	s.holes = 0
}

// all yields live entities in insertion order. Entities added while iterating
// are not visited; entities removed while iterating are skipped.
func (s *entitySet) all() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		s.iterating++
		defer func() {
			s.iterating--
			s.maybeCompact()
		}()

		n := len(s.items)
		for i := 0; i < n; i++ {
			e := s.items[i]
			if e == nil {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// snapshot copies the live entities into a new slice.
func (s *entitySet) snapshot() []*Entity {
	out := make([]*Entity, 0, s.len())
	for _, e := range s.items {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (s *entitySet) reset() {
	clear(s.items)
	s.items = s.items[:0]
	s.positions.Clear()
	s.holes = 0
}
