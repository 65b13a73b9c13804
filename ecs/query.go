package ecs

import (
	"iter"
	"reflect"
	"slices"
	"strings"
)

// QueryDescriptor lists the component types a query matches on. An entity matches
// when it holds every All type, at least one Any type (if Any is non-empty), and
// no None type.
type QueryDescriptor struct {
	All  []reflect.Type
	Any  []reflect.Type
	None []reflect.Type
}

// TypeOf returns the reflect.Type used to name component T in a QueryDescriptor.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Types is shorthand for a list of reflect.Types of sample component values.
func Types(samples ...any) []reflect.Type {
	types := make([]reflect.Type, len(samples))
	for i, s := range samples {
		t := reflect.TypeOf(s)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		types[i] = t
	}
	return types
}

func (d QueryDescriptor) String() string {
	var sb strings.Builder
	write := func(label string, types []reflect.Type) {
		if len(types) == 0 {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(label)
		sb.WriteByte('(')
		for i, t := range types {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(t.String())
		}
		sb.WriteByte(')')
	}
	write("all", d.All)
	write("any", d.Any)
	write("none", d.None)
	return sb.String()
}

// Listener is called when an entity enters or leaves a query.
type Listener func(e *Entity)

type listener struct {
	id uint64
	fn Listener
}

// Query is a live view of the entities whose mask satisfies a fixed all/any/none
// predicate. Membership is updated on every mask transition rather than by rescanning.
type Query struct {
	engine     *queryEngine
	descriptor QueryDescriptor
	key        string

	all, any, none BitSet
	// relevant is all ∪ any ∪ none; transitions outside it cannot change membership.
	relevant BitSet
	// open queries have empty all and any, so a fresh entity with no components
	// already matches them.
	open bool

	members *entitySet

	pendingAdded, pendingRemoved []*Entity
	added, removed               []*Entity

	onAdded, onRemoved []listener
	nextListener       uint64
}

// Descriptor returns the descriptor the query was registered with.
func (q *Query) Descriptor() QueryDescriptor { return q.descriptor }

// Len returns the number of matching entities.
func (q *Query) Len() int { return q.members.len() }

// Has reports whether e currently matches.
func (q *Query) Has(e *Entity) bool { return q.members.has(e) }

// Entities iterates the matching entities in the order they entered the query.
func (q *Query) Entities() iter.Seq[*Entity] { return q.members.all() }

// Snapshot copies the matching entities into a slice.
func (q *Query) Snapshot() []*Entity { return q.members.snapshot() }

// Added returns the entities that entered the query during the previous step.
// The slice is replaced at the start of each step and must not be retained.
func (q *Query) Added() []*Entity { return q.added }

// Removed returns the entities that left the query during the previous step.
func (q *Query) Removed() []*Entity { return q.removed }

// Matches evaluates the query predicate against mask.
func (q *Query) Matches(mask *BitSet) bool {
	if !mask.ContainsAll(&q.all) {
		return false
	}
	if !q.any.IsEmpty() && !mask.ContainsAny(&q.any) {
		return false
	}
	return !mask.ContainsAny(&q.none)
}

// OnEntityAdded subscribes fn to entities entering the query.
func (q *Query) OnEntityAdded(fn Listener) Subscription {
	return q.subscribe(&q.onAdded, fn)
}

// OnEntityRemoved subscribes fn to entities leaving the query.
func (q *Query) OnEntityRemoved(fn Listener) Subscription {
	return q.subscribe(&q.onRemoved, fn)
}

func (q *Query) subscribe(list *[]listener, fn Listener) Subscription {
	q.nextListener++
	id := q.nextListener
	*list = append(*list, listener{id: id, fn: fn})
	return Subscription{
		Id: id,
		unsubscribe: func() bool {
			// copy on write so a dispatch in progress keeps its slice
			before := len(*list)
			*list = slices.DeleteFunc(slices.Clone(*list), func(l listener) bool { return l.id == id })
			return len(*list) != before
		},
	}
}

// sync moves e into or out of the query to match its current mask and state.
func (q *Query) sync(e *Entity) {
	match := e.state == EntityAlive && q.Matches(&e.mask)
	in := q.members.has(e)
	switch {
	case match && !in:
		q.enter(e)
	case !match && in:
		q.leave(e)
	}
}

func (q *Query) enter(e *Entity) {
	q.members.add(e)
	q.pendingAdded = append(q.pendingAdded, e)
	for _, l := range q.onAdded {
		l.fn(e)
	}
}

func (q *Query) leave(e *Entity) {
	q.members.remove(e)
	q.pendingRemoved = append(q.pendingRemoved, e)
	for _, l := range q.onRemoved {
		l.fn(e)
	}
}

// rotate publishes the deltas gathered since the last rotation.
func (q *Query) rotate() {
	clear(q.added)
	clear(q.removed)
	q.added, q.pendingAdded = q.pendingAdded, q.added[:0]
	q.removed, q.pendingRemoved = q.pendingRemoved, q.removed[:0]
}
