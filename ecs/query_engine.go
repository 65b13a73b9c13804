package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

// queryEngine owns the live queries of one world and keeps their membership in
// step with entity mask transitions.
type queryEngine struct {
	registry *ComponentRegistry
	queries  []*Query
	byKey    map[string]*Query
	log      *zap.Logger
}

func newQueryEngine(registry *ComponentRegistry, log *zap.Logger) *queryEngine {
	return &queryEngine{
		registry: registry,
		byKey:    make(map[string]*Query),
		log:      log,
	}
}

// register returns the live query for desc, building and seeding a new one unless a
// query with the same masks already exists.
func (qe *queryEngine) register(desc QueryDescriptor, seed func(func(*Entity))) (*Query, error) {
	all, err := qe.maskOf(desc.All)
	if err != nil {
		return nil, err
	}
	anyMask, err := qe.maskOf(desc.Any)
	if err != nil {
		return nil, err
	}
	none, err := qe.maskOf(desc.None)
	if err != nil {
		return nil, err
	}

	key := all.key() + "|" + anyMask.key() + "|" + none.key()
	if q, ok := qe.byKey[key]; ok {
		return q, nil
	}

	q := &Query{
		engine:     qe,
		descriptor: desc,
		key:        key,
		all:        *all,
		any:        *anyMask,
		none:       *none,
		members:    newEntitySet(64),
	}
	q.relevant.Union(all)
	q.relevant.Union(anyMask)
	q.relevant.Union(none)
	q.open = all.IsEmpty() && anyMask.IsEmpty()

	// seeding does not fire listeners or polled deltas
	seed(func(e *Entity) {
		if e.state == EntityAlive && q.Matches(&e.mask) {
			q.members.add(e)
		}
	})

	qe.queries = append(qe.queries, q)
	qe.byKey[key] = q
	qe.log.Debug("query registered",
		zap.Stringer("descriptor", desc),
		zap.Int("matches", q.Len()),
		zap.Int("queries", len(qe.queries)))
	return q, nil
}

func (qe *queryEngine) maskOf(types []reflect.Type) (*BitSet, error) {
	mask := NewBitSet()
	for _, t := range types {
		ct, err := qe.registry.lookup(t)
		if err != nil {
			return nil, err
		}
		mask.Add(uint32(ct.index))
	}
	return mask, nil
}

// onCreated admits a new, empty entity to every open query.
func (qe *queryEngine) onCreated(e *Entity) {
	for _, q := range qe.queries {
		if q.open {
			q.sync(e)
		}
	}
}

// onMaskChanged re-evaluates e against every query that depends on idx, in
// registration order. Open queries are always re-evaluated.
func (qe *queryEngine) onMaskChanged(e *Entity, idx ComponentIndex) {
	for _, q := range qe.queries {
		if !q.open && !q.relevant.Has(uint32(idx)) {
			continue
		}
		q.sync(e)
	}
}

// evict drops e from every query it belongs to.
func (qe *queryEngine) evict(e *Entity) {
	for _, q := range qe.queries {
		if q.members.has(e) {
			q.leave(e)
		}
	}
}

func (qe *queryEngine) rotate() {
	for _, q := range qe.queries {
		q.rotate()
	}
}

func (qe *queryEngine) reset() {
	for _, q := range qe.queries {
		q.members.reset()
		q.onAdded, q.onRemoved = nil, nil
		q.pendingAdded, q.pendingRemoved = nil, nil
		q.added, q.removed = nil, nil
	}
	qe.queries = nil
	clear(qe.byKey)
}
