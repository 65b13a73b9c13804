package ecs

// ObjectPool is a free-list allocator for component instances.
//
// The pool grows by ceil(size/5)+1 instances whenever a request finds no idle
// instance, and sheds idle instances back down to ceil(size/5) once a recycle
// leaves at least a fifth of the pool idle. The gap between the two keeps
// add/remove churn from rebuilding instances every frame.
type ObjectPool[T any] struct {
	factory func() *T
	idle    []*T
	inUse   map[*T]struct{}
	size    int
}

// NewObjectPool creates a pool and eagerly builds initialSize idle instances.
// A nil factory allocates zero values.
func NewObjectPool[T any](factory func() *T, initialSize int) *ObjectPool[T] {
	if factory == nil {
		factory = func() *T { return new(T) }
	}
	p := &ObjectPool[T]{
		factory: factory,
		inUse:   make(map[*T]struct{}),
	}
	p.expand(initialSize)
	return p
}

func (p *ObjectPool[T]) expand(n int) {
	for i := 0; i < n; i++ {
		p.idle = append(p.idle, p.factory())
	}
	p.size += n
}

// Size returns the number of instances the pool currently owns.
func (p *ObjectPool[T]) Size() int { return p.size }

// Available returns the number of idle instances.
func (p *ObjectPool[T]) Available() int { return len(p.idle) }

// Used returns the number of instances checked out.
func (p *ObjectPool[T]) Used() int { return p.size - len(p.idle) }

// Request checks out an instance, growing the pool if none is idle.
func (p *ObjectPool[T]) Request() *T {
	if len(p.idle) == 0 {
		p.expand(ceilFifth(p.size) + 1)
	}
	last := len(p.idle) - 1
	item := p.idle[last]
	p.idle[last] = nil
	p.idle = p.idle[:last]
	p.inUse[item] = struct{}{}
	return item
}

// Recycle returns a checked-out instance to the pool.
func (p *ObjectPool[T]) Recycle(item *T) error {
	if item == nil {
		return PoolMisuseError{Reason: "recycle of nil instance"}
	}
	if _, ok := p.inUse[item]; !ok {
		return PoolMisuseError{Reason: "recycle of an instance not checked out from this pool"}
	}
	delete(p.inUse, item)
	p.idle = append(p.idle, item)

	if len(p.idle)*5 >= p.size {
		threshold := ceilFifth(p.size)
		if shed := len(p.idle) - threshold; shed > 0 {
			p.Free(shed)
		}
	}
	return nil
}

// Free discards up to n idle instances, permanently shrinking the pool.
func (p *ObjectPool[T]) Free(n int) int {
	n = min(n, len(p.idle))
	if n <= 0 {
		return 0
	}
	keep := len(p.idle) - n
	clear(p.idle[keep:])
	p.idle = p.idle[:keep]
	p.size -= n
	return n
}

// Owns reports whether item is currently checked out from this pool.
func (p *ObjectPool[T]) Owns(item *T) bool {
	_, ok := p.inUse[item]
	return ok
}

// Stats returns a snapshot of the pool counters.
func (p *ObjectPool[T]) Stats() PoolStats {
	return PoolStats{Size: p.size, Available: len(p.idle), Used: p.Used()}
}

// PoolStats is a snapshot of an ObjectPool's counters.
type PoolStats struct {
	Size      int
	Available int
	Used      int
}

func ceilFifth(n int) int {
	return (n + 4) / 5
}
