package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

// ComponentIndex is the stable per-world integer assigned to a component type.
type ComponentIndex uint32

// ComponentRegistry assigns indices to component types and owns the storage
// (pooled or transient) for each of them. Each World owns exactly one registry;
// indices are never shared between worlds.
type ComponentRegistry struct {
	types        []*componentType
	byType       map[reflect.Type]*componentType
	autoRegister bool
	poolSize     int
	log          *zap.Logger
}

// NewComponentRegistry creates an empty registry. With autoRegister set, looking
// up an unseen type registers it as a transient component instead of failing.
func NewComponentRegistry(autoRegister bool, log *zap.Logger) *ComponentRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &ComponentRegistry{
		byType:       make(map[reflect.Type]*componentType),
		autoRegister: autoRegister,
		log:          log,
	}
}

type componentType struct {
	index     ComponentIndex
	rtype     reflect.Type
	storage   componentStorage
	onInit    func(*Entity, any)
	onDestroy func(*Entity, any)
}

func (ct *componentType) runInit(e *Entity, inst any) {
	if ct.onInit != nil {
		ct.onInit(e, inst)
	}
}

func (ct *componentType) runDestroy(e *Entity, inst any) {
	if ct.onDestroy != nil {
		ct.onDestroy(e, inst)
	}
}

// ComponentOption configures a component type at its first registration.
type ComponentOption[T any] func(*componentConfig[T])

type componentConfig[T any] struct {
	pooled    bool
	poolSize  int
	onInit    func(*Entity, *T)
	onDestroy func(*Entity, *T)
	onReset   func(*T)
}

// Pooled recycles instances of T through an ObjectPool that starts with initialSize
// idle instances. A non-positive size uses the registry's default pool size.
func Pooled[T any](initialSize int) ComponentOption[T] {
	return func(c *componentConfig[T]) {
		c.pooled = true
		c.poolSize = initialSize
	}
}

// OnInit registers a hook run when a T is attached to an entity of an initialized
// world, or when the world initializes for components attached earlier.
func OnInit[T any](fn func(*Entity, *T)) ComponentOption[T] {
	return func(c *componentConfig[T]) {
		c.onInit = fn
	}
}

// OnDestroy registers a hook run before a T is detached from an entity.
func OnDestroy[T any](fn func(*Entity, *T)) ComponentOption[T] {
	return func(c *componentConfig[T]) {
		c.onDestroy = fn
	}
}

// OnReset registers a hook run on every pooled instance of T after it is zeroed
// and before the attached value is written.
func OnReset[T any](fn func(*T)) ComponentOption[T] {
	return func(c *componentConfig[T]) {
		c.onReset = fn
	}
}

// RegisterComponent registers T and returns its index. Registering a known type
// returns the existing index and ignores opts.
func RegisterComponent[T any](r *ComponentRegistry, opts ...ComponentOption[T]) ComponentIndex {
	t := reflect.TypeFor[T]()
	if ct, ok := r.byType[t]; ok {
		return ct.index
	}

	var cfg componentConfig[T]
	for _, opt := range opts {
		opt(&cfg)
	}

	ct := &componentType{rtype: t}
	// zero-size values share one address and cannot be told apart by a pool
	if cfg.pooled && t.Size() > 0 {
		if cfg.poolSize <= 0 {
			cfg.poolSize = r.poolSize
		}
		ct.storage = &pooledStorage[T]{
			pool:  NewObjectPool[T](nil, cfg.poolSize),
			name:  t.String(),
			reset: cfg.onReset,
			log:   r.log,
		}
	} else {
		ct.storage = &transientStorage{rtype: t}
	}
	if cfg.onInit != nil {
		ct.onInit = func(e *Entity, inst any) { cfg.onInit(e, inst.(*T)) }
	}
	if cfg.onDestroy != nil {
		ct.onDestroy = func(e *Entity, inst any) { cfg.onDestroy(e, inst.(*T)) }
	}
	return r.add(ct)
}

func (r *ComponentRegistry) add(ct *componentType) ComponentIndex {
	ct.index = ComponentIndex(len(r.types))
	r.types = append(r.types, ct)
	r.byType[ct.rtype] = ct
	r.log.Debug("component registered",
		zap.Stringer("type", ct.rtype),
		zap.Uint32("index", uint32(ct.index)),
		zap.Bool("pooled", ct.storage.pooled()))
	return ct.index
}

// lookup resolves t, auto-registering it as transient when allowed.
func (r *ComponentRegistry) lookup(t reflect.Type) (*componentType, error) {
	if ct, ok := r.byType[t]; ok {
		return ct, nil
	}
	if !r.autoRegister {
		return nil, ComponentNotRegisteredError{Type: t}
	}
	ct := &componentType{rtype: t, storage: &transientStorage{rtype: t}}
	r.add(ct)
	return ct, nil
}

// SetDefaultPoolSize sets the initial size of pools registered without an explicit size.
func (r *ComponentRegistry) SetDefaultPoolSize(n int) {
	r.poolSize = max(n, 0)
}

// IndexOf returns the index assigned to T.
func IndexOf[T any](r *ComponentRegistry) (ComponentIndex, error) {
	return r.IndexOfType(reflect.TypeFor[T]())
}

// IndexOfType returns the index assigned to t.
func (r *ComponentRegistry) IndexOfType(t reflect.Type) (ComponentIndex, error) {
	ct, err := r.lookup(t)
	if err != nil {
		return 0, err
	}
	return ct.index, nil
}

// IsRegistered reports whether t has an index, without auto-registering it.
func (r *ComponentRegistry) IsRegistered(t reflect.Type) bool {
	_, ok := r.byType[t]
	return ok
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int {
	return len(r.types)
}

// TypeAt returns the type registered at idx.
func (r *ComponentRegistry) TypeAt(idx ComponentIndex) (reflect.Type, bool) {
	if int(idx) >= len(r.types) {
		return nil, false
	}
	return r.types[idx].rtype, true
}

// ComponentInfo describes a registered component type.
type ComponentInfo struct {
	Index  ComponentIndex
	Type   reflect.Type
	Pooled bool
	Pool   PoolStats
}

// Types returns every registered type in index order.
func (r *ComponentRegistry) Types() []ComponentInfo {
	infos := make([]ComponentInfo, len(r.types))
	for i, ct := range r.types {
		infos[i] = ComponentInfo{
			Index:  ct.index,
			Type:   ct.rtype,
			Pooled: ct.storage.pooled(),
			Pool:   ct.storage.stats(),
		}
	}
	return infos
}

func (r *ComponentRegistry) reset() {
	r.types = nil
	clear(r.byType)
}

// componentStorage hands out and takes back instances for one component type.
// acquire returns a pointer to a zeroed value of the component type.
type componentStorage interface {
	acquire() any
	release(inst any) error
	pooled() bool
	stats() PoolStats
}

type pooledStorage[T any] struct {
	pool  *ObjectPool[T]
	name  string
	reset func(*T)
	log   *zap.Logger
}

func (s *pooledStorage[T]) acquire() any {
	item := s.pool.Request()
	var zero T
	*item = zero
	if s.reset != nil {
		s.reset(item)
	}
	return item
}

func (s *pooledStorage[T]) release(inst any) error {
	before := s.pool.Size()
	if err := s.pool.Recycle(inst.(*T)); err != nil {
		return err
	}
	if shed := before - s.pool.Size(); shed > 0 {
		s.log.Debug("pool shrunk",
			zap.String("type", s.name),
			zap.Int("shed", shed),
			zap.Int("size", s.pool.Size()))
	}
	return nil
}

func (s *pooledStorage[T]) pooled() bool { return true }

func (s *pooledStorage[T]) stats() PoolStats { return s.pool.Stats() }

// transientStorage allocates a fresh instance per attach and drops it on detach.
type transientStorage struct {
	rtype reflect.Type
	live  int
}

func (s *transientStorage) acquire() any {
	s.live++
	return reflect.New(s.rtype).Interface()
}

func (s *transientStorage) release(any) error {
	s.live--
	return nil
}

func (s *transientStorage) pooled() bool { return false }

func (s *transientStorage) stats() PoolStats {
	return PoolStats{Size: s.live, Used: s.live}
}
