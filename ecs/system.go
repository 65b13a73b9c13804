package ecs

import "time"

// SystemHooks is the set of lifecycle hooks a system provides. A nil hook is
// simply not called; a system without Update is never dispatched by the scheduler.
type SystemHooks struct {
	Init    func(s *System) error
	Update  func(s *System, frame *UpdateFrame) error
	Destroy func(s *System)
}

// SystemOption configures a system at registration.
type SystemOption func(*System)

// WithPriority orders the system among the others. Lower values run first;
// systems with equal priority run in registration order.
func WithPriority(priority int) SystemOption {
	return func(s *System) {
		s.priority = priority
	}
}

// WithQuery declares a query the system reads, resolved when the system initializes
// and available through System.Query under name.
func WithQuery(name string, desc QueryDescriptor) SystemOption {
	return func(s *System) {
		s.declared = append(s.declared, declaredQuery{name: name, desc: desc})
	}
}

type declaredQuery struct {
	name string
	desc QueryDescriptor
}

// System is a registered unit of per-step logic.
type System struct {
	name     string
	priority int
	hooks    SystemHooks
	updates  bool
	world    *World

	declared    []declaredQuery
	queries     map[string]*Query
	initialized bool

	// State is free for the system's own use between steps.
	State any

	stats systemStats
}

type systemStats struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (st *systemStats) record(d time.Duration) {
	st.executionCount++
	st.lastDuration = d
	st.totalDuration += d
	if st.executionCount == 1 || d < st.minDuration {
		st.minDuration = d
	}
	if d > st.maxDuration {
		st.maxDuration = d
	}
}

// Name returns the name the system was registered with.
func (s *System) Name() string { return s.name }

// Priority returns the system's ordering priority.
func (s *System) Priority() int { return s.priority }

// World returns the world the system is registered with.
func (s *System) World() *World { return s.world }

// Updates reports whether the system is dispatched each step.
func (s *System) Updates() bool { return s.updates }

// Query returns the resolved query declared under name, or nil before the system initializes.
func (s *System) Query(name string) *Query { return s.queries[name] }

func (s *System) init() error {
	if s.initialized {
		return nil
	}
	s.queries = make(map[string]*Query, len(s.declared))
	for _, d := range s.declared {
		q, err := s.world.Query(d.desc)
		if err != nil {
			return err
		}
		s.queries[d.name] = q
	}
	if s.hooks.Init != nil {
		if err := s.hooks.Init(s); err != nil {
			return err
		}
	}
	s.initialized = true
	return nil
}

func (s *System) destroy() {
	if !s.initialized {
		return
	}
	if s.hooks.Destroy != nil {
		s.hooks.Destroy(s)
	}
	s.initialized = false
}
