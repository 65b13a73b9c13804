package ecs

import (
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Priority       int
	Updates        bool
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

// Scheduler keeps systems in execution order and runs them once per step.
type Scheduler struct {
	systems []*System
	// registrations made while a pass is running join the order after it
	running bool
	pending []*System
	log     *zap.Logger
}

func newScheduler(log *zap.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// Systems returns the registered systems in execution order. Systems registered
// during the current pass are listed last.
func (s *Scheduler) Systems() []*System {
	return append(slices.Clone(s.systems), s.pending...)
}

// Len returns the number of registered systems.
func (s *Scheduler) Len() int { return len(s.systems) + len(s.pending) }

func (s *Scheduler) add(sys *System) {
	if s.running {
		s.pending = append(s.pending, sys)
		return
	}
	s.insert(sys)
}

func (s *Scheduler) insert(sys *System) {
	s.systems = append(s.systems, sys)
	// stable: equal priorities keep registration order
	slices.SortStableFunc(s.systems, func(a, b *System) int {
		return a.priority - b.priority
	})
	s.log.Debug("system registered",
		zap.String("system", sys.name),
		zap.Int("priority", sys.priority),
		zap.Int("order", slices.Index(s.systems, sys)),
		zap.Bool("updates", sys.updates))
}

// once runs every dispatchable system in order. The first failing system aborts
// the rest of the pass.
func (s *Scheduler) once(frame *UpdateFrame) error {
	s.running = true
	defer s.settle()

	for _, sys := range s.systems {
		if !sys.updates || !sys.initialized {
			continue
		}
		start := time.Now()
		err := sys.hooks.Update(sys, frame)
		sys.stats.record(time.Since(start))
		if err != nil {
			s.log.Error("system update failed",
				zap.String("system", sys.name),
				zap.Uint64("step", frame.Step),
				zap.Error(err))
			return eris.Wrapf(err, "system %q update", sys.name)
		}
	}
	return nil
}

// settle ends a pass and orders the systems registered during it.
func (s *Scheduler) settle() {
	s.running = false
	pending := s.pending
	s.pending = nil
	for _, sys := range pending {
		s.insert(sys)
	}
}

func (s *Scheduler) initAll() error {
	for _, sys := range s.systems {
		if err := sys.init(); err != nil {
			return eris.Wrapf(err, "system %q init", sys.name)
		}
	}
	return nil
}

func (s *Scheduler) destroyAll() {
	for _, sys := range slices.Backward(s.Systems()) {
		sys.destroy()
	}
	s.systems = nil
	s.pending = nil
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	var totalExecs int64
	for i, sys := range s.systems {
		internal := &sys.stats
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           sys.name,
			Priority:       sys.priority,
			Updates:        sys.updates,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
