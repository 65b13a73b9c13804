package ecs

import "go.uber.org/zap"

type worldOptions struct {
	log          *zap.Logger
	autoRegister bool
	eventMode    EventMode
	poolSize     int
}

// WorldOption configures a World at construction.
type WorldOption func(*worldOptions)

// WithLogger sets the logger the world and its registry log through.
func WithLogger(log *zap.Logger) WorldOption {
	return func(o *worldOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithAutoRegister makes the registry register unseen component types on first
// use instead of failing with ComponentNotRegisteredError.
func WithAutoRegister(enabled bool) WorldOption {
	return func(o *worldOptions) {
		o.autoRegister = enabled
	}
}

// WithEventMode sets the dispatch mode of the world's event system.
func WithEventMode(mode EventMode) WorldOption {
	return func(o *worldOptions) {
		o.eventMode = mode
	}
}

// WithDefaultPoolSize sets the initial size of pools for components registered
// as Pooled without an explicit size.
func WithDefaultPoolSize(n int) WorldOption {
	return func(o *worldOptions) {
		o.poolSize = n
	}
}
