package ecs

// WorldStats is a point-in-time summary of a world's contents.
type WorldStats struct {
	SpaceCount       int
	TotalEntityCount int
	PendingDestroy   int
	SingletonCount   int
	SingletonTypes   []string
	Spaces           []SpaceStats
	Components       []ComponentInfo
	Queries          []QueryStats
	Scheduler        *SchedulerStats
}

// SpaceStats describes one space.
type SpaceStats struct {
	ID          uint32
	Name        string
	EntityCount int
}

// QueryStats describes one live query.
type QueryStats struct {
	Descriptor string
	Matches    int
	Added      int
	Removed    int
}

// CollectStats gathers statistics about the world's spaces, component storage,
// queries and systems.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		SpaceCount:     len(w.spaces),
		PendingDestroy: w.PendingDestroyCount(),
		Spaces:         make([]SpaceStats, 0, len(w.spaces)),
		Components:     w.registry.Types(),
		Queries:        make([]QueryStats, 0, len(w.queries.queries)),
		Scheduler:      w.scheduler.GetStats(),
	}

	for _, s := range w.spaces {
		stats.TotalEntityCount += s.Len()
		stats.Spaces = append(stats.Spaces, SpaceStats{
			ID:          s.id,
			Name:        s.name,
			EntityCount: s.Len(),
		})
	}

	for _, t := range w.SingletonTypes() {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	stats.SingletonCount = len(stats.SingletonTypes)

	for _, q := range w.queries.queries {
		stats.Queries = append(stats.Queries, QueryStats{
			Descriptor: q.descriptor.String(),
			Matches:    q.Len(),
			Added:      len(q.added),
			Removed:    len(q.removed),
		})
	}
	return stats
}
