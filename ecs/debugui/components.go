package debugui

import (
	"github.com/plus3/spaces/ecs"
)

type EntityBrowserComponent struct {
	cache              *EntityBrowserCache
	selectedEntityId   ecs.EntityId
	filterText         string
	filterSpace        string
	maxEntitiesPerPage int
	currentPage        int
}

type ComponentInspectorComponent struct {
	selectedEntityId ecs.EntityId
}

type PoolViewerComponent struct {
	sortColumn    int
	sortAscending bool
}

type PerformanceStatsComponent struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
	timer         *FrameTimer
}

type QueryDebuggerComponent struct {
	selectedComponentTypes map[string]bool
}
