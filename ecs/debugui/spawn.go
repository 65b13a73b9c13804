package debugui

import (
	"github.com/plus3/spaces/ecs"
)

// DebugSpaceName is the space SpawnDebugUI places its panel entities in.
const DebugSpaceName = "debugui"

// SpawnDebugUI creates the standard panels as ImguiItem entities in their own
// space. The world must know the debugui component types, either through
// RegisterDebugUIComponents or auto-registration.
func SpawnDebugUI(w *ecs.World) (*ecs.Space, error) {
	space, err := w.CreateSpace(DebugSpaceName)
	if err != nil {
		return nil, err
	}

	browser, err := spawnPanel(space, NewEntityBrowserComponent(100), func(eb *EntityBrowserComponent) { eb.Render(w) })
	if err != nil {
		return nil, err
	}
	if _, err := spawnPanel(space, NewComponentInspectorComponent(), func(ci *ComponentInspectorComponent) {
		ci.Render(w, browser.GetSelectedEntity())
	}); err != nil {
		return nil, err
	}
	if _, err := spawnPanel(space, NewPoolViewerComponent(), func(pv *PoolViewerComponent) { pv.Render(w) }); err != nil {
		return nil, err
	}
	if _, err := spawnPanel(space, NewPerformanceStatsComponent(120), func(ps *PerformanceStatsComponent) { ps.Render(w) }); err != nil {
		return nil, err
	}
	if _, err := spawnPanel(space, NewQueryDebuggerComponent(), func(qd *QueryDebuggerComponent) { qd.Render(w) }); err != nil {
		return nil, err
	}
	return space, nil
}

func spawnPanel[T any](space *ecs.Space, panel T, render func(*T)) (*T, error) {
	e, err := space.CreateEntity()
	if err != nil {
		return nil, err
	}
	p, err := ecs.Add(e, panel)
	if err != nil {
		return nil, err
	}
	if _, err := ecs.Add(e, ImguiItem{Render: func() { render(p) }}); err != nil {
		return nil, err
	}
	return p, nil
}

func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[ImguiInputState](registry)
	ecs.RegisterComponent[EntityBrowserComponent](registry)
	ecs.RegisterComponent[ComponentInspectorComponent](registry)
	ecs.RegisterComponent[PoolViewerComponent](registry)
	ecs.RegisterComponent[PerformanceStatsComponent](registry)
	ecs.RegisterComponent[QueryDebuggerComponent](registry)
}
