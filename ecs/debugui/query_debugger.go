package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/spaces/ecs"
)

func NewQueryDebuggerComponent() QueryDebuggerComponent {
	return QueryDebuggerComponent{
		selectedComponentTypes: make(map[string]bool),
	}
}

func (qd *QueryDebuggerComponent) Render(w *ecs.World) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if imgui.TreeNodeStr("Live Queries") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("LiveQueryTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Descriptor")
			imgui.TableSetupColumn("Matches")
			imgui.TableSetupColumn("Added")
			imgui.TableSetupColumn("Removed")
			imgui.TableHeadersRow()

			for _, q := range w.Queries() {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(q.Descriptor().String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", q.Len()))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", len(q.Added())))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", len(q.Removed())))
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.Separator()
	imgui.Text("Select Component Types:")

	if imgui.Button("Clear All") {
		clear(qd.selectedComponentTypes)
	}

	for _, info := range w.Registry().Types() {
		name := info.Type.String()
		selected := qd.selectedComponentTypes[name]
		if imgui.Checkbox(name, &selected) {
			if selected {
				qd.selectedComponentTypes[name] = true
			} else {
				delete(qd.selectedComponentTypes, name)
			}
		}
	}

	imgui.Separator()

	selectedTypes := qd.selectedTypes(w.Registry())
	if len(selectedTypes) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	bySpace := matchEntities(w, selectedTypes)
	total := 0
	for _, n := range bySpace {
		total += n
	}
	imgui.Text(fmt.Sprintf("Matching Entities: %d", total))

	if imgui.TreeNodeStr("Per Space") {
		for _, s := range w.Spaces() {
			imgui.BulletText(fmt.Sprintf("%s: %d", s.Name(), bySpace[s.Name()]))
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebuggerComponent) selectedTypes(registry *ecs.ComponentRegistry) []reflect.Type {
	var out []reflect.Type
	for _, info := range registry.Types() {
		if qd.selectedComponentTypes[info.Type.String()] {
			out = append(out, info.Type)
		}
	}
	return out
}

// matchEntities counts, per space, the alive entities holding every type in
// required. It scans instead of registering a query so the world's live query
// set is left untouched.
func matchEntities(w *ecs.World, required []reflect.Type) map[string]int {
	mask := ecs.NewBitSet()
	for _, t := range required {
		idx, err := w.Registry().IndexOfType(t)
		if err != nil {
			return nil
		}
		mask.Add(uint32(idx))
	}

	counts := make(map[string]int)
	for _, s := range w.Spaces() {
		for e := range s.Entities() {
			if e.Alive() && e.Mask().ContainsAll(mask) {
				counts[s.Name()]++
			}
		}
	}
	return counts
}
