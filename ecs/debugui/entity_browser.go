package debugui

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/spaces/ecs"
)

type EntityInfo struct {
	ID             ecs.EntityId
	Space          string
	State          ecs.EntityState
	ComponentTypes []string
	ComponentCount int
}

type EntityBrowserCache struct {
	entities      []EntityInfo
	lastStep      uint64
	lastCount     int
	built         bool
	sortColumn    int
	sortAscending bool
}

func NewEntityBrowserComponent(maxEntitiesPerPage int) EntityBrowserComponent {
	return EntityBrowserComponent{
		cache: &EntityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
		},
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

func (eb *EntityBrowserComponent) Render(w *ecs.World) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(w)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterSpace = ""
	}

	if imgui.BeginCombo("Space", cmp.Or(eb.filterSpace, "(all)")) {
		if imgui.SelectableBool("(all)") {
			eb.filterSpace = ""
		}
		for _, s := range w.Spaces() {
			if imgui.SelectableBool(s.Name()) {
				eb.filterSpace = s.Name()
			}
		}
		imgui.EndCombo()
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	filteredEntities := eb.getFilteredEntities()
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Space")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sortEntities()
			sortSpecs.SetSpecsDirty(false)
			filteredEntities = eb.getFilteredEntities()
		}

		startIdx := min(eb.currentPage*eb.maxEntitiesPerPage, len(filteredEntities))
		endIdx := min(startIdx+eb.maxEntitiesPerPage, len(filteredEntities))

		for _, entity := range filteredEntities[startIdx:endIdx] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			label := entity.ID.String()
			if entity.State != ecs.EntityAlive {
				label += " (" + entity.State.String() + ")"
			}
			isSelected := eb.selectedEntityId == entity.ID
			if imgui.SelectableBoolV(label, isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selectedEntityId = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(entity.Space)

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ComponentCount))
		}

		imgui.EndTable()
	}

	if len(filteredEntities) > eb.maxEntitiesPerPage {
		totalPages := (len(filteredEntities) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		eb.currentPage = 0
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}

	imgui.End()
}

// rebuildCacheIfNeeded rebuilds at most once per world step, or when the
// entity count moved between steps.
func (eb *EntityBrowserComponent) rebuildCacheIfNeeded(w *ecs.World) {
	if eb.cache.built && eb.cache.lastStep == w.Step() && eb.cache.lastCount == w.EntityCount() {
		return
	}
	eb.rebuildCache(w)
	eb.cache.built = true
	eb.cache.lastStep = w.Step()
	eb.cache.lastCount = w.EntityCount()
}

func (eb *EntityBrowserComponent) rebuildCache(w *ecs.World) {
	eb.cache.entities = collectEntities(w, eb.cache.entities[:0])
	eb.sortEntities()
}

func collectEntities(w *ecs.World, out []EntityInfo) []EntityInfo {
	for _, space := range w.Spaces() {
		for e := range space.Entities() {
			components := e.Components()
			componentTypes := make([]string, len(components))
			for i, c := range components {
				componentTypes[i] = reflect.TypeOf(c).Elem().String()
			}
			out = append(out, EntityInfo{
				ID:             e.Id(),
				Space:          space.Name(),
				State:          e.State(),
				ComponentTypes: componentTypes,
				ComponentCount: len(componentTypes),
			})
		}
	}
	return out
}

func (eb *EntityBrowserComponent) sortEntities() {
	slices.SortStableFunc(eb.cache.entities, func(a, b EntityInfo) int {
		var c int
		switch eb.cache.sortColumn {
		case 1:
			c = cmp.Compare(a.Space, b.Space)
		case 2:
			c = cmp.Compare(strings.Join(a.ComponentTypes, ","), strings.Join(b.ComponentTypes, ","))
		case 3:
			c = cmp.Compare(a.ComponentCount, b.ComponentCount)
		default:
			c = cmp.Compare(a.ID, b.ID)
		}
		if !eb.cache.sortAscending {
			return -c
		}
		return c
	})
}

func (eb *EntityBrowserComponent) getFilteredEntities() []EntityInfo {
	if eb.filterText == "" && eb.filterSpace == "" {
		return eb.cache.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, entity := range eb.cache.entities {
		if eb.filterSpace != "" && entity.Space != eb.filterSpace {
			continue
		}

		if eb.filterText != "" {
			componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " "))
			if !strings.Contains(entity.ID.String(), filterLower) &&
				!strings.Contains(strings.ToLower(entity.Space), filterLower) &&
				!strings.Contains(componentsStr, filterLower) {
				continue
			}
		}

		filtered = append(filtered, entity)
	}

	return filtered
}

func (eb *EntityBrowserComponent) GetSelectedEntity() ecs.EntityId {
	return eb.selectedEntityId
}
