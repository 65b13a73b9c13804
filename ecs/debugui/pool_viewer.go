package debugui

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/spaces/ecs"
)

func NewPoolViewerComponent() PoolViewerComponent {
	return PoolViewerComponent{
		sortColumn:    4,
		sortAscending: false,
	}
}

// Render lists every registered component type with its storage counters.
// Transient types report only their live instance count.
func (pv *PoolViewerComponent) Render(w *ecs.World) {
	if !imgui.BeginV("Component Pools", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	infos := w.Registry().Types()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("PoolTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Component")
		imgui.TableSetupColumn("Storage")
		imgui.TableSetupColumn("Size")
		imgui.TableSetupColumn("Available")
		imgui.TableSetupColumn("Used")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			pv.sortColumn = int(spec.ColumnIndex())
			pv.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSpecs.SetSpecsDirty(false)
		}
		pv.sortPools(infos)

		for _, info := range infos {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			imgui.Text(info.Type.String())

			imgui.TableNextColumn()
			if info.Pooled {
				imgui.Text("pooled")
			} else {
				imgui.Text("transient")
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", info.Pool.Size))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", info.Pool.Available))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", info.Pool.Used))

			if info.Pooled && info.Pool.Size > 0 {
				barWidth := float32(info.Pool.Used) / float32(info.Pool.Size) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
}

func (pv *PoolViewerComponent) sortPools(infos []ecs.ComponentInfo) {
	slices.SortStableFunc(infos, func(a, b ecs.ComponentInfo) int {
		var c int
		switch pv.sortColumn {
		case 0:
			c = cmp.Compare(a.Type.String(), b.Type.String())
		case 1:
			c = cmp.Compare(boolRank(a.Pooled), boolRank(b.Pooled))
		case 2:
			c = cmp.Compare(a.Pool.Size, b.Pool.Size)
		case 3:
			c = cmp.Compare(a.Pool.Available, b.Pool.Available)
		default:
			c = cmp.Compare(a.Pool.Used, b.Pool.Used)
		}
		if !pv.sortAscending {
			return -c
		}
		return c
	})
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
