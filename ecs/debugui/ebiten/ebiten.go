// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/spaces/ecs"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Host drives a World from ebiten's game loop. Each tick advances the world by
// one step of 1/TPS seconds inside an ImGui frame; Draw renders the game and
// then the overlay on top.
type Host struct {
	World   *ecs.World
	Backend *ImguiBackend

	// DrawWorld draws game content before the overlay. Optional.
	DrawWorld func(screen *ebiten.Image)
}

var _ ebiten.Game = (*Host)(nil)

func NewHost(w *ecs.World, backend *ImguiBackend) *Host {
	return &Host{World: w, Backend: backend}
}

// Update initializes the world on the first tick, then steps it once.
func (h *Host) Update() error {
	if !h.World.Initialized() {
		if err := h.World.Init(); err != nil {
			return err
		}
	}

	if h.Backend != nil {
		h.Backend.BeginFrame()
		defer h.Backend.EndFrame()
	}
	return h.World.Update(1.0 / float64(ebiten.TPS()))
}

func (h *Host) Draw(screen *ebiten.Image) {
	if h.DrawWorld != nil {
		h.DrawWorld(screen)
	}
	if h.Backend != nil {
		h.Backend.Draw(screen)
	}
}

func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if h.Backend != nil {
		h.Backend.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
