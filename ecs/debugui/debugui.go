// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS components and systems.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/spaces/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a singleton component.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystemName is the name the imgui system registers under.
const ImguiSystemName = "imgui"

const itemsQuery = "items"

// ImguiSystem walks every ImguiItem and defers its render function to the
// command flush that follows the systems. It also keeps the ImguiInputState
// singleton current.
type ImguiSystem struct {
	// Capture reads the current input capture state. Nil reads imgui.CurrentIO.
	Capture func() ImguiInputState

	input *ecs.Singleton[ImguiInputState]
}

// Register adds the system to w under ImguiSystemName.
func (i *ImguiSystem) Register(w *ecs.World, opts ...ecs.SystemOption) (*ecs.System, error) {
	opts = append(opts, ecs.WithQuery(itemsQuery, ecs.QueryDescriptor{All: ecs.Types(ImguiItem{})}))
	return w.RegisterSystem(ImguiSystemName, ecs.SystemHooks{
		Init:   i.init,
		Update: i.update,
	}, opts...)
}

// InputState returns the singleton updated each frame, or nil before Init.
func (i *ImguiSystem) InputState() *ImguiInputState {
	if i.input == nil {
		return nil
	}
	return i.input.Get()
}

func (i *ImguiSystem) init(s *ecs.System) error {
	input, err := ecs.NewSingleton[ImguiInputState](s.World())
	if err != nil {
		return err
	}
	i.input = input
	return nil
}

func (i *ImguiSystem) update(s *ecs.System, frame *ecs.UpdateFrame) error {
	capture := i.Capture
	if capture == nil {
		capture = currentCapture
	}
	if state := i.input.Get(); state != nil {
		*state = capture()
	}

	for e := range s.Query(itemsQuery).Entities() {
		if item, ok := ecs.Get[ImguiItem](e); ok && item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	}
	return nil
}

func currentCapture() ImguiInputState {
	io := imgui.CurrentIO()
	return ImguiInputState{
		WantCaptureMouse:    io.WantCaptureMouse(),
		WantCaptureKeyboard: io.WantCaptureKeyboard(),
	}
}
