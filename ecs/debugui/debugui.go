// Package debugui provides immediate-mode GUI integration for hotbean worlds using Dear ImGui.
// It renders inspector panels for a GameLoop and lets entities contribute their own windows.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/hotbean/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func() `yaml:"-"`
}

// Transient keeps ImguiItem out of saved scenes.
func (ImguiItem) Transient() bool { return true }

// ImguiInputState tracks Dear ImGui's input capture state as a singleton.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem defers the render function of every ImguiItem to the end of
// the render phase and keeps ImguiInputState current.
type ImguiSystem struct {
	ecs.SystemBase
	Items      ecs.View[struct{ *ImguiItem }] `ecs:"track"`
	InputState ecs.Singleton[ImguiInputState]
}

func (s *ImguiSystem) Name() string { return "ImguiSystem" }

func (s *ImguiSystem) OnInit(f *ecs.UpdateFrame) {
	ecs.NewSingleton[ImguiInputState](f.World)
}

func (s *ImguiSystem) OnPreEvent(*ecs.UpdateFrame) {
	state := s.InputState.Get()
	if state == nil {
		return
	}
	io := imgui.CurrentIO()
	state.WantCaptureMouse = io.WantCaptureMouse()
	state.WantCaptureKeyboard = io.WantCaptureKeyboard()
}

func (s *ImguiSystem) OnRender(f *ecs.UpdateFrame) {
	for _, item := range s.Items.Iter(s.Entities().Slice()) {
		if item.Render != nil {
			f.Commands.Defer(item.Render)
		}
	}
}
