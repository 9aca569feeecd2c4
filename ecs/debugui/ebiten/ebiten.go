// Package ebiten connects the Dear ImGui ebiten backend to a hotbean game as
// an overlay.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend so it can be
// added to a game's overlays. Each ImGui frame spans one loop frame.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the ImGui backend and its window. The imgui.ini
// file is disabled.
func NewImguiBackend(title string, width, height int) ImguiBackend {
	b := ebitenbackend.NewEbitenBackend()
	b.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return ImguiBackend{EbitenBackend: b}
}

func (b ImguiBackend) BeginFrame() { b.EbitenBackend.BeginFrame() }

func (b ImguiBackend) EndFrame() { b.EbitenBackend.EndFrame() }

func (b ImguiBackend) Draw(screen *ebiten.Image) { b.EbitenBackend.Draw(screen) }

func (b ImguiBackend) Layout(width, height int) { b.EbitenBackend.Layout(width, height) }
