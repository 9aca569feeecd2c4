package ebiten_test

import (
	"github.com/AllenDang/cimgui-go/imgui"
	backend "github.com/plus3/hotbean/backend/ebiten"
	"github.com/plus3/hotbean/config"
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/debugui"
	debugui_ebiten "github.com/plus3/hotbean/ecs/debugui/ebiten"
)

func Example() {
	cfg := config.Default()
	overlay := debugui_ebiten.NewImguiBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)

	world := ecs.NewWorld()
	loop := ecs.NewGameLoop(world)

	// The inspector panels start hidden; F1 toggles them.
	ui, err := debugui.Install(loop)
	if err != nil {
		panic(err)
	}
	ui.Visible = true

	// Entities can contribute windows of their own.
	if _, err := ecs.Spawn(world, debugui.ImguiItem{
		Render: func() {
			imgui.Begin("Debug Window")
			imgui.Text("Hello from hotbean!")
			imgui.End()
		},
	}); err != nil {
		panic(err)
	}

	game := backend.NewGame(loop, nil, cfg.Window)
	game.Overlays = append(game.Overlays, overlay)
	if err := game.Run(cfg.Loop.TickRate); err != nil {
		panic(err)
	}
}
