package debugui

import (
	"fmt"

	"github.com/plus3/hotbean/ecs"
)

// DefaultToggleKey shows and hides the inspector panels.
const DefaultToggleKey = "F1"

// DebugUI is a loop participant that draws the inspector panels after every
// render phase while Visible is set.
type DebugUI struct {
	ecs.NopParticipant

	Visible   bool
	ToggleKey string

	Browser   *EntityBrowser
	Inspector *ComponentInspector
	Systems   *SystemViewer
	Queries   *QueryDebugger
	Stats     *PerformanceStats
}

func New(loop *ecs.GameLoop) *DebugUI {
	return &DebugUI{
		ToggleKey: DefaultToggleKey,
		Browser:   NewEntityBrowser(100),
		Inspector: NewComponentInspector(),
		Systems:   NewSystemViewer(),
		Queries:   NewQueryDebugger(),
		Stats:     NewPerformanceStats(loop, 120),
	}
}

// Install registers ImguiItem and an ImguiSystem in the loop's world and
// adds a DebugUI participant to the loop.
func Install(loop *ecs.GameLoop) (*DebugUI, error) {
	if _, err := ecs.RegisterComponent[ImguiItem](loop.World()); err != nil {
		return nil, fmt.Errorf("debugui: %w", err)
	}
	if _, err := ecs.RegisterSystem(loop.World(), &ImguiSystem{}); err != nil {
		return nil, fmt.Errorf("debugui: %w", err)
	}
	d := New(loop)
	loop.AddParticipant(d)
	return d, nil
}

func (d *DebugUI) Name() string { return "DebugUI" }

func (d *DebugUI) OnEvent(f *ecs.UpdateFrame) {
	for _, ev := range f.Events {
		if ev.Type == ecs.EventKeyDown && ev.Key == d.ToggleKey {
			d.Visible = !d.Visible
		}
	}
}

func (d *DebugUI) OnPostRender(f *ecs.UpdateFrame) {
	d.Stats.Sample()
	if d.Visible {
		d.Render(f)
	}
}

// Render draws every panel. It must run between the ImGui backend's
// BeginFrame and EndFrame.
func (d *DebugUI) Render(f *ecs.UpdateFrame) {
	d.Browser.Render(f)
	d.Inspector.Inspect(d.Browser.Selected())
	d.Inspector.Render(f)
	if sig, ok := d.Systems.Render(f); ok {
		d.Queries.Use(f.World, sig)
	}
	d.Queries.Render(f, d.Browser)
	d.Stats.Render(f)
}
