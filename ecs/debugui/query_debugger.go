package debugui

import (
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/hotbean/ecs"
)

// QueryDebugger builds a signature from checked component names and shows
// which entities carry all of them and which systems would track such an
// entity.
type QueryDebugger struct {
	selected map[string]bool
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{selected: make(map[string]bool)}
}

// Use replaces the selection with the component names of sig.
func (qd *QueryDebugger) Use(w *ecs.World, sig ecs.Signature) {
	clear(qd.selected)
	cm := w.ComponentManager()
	for _, t := range sig.Types() {
		qd.selected[cm.NameOf(t)] = true
	}
}

func (qd *QueryDebugger) Render(f *ecs.UpdateFrame, browser *EntityBrowser) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	w := f.World
	stats := w.CollectStats()

	imgui.Text("Select Component Types:")
	imgui.Separator()
	if imgui.Button("Clear All") {
		clear(qd.selected)
	}
	for _, c := range stats.Components {
		checked := qd.selected[c.Name]
		if imgui.Checkbox(c.Name, &checked) {
			if checked {
				qd.selected[c.Name] = true
			} else {
				delete(qd.selected, c.Name)
			}
		}
	}
	imgui.Separator()

	sig := qd.Signature(w)
	if sig.Empty() {
		imgui.Text("No component types selected")
		return
	}

	matches := matchEntities(w, sig)
	imgui.Text(fmt.Sprintf("Signature: %s", sig))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))

	if imgui.TreeNodeStr("Tracking Systems") {
		for _, name := range trackingSystems(stats, sig) {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Entities") {
		for _, e := range matches[:min(len(matches), 200)] {
			if imgui.SelectableBoolV(fmt.Sprintf("%d", e), false, 0, imgui.NewVec2(0, 0)) && browser != nil {
				browser.Select(e)
			}
		}
		if len(matches) > 200 {
			imgui.Text(fmt.Sprintf("... %d more", len(matches)-200))
		}
		imgui.TreePop()
	}
}

// Signature returns the signature of the checked component names. Names the
// world no longer knows are ignored.
func (qd *QueryDebugger) Signature(w *ecs.World) ecs.Signature {
	cm := w.ComponentManager()
	var sig ecs.Signature
	for name := range qd.selected {
		if t, ok := cm.TypeByName(name); ok {
			sig.Set(t)
		}
	}
	return sig
}

// matchEntities returns the live entities whose signature contains sig, in
// id order.
func matchEntities(w *ecs.World, sig ecs.Signature) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range w.LivingEntities() {
		es, err := w.Signature(e)
		if err == nil && es.Contains(sig) {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	return out
}

// trackingSystems names the systems that would track an entity with exactly
// the components of sig.
func trackingSystems(stats ecs.WorldStats, sig ecs.Signature) []string {
	var out []string
	for _, s := range stats.Systems {
		if !s.Signature.Empty() && sig.Contains(s.Signature) {
			out = append(out, s.Name)
		}
	}
	return out
}
