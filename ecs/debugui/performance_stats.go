package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/hotbean/ecs"
)

// PerformanceStats plots wall-clock frame times and shows world occupancy
// and per-participant timings from the loop.
type PerformanceStats struct {
	loop    *ecs.GameLoop
	history *FrameHistory
	timer   *FrameTimer
}

func NewPerformanceStats(loop *ecs.GameLoop, historyFrames int) *PerformanceStats {
	return &PerformanceStats{loop: loop, history: NewFrameHistory(historyFrames), timer: NewFrameTimer()}
}

// Sample records the time since the previous call.
func (ps *PerformanceStats) Sample() {
	ps.history.Push(ps.timer.Delta())
}

func (ps *PerformanceStats) Render(f *ecs.UpdateFrame) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	stats := f.World.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d / %d", stats.EntityCount, stats.MaxEntities))
	imgui.Text(fmt.Sprintf("Component Types: %d", len(stats.Components)))
	imgui.Text(fmt.Sprintf("Systems: %d", len(stats.Systems)))
	imgui.Text(fmt.Sprintf("Singletons: %d", len(stats.SingletonTypes)))
	imgui.Text(fmt.Sprintf("Loop: %s, frame %d", ps.loop.State(), ps.loop.FrameCount()))

	avg := ps.history.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000/avg))
	}
	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	samples := ps.history.Samples()
	imgui.PlotLinesFloatPtr("##frametime", &samples[0], int32(len(samples)))

	if imgui.TreeNodeStr("Participants") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("ParticipantTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Name")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()
			for _, p := range ps.loop.GetStats().Participants {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(p.Name)
				imgui.TableNextColumn()
				imgui.Text(p.LastDuration.String())
				imgui.TableNextColumn()
				imgui.Text(p.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(p.MaxDuration.String())
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Components") {
		for _, c := range stats.Components {
			imgui.BulletText(fmt.Sprintf("%s: %d", c.Name, c.Count))
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singletons") {
		for _, name := range stats.SingletonTypes {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}
}

// FrameHistory is a ring buffer of frame times in milliseconds.
type FrameHistory struct {
	samples []float32
	next    int
	filled  int
}

func NewFrameHistory(size int) *FrameHistory {
	if size <= 0 {
		size = 120
	}
	return &FrameHistory{samples: make([]float32, size)}
}

// Push records a frame that took dt seconds.
func (h *FrameHistory) Push(dt float64) {
	h.samples[h.next] = float32(dt * 1000)
	h.next = (h.next + 1) % len(h.samples)
	h.filled = min(h.filled+1, len(h.samples))
}

// Samples returns the backing ring, oldest sample not necessarily first.
func (h *FrameHistory) Samples() []float32 { return h.samples }

// Average returns the mean of the recorded samples in milliseconds.
func (h *FrameHistory) Average() float32 {
	if h.filled == 0 {
		return 0
	}
	var sum float32
	for _, s := range h.samples[:h.filled] {
		sum += s
	}
	return sum / float32(h.filled)
}

// FrameTimer measures wall time between calls.
type FrameTimer struct {
	last time.Time
	now  func() time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{last: time.Now(), now: time.Now}
}

func (ft *FrameTimer) Delta() float64 {
	t := ft.now()
	d := t.Sub(ft.last).Seconds()
	ft.last = t
	return d
}
