package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/hotbean/ecs"
)

// SystemRow is one system as shown by the system viewer.
type SystemRow struct {
	Name        string
	Signature   ecs.Signature
	Components  []string
	EntityCount int
}

// SystemViewer lists registered systems with their signatures and how many
// entities each one tracks.
type SystemViewer struct {
	rows          []SystemRow
	sortColumn    int
	sortAscending bool
	selected      string
}

func NewSystemViewer() *SystemViewer {
	return &SystemViewer{sortColumn: 2}
}

// Render draws the viewer and returns the signature of the system clicked
// this frame, if any.
func (sv *SystemViewer) Render(f *ecs.UpdateFrame) (ecs.Signature, bool) {
	if !imgui.BeginV("System Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return ecs.Signature{}, false
	}
	defer imgui.End()

	sv.rows = systemRows(f.World)
	sortSystems(sv.rows, sv.sortColumn, sv.sortAscending)

	maxCount := 0
	for _, r := range sv.rows {
		maxCount = max(maxCount, r.EntityCount)
	}

	var clicked ecs.Signature
	var ok bool

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("SystemTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("System")
		imgui.TableSetupColumn("Signature")
		imgui.TableSetupColumn("Entities")
		imgui.TableHeadersRow()

		specs := imgui.TableGetSortSpecs()
		if specs.SpecsDirty() && specs.SpecsCount() > 0 {
			spec := specs.Specs()
			sv.sortColumn = int(spec.ColumnIndex())
			sv.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSystems(sv.rows, sv.sortColumn, sv.sortAscending)
			specs.SetSpecsDirty(false)
		}

		for _, r := range sv.rows {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			if imgui.SelectableBoolV(r.Name, sv.selected == r.Name, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				sv.selected = r.Name
				clicked, ok = r.Signature, true
			}

			imgui.TableNextColumn()
			if len(r.Components) == 0 {
				imgui.Text("-")
			} else {
				imgui.Text(strings.Join(r.Components, ", "))
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", r.EntityCount))
			if maxCount > 0 {
				width := float32(r.EntityCount) / float32(maxCount) * 80
				imgui.SameLine()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				imgui.WindowDrawList().AddRectFilled(pos, imgui.NewVec2(pos.X+width, pos.Y+10), color)
			}
		}
		imgui.EndTable()
	}
	return clicked, ok
}

func systemRows(w *ecs.World) []SystemRow {
	cm := w.ComponentManager()
	stats := w.CollectStats()
	rows := make([]SystemRow, 0, len(stats.Systems))
	for _, s := range stats.Systems {
		row := SystemRow{Name: s.Name, Signature: s.Signature, EntityCount: s.EntityCount}
		for _, t := range s.Signature.Types() {
			row.Components = append(row.Components, cm.NameOf(t))
		}
		rows = append(rows, row)
	}
	return rows
}

func sortSystems(rows []SystemRow, column int, ascending bool) {
	slices.SortStableFunc(rows, func(a, b SystemRow) int {
		var c int
		switch column {
		case 0:
			c = cmp.Compare(a.Name, b.Name)
		case 1:
			c = cmp.Compare(strings.Join(a.Components, ","), strings.Join(b.Components, ","))
		default:
			c = cmp.Compare(a.EntityCount, b.EntityCount)
		}
		if !ascending {
			return -c
		}
		return c
	})
}
