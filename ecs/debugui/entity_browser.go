package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/hotbean/ecs"
)

// EntityInfo is one row of the entity browser.
type EntityInfo struct {
	ID         ecs.Entity
	Signature  ecs.Signature
	Components []string
}

const (
	sortByID = iota
	sortByComponents
	sortByCount
)

// refreshInterval is how many frames the browser reuses its entity list
// while the entity count is unchanged.
const refreshInterval = 30

// EntityBrowser lists live entities with search, sorting and paging.
type EntityBrowser struct {
	entities      []EntityInfo
	lastCount     int
	lastRefresh   uint64
	sortColumn    int
	sortAscending bool

	filterText string
	perPage    int
	page       int

	selected    ecs.Entity
	hasSelected bool
}

func NewEntityBrowser(perPage int) *EntityBrowser {
	if perPage <= 0 {
		perPage = 100
	}
	return &EntityBrowser{perPage: perPage, sortAscending: true, lastCount: -1}
}

// Selected returns the entity the user last clicked.
func (eb *EntityBrowser) Selected() (ecs.Entity, bool) {
	return eb.selected, eb.hasSelected
}

func (eb *EntityBrowser) Select(e ecs.Entity) {
	eb.selected, eb.hasSelected = e, true
}

func (eb *EntityBrowser) Render(f *ecs.UpdateFrame) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	eb.refresh(f.World, f.Number)
	if eb.hasSelected && !f.World.IsAlive(eb.selected) {
		eb.hasSelected = false
	}

	if imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil) {
		eb.page = 0
	}
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.page = 0
	}
	imgui.SameLine()
	if imgui.Button("Spawn Empty") {
		f.Commands.Spawn(func(obj ecs.GameObject) { eb.Select(obj.Entity()) })
	}

	rows := filterEntities(eb.entities, eb.filterText)
	start, end := pageBounds(len(rows), eb.page, eb.perPage)
	if start == end && eb.page > 0 {
		eb.page = 0
		start, end = pageBounds(len(rows), 0, eb.perPage)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, -30), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		specs := imgui.TableGetSortSpecs()
		if specs.SpecsDirty() && specs.SpecsCount() > 0 {
			spec := specs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortEntities(eb.entities, eb.sortColumn, eb.sortAscending)
			specs.SetSpecsDirty(false)
		}

		for _, info := range rows[start:end] {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			selected := eb.hasSelected && eb.selected == info.ID
			if imgui.SelectableBoolV(strconv.Itoa(int(info.ID)), selected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.Select(info.ID)
			}
			imgui.TableNextColumn()
			imgui.Text(strings.Join(info.Components, ", "))
			imgui.TableNextColumn()
			imgui.Text(strconv.Itoa(len(info.Components)))
		}
		imgui.EndTable()
	}

	if len(rows) > eb.perPage {
		pages := (len(rows) + eb.perPage - 1) / eb.perPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.page+1, pages, len(rows)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.page > 0 {
			eb.page--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.page < pages-1 {
			eb.page++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(rows)))
	}
}

func (eb *EntityBrowser) refresh(w *ecs.World, frame uint64) {
	count := w.EntityCount()
	if count == eb.lastCount && frame-eb.lastRefresh < refreshInterval {
		return
	}
	eb.entities = collectEntities(w)
	sortEntities(eb.entities, eb.sortColumn, eb.sortAscending)
	eb.lastCount = count
	eb.lastRefresh = frame
}

// collectEntities describes every live entity, ordered by id.
func collectEntities(w *ecs.World) []EntityInfo {
	cm := w.ComponentManager()
	living := w.LivingEntities()
	out := make([]EntityInfo, 0, len(living))
	for _, e := range living {
		sig, err := w.Signature(e)
		if err != nil {
			continue
		}
		types := sig.Types()
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = cm.NameOf(t)
		}
		out = append(out, EntityInfo{ID: e, Signature: sig, Components: names})
	}
	slices.SortFunc(out, func(a, b EntityInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func sortEntities(rows []EntityInfo, column int, ascending bool) {
	slices.SortStableFunc(rows, func(a, b EntityInfo) int {
		var c int
		switch column {
		case sortByComponents:
			c = cmp.Compare(strings.Join(a.Components, ","), strings.Join(b.Components, ","))
		case sortByCount:
			c = cmp.Compare(len(a.Components), len(b.Components))
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if !ascending {
			return -c
		}
		return c
	})
}

// filterEntities keeps rows whose id or any component name contains text,
// ignoring case.
func filterEntities(rows []EntityInfo, text string) []EntityInfo {
	if text == "" {
		return rows
	}
	needle := strings.ToLower(text)
	out := make([]EntityInfo, 0, len(rows))
	for _, info := range rows {
		if strings.Contains(strconv.Itoa(int(info.ID)), needle) ||
			strings.Contains(strings.ToLower(strings.Join(info.Components, " ")), needle) {
			out = append(out, info)
		}
	}
	return out
}

// pageBounds returns the slice bounds of page, clamped to n.
func pageBounds(n, page, perPage int) (int, int) {
	start := min(page*perPage, n)
	end := min(start+perPage, n)
	return start, end
}
