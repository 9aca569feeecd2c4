package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/hotbean/ecs"
	"github.com/plus3/hotbean/ecs/components"
)

var colorType = reflect.TypeFor[components.Color]()

// ComponentInspector edits the components of one entity in place.
type ComponentInspector struct {
	entity   ecs.Entity
	selected bool
}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

// Inspect selects e, or clears the selection when ok is false.
func (ci *ComponentInspector) Inspect(e ecs.Entity, ok bool) {
	ci.entity, ci.selected = e, ok
}

func (ci *ComponentInspector) Render(f *ecs.UpdateFrame) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	w := f.World
	if !ci.selected {
		imgui.Text("No entity selected")
		return
	}
	if !w.IsAlive(ci.entity) {
		imgui.Text(fmt.Sprintf("Entity %d was destroyed", ci.entity))
		return
	}

	sig, _ := w.Signature(ci.entity)
	imgui.Text(fmt.Sprintf("Entity: %d", ci.entity))
	imgui.Text(fmt.Sprintf("Signature: %s", sig))
	if imgui.Button("Destroy") {
		f.Commands.Destroy(ci.entity)
	}
	imgui.Separator()

	cm := w.ComponentManager()
	for _, c := range w.Components(ci.entity) {
		val := reflect.ValueOf(c).Elem()
		name := val.Type().Name()
		if t, ok := cm.TypeOf(val.Type()); ok {
			name = cm.NameOf(t)
		}
		if imgui.TreeNodeStr(name) {
			renderStruct(val)
			if imgui.Button("Remove##" + name) {
				f.Commands.RemoveComponent(ci.entity, val.Type())
			}
			imgui.TreePop()
		}
	}
}

func renderStruct(val reflect.Value) {
	for _, field := range fieldCache.Fields(val.Type()) {
		fv := val.Field(field.Index)
		if field.IsPointer {
			if fv.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Label))
				continue
			}
			fv = fv.Elem()
		}
		renderField(field, fv)
	}
}

func renderField(field FieldInfo, val reflect.Value) {
	label := field.Label
	if field.ReadOnly {
		imgui.Text(fmt.Sprintf("%s: %s", label, formatValue(val)))
		return
	}
	id := "##" + field.Name

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		fieldLabel(label, val)
		if imgui.InputInt(id, &v) {
			setNumber(val, float64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		fieldLabel(label, val)
		if imgui.InputInt(id, &v) {
			setNumber(val, float64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		fieldLabel(label, val)
		if imgui.InputFloat(id, &v) {
			setNumber(val, float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(label, &v) {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		fieldLabel(label, val)
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(id, "", &v, imgui.InputTextFlagsNone, nil) {
			val.SetString(v)
		}

	case reflect.Struct:
		if val.Type() == colorType {
			c := val.Addr().Interface().(*components.Color)
			rgba := colorToFloats(*c)
			if imgui.ColorEdit4(label, &rgba) {
				*c = floatsToColor(rgba)
			}
			return
		}
		if imgui.TreeNodeStr(label) {
			renderStruct(val)
			imgui.TreePop()
		}

	default:
		imgui.Text(fmt.Sprintf("%s: %s", label, formatValue(val)))
	}
}

func fieldLabel(label string, val reflect.Value) {
	if s, ok := val.Interface().(fmt.Stringer); ok {
		imgui.Text(fmt.Sprintf("%s (%s):", label, s))
	} else {
		imgui.Text(label + ":")
	}
	imgui.SameLine()
	imgui.SetNextItemWidth(150)
}

// setNumber stores x into a numeric field, clamping negatives to zero for
// unsigned kinds.
func setNumber(val reflect.Value, x float64) {
	if !val.CanSet() {
		return
	}
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val.SetInt(int64(x))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if x < 0 {
			x = 0
		}
		val.SetUint(uint64(x))
	case reflect.Float32, reflect.Float64:
		val.SetFloat(x)
	}
}

func formatValue(val reflect.Value) string {
	switch val.Kind() {
	case reflect.Slice:
		return fmt.Sprintf("[%d items]", val.Len())
	case reflect.Map:
		return fmt.Sprintf("map[%d items]", val.Len())
	case reflect.Func, reflect.Chan:
		if val.IsNil() {
			return "nil"
		}
		return val.Type().String()
	}
	return fmt.Sprintf("%v", val.Interface())
}

func colorToFloats(c components.Color) [4]float32 {
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

func floatsToColor(f [4]float32) components.Color {
	ch := func(v float32) uint8 {
		switch {
		case v <= 0:
			return 0
		case v >= 1:
			return 255
		}
		return uint8(v*255 + 0.5)
	}
	return components.Color{R: ch(f[0]), G: ch(f[1]), B: ch(f[2]), A: ch(f[3])}
}
