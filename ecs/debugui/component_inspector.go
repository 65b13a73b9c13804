package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/spaces/ecs"
)

func NewComponentInspectorComponent() ComponentInspectorComponent {
	return ComponentInspectorComponent{}
}

func (ci *ComponentInspectorComponent) Render(w *ecs.World, selectedEntityId ecs.EntityId) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntityId = selectedEntityId

	if ci.selectedEntityId == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	entity, ok := w.Entity(ci.selectedEntityId)
	if !ok {
		imgui.Text(fmt.Sprintf("Entity %s not found", ci.selectedEntityId))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %s", entity.Id()))
	imgui.Text(fmt.Sprintf("Space: %s", entity.Space().Name()))
	imgui.Text(fmt.Sprintf("State: %s", entity.State()))
	imgui.Separator()

	for _, component := range entity.Components() {
		layout := globalReflectionCache.LayoutOf(component)
		if imgui.TreeNodeStr(fmt.Sprintf("%s (%d/%d editable)", layout.Label, layout.Editable, len(layout.Fields))) {
			ci.renderComponent(component, layout)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspectorComponent) renderComponent(component any, layout *ComponentLayout) {
	val := reflect.ValueOf(component).Elem()

	for _, field := range layout.Fields {
		fieldVal := val.Field(field.Index)
		if field.IsPointer && !fieldVal.IsNil() {
			fieldVal = fieldVal.Elem()
		}
		ci.renderField(field.Name, fieldVal, field)
	}
}

// renderField draws an editor for val. Components are held by pointer, so
// val is addressable and edits land in the live instance.
func (ci *ComponentInspectorComponent) renderField(name string, val reflect.Value, field FieldInfo) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	if field.IsPointer && val.Kind() == reflect.Pointer && val.IsNil() {
		imgui.Text(fmt.Sprintf("%s: nil", name))
		return
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) {
			assignField(val, int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && v >= 0 {
			assignField(val, uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) {
			assignField(val, float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			assignField(val, v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) {
			assignField(val, v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			for _, nf := range globalReflectionCache.GetFields(val.Type()) {
				nestedVal := val.Field(nf.Index)
				if nf.IsPointer && !nestedVal.IsNil() {
					nestedVal = nestedVal.Elem()
				}
				ci.renderField(nf.Name, nestedVal, nf)
			}
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		} else {
			imgui.Text(fmt.Sprintf("%s: <%s>", name, val.Type()))
		}
	}
}

// assignField stores value into field when the kinds agree, reporting
// whether anything was written.
func assignField(field reflect.Value, value any) bool {
	if !field.CanSet() {
		return false
	}
	switch v := value.(type) {
	case int64:
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if field.OverflowInt(v) {
				return false
			}
			field.SetInt(v)
			return true
		}
	case uint64:
		switch field.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if field.OverflowUint(v) {
				return false
			}
			field.SetUint(v)
			return true
		}
	case float64:
		if field.Kind() == reflect.Float32 || field.Kind() == reflect.Float64 {
			field.SetFloat(v)
			return true
		}
	case bool:
		if field.Kind() == reflect.Bool {
			field.SetBool(v)
			return true
		}
	case string:
		if field.Kind() == reflect.String {
			field.SetString(v)
			return true
		}
	}
	return false
}
