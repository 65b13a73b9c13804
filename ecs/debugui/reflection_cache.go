package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes one exported field as the component inspector draws it.
// Type and Kind describe the element for pointer fields.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Kind      reflect.Kind
	Index     int
	IsPointer bool
	Embedded  bool
	// Editable fields get an input widget; the rest are shown read-only.
	Editable bool
}

// ComponentLayout is the inspector's view of one component type.
type ComponentLayout struct {
	Type     reflect.Type
	Label    string
	Fields   []FieldInfo
	Editable int
}

type ReflectionCache struct {
	mu      sync.RWMutex
	layouts map[reflect.Type]*ComponentLayout
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		layouts: make(map[reflect.Type]*ComponentLayout),
	}
}

// LayoutOf returns the layout of a component instance as stored on an entity,
// which is always a pointer to the component value.
func (rc *ReflectionCache) LayoutOf(component any) *ComponentLayout {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return rc.Layout(t)
}

// Layout returns the cached layout of t, building it on first use.
func (rc *ReflectionCache) Layout(t reflect.Type) *ComponentLayout {
	rc.mu.RLock()
	cached, ok := rc.layouts[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.layouts[t]; ok {
		return cached
	}
	layout := buildLayout(t)
	rc.layouts[t] = layout
	return layout
}

// GetFields returns the exported fields of t, or nil for non-struct types.
func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	return rc.Layout(t).Fields
}

func buildLayout(t reflect.Type) *ComponentLayout {
	layout := &ComponentLayout{Type: t, Label: t.String()}
	if t.Kind() != reflect.Struct {
		return layout
	}
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldType := field.Type
		isPointer := fieldType.Kind() == reflect.Pointer
		if isPointer {
			fieldType = fieldType.Elem()
		}

		info := FieldInfo{
			Name:      field.Name,
			Type:      fieldType,
			Kind:      fieldType.Kind(),
			Index:     i,
			IsPointer: isPointer,
			Embedded:  field.Anonymous,
			Editable:  editableKind(fieldType.Kind()),
		}
		if info.Editable {
			layout.Editable++
		}
		layout.Fields = append(layout.Fields, info)
	}
	return layout
}

// editableKind reports whether assignField can write values of kind k.
func editableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
		return true
	}
	return false
}

var globalReflectionCache = NewReflectionCache()
