package debugui

import (
	"reflect"
	"strings"
	"sync"
)

// FieldInfo describes one exported struct field as the inspector shows it.
// Label is the field's yaml name when it has one. Fields tagged yaml:"-" are
// runtime state and shown read-only.
type FieldInfo struct {
	Name      string
	Label     string
	Type      reflect.Type
	Index     int
	IsPointer bool
	ReadOnly  bool
}

type ReflectionCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{fields: make(map[reflect.Type][]FieldInfo)}
}

func (rc *ReflectionCache) Fields(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fields[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if cached, ok := rc.fields[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			info := FieldInfo{Name: sf.Name, Label: sf.Name, Type: sf.Type, Index: i}
			if info.Type.Kind() == reflect.Ptr {
				info.Type = info.Type.Elem()
				info.IsPointer = true
			}
			tag, _, _ := strings.Cut(sf.Tag.Get("yaml"), ",")
			switch tag {
			case "-":
				info.ReadOnly = true
			case "":
			default:
				info.Label = tag
			}
			fields = append(fields, info)
		}
	}

	rc.fields[t] = fields
	return fields
}

var fieldCache = NewReflectionCache()
