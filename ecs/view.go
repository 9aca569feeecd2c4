package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"unsafe"
)

// View gives typed access to a combination of components on one entity.
// The type T must be a struct of pointer fields, one per component type.
// Embedded fields are always required; named fields can be marked optional
// with the `ecs:"optional"` struct tag and are nil when missing.
type View[T any] struct {
	world       *World
	types       []ComponentType
	optional    []bool
	fieldOffset []uintptr
	required    Signature
}

// NewView resolves the component types of T against w. Every component type
// referenced by T must already be registered.
func NewView[T any](w *World) (*View[T], error) {
	v := &View[T]{}
	if err := v.initView(w); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *View[T]) initView(w *World) error {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v.world = w
	v.types = v.types[:0]
	v.optional = v.optional[:0]
	v.fieldOffset = v.fieldOffset[:0]
	v.required = Signature{}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		t, ok := w.components.TypeOf(field.Type.Elem())
		if !ok {
			return fmt.Errorf("view %s: %s: %w", structType, field.Type.Elem(), ErrComponentNotRegistered)
		}

		isOptional := false
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				isOptional = true
			default:
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
		}

		v.types = append(v.types, t)
		v.optional = append(v.optional, isOptional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
		if !isOptional {
			v.required.Set(t)
		}
	}
	return nil
}

func (v *View[T]) requiredSignature() Signature {
	return v.required
}

// Signature returns the signature formed by the required fields.
func (v *View[T]) Signature() Signature {
	return v.required
}

// Fill points the fields of ptr at e's components. It returns false if e is
// not alive or misses a required component.
func (v *View[T]) Fill(e Entity, ptr *T) bool {
	sig, err := v.world.entities.Signature(e)
	if err != nil || !sig.Contains(v.required) {
		return false
	}

	structPtr := unsafe.Pointer(ptr)
	for i, t := range v.types {
		fieldPtr := unsafe.Add(structPtr, v.fieldOffset[i])

		if !sig.Has(t) {
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}
		*(*unsafe.Pointer)(fieldPtr) = v.world.components.sets[t].pointer(e)
	}
	return true
}

// Get returns a populated view for e, or false if e does not match.
func (v *View[T]) Get(e Entity) (*T, bool) {
	var result T
	if !v.Fill(e, &result) {
		return nil, false
	}
	return &result, true
}

// Iter yields a populated view for each entity in entities that matches.
// Pass a system's tracked set with Iter(s.Entities().Slice()).
func (v *View[T]) Iter(entities []Entity) iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		var result T
		for _, e := range entities {
			if !v.Fill(e, &result) {
				continue
			}
			if !yield(e, result) {
				return
			}
		}
	}
}

// Each yields every live entity that matches the view, driven by the smallest
// required component set.
func (v *View[T]) Each() iter.Seq2[Entity, T] {
	var driver []Entity
	found := false
	for i, t := range v.types {
		if v.optional[i] {
			continue
		}
		ents := v.world.components.sets[t].Entities()
		if !found || len(ents) < len(driver) {
			driver = ents
			found = true
		}
	}
	if !found {
		return v.Iter(v.world.LivingEntities())
	}
	return v.Iter(driver)
}

// Values yields only the view structs of Each.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Each() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates an entity holding copies of the non-nil components in data.
func (v *View[T]) Spawn(data T) (Entity, error) {
	structPtr := unsafe.Pointer(&data)
	components := make([]any, 0, len(v.types))
	for i, t := range v.types {
		componentPtr := *(*unsafe.Pointer)(unsafe.Add(structPtr, v.fieldOffset[i]))
		if componentPtr == nil {
			if !v.optional[i] {
				return 0, fmt.Errorf("view spawn: required %s is nil", v.world.components.NameOf(t))
			}
			continue
		}
		elemType := v.world.components.ElemType(t)
		components = append(components, reflect.NewAt(elemType, componentPtr).Interface())
	}

	obj, err := Spawn(v.world, components...)
	if err != nil {
		return 0, err
	}
	return obj.Entity(), nil
}
