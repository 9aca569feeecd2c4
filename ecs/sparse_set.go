package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"unsafe"
)

const absent = -1

// SparseSet stores values of one component type densely, keyed by entity.
// Insert, Remove and Get are O(1). Remove swaps the last dense element into
// the freed slot, so dense order is not stable across removals.
type SparseSet[T any] struct {
	dense    []T
	entities []Entity
	sparse   []int
	capacity int
}

// NewSparseSet creates a set holding at most capacity values.
func NewSparseSet[T any](capacity int) *SparseSet[T] {
	if capacity <= 0 {
		capacity = DefaultMaxEntities
	}
	return &SparseSet[T]{capacity: capacity}
}

// Has reports whether e holds a value in the set.
func (s *SparseSet[T]) Has(e Entity) bool {
	if int(e) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[e]
	return idx != absent && idx < len(s.entities) && s.entities[idx] == e
}

// Insert adds v for e. The set is unchanged on error.
func (s *SparseSet[T]) Insert(e Entity, v T) error {
	if s.Has(e) {
		return ErrDuplicateComponent
	}
	if len(s.dense) >= s.capacity {
		return fmt.Errorf("sparse set holds %d values: %w", s.capacity, ErrCapacityExceeded)
	}

	if int(e) >= len(s.sparse) {
		// Grow by doubling or to e+1, whichever is larger.
		oldLen := len(s.sparse)
		newLen := max(oldLen*2, int(e)+1)
		grown := make([]int, newLen)
		copy(grown, s.sparse)
		for i := oldLen; i < newLen; i++ {
			grown[i] = absent
		}
		s.sparse = grown
	}

	s.sparse[e] = len(s.dense)
	s.dense = append(s.dense, v)
	s.entities = append(s.entities, e)
	return nil
}

// Remove deletes e's value by swapping the last dense element into its slot.
func (s *SparseSet[T]) Remove(e Entity) error {
	if !s.Has(e) {
		return ErrMissingComponent
	}

	idx := s.sparse[e]
	last := len(s.dense) - 1
	moved := s.entities[last]

	s.dense[idx] = s.dense[last]
	s.entities[idx] = moved
	s.sparse[moved] = idx

	var zero T
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	s.sparse[e] = absent
	return nil
}

// Get returns a pointer to e's value. The pointer is invalidated by the next
// Insert or Remove on the set.
func (s *SparseSet[T]) Get(e Entity) (*T, error) {
	if !s.Has(e) {
		return nil, ErrMissingComponent
	}
	return &s.dense[s.sparse[e]], nil
}

// Size returns the number of values in the set.
func (s *SparseSet[T]) Size() int {
	return len(s.dense)
}

func (s *SparseSet[T]) Capacity() int {
	return s.capacity
}

// Entities returns the dense entity list. Callers must not modify it.
func (s *SparseSet[T]) Entities() []Entity {
	return s.entities
}

// All iterates (entity, value) pairs in dense order. The set must not be
// mutated while the sequence is being consumed.
func (s *SparseSet[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := range s.dense {
			if !yield(s.entities[i], &s.dense[i]) {
				return
			}
		}
	}
}

// componentSet is the type-erased view of a SparseSet used by the ComponentManager.
type componentSet interface {
	Has(e Entity) bool
	Remove(e Entity) error
	Size() int
	Entities() []Entity
	EntityDestroyed(e Entity)
	ElemType() reflect.Type
	insertAny(e Entity, v any) error
	getAny(e Entity) any
	pointer(e Entity) unsafe.Pointer
}

// EntityDestroyed drops e's value if present.
func (s *SparseSet[T]) EntityDestroyed(e Entity) {
	if s.Has(e) {
		_ = s.Remove(e)
	}
}

func (s *SparseSet[T]) ElemType() reflect.Type {
	return reflect.TypeFor[T]()
}

// insertAny accepts either T or *T.
func (s *SparseSet[T]) insertAny(e Entity, v any) error {
	switch val := v.(type) {
	case T:
		return s.Insert(e, val)
	case *T:
		if val == nil {
			return fmt.Errorf("nil %s value", s.ElemType())
		}
		return s.Insert(e, *val)
	default:
		return fmt.Errorf("value of type %T is not %s", v, s.ElemType())
	}
}

// getAny returns a *T, or nil when e holds no value.
func (s *SparseSet[T]) getAny(e Entity) any {
	v, err := s.Get(e)
	if err != nil {
		return nil
	}
	return v
}

// pointer returns the address of e's value, or nil.
func (s *SparseSet[T]) pointer(e Entity) unsafe.Pointer {
	v, err := s.Get(e)
	if err != nil {
		return nil
	}
	return unsafe.Pointer(v)
}
