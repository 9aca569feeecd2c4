package ecs

import (
	"fmt"
	"iter"
)

// Entity is an opaque identifier for one game object. Ids are recycled after
// destruction and are not stable across runs.
type Entity uint32

// DefaultMaxEntities is the entity limit of a World created without WithMaxEntities.
const DefaultMaxEntities = 5000

// EntityManager issues and recycles entity ids and tracks each entity's signature.
type EntityManager struct {
	available  []Entity // FIFO queue of free ids
	head       int
	signatures []Signature
	alive      []bool
	living     int
}

// NewEntityManager creates an entity manager able to hold maxEntities live entities.
func NewEntityManager(maxEntities int) *EntityManager {
	if maxEntities <= 0 {
		maxEntities = DefaultMaxEntities
	}
	m := &EntityManager{
		available:  make([]Entity, maxEntities),
		signatures: make([]Signature, maxEntities),
		alive:      make([]bool, maxEntities),
	}
	for i := range m.available {
		m.available[i] = Entity(i)
	}
	return m
}

// CreateEntity takes the oldest free id off the queue.
func (m *EntityManager) CreateEntity() (Entity, error) {
	if m.head == len(m.available) {
		return 0, fmt.Errorf("create entity: %d entities live: %w", m.living, ErrCapacityExceeded)
	}

	e := m.available[m.head]
	m.head++
	// Reclaim the consumed prefix once it dominates the queue.
	if m.head > len(m.available)/2 {
		n := copy(m.available, m.available[m.head:])
		m.available = m.available[:n]
		m.head = 0
	}

	m.alive[e] = true
	m.signatures[e] = Signature{}
	m.living++
	return e, nil
}

// DestroyEntity clears the entity's signature and puts its id at the back of the free queue.
func (m *EntityManager) DestroyEntity(e Entity) error {
	if !m.IsAlive(e) {
		return EntityError{Entity: e, Op: "destroy"}
	}

	m.alive[e] = false
	m.signatures[e] = Signature{}
	m.available = append(m.available, e)
	m.living--
	return nil
}

// IsAlive reports whether e is a live entity.
func (m *EntityManager) IsAlive(e Entity) bool {
	return int(e) < len(m.alive) && m.alive[e]
}

func (m *EntityManager) SetSignature(e Entity, sig Signature) error {
	if !m.IsAlive(e) {
		return EntityError{Entity: e, Op: "set signature"}
	}
	m.signatures[e] = sig
	return nil
}

func (m *EntityManager) Signature(e Entity) (Signature, error) {
	if !m.IsAlive(e) {
		return Signature{}, EntityError{Entity: e, Op: "get signature"}
	}
	return m.signatures[e], nil
}

// LivingCount returns the number of live entities.
func (m *EntityManager) LivingCount() int {
	return m.living
}

// MaxEntities returns the entity limit.
func (m *EntityManager) MaxEntities() int {
	return len(m.alive)
}

// Living iterates live entities in ascending id order.
func (m *EntityManager) Living() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for i, ok := range m.alive {
			if ok && !yield(Entity(i)) {
				return
			}
		}
	}
}
