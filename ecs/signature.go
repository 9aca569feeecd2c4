package ecs

import (
	"strings"

	"github.com/TheBitDrifter/mask"
)

// MaxComponents is the maximum number of distinct component types a World can register.
const MaxComponents = 64

// ComponentType is the small integer id assigned to a component type at registration.
type ComponentType uint32

// Signature is a bitset with one bit per registered component type.
type Signature struct {
	bits mask.Mask
}

// NewSignature returns a signature with the given component types set.
func NewSignature(types ...ComponentType) Signature {
	var s Signature
	for _, t := range types {
		s.Set(t)
	}
	return s
}

func (s *Signature) Set(t ComponentType) {
	s.bits.Mark(uint32(t))
}

func (s *Signature) Clear(t ComponentType) {
	s.bits.Unmark(uint32(t))
}

// Has reports whether bit t is set.
func (s Signature) Has(t ComponentType) bool {
	var probe mask.Mask
	probe.Mark(uint32(t))
	return s.bits.ContainsAll(probe)
}

// Contains reports whether every bit of other is also set in s,
// i.e. s & other == other.
func (s Signature) Contains(other Signature) bool {
	return s.bits.ContainsAll(other.bits)
}

// Intersects reports whether s and other share at least one bit.
func (s Signature) Intersects(other Signature) bool {
	return s.bits.ContainsAny(other.bits)
}

// Empty reports whether no bit is set.
func (s Signature) Empty() bool {
	return s == Signature{}
}

// Types lists the set component types in ascending order.
func (s Signature) Types() []ComponentType {
	var types []ComponentType
	for t := ComponentType(0); t < MaxComponents; t++ {
		if s.Has(t) {
			types = append(types, t)
		}
	}
	return types
}

// String renders the signature as a bit string, lowest type id first.
func (s Signature) String() string {
	var b strings.Builder
	last := -1
	for _, t := range s.Types() {
		last = int(t)
	}
	for t := 0; t <= last; t++ {
		if s.Has(ComponentType(t)) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}
