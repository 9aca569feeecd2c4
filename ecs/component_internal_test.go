package ecs

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentTypeLimit(t *testing.T) {
	w := NewWorld()
	cm := w.ComponentManager()

	for i := 0; i < MaxComponents; i++ {
		typ := reflect.ArrayOf(i+1, reflect.TypeFor[byte]())
		_, err := cm.register(typ, typ.String(), func(capacity int) componentSet {
			return NewSparseSet[byte](capacity)
		})
		require.NoError(t, err)
	}
	assert.Equal(t, MaxComponents, cm.Count())

	_, err := RegisterComponentType[string](cm)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
}

type renamed struct{}

func (renamed) ComponentName() string { return "Custom" }

func TestComponentNames(t *testing.T) {
	assert.Equal(t, "Custom", componentName[renamed]())
	assert.Equal(t, "int", componentName[int]())
	assert.Equal(t, "*int", componentName[*int]())
}
