package jsonpickle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedMapOperations(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("c", 3)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys(), "keys should come back in insertion order, not sorted")

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	// Updating an existing key keeps its position.
	m.Set("a", 20)
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	v, _ = m.Get("a")
	assert.Equal(t, 20, v)

	m.Delete("b")
	assert.Equal(t, []string{"a", "c"}, m.Keys())
	_, ok = m.Get("b")
	assert.False(t, ok)

	// Re-inserting a deleted key appends it at the end.
	m.Set("b", 5)
	assert.Equal(t, []string{"a", "c", "b"}, m.Keys())

	m.Delete("never-there")
	assert.Equal(t, 3, m.Len())
}

func TestOrderedMapString(t *testing.T) {
	m := NewOrderedMap()
	m.Set("x", 1)
	m.Set("y", "two")
	assert.Equal(t, "map[x:1 y:two]", m.String())
}

func TestOrderedMapRoundTrip(t *testing.T) {
	m := NewOrderedMap()
	m.Set("zulu", "z")
	m.Set("alpha", "a")
	m.Set("mike", "m")

	p := NewPickler(true)
	flat, err := p.Flatten(m, true)
	assert.NoError(t, err)

	restored, err := p.Restore(flat, true)
	assert.NoError(t, err)

	r, ok := restored.(*OrderedMap)
	assert.True(t, ok)
	assert.Equal(t, []string{"zulu", "alpha", "mike"}, r.Keys())
	for _, k := range m.Keys() {
		want, _ := m.Get(k)
		got, _ := r.Get(k)
		assert.Equal(t, want, got)
	}
}

func TestOrderedMapLossyMode(t *testing.T) {
	m := NewOrderedMap()
	m.Set("x", 1)

	p := NewPickler(false)
	flat, err := p.Flatten(m, true)
	assert.NoError(t, err)
	assert.Equal(t, "map[x:1]", flat)
}
