package jsonpickle

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// OrderedMap is a string-keyed map that remembers insertion order. Generic
// map traversal loses ordering, so it round-trips through the reduce
// protocol as a list of key/value pairs instead.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]interface{})}
}

// Set stores value under key. Re-setting an existing key updates the value
// in place and keeps the key's original position.
func (m *OrderedMap) Set(key string, value interface{}) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *OrderedMap) Get(key string) (interface{}, bool) {
	value, ok := m.values[key]
	return value, ok
}

func (m *OrderedMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *OrderedMap) String() string {
	var b strings.Builder
	b.WriteString("map[")
	for i, k := range m.keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%v", k, m.values[k])
	}
	b.WriteByte(']')
	return b.String()
}

func (m *OrderedMap) Reduce() (string, []interface{}) {
	pairs := make([]interface{}, 0, len(m.keys))
	for _, k := range m.keys {
		pairs = append(pairs, []interface{}{k, m.values[k]})
	}
	return "jsonpickle.OrderedMap", []interface{}{pairs}
}

func orderedMapFactory(args ...interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("jsonpickle: OrderedMap takes 1 argument, got %d", len(args))
	}
	pairs, ok := args[0].([]interface{})
	if !ok {
		return nil, errors.Errorf("jsonpickle: OrderedMap argument is %T, not a pair list", args[0])
	}
	m := NewOrderedMap()
	for i, p := range pairs {
		pair, ok := p.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, errors.Errorf("jsonpickle: OrderedMap pair %d is malformed", i)
		}
		key, ok := pair[0].(string)
		if !ok {
			return nil, errors.Errorf("jsonpickle: OrderedMap key %d is %T, not a string", i, pair[0])
		}
		m.Set(key, pair[1])
	}
	return m, nil
}
