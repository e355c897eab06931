package jsonpickle

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type session struct {
	User  string
	Count int
	Tags  []string
}

type event struct {
	Name string
	At   time.Time
}

func init() {
	RegisterTypeName("test.session", reflect.TypeOf(session{}))
	RegisterTypeName("test.event", reflect.TypeOf(event{}))
}

func TestFlattenPrimitives(t *testing.T) {
	p := NewPickler(true)

	for _, v := range []interface{}{true, "text", 42, int64(-7), uint8(255), 3.5} {
		flat, err := p.Flatten(v, true)
		assert.NoError(t, err)
		assert.Equal(t, v, flat)
	}

	flat, err := p.Flatten(nil, true)
	assert.NoError(t, err)
	assert.Nil(t, flat)
}

func TestFlattenCollections(t *testing.T) {
	p := NewPickler(true)

	flat, err := p.Flatten([]int{1, 2, 3}, true)
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2, 3}, flat)

	flat, err = p.Flatten(map[string]interface{}{"a": 1, "b": "two"}, true)
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": "two"}, flat)

	var nilTags []string
	flat, err = p.Flatten(nilTags, true)
	assert.NoError(t, err)
	assert.Nil(t, flat, "nil slices stay null instead of becoming empty lists")

	_, err = p.Flatten(map[int]string{1: "one"}, true)
	assert.Error(t, err, "non-string map keys have no JSON representation")

	_, err = p.Flatten(make(chan int), true)
	assert.Error(t, err)
}

func TestStructRoundTrip(t *testing.T) {
	p := NewPickler(true)
	s := session{User: "ada", Count: 3, Tags: []string{"x", "y"}}

	flat, err := p.Flatten(s, true)
	assert.NoError(t, err)

	node := flat.(map[string]interface{})
	assert.Equal(t, "test.session", node[ObjectKey])

	restored, err := p.Restore(flat, true)
	assert.NoError(t, err)
	assert.Equal(t, s, restored)
}

func TestStructWithNestedHandlerType(t *testing.T) {
	p := NewPickler(true)
	e := event{Name: "deploy", At: time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC)}

	flat, err := p.Flatten(e, true)
	assert.NoError(t, err)

	// The nested instant must route through its own handler rather than
	// being walked structurally, which would strip its state.
	node := flat.(map[string]interface{})
	at := node["At"].(map[string]interface{})
	assert.Contains(t, at, ReduceKey)
	assert.Equal(t, "time.Time", at[ObjectKey])

	restored, err := p.Restore(flat, true)
	assert.NoError(t, err)

	r := restored.(event)
	assert.Equal(t, e.Name, r.Name)
	assert.True(t, r.At.Equal(e.At))
}

func TestNestedHandlerValuesInsideCollections(t *testing.T) {
	p := NewPickler(true)
	t0 := time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC)

	flat, err := p.Flatten(map[string]interface{}{"at": t0, "durations": []time.Duration{time.Second}}, true)
	assert.NoError(t, err)

	restored, err := p.Restore(flat, true)
	assert.NoError(t, err)

	m := restored.(map[string]interface{})
	assert.True(t, m["at"].(time.Time).Equal(t0))
	assert.Equal(t, time.Second, m["durations"].([]interface{})[0])
}

func TestFlattenStructSkipsUnexportedFields(t *testing.T) {
	type annotated struct {
		Label  string
		hidden int
	}

	p := NewPickler(true)
	flat, err := p.Flatten(annotated{Label: "x", hidden: 7}, true)
	assert.NoError(t, err)

	node := flat.(map[string]interface{})
	assert.Equal(t, "x", node["Label"])
	assert.NotContains(t, node, "hidden")
}

func TestRestoreUnknownTypeName(t *testing.T) {
	p := NewPickler(true)
	_, err := p.Restore(map[string]interface{}{ObjectKey: "test.never-named", "A": 1}, true)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "test.never-named")
}

func TestPointerFlattensToValue(t *testing.T) {
	p := NewPickler(true)
	s := &session{User: "lin", Count: 1}

	flat, err := p.Flatten(s, true)
	assert.NoError(t, err)

	restored, err := p.Restore(flat, true)
	assert.NoError(t, err)
	assert.Equal(t, *s, restored)

	var nilSession *session
	flat, err = p.Flatten(nilSession, true)
	assert.NoError(t, err)
	assert.Nil(t, flat)
}

func TestLossyStructHasNoTypeTag(t *testing.T) {
	p := NewPickler(false)

	flat, err := p.Flatten(session{User: "ada"}, true)
	assert.NoError(t, err)
	assert.NotContains(t, flat.(map[string]interface{}), ObjectKey)
}
