package jsonpickle

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ObjectKey tags a flattened map with the registered name of the type it was
// produced from, so the unpickling side can route it back through the right
// handler or named struct type.
const ObjectKey = "py/object"

var (
	namedTypes = make(map[string]reflect.Type)
	typeNames  = make(map[reflect.Type]string)
)

// RegisterTypeName binds a stable document name to t in both directions.
// Values tagged in a document under an unregistered name cannot be restored.
// Same concurrency discipline as Register.
func RegisterTypeName(name string, t reflect.Type) {
	namedTypes[name] = t
	typeNames[t] = name
}

func lookupTypeName(t reflect.Type) (string, bool) {
	name, ok := typeNames[t]
	return name, ok
}

func lookupNamedType(name string) (reflect.Type, bool) {
	t, ok := namedTypes[name]
	return t, ok
}

// Pickler is the reference engine behind the handler machinery. It walks a
// value, dispatches registered types to their handlers with itself as the
// session context, and falls back to generic traversal everywhere else. One
// Pickler serves both directions of a session.
//
// Recursion depth is bounded only by the value being walked; feeding the
// engine a tree that references itself through a misbehaving Reduce
// implementation will recurse without bound.
type Pickler struct {
	unpicklable bool
}

// NewPickler returns a session engine. When unpicklable is false, flattened
// documents trade reconstruction metadata for readable strings and cannot be
// restored.
func NewPickler(unpicklable bool) *Pickler {
	return &Pickler{unpicklable: unpicklable}
}

func (p *Pickler) Unpicklable() bool {
	return p.unpicklable
}

// Flatten converts v into a JSON-compatible tree. reset is part of the
// session contract for engines that keep per-document state; this engine
// keeps none, so only handlers care, and they always pass false.
func (p *Pickler) Flatten(v interface{}, reset bool) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	t := reflect.TypeOf(v)
	if factory, ok := Lookup(t); ok {
		log.Debugf("flattening %v through its registered handler", t)
		data := make(map[string]interface{})
		if name, named := lookupTypeName(t); named && p.unpicklable {
			data[ObjectKey] = name
		}
		return factory(p).Flatten(v, data)
	}
	return p.flattenGeneric(v, t)
}

func (p *Pickler) flattenGeneric(v interface{}, t reflect.Type) (interface{}, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			flat, err := p.Flatten(rv.Index(i).Interface(), false)
			if err != nil {
				return nil, err
			}
			out[i] = flat
		}
		return out, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, errors.Errorf("jsonpickle: cannot flatten map with %v keys", t.Key())
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			flat, err := p.Flatten(iter.Value().Interface(), false)
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = flat
		}
		return out, nil
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, nil
		}
		return p.Flatten(rv.Elem().Interface(), false)
	case reflect.Struct:
		return p.flattenStruct(v, t)
	default:
		return nil, errors.Errorf("jsonpickle: cannot flatten %v value", t)
	}
}

// flattenStruct decomposes one level only: each exported field routes back
// through Flatten so nested registered types reach their handlers instead of
// being walked structurally.
func (p *Pickler) flattenStruct(v interface{}, t reflect.Type) (interface{}, error) {
	rv := reflect.ValueOf(v)
	out := make(map[string]interface{}, t.NumField()+1)
	if p.unpicklable {
		name, ok := lookupTypeName(t)
		if !ok {
			name = t.String()
		}
		out[ObjectKey] = name
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		flat, err := p.Flatten(rv.Field(i).Interface(), false)
		if err != nil {
			return nil, errors.Wrapf(err, "flattening field %q of %v", field.Name, t)
		}
		out[field.Name] = flat
	}
	return out, nil
}

// Restore rebuilds the value a flattened tree describes.
func (p *Pickler) Restore(v interface{}, reset bool) (interface{}, error) {
	switch obj := v.(type) {
	case map[string]interface{}:
		return p.restoreMap(obj)
	case []interface{}:
		out := make([]interface{}, len(obj))
		for i, elem := range obj {
			restored, err := p.Restore(elem, false)
			if err != nil {
				return nil, err
			}
			out[i] = restored
		}
		return out, nil
	default:
		return v, nil
	}
}

func (p *Pickler) restoreMap(obj map[string]interface{}) (interface{}, error) {
	if name, tagged := obj[ObjectKey].(string); tagged {
		if t, known := lookupNamedType(name); known {
			if factory, handled := Lookup(t); handled {
				log.Debugf("restoring %v through its registered handler", t)
				return factory(p).Restore(obj)
			}
			return p.restoreStruct(t, obj)
		}
		if _, reduced := obj[ReduceKey]; !reduced {
			return nil, errors.Errorf("jsonpickle: no type registered under %q", name)
		}
	}
	if _, ok := obj[ReduceKey]; ok {
		return NewReduceHandler(p).Restore(obj)
	}
	out := make(map[string]interface{}, len(obj))
	for k, elem := range obj {
		restored, err := p.Restore(elem, false)
		if err != nil {
			return nil, err
		}
		out[k] = restored
	}
	return out, nil
}

func (p *Pickler) restoreStruct(t reflect.Type, obj map[string]interface{}) (interface{}, error) {
	fields := make(map[string]interface{}, len(obj))
	for k, elem := range obj {
		if k == ObjectKey {
			continue
		}
		restored, err := p.Restore(elem, false)
		if err != nil {
			return nil, errors.Wrapf(err, "restoring field %q of %v", k, t)
		}
		fields[k] = restored
	}
	target := reflect.New(t)
	if err := mapstructure.Decode(fields, target.Interface()); err != nil {
		return nil, errors.Wrapf(err, "rebuilding %v", t)
	}
	return target.Elem().Interface(), nil
}
