package jsonpickle

import (
	"reflect"
	"time"
)

// Default bindings for the temporal and ordered-collection types that generic
// field traversal cannot represent faithfully. Instants carry packed binary
// state and go through the binary handler; the rest reduce structurally. Any
// of these can be overridden by a later Register call.
func init() {
	timeType := reflect.TypeOf(time.Time{})
	Register(timeType, NewBinaryReduceHandler)
	RegisterTypeName("time.Time", timeType)
	RegisterFactory("time.Time", timeFactory)

	durationType := reflect.TypeOf(time.Duration(0))
	Register(durationType, ReduceHandlerFor(durationReduce))
	RegisterTypeName("time.Duration", durationType)
	RegisterFactory("time.Duration", durationFactory)

	structTimeType := reflect.TypeOf(StructTime{})
	Register(structTimeType, NewReduceHandler)
	RegisterTypeName("jsonpickle.StructTime", structTimeType)
	RegisterFactory("jsonpickle.StructTime", structTimeFactory)

	orderedMapType := reflect.TypeOf(&OrderedMap{})
	Register(orderedMapType, NewReduceHandler)
	RegisterTypeName("jsonpickle.OrderedMap", orderedMapType)
	RegisterFactory("jsonpickle.OrderedMap", orderedMapFactory)
}
