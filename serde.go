package jsonpickle

// Marshaler turns a flattened document tree into bytes.
type Marshaler interface {
	Marshal(v interface{}) ([]byte, error)
}

// Unmarshaler parses bytes produced by the matching Marshaler back into a
// document tree.
type Unmarshaler interface {
	Unmarshal([]byte, interface{}) error
}

// Backend is the document codec sitting behind the flattened tree.
type Backend interface {
	Marshaler
	Unmarshaler
}
