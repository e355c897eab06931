package jsonpickle

import "github.com/vmihailenco/msgpack/v5"

// MsgpackBackend encodes document trees as msgpack, for callers that keep
// documents off human eyes and want the smaller payload.
type MsgpackBackend struct{}

func (MsgpackBackend) Marshal(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackBackend) Unmarshal(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}
