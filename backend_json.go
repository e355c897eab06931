package jsonpickle

import "encoding/json"

// JSONBackend encodes document trees with the standard library JSON codec.
// Human-readable, cross-language, and the format the reserved document keys
// were designed for.
type JSONBackend struct{}

func (JSONBackend) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONBackend) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
