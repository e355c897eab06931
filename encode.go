package jsonpickle

// Encode flattens v in a fresh session and marshals the resulting tree
// through backend.
func Encode(v interface{}, backend Backend) ([]byte, error) {
	tree, err := NewPickler(true).Flatten(v, true)
	if err != nil {
		return nil, err
	}
	return backend.Marshal(tree)
}

// EncodeLossy flattens v without reconstruction metadata: registered types
// degrade to readable strings and the output cannot be decoded back.
func EncodeLossy(v interface{}, backend Backend) ([]byte, error) {
	tree, err := NewPickler(false).Flatten(v, true)
	if err != nil {
		return nil, err
	}
	return backend.Marshal(tree)
}

// Decode parses data through backend and restores the value it describes.
func Decode(data []byte, backend Backend) (interface{}, error) {
	var tree interface{}
	if err := backend.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return NewPickler(true).Restore(tree, true)
}
