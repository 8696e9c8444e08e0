package registry

import "encoding/json"

// jsonSchema is the default store.Schema[S]: every CRDT state type in the
// crdt package is a plain struct of exported fields, so JSON round-trips
// it without any bespoke wire format.
type jsonSchema[S any] struct{}

func (jsonSchema[S]) Encode(state S) ([]byte, error) { return json.Marshal(state) }

func (jsonSchema[S]) Decode(data []byte) (S, error) {
	var state S
	err := json.Unmarshal(data, &state)
	return state, err
}
