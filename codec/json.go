package codec

import "encoding/json"

// JSON is the default snapshot codec; output is indented so dumps stay
// readable and diffable.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
