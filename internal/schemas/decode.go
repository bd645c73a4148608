package schemas

import (
	"encoding/json"
)

// normalizer is implemented by pointers to structured document types.
type normalizer[T any] interface {
	*T
	Normalize()
}

// Decode is the parse boundary for structured documents. It validates raw
// against the named schema, unmarshals it, and fills absent lists with empty
// ones. On failure it returns a *ValidationError.
func Decode[T any, PT normalizer[T]](name string, raw []byte) (T, error) {
	var out T
	if err := Validate(name, raw); err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &ValidationError{
			Schema: name,
			Errors: []FieldError{{Field: "(root)", Message: err.Error()}},
		}
	}
	PT(&out).Normalize()
	return out, nil
}
