package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// startSortSchema only checks shape. Unknown algorithms and speeds are valid
// here; the coordinator decides what to do with them.
const startSortSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["algorithm", "array"],
  "properties": {
    "algorithm": {"type": "string", "minLength": 1},
    "array": {"type": "array", "items": {"type": "integer"}},
    "speed": {"type": "string"}
  }
}`

var startSortValidator = jsonschema.MustCompileString("startSort.json", startSortSchema)

// DecodeStartSort validates and decodes a startSort payload.
func DecodeStartSort(m Message) (StartSortPayload, error) {
	if len(m.Payload) == 0 {
		return StartSortPayload{}, fmt.Errorf("%s: missing payload: %w", m.Type, ErrInvalidPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(m.Payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return StartSortPayload{}, fmt.Errorf("%s: %v: %w", m.Type, err, ErrInvalidPayload)
	}
	if err := startSortValidator.Validate(doc); err != nil {
		return StartSortPayload{}, fmt.Errorf("%s: %v: %w", m.Type, err, ErrInvalidPayload)
	}
	return Decode[StartSortPayload](m)
}
