package client

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// shapeChecker is implemented by response payloads with required fields.
// A required field must be present and not null; its value may be anything
// of the right type, zero values included.
type shapeChecker interface {
	requiredFields() []string
}

// interpret turns a raw (status, body) pair into the expected payload or a
// classified error:
//
//   - 200 and the body decodes as T: success
//   - 200 and it does not: KindDeserialization
//   - anything else: see apiError
func interpret[T any](status int, body []byte) (T, error) {
	var out T

	if status != http.StatusOK {
		// Other 2XX/3XX are unexpected and land here too.
		return out, apiError(status, body)
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, &Error{Kind: KindDeserialization, Message: err.Error(), Err: err}
	}

	if checker, ok := any(&out).(shapeChecker); ok {
		if err := checkRequired(body, checker.requiredFields()); err != nil {
			return out, err
		}
	}

	return out, nil
}

// checkRequired verifies that every named field is present in the JSON
// object body and is not null.
func checkRequired(body []byte, fields []string) *Error {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		return &Error{Kind: KindDeserialization, Message: err.Error(), Err: err}
	}

	for _, field := range fields {
		raw, ok := present[field]
		if !ok {
			return newError(KindDeserialization, "missing field `%s`", field)
		}
		if string(bytes.TrimSpace(raw)) == "null" {
			return newError(KindDeserialization, "invalid type: null for field `%s`", field)
		}
	}
	return nil
}
