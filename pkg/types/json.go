package types

import (
	"bytes"
	"encoding/json"
	"errors"
)

// StrictUnmarshal decodes exactly one JSON value into v, rejecting unknown
// object fields and trailing data. Failures are INVALID_FIELD_VALUE unless
// a nested decoder already returned a more specific *Error.
func StrictUnmarshal(b []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var te *Error
		if errors.As(err, &te) {
			return te
		}
		return Wrap(CodeInvalidFieldValue, err, "malformed JSON")
	}
	if dec.More() {
		return Errorf(CodeInvalidFieldValue, "trailing data after JSON value")
	}
	return nil
}
