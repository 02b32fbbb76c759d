package commsutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// EncodePayload serializes a value to JSON bytes.
func EncodePayload(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodePayload deserializes a single JSON document into v. Unknown fields and trailing data
// are rejected.
func DecodePayload(data []byte, v any) error {
	return DecodeStream(bytes.NewReader(data), v)
}

// DecodeStream is DecodePayload over a reader, e.g. an HTTP request body.
func DecodeStream(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON document")
	}
	return nil
}
