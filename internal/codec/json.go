// Package codec serializes values to and from JSON text.
package codec

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

const indent = "  "

// Parse decodes JSON text into a generic value: maps decode to
// map[string]any, arrays to []any and numbers to float64.
func Parse(data []byte) (any, error) {
	var v any
	if err := Decode(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode decodes JSON text into v.
func Decode(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("malformed JSON: empty input")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	return nil
}

// Stringify encodes v as JSON. Pretty output is indented with two spaces
// and ends with a newline.
func Stringify(v any, pretty bool) ([]byte, error) {
	if !pretty {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to stringify value: %w", err)
		}
		return data, nil
	}

	data, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to stringify value: %w", err)
	}
	return append(data, '\n'), nil
}
