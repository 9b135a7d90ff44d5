package backend

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// The backend answers list endpoints either with a bare array or with an
// envelope, sometimes paginated:
//
//	[...]
//	{"data": [...]}
//	{"data": {"current_page": 1, "data": [...]}}
//
// DecodeList and DecodeOne accept all of them so nothing past this file
// sees the difference.

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeList decodes a list response in any of the accepted shapes. A
// null or missing list decodes to an empty slice.
func DecodeList[T any](body []byte) ([]T, error) {
	raw, err := unwrap(body, '[')
	if err != nil {
		return nil, err
	}
	out := []T{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	return out, nil
}

// DecodeOne decodes a single object, bare or under "data".
func DecodeOne[T any](body []byte) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil {
			if d := bytes.TrimSpace(env.Data); len(d) > 0 && d[0] == '{' {
				trimmed = d
			}
		}
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, fmt.Errorf("decoding object: %w", err)
	}
	return out, nil
}

// unwrap descends through "data" keys until it reaches a value starting
// with want. It returns nil for null.
func unwrap(body []byte, want byte) ([]byte, error) {
	b := bytes.TrimSpace(body)
	for depth := 0; depth < 3; depth++ {
		switch {
		case len(b) == 0 || bytes.Equal(b, []byte("null")):
			return nil, nil
		case b[0] == want:
			return b, nil
		case b[0] == '{':
			var env envelope
			if err := json.Unmarshal(b, &env); err != nil {
				return nil, fmt.Errorf("decoding envelope: %w", err)
			}
			b = bytes.TrimSpace(env.Data)
		default:
			return nil, fmt.Errorf("unexpected response shape starting with %q", b[0])
		}
	}
	return nil, fmt.Errorf("response nested too deeply")
}
