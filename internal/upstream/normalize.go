package upstream

import (
	"encoding/json"
	"fmt"
)

// resultsEnvelope matches the wrapped shape some upstream endpoints use.
type resultsEnvelope struct {
	Results json.RawMessage `json:"results"`
}

// unwrapList normalizes the two list shapes the upstream API answers with:
// a bare JSON array, or {"results": [...]}. Anything else is an error.
func unwrapList(data []byte) (json.RawMessage, error) {
	trimmed := firstNonSpace(data)
	switch trimmed {
	case '[':
		return json.RawMessage(data), nil
	case '{':
		var env resultsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		if env.Results == nil {
			return nil, fmt.Errorf("envelope missing results field")
		}
		return env.Results, nil
	default:
		return nil, fmt.Errorf("unexpected response shape")
	}
}

func decodeList[T any](data []byte) ([]T, error) {
	raw, err := unwrapList(data)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b
		}
	}
	return 0
}
