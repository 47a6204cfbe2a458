package embeddings

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// maxPayloadInError bounds how much of a rejected body is quoted in errors.
const maxPayloadInError = 256

// envelope is the OpenAI-style response shape.
type envelope struct {
	Data []struct {
		Embedding []*float32 `json:"embedding"`
	} `json:"data"`
}

// ParseResponse extracts the embedding from an HTTP endpoint response body.
//
// Two shapes are accepted: a bare JSON array of numbers, returned as-is, and
// an object whose data[0].embedding holds the vector. Anything else fails
// with ErrMalformedResponse.
func ParseResponse(body []byte) ([]float32, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, malformed(body, "empty body")
	}

	switch trimmed[0] {
	case '[':
		var vec []*float32
		if err := json.Unmarshal(trimmed, &vec); err != nil {
			return nil, malformed(body, err.Error())
		}
		return components(body, vec)
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, malformed(body, err.Error())
		}
		if len(env.Data) == 0 {
			return nil, malformed(body, "missing data")
		}
		if env.Data[0].Embedding == nil {
			return nil, malformed(body, "missing data[0].embedding")
		}
		return components(body, env.Data[0].Embedding)
	default:
		return nil, malformed(body, "neither an array nor an object")
	}
}

// components dereferences decoded vector elements. A null element is
// rejected rather than read as zero.
func components(body []byte, raw []*float32) ([]float32, error) {
	vec := make([]float32, len(raw))
	for i, v := range raw {
		if v == nil {
			return nil, malformed(body, fmt.Sprintf("null component at index %d", i))
		}
		vec[i] = *v
	}
	return vec, nil
}

func malformed(body []byte, reason string) error {
	payload := string(body)
	if len(payload) > maxPayloadInError {
		payload = payload[:maxPayloadInError] + "..."
	}
	return fmt.Errorf("%w: %s: %q", ErrMalformedResponse, reason, payload)
}
