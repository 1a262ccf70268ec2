package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ParseResponse turns raw model output into a Response for the given task.
func ParseResponse(task Task, raw string) (*Response, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, errors.New("model returned empty response")
	}

	switch task {
	case TaskGenerateQuestion:
		question, err := parseQuestion(cleaned)
		if err != nil {
			return nil, err
		}
		return &Response{Question: question, Raw: raw}, nil
	case TaskExtractClaims:
		claims, err := parseClaims(cleaned)
		if err != nil {
			return nil, err
		}
		return &Response{Claims: claims, Raw: raw}, nil
	default:
		return nil, fmt.Errorf("unknown task %q", task)
	}
}

// parseQuestion accepts {"question": "..."} or plain text.
func parseQuestion(cleaned string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err == nil {
		question := coerceString(data["question"])
		if question == "" {
			return "", errors.New("model response has no question field")
		}
		return question, nil
	}

	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"`)
		if line != "" {
			return line, nil
		}
	}
	return "", errors.New("model response has no question")
}

// parseClaims accepts {"claims": [...]} or a bare array.
func parseClaims(cleaned string) ([]Claim, error) {
	var payload any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse claims response: %w", err)
	}
	if obj, ok := payload.(map[string]any); ok {
		payload = obj["claims"]
	}
	if payload == nil {
		return []Claim{}, nil
	}

	var decoded []Claim
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return nil, fmt.Errorf("create claims decoder: %w", err)
	}
	if err := decoder.Decode(payload); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}

	claims := make([]Claim, 0, len(decoded))
	for _, c := range decoded {
		c.Claim = strings.TrimSpace(c.Claim)
		if c.Claim == "" {
			continue
		}
		if math.IsNaN(c.Confidence) {
			c.Confidence = 0
		}
		c.Confidence = math.Max(0, math.Min(1, c.Confidence))
		claims = append(claims, c)
	}
	return claims, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
