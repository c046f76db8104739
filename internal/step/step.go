// Package step decodes the JSON envelope the model answers with on every
// turn of the loop.
package step

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	Plan       Kind = "plan"
	Action     Kind = "action"
	Observe    Kind = "observe"
	Output     Kind = "output"
	Analyze    Kind = "analyze"
	Retrieve   Kind = "retrieve"
	Synthesize Kind = "synthesize"
)

var (
	ErrNoJSON      = errors.New("reply contains no JSON object")
	ErrUnknownStep = errors.New("unknown step")
)

var kinds = []Kind{Plan, Action, Observe, Output, Analyze, Retrieve, Synthesize}

// ParseKind resolves a step name case-insensitively.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Terminal reports whether the step ends the inner loop.
func (k Kind) Terminal() bool {
	return k == Output
}

// Record is one decoded step. Content stays raw because models put strings,
// lists and objects there.
type Record struct {
	Step     Kind            `json:"step"`
	Content  json.RawMessage `json:"content,omitempty"`
	Function string          `json:"function,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
	Code     string          `json:"code,omitempty"`
}

// Observation builds the record fed back to the model after a tool ran.
func Observation(content any) (Record, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return Record{}, fmt.Errorf("marshal observation: %w", err)
	}
	return Record{Step: Observe, Content: raw}, nil
}

// ContentString renders Content for display: JSON strings are unquoted,
// anything else is returned as compact JSON.
func (r Record) ContentString() string {
	if len(r.Content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}

// InputString renders Input the same way ContentString renders Content.
func (r Record) InputString() string {
	if len(r.Input) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Input, &s); err == nil {
		return s
	}
	return string(r.Input)
}

// JSON encodes the record for the transcript.
func (r Record) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"step":%q}`, r.Step)
	}
	return string(data)
}

type wireRecord struct {
	Step     string          `json:"step"`
	Content  json.RawMessage `json:"content"`
	Function string          `json:"function"`
	Input    json.RawMessage `json:"input"`
	Code     string          `json:"code"`
}

// Parse extracts the first JSON object from a model reply. Code fences and
// surrounding prose are tolerated.
func Parse(reply string) (Record, error) {
	obj, err := extractObject(reply)
	if err != nil {
		return Record{}, err
	}
	var w wireRecord
	if err := json.Unmarshal(obj, &w); err != nil {
		return Record{}, fmt.Errorf("decode step: %w", err)
	}
	if w.Step == "" {
		return Record{}, fmt.Errorf("%w: missing step field", ErrUnknownStep)
	}
	k, ok := ParseKind(w.Step)
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownStep, w.Step)
	}
	return Record{
		Step:     k,
		Content:  nullToEmpty(w.Content),
		Function: strings.TrimSpace(w.Function),
		Input:    nullToEmpty(w.Input),
		Code:     w.Code,
	}, nil
}

func nullToEmpty(raw json.RawMessage) json.RawMessage {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

// extractObject scans for the first balanced {...} that decodes as JSON.
func extractObject(reply string) ([]byte, error) {
	s := []byte(reply)
	for start := bytes.IndexByte(s, '{'); start >= 0; {
		end := matchBrace(s, start)
		if end < 0 {
			break
		}
		candidate := s[start : end+1]
		if json.Valid(candidate) {
			return candidate, nil
		}
		next := bytes.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, ErrNoJSON
}

// matchBrace returns the index of the brace closing s[open], honoring
// JSON string literals.
func matchBrace(s []byte, open int) int {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
