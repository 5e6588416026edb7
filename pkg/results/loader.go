package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when a result document cannot be interpreted.
var ErrMalformed = errors.New("malformed result document")

// JSONP wrapper used by the layout test results viewer.
var (
	jsonpPrefix = []byte("ADD_RESULTS(")
	jsonpSuffix = []byte(");")
)

type member struct {
	key string
	raw json.RawMessage
}

// Load parses a result document. Entries are ordered exactly as their keys
// appear in the document.
func Load(data []byte) (*Tree, error) {
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, jsonpPrefix) {
		data = bytes.TrimSuffix(data[len(jsonpPrefix):], jsonpSuffix)
	}

	top, err := readObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	t := &Tree{index: make(map[string]int)}
	var tests json.RawMessage
	for _, m := range top {
		switch m.key {
		case "tests":
			tests = m.raw
		case "seconds_since_epoch":
			if err := json.Unmarshal(m.raw, &t.SecondsSinceEpoch); err != nil {
				return nil, fmt.Errorf("%w: seconds_since_epoch: %v", ErrMalformed, err)
			}
		case "build_number":
			t.BuildNumber = scalarString(m.raw)
		case "num_failures_by_type":
			if err := json.Unmarshal(m.raw, &t.NumFailuresByType); err != nil {
				return nil, fmt.Errorf("%w: num_failures_by_type: %v", ErrMalformed, err)
			}
		case "flag_name":
			t.FlagName = scalarString(m.raw)
		}
	}
	if tests == nil {
		return nil, fmt.Errorf("%w: missing tests", ErrMalformed)
	}
	if err := t.walk(tests, nil); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) walk(raw json.RawMessage, parents []string) error {
	members, err := readObject(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, strings.Join(parents, "/"), err)
	}
	if isLeaf(members) {
		var l leaf
		if err := json.Unmarshal(raw, &l); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, strings.Join(parents, "/"), err)
		}
		path := strings.Join(parents, "/")
		if _, dup := t.index[path]; dup {
			return nil
		}
		t.index[path] = len(t.entries)
		t.entries = append(t.entries, t.newEntry(path, l))
		return nil
	}
	for _, m := range members {
		if !isObject(m.raw) {
			continue
		}
		if err := t.walk(m.raw, append(parents[:len(parents):len(parents)], m.key)); err != nil {
			return err
		}
	}
	return nil
}

// readObject decodes one JSON object into its members, keeping key order.
func readObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		members = append(members, member{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

func isLeaf(members []member) bool {
	for _, m := range members {
		if m.key == "actual" && len(m.raw) > 0 && m.raw[0] == '"' {
			return true
		}
	}
	return false
}

func isObject(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '{'
}

// scalarString renders a JSON string or number as a plain string.
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
