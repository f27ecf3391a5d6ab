package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Pair is one key/value entry of an ordered string mapping.
type Pair struct {
	Key   string
	Value string
}

// OrderedPairs is a string-to-string mapping that remembers the order in
// which keys appeared in the source document. Go maps lose that order, and
// both field maps and note fields are reported in document order.
//
// Keys must be unique. Scalar values that are not strings are kept in their
// textual form (for example 3 becomes "3"); nested objects and arrays are
// rejected.
type OrderedPairs []Pair

// Keys returns the keys in document order.
func (p OrderedPairs) Keys() []string {
	keys := make([]string, len(p))
	for i, pair := range p {
		keys[i] = pair.Key
	}
	return keys
}

// UnmarshalJSON decodes a JSON object token by token so key order survives.
func (p *OrderedPairs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var out OrderedPairs
	seen := make(map[string]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, got %v", keyTok)
		}
		if seen[key] {
			return fmt.Errorf("duplicate key %q", key)
		}
		seen[key] = true

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		value, err := scalarJSONText(raw)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out = append(out, Pair{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// UnmarshalYAML walks the mapping node directly; yaml.v3 keeps node order.
func (p *OrderedPairs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*p = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	out := make(OrderedPairs, 0, len(node.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if seen[keyNode.Value] {
			return fmt.Errorf("line %d: duplicate key %q", keyNode.Line, keyNode.Value)
		}
		seen[keyNode.Value] = true

		if valueNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value for %q must be a scalar", valueNode.Line, keyNode.Value)
		}
		value := valueNode.Value
		if valueNode.Tag == "!!null" {
			value = ""
		}
		out = append(out, Pair{Key: keyNode.Value, Value: value})
	}
	*p = out
	return nil
}

// scalarJSONText turns a raw JSON scalar into text.
func scalarJSONText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("nested values are not supported")
	case 'n':
		return "", nil
	default:
		return string(trimmed), nil
	}
}
