package token

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseValue decodes a JSON or YAML document into a Value. Key order of
// mappings is preserved.
func ParseValue(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Value{}, fmt.Errorf("parse value: %w", err)
	}
	return DecodeNode(&node)
}

// DecodeNode converts a yaml.v3 node tree into a Value. JSON input parses as
// YAML, so this is the single decoder for both formats.
func DecodeNode(n *yaml.Node) (Value, error) {
	if n == nil {
		return Value{}, nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Value{}, nil
		}
		return DecodeNode(n.Content[0])

	case yaml.AliasNode:
		return DecodeNode(n.Alias)

	case yaml.ScalarNode:
		return decodeScalar(n)

	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := DecodeNode(child)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return List(items...), nil

	case yaml.MappingNode:
		rec := NewRecord()
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := DecodeNode(n.Content[i+1])
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", n.Content[i].Value, err)
			}
			rec.Set(n.Content[i].Value, val)
		}
		return RecordOf(rec), nil
	}

	return Value{}, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

func decodeScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Value{}, nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			// YAML 1.1 spellings such as "yes" stay strings
			return String(n.Value), nil
		}
		return Bool(b), nil
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return String(n.Value), nil
		}
		return Number(f), nil
	default:
		return String(n.Value), nil
	}
}
