package token

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingPath is returned when a decoded token has no path.
var ErrMissingPath = errors.New("token has no path")

// wireToken is the exchanged JSON shape:
//
//	{ path, name, type, value, ref?, status?, syncStatus? }
type wireToken struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Value      *Value `json:"value,omitempty"`
	Ref        string `json:"ref,omitempty"`
	Status     string `json:"status,omitempty"`
	SyncStatus string `json:"syncStatus,omitempty"`
}

// MarshalJSON encodes the token in its exchange shape. Aliases carry "ref"
// and no "value".
func (t Token) MarshalJSON() ([]byte, error) {
	w := wireToken{
		Path:       string(t.Path),
		Name:       t.Name,
		Type:       string(t.Type),
		Status:     string(t.Status),
		SyncStatus: string(t.SyncStatus),
	}
	if t.IsAlias() {
		w.Ref = FormatRef(t.Value.Ref())
	} else {
		v := t.Value
		w.Value = &v
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes the exchange shape. The "ref" delimiters are parsed
// here, once.
func (t *Token) UnmarshalJSON(data []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	return t.UnmarshalYAML(&node)
}

// UnmarshalYAML decodes a token from a YAML mapping.
func (t *Token) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := decodeToken(node)
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

func decodeToken(n *yaml.Node) (Token, error) {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return Token{}, fmt.Errorf("line %d: token must be an object", n.Line)
	}

	var (
		tok    Token
		ref    string
		hasRef bool
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		switch key {
		case "path":
			tok.Path = Path(val.Value)
		case "name":
			tok.Name = val.Value
		case "type":
			tok.Type = ParseType(val.Value)
		case "value":
			v, err := DecodeNode(val)
			if err != nil {
				return Token{}, fmt.Errorf("token value: %w", err)
			}
			tok.Value = v
		case "ref":
			if val.ShortTag() != "!!null" && val.Value != "" {
				ref, hasRef = val.Value, true
			}
		case "status":
			tok.Status = Status(val.Value)
		case "syncStatus":
			tok.SyncStatus = SyncStatus(val.Value)
		}
	}

	if tok.Path == "" {
		return Token{}, fmt.Errorf("line %d: %w", n.Line, ErrMissingPath)
	}
	if tok.Type == "" {
		tok.Type = TypeOther
	}
	if hasRef {
		target, ok := ParseRef(ref)
		if !ok {
			// tolerate bare paths in ref
			target = Path(ref)
		}
		tok.Value = Reference(target)
	}
	return tok, nil
}

// DecodeTokens parses a JSON or YAML token list. Both a bare array and an
// object with a "tokens" array are accepted.
func DecodeTokens(data []byte) ([]Token, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse tokens: %w", err)
	}
	return DecodeTokenNode(&node)
}

// DecodeTokenNode is DecodeTokens for an already parsed node.
func DecodeTokenNode(n *yaml.Node) ([]Token, error) {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, nil
		}
		n = n.Content[0]
	}

	if n.Kind == yaml.MappingNode {
		var list *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == "tokens" {
				list = n.Content[i+1]
			}
		}
		if list == nil {
			return nil, fmt.Errorf("line %d: expected a token list or a \"tokens\" field", n.Line)
		}
		n = list
	}

	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: tokens must be a list", n.Line)
	}

	tokens := make([]Token, 0, len(n.Content))
	for i, item := range n.Content {
		tok, err := decodeToken(item)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
