package token

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

// Kind identifies what a Value holds.
type Kind uint8

// Value kinds. KindReference is the alias case; every other kind is a literal.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindRecord
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindReference:
		return "reference"
	default:
		return "null"
	}
}

// Value is a token payload: either a literal (scalar, list or ordered record)
// or a reference to another token path. The zero Value is null.
type Value struct {
	kind Kind
	str  string // string payload, or the target path for references
	num  float64
	b    bool
	list []Value
	rec  *Record
}

// String returns a string literal.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric literal.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool returns a boolean literal.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List returns a list literal. The slice is copied.
func List(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), items...)}
}

// RecordOf returns a record literal.
func RecordOf(r *Record) Value {
	if r == nil {
		r = NewRecord()
	}
	return Value{kind: KindRecord, rec: r}
}

// Reference returns an alias to the token at path.
func Reference(path Path) Value { return Value{kind: KindReference, str: string(path)} }

// Kind reports the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v carries nothing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsReference reports whether v is an alias.
func (v Value) IsReference() bool { return v.kind == KindReference }

// Ref returns the alias target, or "" for literals.
func (v Value) Ref() Path {
	if v.kind != KindReference {
		return ""
	}
	return Path(v.str)
}

// Number returns the numeric payload and whether v is a number.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Record returns the record payload, or nil.
func (v Value) Record() *Record {
	if v.kind != KindRecord {
		return nil
	}
	return v.rec
}

// Items returns a copy of the list payload.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return append([]Value(nil), v.list...)
}

// Field returns a named field of a record value. A dotted name walks nested
// records.
func (v Value) Field(name string) (Value, bool) {
	cur := v
	for _, part := range strings.Split(name, ".") {
		rec := cur.Record()
		if rec == nil {
			return Value{}, false
		}
		next, ok := rec.Get(part)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Text serializes v for use inside generated source.
// Records render as compact JSON, lists as a comma separated sequence.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return cast.ToString(v.num)
	case KindBool:
		return cast.ToString(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.Text()
		}
		return strings.Join(parts, ", ")
	case KindRecord:
		data, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	case KindReference:
		return FormatRef(Path(v.str))
	default:
		return ""
	}
}

// Interface converts v into plain Go data for encoders: string, float64, bool,
// []any, or an ordered map for records.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindRecord:
		return v.rec.ordered()
	case KindReference:
		return FormatRef(Path(v.str))
	default:
		return nil
	}
}

// MarshalJSON encodes v, keeping record key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v.Interface()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes JSON, keeping record key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString, KindReference:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		return v.rec.Equal(o.rec)
	default:
		return true
	}
}
