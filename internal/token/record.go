package token

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is an insertion-ordered mapping of names to values. Generators rely on
// this order to produce stable output, so keys are never sorted.
type Record struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{m: orderedmap.New[string, Value]()}
}

// Set stores v under key. Re-setting an existing key keeps its position.
func (r *Record) Set(key string, v Value) {
	r.m.Set(key, v)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	return r.m.Get(key)
}

// Len returns the number of entries. A nil record is empty.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return r.m.Len()
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, r.m.Len())
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every entry in insertion order.
func (r *Record) Each(fn func(key string, v Value)) {
	if r == nil {
		return
	}
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Equal reports whether both records hold equal values in the same order.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	if r.Len() == 0 {
		return true
	}
	a, b := r.m.Oldest(), o.m.Oldest()
	for a != nil && b != nil {
		if a.Key != b.Key || !a.Value.Equal(b.Value) {
			return false
		}
		a, b = a.Next(), b.Next()
	}
	return true
}

// ordered converts the record into an ordered map of plain values.
func (r *Record) ordered() *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any]()
	r.Each(func(key string, v Value) {
		out.Set(key, v.Interface())
	})
	return out
}

// Clone returns a deep copy. Nested records are copied as well.
func (r *Record) Clone() *Record {
	out := NewRecord()
	r.Each(func(key string, v Value) {
		if nested := v.Record(); nested != nil {
			v = RecordOf(nested.Clone())
		}
		out.Set(key, v)
	})
	return out
}
