package record

import (
	"iter"
	"slices"
	"sort"
)

// Pair is a single attribute key and value.
type Pair struct {
	Key   string
	Value any
}

// Attr returns a Pair.
func Attr(key string, value any) Pair {
	return Pair{Key: key, Value: value}
}

// Attributes is an insertion-ordered attribute map.
//
// The zero value is an empty map ready to use. Attributes values share
// storage when copied; use Clone for an independent copy.
type Attributes struct {
	keys   []string
	values map[string]any
}

// NewAttributes builds Attributes from pairs, in order.
// A repeated key keeps its first position and its last value.
func NewAttributes(pairs ...Pair) Attributes {
	a := Attributes{
		keys:   make([]string, 0, len(pairs)),
		values: make(map[string]any, len(pairs)),
	}
	for _, p := range pairs {
		a.Set(p.Key, p.Value)
	}
	return a
}

// AttributesFromMap builds Attributes from a map.
// Keys are ordered lexically since maps carry no order.
func AttributesFromMap(m map[string]any) Attributes {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	a := Attributes{
		keys:   keys,
		values: make(map[string]any, len(m)),
	}
	for k, v := range m {
		a.values[k] = v
	}
	return a
}

// Len returns the number of attributes.
func (a Attributes) Len() int {
	return len(a.keys)
}

// Get returns the value for key and whether it is present.
func (a Attributes) Get(key string) (any, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (a Attributes) Keys() []string {
	return slices.Clone(a.keys)
}

// All iterates over the attributes in insertion order.
func (a Attributes) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range a.keys {
			if !yield(k, a.values[k]) {
				return
			}
		}
	}
}

// Pairs returns the attributes as an ordered slice.
func (a Attributes) Pairs() []Pair {
	pairs := make([]Pair, 0, len(a.keys))
	for _, k := range a.keys {
		pairs = append(pairs, Pair{Key: k, Value: a.values[k]})
	}
	return pairs
}

// Map returns the attributes as a plain map.
func (a Attributes) Map() map[string]any {
	m := make(map[string]any, len(a.keys))
	for _, k := range a.keys {
		m[k] = a.values[k]
	}
	return m
}

// Clone returns a shallow copy. Values are not copied.
func (a Attributes) Clone() Attributes {
	c := Attributes{
		keys:   slices.Clone(a.keys),
		values: make(map[string]any, len(a.values)),
	}
	for k, v := range a.values {
		c.values[k] = v
	}
	return c
}

// Set assigns value to key. New keys are appended.
func (a *Attributes) Set(key string, value any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Delete removes key.
func (a *Attributes) Delete(key string) {
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	a.keys = slices.DeleteFunc(a.keys, func(k string) bool { return k == key })
}

// Merge overlays patch. Existing keys keep their position; new keys are
// appended in lexical order.
func (a *Attributes) Merge(patch map[string]any) {
	if len(patch) == 0 {
		return
	}

	var added []string
	for k, v := range patch {
		if a.Has(k) {
			a.values[k] = v
			continue
		}
		added = append(added, k)
	}

	sort.Strings(added)
	for _, k := range added {
		a.Set(k, patch[k])
	}
}
