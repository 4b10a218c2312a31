// Package bson provides a BSON codec for encoding casts.
//
// BSON requires a document at the top level, so values are stored wrapped
// as {"value": v}. Structs and maps round-trip the same way as lists.
package bson

import (
	"reflect"
	"sort"

	"github.com/zoobzio/record"
	"go.mongodb.org/mongo-driver/bson"
)

// Name is the codec name used in cast options ("array:bson").
const Name = "bson"

type envelope struct {
	Value any `bson:"value"`
}

type bsonCodec struct{}

// New returns a BSON codec.
func New() record.Codec {
	return &bsonCodec{}
}

// Register makes the codec available to casts under Name.
func Register() {
	record.RegisterCodec(Name, New())
}

func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as a BSON document wrapping v. Maps with string keys are
// written as documents in sorted key order so the same value always encodes
// to the same bytes.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(envelope{Value: sorted(v)})
}

// sorted rewrites string-keyed maps, at any depth inside maps and slices,
// as key-sorted bson.D documents. Other values pass through.
func sorted(v any) any {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case bson.D:
		out := make(bson.D, len(x))
		for i, e := range x {
			out[i] = bson.E{Key: e.Key, Value: sorted(e.Value)}
		}
		return out
	case []byte:
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		keys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			keys = append(keys, k)
			values[k] = iter.Value().Interface()
		}
		sort.Strings(keys)
		doc := make(bson.D, 0, len(keys))
		for _, k := range keys {
			doc = append(doc, bson.E{Key: k, Value: sorted(values[k])})
		}
		return doc
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return v
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = sorted(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}

// Unmarshal decodes the wrapped value of a BSON document into v.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	raw := bson.Raw(data)
	if err := raw.Validate(); err != nil {
		return err
	}
	value, err := raw.LookupErr("value")
	if err != nil {
		return err
	}
	return value.Unmarshal(v)
}
