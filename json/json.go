// Package json provides the JSON codec for encoding casts.
//
// The root package already ships JSON as its default codec; this package
// exists so every codec can be selected and registered the same way.
package json

import (
	"encoding/json"

	"github.com/zoobzio/record"
)

// Name is the codec name used in cast options ("collection:json").
const Name = record.CodecJSON

type jsonCodec struct{}

// New returns a JSON codec.
func New() record.Codec {
	return &jsonCodec{}
}

// Register makes the codec available to casts under Name.
func Register() {
	record.RegisterCodec(Name, New())
}

func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
