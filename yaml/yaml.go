// Package yaml provides a YAML codec for encoding casts.
package yaml

import (
	"github.com/zoobzio/record"
	"gopkg.in/yaml.v3"
)

// Name is the codec name used in cast options ("collection:yaml").
const Name = "yaml"

type yamlCodec struct{}

// New returns a YAML codec.
func New() record.Codec {
	return &yamlCodec{}
}

// Register makes the codec available to casts under Name.
func Register() {
	record.RegisterCodec(Name, New())
}

func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal decodes YAML data into v.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
