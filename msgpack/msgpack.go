// Package msgpack provides a MessagePack codec for encoding casts.
//
// MessagePack output is binary. Casts store it as a string of raw bytes,
// which round-trips unchanged through the attribute store.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/record"
)

// Name is the codec name used in cast options ("array:msgpack").
const Name = "msgpack"

type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() record.Codec {
	return &msgpackCodec{}
}

// Register makes the codec available to casts under Name.
func Register() {
	record.RegisterCodec(Name, New())
}

func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack. Map keys are written in sorted order so
// the same value always encodes to the same bytes.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
