package record

// AsArray decodes an attribute stored as encoded text into its generic form
// (maps, slices, scalars) and encodes it back on write. The first option
// names the codec, json by default.
type AsArray struct{}

func (AsArray) CastUsing(options []string) (CastsAttributes, error) {
	name := CodecJSON
	if len(options) > 0 {
		name = options[0]
	}
	codec, err := LookupCodec(name)
	if err != nil {
		return nil, err
	}
	return &arrayCast{codec: codec}, nil
}

type arrayCast struct {
	codec Codec
}

func (c *arrayCast) GetAttribute(_ *Record, _ string, value any, _ Attributes) (any, error) {
	data, ok := rawBytes(value)
	if !ok {
		return value, nil
	}
	var out any
	if err := c.codec.Unmarshal(data, &out); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}
	return out, nil
}

func (c *arrayCast) SetAttribute(_ *Record, key string, value any, _ Attributes) (map[string]any, error) {
	if value == nil {
		return map[string]any{key: nil}, nil
	}
	data, err := c.codec.Marshal(value)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return map[string]any{key: string(data)}, nil
}
