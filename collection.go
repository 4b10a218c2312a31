package record

// Collection is an ordered list of values read from a single attribute.
type Collection struct {
	Items []any
}

// NewCollection returns a collection holding items. Items is never nil, so
// an empty collection encodes as an empty list.
func NewCollection(items ...any) *Collection {
	if items == nil {
		items = []any{}
	}
	return &Collection{Items: items}
}

// Len returns the number of items.
func (c *Collection) Len() int {
	return len(c.Items)
}

// At returns the item at i.
func (c *Collection) At(i int) any {
	return c.Items[i]
}

// Push appends items.
func (c *Collection) Push(items ...any) *Collection {
	c.Items = append(c.Items, items...)
	return c
}

// AsCollection casts an attribute to a *Collection.
//
// The optional first option names the codec used to store the items
// ("collection:yaml"); it defaults to json. A raw value that decodes to a
// list becomes the collection's items. Any other raw value becomes the sole
// item. Writing stores the encoded items, not the wrapper.
type AsCollection struct{}

func (AsCollection) CastUsing(options []string) (CastsAttributes, error) {
	name := CodecJSON
	if len(options) > 0 {
		name = options[0]
	}
	codec, err := LookupCodec(name)
	if err != nil {
		return nil, err
	}
	return &collectionCast{codec: codec}, nil
}

type collectionCast struct {
	codec Codec
}

func (c *collectionCast) GetAttribute(_ *Record, _ string, value any, _ Attributes) (any, error) {
	if data, ok := rawBytes(value); ok {
		var items []any
		if err := c.codec.Unmarshal(data, &items); err == nil {
			return NewCollection(items...), nil
		}
	}
	return NewCollection(value), nil
}

func (c *collectionCast) SetAttribute(_ *Record, key string, value any, _ Attributes) (map[string]any, error) {
	items := value
	if col, ok := value.(*Collection); ok {
		items = col.Items
	}

	data, err := c.codec.Marshal(items)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return map[string]any{key: string(data)}, nil
}
