package record

import (
	"fmt"
	"time"
)

// AsDate casts an attribute to a time.Time.
//
// Strings are parsed with the layout given as the first option, RFC3339 by
// default. Integers are read as unix seconds. A nil raw value reads as the
// record's current time. The cast is read-oriented: writing leaves the raw
// attribute untouched.
type AsDate struct{}

func (AsDate) CastUsing(options []string) (CastsAttributes, error) {
	layout := time.RFC3339
	if len(options) > 0 {
		layout = options[0]
	}
	return &dateCast{layout: layout}, nil
}

type dateCast struct {
	layout string
}

func (c *dateCast) GetAttribute(r *Record, _ string, value any, _ Attributes) (any, error) {
	switch v := value.(type) {
	case nil:
		return r.Now(), nil
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(c.layout, v)
		if err != nil {
			return nil, fmt.Errorf("parse date: %w", err)
		}
		return t, nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	default:
		return nil, fmt.Errorf("%w: cannot read %T as a date", ErrInvalidCast, value)
	}
}

func (c *dateCast) SetAttribute(_ *Record, _ string, _ any, _ Attributes) (map[string]any, error) {
	return nil, nil
}
