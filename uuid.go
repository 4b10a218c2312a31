package record

import (
	"fmt"

	"github.com/google/uuid"
)

// AsUUID casts an attribute to a uuid.UUID and stores it in its canonical
// string form. Malformed identifiers fail on both read and write.
type AsUUID struct{}

func (AsUUID) CastUsing(_ []string) (CastsAttributes, error) {
	return uuidCast{}, nil
}

type uuidCast struct{}

func (uuidCast) GetAttribute(_ *Record, _ string, value any, _ Attributes) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	case []byte:
		return uuid.ParseBytes(v)
	default:
		return nil, fmt.Errorf("%w: cannot read %T as a uuid", ErrInvalidCast, value)
	}
}

func (uuidCast) SetAttribute(_ *Record, key string, value any, _ Attributes) (map[string]any, error) {
	switch v := value.(type) {
	case nil:
		return map[string]any{key: nil}, nil
	case uuid.UUID:
		return map[string]any{key: v.String()}, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		return map[string]any{key: id.String()}, nil
	default:
		return nil, fmt.Errorf("%w: cannot store %T as a uuid", ErrInvalidCast, value)
	}
}
