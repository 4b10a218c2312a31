// Package record provides an in-memory attribute store with dirty tracking
// and pluggable casting between stored and runtime representations.
//
// A Record holds two views of the same attributes: the original values, as
// of the last synchronization, and the current values. Comparing the two
// yields the dirty set. Casts convert a raw (stored) attribute into a rich
// value on read and flatten the rich value back into raw attributes when the
// record is read as a whole.
//
// # Basic Usage
//
//	r, _ := record.New(
//	    record.NewAttributes(
//	        record.Attr("title", "Hello"),
//	        record.Attr("tags", `["go","orm"]`),
//	    ),
//	    record.WithFillable("title", "tags"),
//	    record.WithCast("tags", "collection"),
//	)
//
//	tags, _ := record.As[*record.Collection](r, "tags")
//	tags.Push("casts")
//
//	// Flattens the collection back into its JSON form.
//	dirty, _ := r.GetDirty() // [{tags ["go","orm","casts"]}]
//
//	_ = r.SyncOriginal()
//
// # Cast Specifiers
//
// A cast is configured per attribute key. The string form is
//
//	{type}[:{option}[,{option}...]]
//
// and resolves through the cast registry:
//
//	collection:yaml   - Collection encoded with the yaml codec
//	date:2006-01-02   - time.Time parsed with a custom layout
//	encrypted:aes     - Encrypted at rest, plaintext at runtime
//	hashed:argon2     - Hashed on assignment (inbound only)
//	masked:email      - Masked view over a plaintext value
//	uuid              - uuid.UUID stored as its canonical string
//	array:msgpack     - Structured document decoded with a codec
//
// Casts may also be supplied as values: a Castable factory, an
// InboundFactory constructor, or a ready CastsAttributes instance.
//
// # Resolution
//
// Casters are resolved again on every read and merge; only their outputs are
// cached. Implementations must be cheap to construct and hold no state beyond
// their options.
//
// # Mass Assignment
//
// Fill applies only keys on the fillable allow-list. An empty allow-list, or
// an unguarded record, admits every key. Rejected keys are dropped silently.
//
// # Codec Providers
//
// Encoding casts look codecs up by name. JSON is built in; the following
// sub-packages register additional codecs:
//
//   - json - JSON encoding (application/json)
//   - xml - XML encoding (application/xml)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
package record

// CastsAttributes converts an attribute between its raw and rich forms.
type CastsAttributes interface {
	// GetAttribute converts the raw value stored under key into its rich form.
	// attributes is a copy of the record's current raw attributes.
	GetAttribute(r *Record, key string, value any, attributes Attributes) (any, error)

	// SetAttribute converts a rich value back into raw attributes. The returned
	// patch is merged into the record and may touch keys other than key.
	// A nil patch leaves the raw attributes untouched.
	SetAttribute(r *Record, key string, value any, attributes Attributes) (map[string]any, error)
}

// CastsInboundAttributes converts values on assignment only.
// Inbound casts have no read side and are never cached.
type CastsInboundAttributes interface {
	SetAttribute(r *Record, key string, value any, attributes Attributes) (map[string]any, error)
}

// CastsAttributeViews is implemented by casts whose rich value is a derived
// view of the raw value, such as a masked string. Assigning to such a key
// stores the value raw and drops the cached view.
type CastsAttributeViews interface {
	CastsAttributes
	View()
}

// Castable produces a cast from the options parsed out of a specifier.
type Castable interface {
	CastUsing(options []string) (CastsAttributes, error)
}

// InboundFactory constructs an inbound cast directly from specifier options.
type InboundFactory func(options ...string) (CastsInboundAttributes, error)

// Mutator is an inline accessor/mutator pair for a single attribute.
// Get derives the rich value; Set flattens it back into raw attributes.
// Either side may be nil: a nil Get returns the raw value, a nil Set makes
// the mutator read-only.
type Mutator struct {
	Get func(value any, attributes Attributes) (any, error)
	Set func(value any, attributes Attributes) (map[string]any, error)
}
