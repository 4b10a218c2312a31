package record

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

func init() {
	sentinel.Tag("attr")
	sentinel.Tag("cast")
}

// Shape describes the attributes of a struct type, read from its tags:
//
//	type Post struct {
//	    Title string    `attr:"title,fillable"`
//	    Tags  []string  `attr:"tags" cast:"collection"`
//	    Body  string    `attr:"-"`
//	}
//
// Untagged exported fields use their field name as the key. A key of "-"
// excludes the field.
type Shape struct {
	TypeName string
	Keys     []string          // Attribute keys in field order
	Fillable []string          // Keys tagged fillable
	Casts    map[string]string // Cast specifiers by key

	fields []shapeField
}

type shapeField struct {
	key   string
	name  string
	index []int
	typ   reflect.Type
}

var (
	shapes   = make(map[reflect.Type]*Shape)
	shapesMu sync.RWMutex
)

// ShapeOf returns the cached shape of T, scanning it on first use.
func ShapeOf[T any]() (*Shape, error) {
	typ := reflect.TypeFor[T]()

	// Fast path: read-lock cache check
	shapesMu.RLock()
	if cached, ok := shapes[typ]; ok {
		shapesMu.RUnlock()
		return cached, nil
	}
	shapesMu.RUnlock()

	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidShape, typ)
	}

	shape, err := buildShape(typ, sentinel.Scan[T]())
	if err != nil {
		return nil, err
	}

	// Slow path: cache with write-lock
	shapesMu.Lock()
	defer shapesMu.Unlock()

	// Double-check pattern
	if cached, ok := shapes[typ]; ok {
		return cached, nil
	}
	shapes[typ] = shape
	return shape, nil
}

func buildShape(typ reflect.Type, meta sentinel.Metadata) (*Shape, error) {
	shape := &Shape{
		TypeName: meta.TypeName,
		Casts:    make(map[string]string),
	}

	for _, field := range meta.Fields {
		if !typ.FieldByIndex(field.Index).IsExported() {
			continue
		}
		key, fillable := parseAttrTag(field.Name, field.Tags["attr"])
		if key == "-" {
			continue
		}
		if slices.Contains(shape.Keys, key) {
			return nil, fmt.Errorf("%w: duplicate attribute %q on field %s", ErrInvalidShape, key, field.Name)
		}

		if spec, ok := field.Tags["cast"]; ok && spec != "" {
			if _, err := ParseCast(spec); err != nil {
				return nil, fmt.Errorf("%w: field %s: %w", ErrInvalidShape, field.Name, err)
			}
			shape.Casts[key] = spec
		}

		shape.Keys = append(shape.Keys, key)
		if fillable {
			shape.Fillable = append(shape.Fillable, key)
		}
		shape.fields = append(shape.fields, shapeField{
			key:   key,
			name:  field.Name,
			index: field.Index,
			typ:   field.ReflectType,
		})
	}

	return shape, nil
}

// parseAttrTag splits an attr tag into its key and fillable flag.
func parseAttrTag(fieldName, tag string) (string, bool) {
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = fieldName
	}
	fillable := false
	for _, opt := range strings.Split(opts, ",") {
		if strings.TrimSpace(opt) == "fillable" {
			fillable = true
		}
	}
	return name, fillable
}

// Options returns the record options implied by the shape's tags.
func (s *Shape) Options() []Option {
	casts := make(map[string]any, len(s.Casts))
	for k, v := range s.Casts {
		casts[k] = v
	}
	return []Option{WithFillable(s.Fillable...), WithCasts(casts)}
}

// FromStruct creates a Record whose raw attributes are the field values of v.
// Tag configuration is applied first, then override interfaces on v, then
// opts.
func FromStruct[T any](v T, opts ...Option) (*Record, error) {
	shape, err := ShapeOf[T]()
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(&v).Elem()
	attributes := NewAttributes()
	for _, f := range shape.fields {
		attributes.Set(f.key, rv.FieldByIndex(f.index).Interface())
	}

	all := shape.Options()
	if p, ok := any(&v).(CastsProvider); ok {
		all = append(all, WithCasts(p.Casts()))
	}
	if p, ok := any(&v).(FillableProvider); ok {
		all = append(all, WithFillable(p.Fillable()...))
	}
	if p, ok := any(&v).(MutatorsProvider); ok {
		for key, m := range p.Mutators() {
			all = append(all, WithMutator(key, m))
		}
	}
	all = append(all, opts...)

	return New(attributes, all...)
}

// Bind copies the rich attribute values of r into the fields of dst.
// A nil value leaves the zero value. Values must be assignable to the field,
// or convertible within the same kind family (numeric to numeric, string to
// string).
func Bind[T any](r *Record, dst *T) error {
	shape, err := ShapeOf[T]()
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(dst).Elem()
	for _, f := range shape.fields {
		v, err := r.GetAttribute(f.key)
		if err != nil {
			return err
		}

		field := rv.FieldByIndex(f.index)
		if v == nil {
			field.Set(reflect.Zero(f.typ))
			continue
		}

		val := reflect.ValueOf(v)
		switch {
		case val.Type().AssignableTo(f.typ):
			field.Set(val)
		case sameFamily(val.Kind(), f.typ.Kind()) && val.Type().ConvertibleTo(f.typ):
			field.Set(val.Convert(f.typ))
		default:
			return newCastError(ErrInvalidCast, "bind", f.key,
				fmt.Errorf("cannot assign %T to field %s (%s)", v, f.name, f.typ))
		}
	}
	return nil
}

func sameFamily(a, b reflect.Kind) bool {
	return kindFamily(a) != 0 && kindFamily(a) == kindFamily(b)
}

func kindFamily(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return 1
	case reflect.String:
		return 2
	case reflect.Bool:
		return 3
	default:
		return 0
	}
}
