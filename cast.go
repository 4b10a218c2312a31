package record

import (
	"fmt"
	"strings"
)

// CastKind identifies how a CastSpec resolves to a caster.
type CastKind uint8

const (
	// KindNamed resolves a registered name to a factory or inbound constructor.
	KindNamed CastKind = iota + 1

	// KindFactory calls a Castable with the spec's options.
	KindFactory

	// KindInbound constructs an inbound cast directly with the spec's options.
	KindInbound

	// KindInstance uses a ready caster as-is.
	KindInstance
)

func (k CastKind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindFactory:
		return "factory"
	case KindInbound:
		return "inbound"
	case KindInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// CastSpec describes the cast configured for one attribute.
type CastSpec struct {
	Kind    CastKind
	Name    string   // Registered name for KindNamed
	Options []string // Positional options, not used by KindInstance

	factory  Castable
	inbound  InboundFactory
	instance any
}

// ParseCast parses a "type[:opt1[,opt2...]]" specifier.
//
// Everything after the first colon is split on commas, so options cannot
// themselves contain commas.
func ParseCast(s string) (CastSpec, error) {
	name, rest, hasOptions := strings.Cut(s, ":")
	if name == "" {
		return CastSpec{}, fmt.Errorf("%w: %q has no cast type", ErrMalformedCast, s)
	}
	if strings.ContainsAny(name, ", \t") {
		return CastSpec{}, fmt.Errorf("%w: %q has an invalid cast type", ErrMalformedCast, s)
	}

	spec := CastSpec{Kind: KindNamed, Name: name}
	if hasOptions {
		if rest == "" {
			return CastSpec{}, fmt.Errorf("%w: %q has an empty option list", ErrMalformedCast, s)
		}
		spec.Options = strings.Split(rest, ",")
	}
	return spec, nil
}

// FactoryCast returns a spec that calls c with options.
func FactoryCast(c Castable, options ...string) CastSpec {
	return CastSpec{Kind: KindFactory, Name: fmt.Sprintf("%T", c), Options: options, factory: c}
}

// InboundCast returns a spec that constructs an inbound cast with options.
func InboundCast(f InboundFactory, options ...string) CastSpec {
	return CastSpec{Kind: KindInbound, Name: "inbound", Options: options, inbound: f}
}

// InstanceCast returns a spec that uses c directly.
// c must implement CastsAttributes or CastsInboundAttributes.
func InstanceCast(c any) CastSpec {
	return CastSpec{Kind: KindInstance, Name: fmt.Sprintf("%T", c), instance: c}
}

// NewCastSpec converts a cast configuration value into a CastSpec.
//
// Accepted values are a specifier string, a CastSpec, a Castable, an
// InboundFactory, or a CastsAttributes / CastsInboundAttributes instance.
func NewCastSpec(v any) (CastSpec, error) {
	switch c := v.(type) {
	case string:
		return ParseCast(c)
	case CastSpec:
		return c, c.validate()
	case Castable:
		return FactoryCast(c), nil
	case InboundFactory:
		return InboundCast(c), nil
	case func(options ...string) (CastsInboundAttributes, error):
		return InboundCast(c), nil
	case CastsAttributes, CastsInboundAttributes:
		return InstanceCast(c), nil
	case nil:
		return CastSpec{}, fmt.Errorf("%w: nil cast", ErrInvalidCast)
	default:
		return CastSpec{}, fmt.Errorf("%w: unsupported cast value %T", ErrInvalidCast, v)
	}
}

func (s CastSpec) validate() error {
	switch s.Kind {
	case KindNamed:
		if s.Name == "" {
			return fmt.Errorf("%w: named cast without a name", ErrMalformedCast)
		}
	case KindFactory:
		if s.factory == nil {
			return fmt.Errorf("%w: factory cast without a factory", ErrInvalidCast)
		}
	case KindInbound:
		if s.inbound == nil {
			return fmt.Errorf("%w: inbound cast without a constructor", ErrInvalidCast)
		}
	case KindInstance:
		switch s.instance.(type) {
		case CastsAttributes, CastsInboundAttributes:
		default:
			return fmt.Errorf("%w: instance %T is not a cast", ErrInvalidCast, s.instance)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidCast, s.Kind)
	}
	return nil
}

// String renders the spec. Named specs render in specifier form.
func (s CastSpec) String() string {
	if len(s.Options) == 0 {
		return s.Name
	}
	return s.Name + ":" + strings.Join(s.Options, ",")
}

// resolve builds the caster for the spec.
// The result implements CastsAttributes or CastsInboundAttributes.
func (s CastSpec) resolve() (any, error) {
	switch s.Kind {
	case KindNamed:
		entry, ok := lookupCast(s.Name)
		if !ok {
			return nil, newConfigError(ErrUnknownCast, s.Name, "")
		}
		if entry.factory != nil {
			return entry.factory.CastUsing(s.Options)
		}
		return entry.inbound(s.Options...)
	case KindFactory:
		return s.factory.CastUsing(s.Options)
	case KindInbound:
		return s.inbound(s.Options...)
	case KindInstance:
		return s.instance, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidCast, s.Kind)
	}
}
