package record

import (
	"errors"
	"fmt"
	"time"
)

// GetAttribute returns the rich value for key.
//
// Keys with a mutator or a class cast are converted on first read and the
// result is cached; later reads return the cached value until it is replaced
// or dropped. Keys without either return the raw value.
func (r *Record) GetAttribute(key string) (any, error) {
	raw, _ := r.attributes.Get(key)

	if m, ok := r.mutators[key]; ok {
		if v, ok := r.attributeCasts.get(key); ok {
			return v, nil
		}
		if m.Get == nil {
			return raw, nil
		}
		v, err := m.Get(raw, r.attributes.Clone())
		if err != nil {
			return nil, newCastError(ErrCastFailed, "get", key, err)
		}
		r.attributeCasts.put(key, v)
		return v, nil
	}

	if _, ok := r.casts[key]; !ok {
		return raw, nil
	}
	if v, ok := r.classCasts.get(key); ok {
		return v, nil
	}

	caster, err := r.resolveCaster(key)
	if err != nil {
		return nil, err
	}
	getter, ok := caster.(CastsAttributes)
	if !ok {
		return raw, nil
	}

	v, err := getter.GetAttribute(r, key, raw, r.attributes.Clone())
	if err != nil {
		return nil, newCastError(ErrCastFailed, "get", key, err)
	}
	r.classCasts.put(key, v)
	return v, nil
}

// As returns the rich value for key as V.
// A nil value yields the zero V.
func As[V any](r *Record, key string) (V, error) {
	var zero V
	v, err := r.GetAttribute(key)
	if err != nil || v == nil {
		return zero, err
	}
	typed, ok := v.(V)
	if !ok {
		return zero, newCastError(ErrInvalidCast, "get", key, fmt.Errorf("value is %T, not %T", v, zero))
	}
	return typed, nil
}

// SetAttribute assigns a single attribute without consulting the guard.
//
// A value for a class-cast key is cached as a rich value and flattened on the
// next merge; a nil value clears the cache and stores nil. View casts
// store the value raw and drop the cached view. Inbound casts
// convert the value immediately. Mutator keys cache the value when the
// mutator has a Set side. Other keys are stored raw.
func (r *Record) SetAttribute(key string, value any) error {
	if m, ok := r.mutators[key]; ok && m.Set != nil {
		r.attributeCasts.put(key, value)
		return nil
	}

	if _, ok := r.casts[key]; !ok {
		r.setRaw(key, value)
		return nil
	}

	caster, err := r.resolveCaster(key)
	if err != nil {
		return err
	}

	if _, ok := caster.(CastsAttributeViews); ok {
		r.setRaw(key, value)
		return nil
	}

	if _, ok := caster.(CastsAttributes); !ok {
		inbound := caster.(CastsInboundAttributes)
		if value == nil {
			r.setRaw(key, nil)
			return nil
		}
		patch, err := inbound.SetAttribute(r, key, value, r.attributes.Clone())
		if err != nil {
			return newCastError(ErrCastFailed, "set", key, err)
		}
		r.attributes.Merge(patch)
		return nil
	}

	if value == nil {
		r.setRaw(key, nil)
		return nil
	}
	r.classCasts.put(key, value)
	return nil
}

// SetRawAttribute stores value without casting and drops any cached rich
// value for key.
func (r *Record) SetRawAttribute(key string, value any) {
	r.setRaw(key, value)
}

func (r *Record) setRaw(key string, value any) {
	r.classCasts.forget(key)
	r.attributeCasts.forget(key)
	r.attributes.Set(key, value)
}

// GetAttributes merges cached casts and returns a copy of the raw attributes.
func (r *Record) GetAttributes() (Attributes, error) {
	if err := r.MergeAttributesFromCachedCasts(); err != nil {
		return Attributes{}, err
	}
	return r.attributes.Clone(), nil
}

// MergeAttributesFromCachedCasts flattens cached class casts, then cached
// mutator values, into the raw attributes.
//
// The merge is all-or-nothing: if any key fails, the raw attributes are left
// unchanged and the error is returned.
func (r *Record) MergeAttributesFromCachedCasts() error {
	return r.merge(func(working *Attributes) error {
		if err := r.classCasts.mergeInto(working, r.flattenClassCast); err != nil {
			return err
		}
		return r.attributeCasts.mergeInto(working, r.flattenMutator)
	})
}

// MergeAttributesFromClassCasts flattens cached class casts only.
func (r *Record) MergeAttributesFromClassCasts() error {
	return r.merge(func(working *Attributes) error {
		return r.classCasts.mergeInto(working, r.flattenClassCast)
	})
}

// MergeAttributesFromAttributeCasts flattens cached mutator values only.
func (r *Record) MergeAttributesFromAttributeCasts() error {
	return r.merge(func(working *Attributes) error {
		return r.attributeCasts.mergeInto(working, r.flattenMutator)
	})
}

func (r *Record) merge(apply func(working *Attributes) error) error {
	cached := r.classCasts.len() + r.attributeCasts.len()
	if cached == 0 {
		return nil
	}

	start := time.Now()
	working := r.attributes.Clone()
	err := apply(&working)
	emitMerged(r.ctx, cached, time.Since(start), err)
	if err != nil {
		return err
	}

	r.attributes = working
	return nil
}

func (r *Record) flattenClassCast(key string, value any, attributes Attributes) (map[string]any, error) {
	caster, err := r.resolveCaster(key)
	if err != nil {
		return nil, err
	}

	setter, ok := caster.(CastsAttributes)
	if !ok {
		return map[string]any{key: value}, nil
	}

	patch, err := setter.SetAttribute(r, key, value, attributes)
	if err != nil {
		return nil, newCastError(ErrCastFailed, "set", key, err)
	}
	return patch, nil
}

func (r *Record) flattenMutator(key string, value any, attributes Attributes) (map[string]any, error) {
	m := r.mutators[key]
	if m.Set == nil {
		return nil, nil
	}

	patch, err := m.Set(value, attributes)
	if err != nil {
		return nil, newCastError(ErrCastFailed, "set", key, err)
	}
	return patch, nil
}

// resolveCaster builds the caster for key. Casters are built again on every
// call; only their outputs are cached.
func (r *Record) resolveCaster(key string) (any, error) {
	spec, ok := r.casts[key]
	if !ok {
		return nil, newConfigError(ErrUnknownCast, "", key)
	}

	caster, err := spec.resolve()
	if err == nil && caster == nil {
		err = fmt.Errorf("%w: %s produced no caster", ErrInvalidCast, spec)
	}
	if err == nil {
		switch caster.(type) {
		case CastsAttributes, CastsInboundAttributes:
		default:
			err = fmt.Errorf("%w: %T is not a cast", ErrInvalidCast, caster)
		}
	}

	if err != nil {
		var cfg *ConfigError
		if errors.As(err, &cfg) && cfg.Key == "" {
			cfg.Key = key
		} else {
			err = &ConfigError{Err: err, Key: key, Cast: spec.String()}
		}
	}
	emitCastResolved(r.ctx, key, spec.String(), err)
	if err != nil {
		return nil, err
	}
	return caster, nil
}
