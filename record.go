package record

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Record tracks the original and current raw attributes of a model along
// with the casts used to read and write them.
//
// A Record is owned by a single goroutine. It must not be mutated
// concurrently without external locking.
type Record struct {
	ctx context.Context

	original   Attributes
	attributes Attributes
	changes    []Pair

	// Mass assignment guard
	fillable  []string
	unguarded bool

	// Cast configuration and pending rich values
	casts          map[string]CastSpec
	mutators       map[string]Mutator
	classCasts     castCache
	attributeCasts castCache

	// Capabilities available to casts
	encryptors map[EncryptAlgo]Encryptor
	hashers    map[HashAlgo]Hasher
	maskers    map[MaskType]Masker
	now        func() time.Time
}

// Option configures a Record at construction.
type Option func(*Record) error

// New creates a Record seeded with attributes. The original and current
// attributes start as independent copies of the same values.
//
// Builtin hashers and maskers are registered automatically. Encryptors must
// be configured with WithEncryptor before encrypted casts can be read.
func New(attributes Attributes, opts ...Option) (*Record, error) {
	r := &Record{
		ctx:        context.Background(),
		original:   attributes.Clone(),
		attributes: attributes.Clone(),
		casts:      make(map[string]CastSpec),
		mutators:   make(map[string]Mutator),
		encryptors: make(map[EncryptAlgo]Encryptor),
		hashers:    builtinHashers(),
		maskers:    builtinMaskers(),
		now:        time.Now,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	for key := range r.mutators {
		if _, ok := r.casts[key]; ok {
			return nil, fmt.Errorf("%w: attribute %s has both a cast and a mutator", ErrInvalidCast, key)
		}
	}

	emitRecordCreated(r.ctx, r.attributes.Len(), len(r.casts))
	return r, nil
}

// WithContext sets the context used when emitting signals.
func WithContext(ctx context.Context) Option {
	return func(r *Record) error {
		r.ctx = ctx
		return nil
	}
}

// WithFillable adds keys to the mass assignment allow-list.
func WithFillable(keys ...string) Option {
	return func(r *Record) error {
		r.MergeFillable(keys...)
		return nil
	}
}

// WithUnguarded disables the mass assignment guard.
func WithUnguarded() Option {
	return func(r *Record) error {
		r.unguarded = true
		return nil
	}
}

// WithCast configures the cast for key. See NewCastSpec for accepted values.
func WithCast(key string, cast any) Option {
	return func(r *Record) error {
		spec, err := NewCastSpec(cast)
		if err != nil {
			return fmt.Errorf("cast for attribute %s: %w", key, err)
		}
		r.casts[key] = spec
		return nil
	}
}

// WithCasts configures several casts at once.
func WithCasts(casts map[string]any) Option {
	return func(r *Record) error {
		return r.MergeCasts(casts)
	}
}

// WithMutator configures an inline accessor/mutator for key.
func WithMutator(key string, m Mutator) Option {
	return func(r *Record) error {
		if m.Get == nil && m.Set == nil {
			return fmt.Errorf("%w: mutator for attribute %s is empty", ErrInvalidCast, key)
		}
		r.mutators[key] = m
		return nil
	}
}

// WithEncryptor registers an encryptor for the given algorithm.
func WithEncryptor(algo EncryptAlgo, enc Encryptor) Option {
	return func(r *Record) error {
		r.encryptors[algo] = enc
		return nil
	}
}

// WithHasher registers or replaces a hasher for the given algorithm.
func WithHasher(algo HashAlgo, h Hasher) Option {
	return func(r *Record) error {
		r.hashers[algo] = h
		return nil
	}
}

// WithMasker registers or replaces a masker for the given type.
func WithMasker(mt MaskType, m Masker) Option {
	return func(r *Record) error {
		r.maskers[mt] = m
		return nil
	}
}

// WithClock replaces the time source used by date casts.
func WithClock(now func() time.Time) Option {
	return func(r *Record) error {
		r.now = now
		return nil
	}
}

// Encryptor returns the encryptor for algo.
func (r *Record) Encryptor(algo EncryptAlgo) (Encryptor, error) {
	if enc, ok := r.encryptors[algo]; ok {
		return enc, nil
	}
	return nil, newConfigError(ErrMissingEncryptor, string(algo), "")
}

// Hasher returns the hasher for algo.
func (r *Record) Hasher(algo HashAlgo) (Hasher, error) {
	if h, ok := r.hashers[algo]; ok {
		return h, nil
	}
	return nil, newConfigError(ErrMissingHasher, string(algo), "")
}

// Masker returns the masker for mt.
func (r *Record) Masker(mt MaskType) (Masker, error) {
	if m, ok := r.maskers[mt]; ok {
		return m, nil
	}
	return nil, newConfigError(ErrMissingMasker, string(mt), "")
}

// Now returns the record's current time. A nil Record uses time.Now.
func (r *Record) Now() time.Time {
	if r == nil || r.now == nil {
		return time.Now()
	}
	return r.now()
}

// Fill assigns attributes that pass the mass assignment guard.
// Keys that do not pass are dropped without error.
func (r *Record) Fill(attributes Attributes) error {
	pairs := r.fillableAttributes(attributes)
	rejected := attributes.Len() - len(pairs)

	for i, p := range pairs {
		if err := r.SetAttribute(p.Key, p.Value); err != nil {
			emitFilled(r.ctx, i, rejected, err)
			return err
		}
	}

	emitFilled(r.ctx, len(pairs), rejected, nil)
	return nil
}

// ForceFill assigns every attribute, bypassing the guard.
func (r *Record) ForceFill(attributes Attributes) error {
	for key, value := range attributes.All() {
		if err := r.SetAttribute(key, value); err != nil {
			emitFilled(r.ctx, 0, 0, err)
			return err
		}
	}
	emitFilled(r.ctx, attributes.Len(), 0, nil)
	return nil
}

// fillableAttributes filters attributes through the guard. An empty
// allow-list or an unguarded record admits every key.
func (r *Record) fillableAttributes(attributes Attributes) []Pair {
	if len(r.fillable) == 0 || r.unguarded {
		return attributes.Pairs()
	}

	pairs := make([]Pair, 0, attributes.Len())
	for key, value := range attributes.All() {
		if r.IsFillable(key) {
			pairs = append(pairs, Pair{Key: key, Value: value})
		}
	}
	return pairs
}

// IsFillable reports whether key is on the allow-list.
func (r *Record) IsFillable(key string) bool {
	return slices.Contains(r.fillable, key)
}

// Fillable returns the allow-list.
func (r *Record) Fillable() []string {
	return slices.Clone(r.fillable)
}

// MergeFillable adds keys to the allow-list.
func (r *Record) MergeFillable(keys ...string) *Record {
	for _, key := range keys {
		if !r.IsFillable(key) {
			r.fillable = append(r.fillable, key)
		}
	}
	return r
}

// Unguard disables the mass assignment guard.
func (r *Record) Unguard() *Record {
	r.unguarded = true
	return r
}

// Reguard re-enables the mass assignment guard.
func (r *Record) Reguard() *Record {
	r.unguarded = false
	return r
}

// IsUnguarded reports whether the guard is disabled.
func (r *Record) IsUnguarded() bool {
	return r.unguarded
}

// GetCasts returns a copy of the configured casts.
func (r *Record) GetCasts() map[string]CastSpec {
	casts := make(map[string]CastSpec, len(r.casts))
	for k, v := range r.casts {
		casts[k] = v
	}
	return casts
}

// GetSpecialCast returns the cast configured for key.
func (r *Record) GetSpecialCast(key string) (CastSpec, bool) {
	spec, ok := r.casts[key]
	return spec, ok
}

// HasCast reports whether key has a cast.
func (r *Record) HasCast(key string) bool {
	_, ok := r.casts[key]
	return ok
}

// MergeCasts adds or replaces casts. Replacing a cast drops any cached
// rich value for that key.
func (r *Record) MergeCasts(casts map[string]any) error {
	specs := make(map[string]CastSpec, len(casts))
	for key, cast := range casts {
		spec, err := NewCastSpec(cast)
		if err != nil {
			return fmt.Errorf("cast for attribute %s: %w", key, err)
		}
		if _, ok := r.mutators[key]; ok {
			return fmt.Errorf("%w: attribute %s has both a cast and a mutator", ErrInvalidCast, key)
		}
		specs[key] = spec
	}

	for key, spec := range specs {
		r.casts[key] = spec
		r.classCasts.forget(key)
	}
	return nil
}
