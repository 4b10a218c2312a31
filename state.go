package record

import (
	"slices"
)

// GetOriginal returns the original raw value for key.
func (r *Record) GetOriginal(key string) (any, bool) {
	return r.original.Get(key)
}

// GetRawOriginal returns a copy of all original raw attributes.
func (r *Record) GetRawOriginal() Attributes {
	return r.original.Clone()
}

// SyncOriginal makes the merged current attributes the new baseline.
func (r *Record) SyncOriginal() error {
	if err := r.MergeAttributesFromCachedCasts(); err != nil {
		return err
	}
	r.original = r.attributes.Clone()
	emitSynced(r.ctx, r.original.Len())
	return nil
}

// SyncOriginalAttribute copies the current value of key into the baseline.
func (r *Record) SyncOriginalAttribute(key string) error {
	return r.SyncOriginalAttributes(key)
}

// SyncOriginalAttributes copies the current values of keys into the
// baseline, leaving other original values untouched. Keys missing from the
// current attributes are skipped.
func (r *Record) SyncOriginalAttributes(keys ...string) error {
	if err := r.MergeAttributesFromCachedCasts(); err != nil {
		return err
	}
	synced := 0
	for _, key := range keys {
		value, ok := r.attributes.Get(key)
		if !ok {
			continue
		}
		r.original.Set(key, value)
		synced++
	}
	emitSynced(r.ctx, synced)
	return nil
}

// SyncChanges captures the current dirty attributes as the record's changes.
// The snapshot is not updated by later mutations.
func (r *Record) SyncChanges() error {
	dirty, err := r.GetDirty()
	if err != nil {
		return err
	}
	r.changes = dirty
	emitChangesSynced(r.ctx, len(dirty))
	return nil
}

// GetChanges returns a copy of the snapshot taken by SyncChanges.
func (r *Record) GetChanges() []Pair {
	return slices.Clone(r.changes)
}

// WasChanged reports whether any of keys is in the changes snapshot.
// With no keys, it reports whether the snapshot is non-empty.
func (r *Record) WasChanged(keys ...string) bool {
	return containsAny(r.changes, keys)
}

// GetDirty returns the attributes whose current value is not equivalent to
// the original, in attribute order. Cached casts are merged first.
func (r *Record) GetDirty() ([]Pair, error) {
	if err := r.MergeAttributesFromCachedCasts(); err != nil {
		return nil, err
	}

	var dirty []Pair
	for key, value := range r.attributes.All() {
		if !r.OriginalIsEquivalent(key) {
			dirty = append(dirty, Pair{Key: key, Value: value})
		}
	}
	return dirty, nil
}

// IsDirty reports whether any of keys is dirty.
// With no keys, it reports whether any attribute is dirty.
func (r *Record) IsDirty(keys ...string) (bool, error) {
	dirty, err := r.GetDirty()
	if err != nil {
		return false, err
	}
	return containsAny(dirty, keys), nil
}

// IsClean is the inverse of IsDirty.
func (r *Record) IsClean(keys ...string) (bool, error) {
	dirty, err := r.IsDirty(keys...)
	return !dirty, err
}

// OriginalIsEquivalent reports whether the current raw value of key equals
// the original. A key with no original value is never equivalent.
//
// Values are compared shallowly: two distinct maps or slices holding the
// same elements are different. Cached casts are not merged first.
func (r *Record) OriginalIsEquivalent(key string) bool {
	original, ok := r.original.Get(key)
	if !ok {
		return false
	}
	current, _ := r.attributes.Get(key)
	return strictEqual(current, original)
}

func containsAny(pairs []Pair, keys []string) bool {
	if len(keys) == 0 {
		return len(pairs) > 0
	}
	for _, p := range pairs {
		if slices.Contains(keys, p.Key) {
			return true
		}
	}
	return false
}
