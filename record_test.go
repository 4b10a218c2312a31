package record

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func newTestRecord(t *testing.T, attrs Attributes, opts ...Option) *Record {
	t.Helper()
	r, err := New(attrs, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return r
}

func dirtyKeys(t *testing.T, r *Record) []string {
	t.Helper()
	dirty, err := r.GetDirty()
	if err != nil {
		t.Fatalf("GetDirty() error: %v", err)
	}
	keys := make([]string, len(dirty))
	for i, p := range dirty {
		keys[i] = p.Key
	}
	return keys
}

func TestNew_SeedsBothStates(t *testing.T) {
	seed := NewAttributes(Attr("a", 1), Attr("b", "x"))
	r := newTestRecord(t, seed, WithContext(context.Background()))

	seed.Set("a", 99)
	if v, _ := r.GetOriginal("a"); v != 1 {
		t.Errorf("original a = %v, want 1 (seed must be copied)", v)
	}
	if keys := dirtyKeys(t, r); len(keys) != 0 {
		t.Errorf("new record dirty = %v, want none", keys)
	}
	if r.GetRawOriginal().Len() != 2 {
		t.Error("GetRawOriginal() should hold the seed")
	}
}

func TestNew_CastAndMutatorConflict(t *testing.T) {
	_, err := New(NewAttributes(),
		WithCast("a", "collection"),
		WithMutator("a", Mutator{Get: func(v any, _ Attributes) (any, error) { return v, nil }}),
	)
	if !errors.Is(err, ErrInvalidCast) {
		t.Errorf("New() error = %v, want ErrInvalidCast", err)
	}

	if _, err := New(NewAttributes(), WithMutator("a", Mutator{})); !errors.Is(err, ErrInvalidCast) {
		t.Errorf("New() with empty mutator error = %v, want ErrInvalidCast", err)
	}
	if _, err := New(NewAttributes(), WithCast("a", ":bad")); !errors.Is(err, ErrMalformedCast) {
		t.Errorf("New() with malformed cast error = %v, want ErrMalformedCast", err)
	}
}

func TestFill_Guard(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		wantSet   []string
		wantUnset []string
	}{
		{"allow-list", []Option{WithFillable("a", "b")}, []string{"a", "b"}, []string{"c"}},
		{"empty allow-list admits all", nil, []string{"a", "b", "c"}, nil},
		{"unguarded admits all", []Option{WithFillable("a"), WithUnguarded()}, []string{"a", "b", "c"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRecord(t, NewAttributes(), tt.opts...)
			if err := r.Fill(NewAttributes(Attr("a", 1), Attr("b", 2), Attr("c", 3))); err != nil {
				t.Fatalf("Fill() error: %v", err)
			}
			attrs, _ := r.GetAttributes()
			for _, k := range tt.wantSet {
				if !attrs.Has(k) {
					t.Errorf("%s should be filled", k)
				}
			}
			for _, k := range tt.wantUnset {
				if attrs.Has(k) {
					t.Errorf("%s should be rejected", k)
				}
			}
		})
	}
}

func TestFill_RejectedKeysUntouched(t *testing.T) {
	r := newTestRecord(t, NewAttributes(Attr("a", 0), Attr("c", 0)), WithFillable("a", "b"))

	if err := r.Fill(NewAttributes(Attr("a", 1), Attr("b", 2), Attr("c", 3))); err != nil {
		t.Fatalf("Fill() error: %v", err)
	}
	if keys := dirtyKeys(t, r); !slices.Equal(keys, []string{"a", "b"}) {
		t.Errorf("dirty = %v, want [a b]", keys)
	}
	if v, _ := r.GetOriginal("c"); v != 0 {
		t.Errorf("c = %v, want untouched", v)
	}
}

func TestFill_GuardToggles(t *testing.T) {
	r := newTestRecord(t, NewAttributes(), WithFillable("a"))
	r.MergeFillable("b", "a")

	if !slices.Equal(r.Fillable(), []string{"a", "b"}) {
		t.Errorf("Fillable() = %v, want [a b]", r.Fillable())
	}
	if !r.IsFillable("a") || r.IsFillable("z") {
		t.Error("IsFillable() should test allow-list membership")
	}

	r.Unguard()
	if !r.IsUnguarded() {
		t.Error("Unguard() should disable the guard")
	}
	_ = r.Fill(NewAttributes(Attr("z", 1)))
	r.Reguard()
	_ = r.Fill(NewAttributes(Attr("y", 1)))

	attrs, _ := r.GetAttributes()
	if !attrs.Has("z") || attrs.Has("y") {
		t.Errorf("attributes = %v, want z filled and y rejected", attrs.Keys())
	}
}

func TestForceFill(t *testing.T) {
	r := newTestRecord(t, NewAttributes(), WithFillable("a"))
	if err := r.ForceFill(NewAttributes(Attr("secret", 1))); err != nil {
		t.Fatalf("ForceFill() error: %v", err)
	}
	if v, _ := r.GetAttribute("secret"); v != 1 {
		t.Errorf("secret = %v, want 1", v)
	}
}

func TestFill_StopsOnCastError(t *testing.T) {
	r := newTestRecord(t, NewAttributes(), WithCast("pw", "hashed:sha256"))

	err := r.Fill(NewAttributes(Attr("a", 1), Attr("pw", 42), Attr("b", 2)))
	if !errors.Is(err, ErrCastFailed) {
		t.Fatalf("Fill() error = %v, want ErrCastFailed", err)
	}
	attrs, _ := r.GetAttributes()
	if !attrs.Has("a") || attrs.Has("b") {
		t.Errorf("attributes = %v, want a set and b not reached", attrs.Keys())
	}
}

func TestOriginalIsEquivalent(t *testing.T) {
	shared := []string{"x"}
	r := newTestRecord(t, NewAttributes(Attr("n", 1), Attr("s", shared), Attr("nil", nil)))

	tests := []struct {
		name  string
		key   string
		value any
		want  bool
	}{
		{"same primitive", "n", 1, true},
		{"different primitive", "n", 2, false},
		{"same slice", "s", shared, true},
		{"equal but distinct slice", "s", []string{"x"}, false},
		{"nil to value", "nil", 0, false},
		{"value to nil", "n", nil, false},
		{"missing original", "new", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.SetRawAttribute(tt.key, tt.value)
			if got := r.OriginalIsEquivalent(tt.key); got != tt.want {
				t.Errorf("OriginalIsEquivalent(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestGetDirty_MissingOriginalAlwaysDirty(t *testing.T) {
	r := newTestRecord(t, NewAttributes(Attr("a", 1)))
	_ = r.SetAttribute("b", nil)

	if keys := dirtyKeys(t, r); !slices.Equal(keys, []string{"b"}) {
		t.Errorf("dirty = %v, want [b]", keys)
	}
}

func TestGetDirty_AttributeOrder(t *testing.T) {
	r := newTestRecord(t, NewAttributes(Attr("z", 0), Attr("a", 0), Attr("m", 0)))
	_ = r.SetAttribute("m", 1)
	_ = r.SetAttribute("z", 1)
	_ = r.SetAttribute("b", 1)

	if keys := dirtyKeys(t, r); !slices.Equal(keys, []string{"z", "m", "b"}) {
		t.Errorf("dirty = %v, want [z m b]", keys)
	}
	if dirty, _ := r.IsDirty("a"); dirty {
		t.Error("IsDirty(a) = true, want false")
	}
	if clean, _ := r.IsClean("m"); clean {
		t.Error("IsClean(m) = true, want false")
	}
}

func TestSyncOriginal(t *testing.T) {
	r := newTestRecord(t, NewAttributes(Attr("a", 1), Attr("tags", "x")), WithCast("tags", "collection"))
	_ = r.SetAttribute("a", 2)
	_ = r.SetAttribute("tags", NewCollection("y"))

	if err := r.SyncOriginal(); err != nil {
		t.Fatalf("SyncOriginal() error: %v", err)
	}
	if keys := dirtyKeys(t, r); len(keys) != 0 {
		t.Errorf("dirty after SyncOriginal = %v, want none", keys)
	}
	if v, _ := r.GetOriginal("tags"); v != `["y"]` {
		t.Errorf("original tags = %v, want merged raw value", v)
	}
}

func TestSyncOriginalAttributes(t *testing.T) {
	r := newTestRecord(t, NewAttributes(Attr("a", 1), Attr("b", 1), Attr("c", 1)))
	_ = r.SetAttribute("a", 2)
	_ = r.SetAttribute("b", 2)
	_ = r.SetAttribute("c", 2)

	if err := r.SyncOriginalAttribute("a"); err != nil {
		t.Fatalf("SyncOriginalAttribute() error: %v", err)
	}
	if err := r.SyncOriginalAttributes("b", "missing"); err != nil {
		t.Fatalf("SyncOriginalAttributes() error: %v", err)
	}

	if keys := dirtyKeys(t, r); !slices.Equal(keys, []string{"c"}) {
		t.Errorf("dirty = %v, want [c]", keys)
	}
	if _, ok := r.GetOriginal("missing"); ok {
		t.Error("SyncOriginalAttributes() should skip keys absent from the attributes")
	}
	if keys := r.GetRawOriginal().Keys(); !slices.Equal(keys, []string{"a", "b", "c"}) {
		t.Errorf("original keys = %v, want [a b c]", keys)
	}
}

func TestSyncChanges_Snapshot(t *testing.T) {
	r := newTestRecord(t, NewAttributes(Attr("a", 1), Attr("b", 1)))
	_ = r.SetAttribute("a", 2)

	if r.WasChanged() {
		t.Error("WasChanged() before SyncChanges should be false")
	}
	if err := r.SyncChanges(); err != nil {
		t.Fatalf("SyncChanges() error: %v", err)
	}
	snapshot := r.GetChanges()

	_ = r.SetAttribute("b", 2)
	_ = r.SetAttribute("a", 3)

	changes := r.GetChanges()
	if !slices.Equal(changes, snapshot) || len(changes) != 1 || changes[0] != Attr("a", 2) {
		t.Errorf("GetChanges() = %v, want [{a 2}]", changes)
	}
	if !r.WasChanged("a") || r.WasChanged("b") {
		t.Error("WasChanged() should reflect the snapshot, not live state")
	}

	changes[0].Value = 100
	if r.GetChanges()[0].Value != 2 {
		t.Error("GetChanges() should return a copy")
	}
}

func TestGetAttributes_Idempotent(t *testing.T) {
	r := newTestRecord(t, NewAttributes(Attr("tags", `["a"]`), Attr("n", 1)), WithCast("tags", "collection"))

	col, _ := As[*Collection](r, "tags")
	col.Push("b")

	first, err := r.GetAttributes()
	if err != nil {
		t.Fatalf("GetAttributes() error: %v", err)
	}
	second, err := r.GetAttributes()
	if err != nil {
		t.Fatalf("GetAttributes() error: %v", err)
	}
	if !slices.Equal(first.Pairs(), second.Pairs()) {
		t.Errorf("GetAttributes() not idempotent: %v then %v", first.Pairs(), second.Pairs())
	}

	first.Set("n", 2)
	if v, _ := r.GetAttribute("n"); v != 1 {
		t.Error("GetAttributes() should return a copy")
	}
}

func TestCastLifecycle(t *testing.T) {
	r := newTestRecord(t, NewAttributes(Attr("tags", "hello")), WithCast("tags", "collection"))

	// Raw: nothing cached.
	if r.classCasts.len() != 0 {
		t.Fatal("nothing should be cached before the first read")
	}

	// Cached-rich: the first read caches the rich value.
	col, _ := As[*Collection](r, "tags")
	again, _ := As[*Collection](r, "tags")
	if col != again {
		t.Error("second read should return the cached value")
	}

	// Merged: the cache is flattened on read and stays cached.
	_, _ = r.GetAttributes()
	if v, _ := r.attributes.Get("tags"); v != `["hello"]` {
		t.Errorf("raw tags = %v, want merged", v)
	}
	if _, ok := r.classCasts.get("tags"); !ok {
		t.Error("cache entry should persist after merging")
	}

	// Raw write drops the cache.
	r.SetRawAttribute("tags", `["x"]`)
	if _, ok := r.classCasts.get("tags"); ok {
		t.Error("SetRawAttribute() should drop the cached value")
	}

	// Nil write stores raw nil.
	_ = r.SetAttribute("tags", nil)
	if v, ok := r.attributes.Get("tags"); !ok || v != nil {
		t.Errorf("tags = %v, want nil", v)
	}
}

func TestMerge_Atomic(t *testing.T) {
	failing := Mutator{
		Get: func(v any, _ Attributes) (any, error) { return v, nil },
		Set: func(any, Attributes) (map[string]any, error) { return nil, errors.New("boom") },
	}
	r := newTestRecord(t,
		NewAttributes(Attr("tags", "x"), Attr("bad", 1)),
		WithCast("tags", "collection"),
		WithMutator("bad", failing),
	)

	_ = r.SetAttribute("tags", NewCollection("y"))
	_ = r.SetAttribute("bad", 2)

	_, err := r.GetAttributes()
	if !errors.Is(err, ErrCastFailed) {
		t.Fatalf("GetAttributes() error = %v, want ErrCastFailed", err)
	}
	// The class cast merged before the failure, but nothing was committed.
	if v, _ := r.attributes.Get("tags"); v != "x" {
		t.Errorf("tags = %v, want unchanged after failed merge", v)
	}
	if _, err := r.GetDirty(); err == nil {
		t.Error("GetDirty() should surface the merge error")
	}
	if err := r.SyncOriginal(); err == nil {
		t.Error("SyncOriginal() should surface the merge error")
	}
}

func TestMergeFromSingleCache(t *testing.T) {
	upper := Mutator{
		Get: func(v any, _ Attributes) (any, error) { return v, nil },
		Set: func(v any, _ Attributes) (map[string]any, error) {
			return map[string]any{"name": v, "name_len": len(v.(string))}, nil
		},
	}
	r := newTestRecord(t,
		NewAttributes(Attr("name", ""), Attr("tags", "x")),
		WithCast("tags", "collection"),
		WithMutator("name", upper),
	)
	_ = r.SetAttribute("name", "alice")
	_ = r.SetAttribute("tags", NewCollection("y"))

	if err := r.MergeAttributesFromAttributeCasts(); err != nil {
		t.Fatalf("MergeAttributesFromAttributeCasts() error: %v", err)
	}
	if v, _ := r.attributes.Get("name_len"); v != 5 {
		t.Errorf("name_len = %v, want 5 (mutators may fan out)", v)
	}
	if v, _ := r.attributes.Get("tags"); v != "x" {
		t.Errorf("tags = %v, want class cast not merged yet", v)
	}

	if err := r.MergeAttributesFromClassCasts(); err != nil {
		t.Fatalf("MergeAttributesFromClassCasts() error: %v", err)
	}
	if v, _ := r.attributes.Get("tags"); v != `["y"]` {
		t.Errorf("tags = %v, want merged", v)
	}
}

func TestMutator(t *testing.T) {
	calls := 0
	r := newTestRecord(t,
		NewAttributes(Attr("first", "ada"), Attr("last", "lovelace")),
		WithMutator("full", Mutator{
			Get: func(_ any, attrs Attributes) (any, error) {
				calls++
				f, _ := attrs.Get("first")
				l, _ := attrs.Get("last")
				return f.(string) + " " + l.(string), nil
			},
		}),
	)

	full, err := As[string](r, "full")
	if err != nil {
		t.Fatalf("As() error: %v", err)
	}
	if full != "ada lovelace" {
		t.Errorf("full = %q", full)
	}
	_, _ = r.GetAttribute("full")
	if calls != 1 {
		t.Errorf("Get called %d times, want 1 (cached)", calls)
	}

	// Read-only mutators flatten to nothing.
	if keys := dirtyKeys(t, r); len(keys) != 0 {
		t.Errorf("dirty = %v, want none", keys)
	}

	// Without a Set side the value is stored raw.
	_ = r.SetAttribute("full", "x")
	if v, _ := r.attributes.Get("full"); v != "x" {
		t.Errorf("full raw = %v, want x", v)
	}
}

func TestMutator_GetError(t *testing.T) {
	r := newTestRecord(t, NewAttributes(), WithMutator("x", Mutator{
		Get: func(any, Attributes) (any, error) { return nil, errors.New("nope") },
	}))
	if _, err := r.GetAttribute("x"); !errors.Is(err, ErrCastFailed) {
		t.Errorf("GetAttribute() error = %v, want ErrCastFailed", err)
	}
}

func TestAs_TypeMismatch(t *testing.T) {
	r := newTestRecord(t, NewAttributes(Attr("n", 1), Attr("nil", nil)))

	if _, err := As[string](r, "n"); !errors.Is(err, ErrInvalidCast) {
		t.Errorf("As[string]() error = %v, want ErrInvalidCast", err)
	}
	if v, err := As[string](r, "nil"); err != nil || v != "" {
		t.Errorf("As[string](nil) = %q, %v; want zero value", v, err)
	}
}

func TestCastIntrospection(t *testing.T) {
	r := newTestRecord(t, NewAttributes(), WithCasts(map[string]any{"tags": "collection:yaml", "at": "date"}))

	casts := r.GetCasts()
	if len(casts) != 2 {
		t.Fatalf("GetCasts() = %v", casts)
	}
	delete(casts, "tags")
	if !r.HasCast("tags") {
		t.Error("GetCasts() should return a copy")
	}

	spec, ok := r.GetSpecialCast("tags")
	if !ok || spec.Name != CastCollection || !slices.Equal(spec.Options, []string{"yaml"}) {
		t.Errorf("GetSpecialCast() = %+v, %v", spec, ok)
	}
	if _, ok := r.GetSpecialCast("none"); ok {
		t.Error("GetSpecialCast(none) should report false")
	}
}

func TestMergeCasts_ReplacesAndForgets(t *testing.T) {
	r := newTestRecord(t, NewAttributes(Attr("tags", "hello")), WithCast("tags", "collection"))
	_, _ = r.GetAttribute("tags")

	if err := r.MergeCasts(map[string]any{"tags": "array"}); err != nil {
		t.Fatalf("MergeCasts() error: %v", err)
	}
	if _, ok := r.classCasts.get("tags"); ok {
		t.Error("replacing a cast should drop its cached value")
	}

	withMutator := newTestRecord(t, NewAttributes(), WithMutator("m", Mutator{Set: func(any, Attributes) (map[string]any, error) { return nil, nil }}))
	if err := withMutator.MergeCasts(map[string]any{"m": "date"}); !errors.Is(err, ErrInvalidCast) {
		t.Errorf("MergeCasts() onto a mutator error = %v, want ErrInvalidCast", err)
	}
}

func TestCapabilityAccessors(t *testing.T) {
	r := newTestRecord(t, NewAttributes())

	if _, err := r.Encryptor(EncryptAES); !errors.Is(err, ErrMissingEncryptor) {
		t.Errorf("Encryptor() error = %v, want ErrMissingEncryptor", err)
	}
	if _, err := r.Hasher(HashArgon2); err != nil {
		t.Errorf("Hasher(argon2) error: %v", err)
	}
	if _, err := r.Hasher("md5"); !errors.Is(err, ErrMissingHasher) {
		t.Errorf("Hasher(md5) error = %v, want ErrMissingHasher", err)
	}
	if _, err := r.Masker("ip"); !errors.Is(err, ErrMissingMasker) {
		t.Errorf("Masker(ip) error = %v, want ErrMissingMasker", err)
	}

	var nilRecord *Record
	if nilRecord.Now().IsZero() {
		t.Error("Now() on a nil record should fall back to time.Now")
	}
}
