// Package testing provides test utilities for record.
package testing

import (
	"strings"
	"testing"
	"time"

	"github.com/zoobzio/record"
)

// TestKey returns a valid 32-byte AES key for testing.
func TestKey(t testing.TB) []byte {
	t.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestEncryptor returns an AES encryptor configured for testing.
func TestEncryptor(t testing.TB) record.Encryptor {
	t.Helper()
	enc, err := record.AES(TestKey(t))
	if err != nil {
		t.Fatalf("failed to create test encryptor: %v", err)
	}
	return enc
}

// FixedClock returns a clock that always reports at.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// NewRecord creates a record or fails the test.
func NewRecord(t testing.TB, attributes record.Attributes, opts ...record.Option) *record.Record {
	t.Helper()
	r, err := record.New(attributes, opts...)
	if err != nil {
		t.Fatalf("record.New() error: %v", err)
	}
	return r
}

// DirtyKeys returns the keys of r's dirty attributes, in order.
func DirtyKeys(t testing.TB, r *record.Record) []string {
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

// Post is a shape fixture covering fillable keys, casts and exclusions.
type Post struct {
	ID        string    `attr:"id"`
	Title     string    `attr:"title,fillable"`
	Body      string    `attr:"body,fillable"`
	Tags      []any     `attr:"tags,fillable" cast:"array"`
	Author    string    `attr:"author_email" cast:"encrypted:aes"`
	Published time.Time `attr:"published_at" cast:"date"`
	Draft     bool      `attr:"-"`
}

// CountingCast is a Castable that upper-cases on read and lower-cases on
// write, counting how often it is resolved and invoked.
type CountingCast struct {
	Resolved int
	Gets     int
	Sets     int
}

// CastUsing implements record.Castable.
func (c *CountingCast) CastUsing(_ []string) (record.CastsAttributes, error) {
	c.Resolved++
	return countingCaster{c}, nil
}

type countingCaster struct {
	counts *CountingCast
}

func (c countingCaster) GetAttribute(_ *record.Record, _ string, value any, _ record.Attributes) (any, error) {
	c.counts.Gets++
	s, _ := value.(string)
	return strings.ToUpper(s), nil
}

func (c countingCaster) SetAttribute(_ *record.Record, key string, value any, _ record.Attributes) (map[string]any, error) {
	c.counts.Sets++
	s, _ := value.(string)
	return map[string]any{key: strings.ToLower(s)}, nil
}

// FailingCast is a cast whose conversions always fail with Err.
type FailingCast struct {
	Err error
}

// GetAttribute implements record.CastsAttributes.
func (c FailingCast) GetAttribute(_ *record.Record, _ string, _ any, _ record.Attributes) (any, error) {
	return nil, c.Err
}

// SetAttribute implements record.CastsAttributes.
func (c FailingCast) SetAttribute(_ *record.Record, _ string, _ any, _ record.Attributes) (map[string]any, error) {
	return nil, c.Err
}
