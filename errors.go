package record

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnknownCast indicates a cast name is not registered, or a key has no cast.
	ErrUnknownCast = errors.New("unknown cast")

	// ErrMalformedCast indicates a cast specifier string could not be parsed.
	ErrMalformedCast = errors.New("malformed cast specifier")

	// ErrInvalidCast indicates a cast value or configuration is unusable.
	ErrInvalidCast = errors.New("invalid cast")

	// ErrInvalidOption indicates a cast option has an unsupported value.
	ErrInvalidOption = errors.New("invalid cast option")

	// ErrCastFailed indicates a cast failed to convert a value.
	ErrCastFailed = errors.New("cast failed")

	// ErrMissingEncryptor indicates a required encryptor was not configured.
	ErrMissingEncryptor = errors.New("missing encryptor")

	// ErrMissingHasher indicates a required hasher was not configured.
	ErrMissingHasher = errors.New("missing hasher")

	// ErrMissingMasker indicates a required masker was not configured.
	ErrMissingMasker = errors.New("missing masker")

	// ErrMissingCodec indicates a codec name is not registered.
	ErrMissingCodec = errors.New("missing codec")

	// ErrInvalidShape indicates a shape type cannot describe a record.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrUnmarshal indicates a codec failed to decode a raw value.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates a codec failed to encode a rich value.
	ErrMarshal = errors.New("marshal failed")
)

// ConfigError represents a cast configuration or resolution error.
// It wraps a sentinel error with the attribute key and cast involved.
type ConfigError struct {
	Err  error  // Underlying sentinel error (ErrUnknownCast, ErrMissingEncryptor, etc.)
	Key  string // Attribute key that triggered the error
	Cast string // Cast name, option or algorithm that was missing or invalid
}

func (e *ConfigError) Error() string {
	if e.Key != "" && e.Cast != "" {
		return fmt.Sprintf("%s %q (attribute %s)", e.Err.Error(), e.Cast, e.Key)
	}
	if e.Cast != "" {
		return fmt.Sprintf("%s %q", e.Err.Error(), e.Cast)
	}
	if e.Key != "" {
		return fmt.Sprintf("%s (attribute %s)", e.Err.Error(), e.Key)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CastError represents a failure while converting an attribute.
type CastError struct {
	Err       error  // Underlying sentinel error (ErrCastFailed, ErrInvalidCast)
	Key       string // Attribute key that failed
	Operation string // Operation that failed (get, set, fill, bind)
	Cause     error  // Original error from the cast
}

func (e *CastError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s attribute %s: %v", e.Operation, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s attribute %s: %s", e.Operation, e.Key, e.Err.Error())
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *CastError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func newConfigError(sentinel error, cast, key string) error {
	return &ConfigError{
		Err:  sentinel,
		Cast: cast,
		Key:  key,
	}
}

func newCastError(sentinel error, operation, key string, cause error) error {
	return &CastError{
		Err:       sentinel,
		Key:       key,
		Operation: operation,
		Cause:     cause,
	}
}

func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
