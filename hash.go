package record

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher performs one-way hashing.
type Hasher interface {
	// Hash returns the hash of plaintext as a string.
	// For password hashers (argon2, bcrypt), the result includes salt and parameters.
	// For deterministic hashers (sha256, sha512), the result is a hex-encoded hash.
	Hash(plaintext []byte) (string, error)
}

// Argon2Params configures Argon2id hashing.
type Argon2Params struct {
	Time    uint32 // Number of iterations
	Memory  uint32 // Memory usage in KiB
	Threads uint8  // Parallelism factor
	KeyLen  uint32 // Output key length
	SaltLen uint32 // Salt length
}

// DefaultArgon2Params returns recommended Argon2id parameters.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		KeyLen:  32,
		SaltLen: 16,
	}
}

type argon2Hasher struct {
	params Argon2Params
}

// Argon2 returns an Argon2id hasher with default parameters.
func Argon2() Hasher {
	return Argon2WithParams(DefaultArgon2Params())
}

// Argon2WithParams returns an Argon2id hasher with custom parameters.
func Argon2WithParams(params Argon2Params) Hasher {
	return &argon2Hasher{params: params}
}

// Hash encodes as $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
func (h *argon2Hasher) Hash(plaintext []byte) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey(plaintext, salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// BcryptCost represents the bcrypt cost factor.
type BcryptCost int

// Bcrypt cost constants.
const (
	BcryptMinCost     BcryptCost = BcryptCost(bcrypt.MinCost)
	BcryptDefaultCost BcryptCost = BcryptCost(bcrypt.DefaultCost)
	BcryptMaxCost     BcryptCost = BcryptCost(bcrypt.MaxCost)
)

type bcryptHasher struct {
	cost int
}

// Bcrypt returns a bcrypt hasher with default cost.
func Bcrypt() Hasher {
	return BcryptWithCost(BcryptDefaultCost)
}

// BcryptWithCost returns a bcrypt hasher with a specific cost factor.
func BcryptWithCost(cost BcryptCost) Hasher {
	return &bcryptHasher{cost: int(cost)}
}

func (h *bcryptHasher) Hash(plaintext []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(plaintext, h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash failed: %w", err)
	}
	return string(hash), nil
}

type digestHasher struct {
	sum func([]byte) []byte
}

func (h digestHasher) Hash(plaintext []byte) (string, error) {
	return hex.EncodeToString(h.sum(plaintext)), nil
}

// SHA256Hasher returns a hex-encoded SHA-256 hasher.
// Use for fingerprinting/identification, NOT for passwords.
func SHA256Hasher() Hasher {
	return digestHasher{sum: func(b []byte) []byte { s := sha256.Sum256(b); return s[:] }}
}

// SHA512Hasher returns a hex-encoded SHA-512 hasher.
// Use for fingerprinting/identification, NOT for passwords.
func SHA512Hasher() Hasher {
	return digestHasher{sum: func(b []byte) []byte { s := sha512.Sum512(b); return s[:] }}
}

func builtinHashers() map[HashAlgo]Hasher {
	return map[HashAlgo]Hasher{
		HashArgon2: Argon2(),
		HashBcrypt: Bcrypt(),
		HashSHA256: SHA256Hasher(),
		HashSHA512: SHA512Hasher(),
	}
}

// NewHashedCast constructs the inbound cast registered as "hashed".
// The first option selects the algorithm, bcrypt by default. Assigned values
// are hashed immediately; the plaintext is never stored or cached.
func NewHashedCast(options ...string) (CastsInboundAttributes, error) {
	algo := HashBcrypt
	if len(options) > 0 {
		algo = HashAlgo(options[0])
	}
	if !IsValidHashAlgo(algo) {
		return nil, newConfigError(ErrInvalidOption, string(algo), "")
	}
	return &hashedCast{algo: algo}, nil
}

type hashedCast struct {
	algo HashAlgo
}

func (c *hashedCast) SetAttribute(r *Record, key string, value any, _ Attributes) (map[string]any, error) {
	plaintext, ok := rawBytes(value)
	if !ok {
		return nil, fmt.Errorf("%w: cannot hash %T", ErrInvalidCast, value)
	}
	h, err := r.Hasher(c.algo)
	if err != nil {
		return nil, err
	}
	hashed, err := h.Hash(plaintext)
	if err != nil {
		return nil, err
	}
	return map[string]any{key: hashed}, nil
}
