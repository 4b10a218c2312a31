package record

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Encryption errors.
var (
	ErrInvalidKeySize   = errors.New("invalid key size")
	ErrCiphertextShort  = errors.New("ciphertext too short")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Encryptor handles encryption/decryption operations.
type Encryptor interface {
	// Encrypt encrypts plaintext and returns ciphertext.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext and returns plaintext.
	Decrypt(ciphertext []byte) ([]byte, error)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: must be 16, 24, or 32 bytes, got %d", ErrInvalidKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext with a fresh nonce prepended to the output.
func seal(gcm cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func open(gcm cipher.AEAD, sealed []byte) ([]byte, error) {
	n := gcm.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextShort
	}
	plaintext, err := gcm.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

type aesEncryptor struct {
	gcm cipher.AEAD
}

// AES returns an AES-GCM encryptor.
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func AES(key []byte) (Encryptor, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return &aesEncryptor{gcm: gcm}, nil
}

func (e *aesEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	return seal(e.gcm, plaintext)
}

func (e *aesEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	return open(e.gcm, ciphertext)
}

type rsaEncryptor struct {
	pub  *rsa.PublicKey
	priv *rsa.PrivateKey
}

// RSA returns an RSA-OAEP encryptor.
// pub is required for encryption; priv is required for decryption.
func RSA(pub *rsa.PublicKey, priv *rsa.PrivateKey) Encryptor {
	return &rsaEncryptor{pub: pub, priv: priv}
}

func (e *rsaEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	if e.pub == nil {
		return nil, errors.New("public key required for encryption")
	}
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, e.pub, plaintext, nil)
}

func (e *rsaEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if e.priv == nil {
		return nil, errors.New("private key required for decryption")
	}
	return rsa.DecryptOAEP(sha256.New(), rand.Reader, e.priv, ciphertext, nil)
}

// envelopeEncryptor seals each value with a random data key and stores the
// data key sealed under the master key.
//
// Layout: [2-byte sealed key length][sealed data key][sealed value]
type envelopeEncryptor struct {
	master cipher.AEAD
}

// Envelope returns an envelope encryptor using a master key.
// Master key must be 16, 24, or 32 bytes.
func Envelope(masterKey []byte) (Encryptor, error) {
	gcm, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}
	return &envelopeEncryptor{master: gcm}, nil
}

func (e *envelopeEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	dataKey := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, dataKey); err != nil {
		return nil, err
	}
	data, err := newGCM(dataKey)
	if err != nil {
		return nil, err
	}

	sealedValue, err := seal(data, plaintext)
	if err != nil {
		return nil, err
	}
	sealedKey, err := seal(e.master, dataKey)
	if err != nil {
		return nil, err
	}

	out := binary.BigEndian.AppendUint16(nil, uint16(len(sealedKey))) // #nosec G115 -- sealed 32-byte key
	out = append(out, sealedKey...)
	return append(out, sealedValue...), nil
}

func (e *envelopeEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < 2 {
		return nil, ErrCiphertextShort
	}
	keyLen := int(binary.BigEndian.Uint16(ciphertext))
	if len(ciphertext) < 2+keyLen {
		return nil, ErrCiphertextShort
	}

	dataKey, err := open(e.master, ciphertext[2:2+keyLen])
	if err != nil {
		return nil, fmt.Errorf("data key: %w", err)
	}
	data, err := newGCM(dataKey)
	if err != nil {
		return nil, err
	}
	return open(data, ciphertext[2+keyLen:])
}

// AsEncrypted stores an attribute encrypted and base64 encoded, and reads it
// back as plaintext. The first option selects the algorithm (aes by default);
// the encryptor itself comes from the record (WithEncryptor).
//
// Writing keeps the stored ciphertext when it already decrypts to the same
// plaintext, so repeated merges do not make the attribute dirty.
type AsEncrypted struct{}

func (AsEncrypted) CastUsing(options []string) (CastsAttributes, error) {
	algo := EncryptAES
	if len(options) > 0 {
		algo = EncryptAlgo(options[0])
	}
	if !IsValidEncryptAlgo(algo) {
		return nil, newConfigError(ErrInvalidOption, string(algo), "")
	}
	return &encryptedCast{algo: algo}, nil
}

type encryptedCast struct {
	algo EncryptAlgo
}

func (c *encryptedCast) GetAttribute(r *Record, _ string, value any, _ Attributes) (any, error) {
	if value == nil {
		return nil, nil
	}
	enc, err := r.Encryptor(c.algo)
	if err != nil {
		return nil, err
	}
	plaintext, err := c.decrypt(enc, value)
	if err != nil {
		return nil, err
	}
	return string(plaintext), nil
}

func (c *encryptedCast) SetAttribute(r *Record, key string, value any, attributes Attributes) (map[string]any, error) {
	if value == nil {
		return map[string]any{key: nil}, nil
	}
	plaintext, ok := rawBytes(value)
	if !ok {
		return nil, fmt.Errorf("%w: cannot encrypt %T", ErrInvalidCast, value)
	}
	enc, err := r.Encryptor(c.algo)
	if err != nil {
		return nil, err
	}

	if stored, ok := attributes.Get(key); ok && stored != nil {
		if current, err := c.decrypt(enc, stored); err == nil && bytes.Equal(current, plaintext) {
			return nil, nil
		}
	}

	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}
	return map[string]any{key: base64.StdEncoding.EncodeToString(ciphertext)}, nil
}

func (c *encryptedCast) decrypt(enc Encryptor, stored any) ([]byte, error) {
	encoded, ok := stored.(string)
	if !ok {
		return nil, fmt.Errorf("%w: stored ciphertext is %T", ErrInvalidCast, stored)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return enc.Decrypt(ciphertext)
}
