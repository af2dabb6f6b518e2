// Package idmask turns raw database identifiers into opaque tokens for clients
// and back again.
//
// Tokens are XChaCha20-Poly1305 sealed, so a tampered or truncated token fails
// to open instead of decoding to a different id. This is obfuscation of row ids,
// not access control: anyone holding a token can use it.
package idmask

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Kind scopes a token to one record type so tokens are not interchangeable.
type Kind string

const (
	KindItem        Kind = "item"
	KindTransaction Kind = "transaction"
	KindSaleLine    Kind = "sale_line"
)

// ErrInvalidToken is returned for malformed, truncated or tampered tokens.
var ErrInvalidToken = errors.New("invalid masked identifier")

const hkdfInfo = "scanpos/idmask/v1"

var encoding = base64.RawURLEncoding

// Masker is the narrow surface consumers depend on.
type Masker interface {
	Mask(kind Kind, id uint) string
	Unmask(kind Kind, token string) (uint, error)
}

// Codec implements Masker.
type Codec struct {
	aead  cipherAEAD
	nonce io.Reader
}

type cipherAEAD interface {
	NonceSize() int
	Overhead() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

// New derives the codec key from secret.
func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("mask secret is required")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive mask key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init mask cipher: %w", err)
	}
	return &Codec{aead: aead, nonce: rand.Reader}, nil
}

// Mask seals id. Each call uses a fresh nonce, so the same id yields different tokens.
func (c *Codec) Mask(kind Kind, id uint) string {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+8+c.aead.Overhead())
	if _, err := io.ReadFull(c.nonce, nonce); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("idmask: read nonce: %v", err))
	}

	plain := make([]byte, 8)
	binary.BigEndian.PutUint64(plain, uint64(id))

	sealed := c.aead.Seal(nonce, nonce, plain, []byte(kind))
	return encoding.EncodeToString(sealed)
}

// Unmask opens token, returning ErrInvalidToken unless it was produced by Mask with the same kind.
func (c *Codec) Unmask(kind Kind, token string) (uint, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	raw, err := encoding.DecodeString(token)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if len(raw) != c.aead.NonceSize()+8+c.aead.Overhead() {
		return 0, ErrInvalidToken
	}

	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, []byte(kind))
	if err != nil {
		return 0, ErrInvalidToken
	}

	id := binary.BigEndian.Uint64(plain)
	if id == 0 || uint64(uint(id)) != id {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
