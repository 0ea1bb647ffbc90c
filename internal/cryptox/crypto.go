// Package cryptox implements the per-user document cipher: a deterministic
// key derived from the user's identity and AES-256-GCM over opaque byte
// buffers with a fixed at-rest framing.
//
// The framing every writer and reader of ciphertext must agree on is
//
//	[12-byte nonce][ciphertext][16-byte GCM tag]
//
// so an encrypted payload is always exactly 28 bytes longer than its
// plaintext. The same layout is produced for the primary artifact, the
// thumbnail, and anything else stored at rest.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
)

const (
	// NonceSize is the GCM nonce length used by Encrypt.
	NonceSize = 12

	// TagSize is the GCM authentication tag length appended by Seal.
	TagSize = 16

	// Overhead is the total framing overhead of an encrypted payload.
	Overhead = NonceSize + TagSize
)

// ErrAuthenticationFailed is the single failure signal for decryption.
// A wrong key, corrupted bytes, and a truncated payload all surface as this
// error; the caller cannot tell which check failed.
var ErrAuthenticationFailed = errors.New("authentication failed")

// DeriveKey derives the 32-byte AES key for a user from their stable
// identity string. The derivation is a plain SHA-256 digest: same identity,
// same key, forever. There is no salt and no iterated KDF — the identity is
// the secret here, not a guessable password, and the trade is determinism
// and zero persisted key material. There is also no rotation path: if an
// identity is ever reissued, everything encrypted under it is lost.
//
// An empty identity is a programmer error and panics.
func DeriveKey(userID string) []byte {
	if userID == "" {
		panic("cryptox: empty user identity")
	}
	sum := sha256.Sum256([]byte(userID))
	return sum[:]
}

// Encrypt seals plaintext under key with AES-256-GCM and a fresh random
// nonce, returning the framed payload nonce‖ciphertext‖tag.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	// Seal appends ciphertext+tag directly after the nonce, producing the
	// final framing in one allocation.
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a framed payload produced by Encrypt. Any failure to
// authenticate — wrong key, flipped bytes, truncation — returns
// ErrAuthenticationFailed and no output.
func Decrypt(key, payload []byte) ([]byte, error) {
	if len(payload) < Overhead {
		return nil, ErrAuthenticationFailed
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, payload[:NonceSize], payload[NonceSize:], nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init: %w", err)
	}
	return cipher.NewGCM(block)
}
