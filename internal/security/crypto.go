// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a sealed value (format: ENC:base64(salt|nonce|ciphertext)).
const EncryptedPrefix = "ENC:"

// KeySize is the size of the AES-256 key (32 bytes).
const KeySize = 32

// NonceSize is the size of the nonce for AES-GCM (12 bytes).
const NonceSize = 12

// SaltSize is the size of the per-value salt for key derivation.
const SaltSize = 32

// pbkdf2Iterations is the PBKDF2-SHA-256 iteration count. The master key
// is already full-entropy random material, so the derivation provides
// per-value domain separation rather than password stretching.
const pbkdf2Iterations = 4096

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCiphertext indicates the sealed value format is invalid.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	// ErrDecryptionFailed indicates decryption failed (wrong key or tampered data).
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// =============================================================================
// SEAL / OPEN
// =============================================================================

// seal encrypts plaintext with AES-256-GCM under a key derived from the
// master key and a fresh random salt.
func seal(masterKey []byte, plaintext string) (string, error) {
	salt, err := randomBytes(SaltSize)
	if err != nil {
		return "", err
	}

	derived := pbkdf2.Key(masterKey, salt, pbkdf2Iterations, KeySize, sha256.New)
	defer ZeroBytes(derived)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce, err := randomBytes(NonceSize)
	if err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	return EncryptedPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

// open decrypts a value produced by seal.
func open(masterKey []byte, sealed string) (string, error) {
	if !strings.HasPrefix(sealed, EncryptedPrefix) {
		return "", ErrInvalidCiphertext
	}

	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, EncryptedPrefix))
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(blob) < SaltSize+NonceSize {
		return "", ErrInvalidCiphertext
	}

	salt := blob[:SaltSize]
	nonce := blob[SaltSize : SaltSize+NonceSize]
	ciphertext := blob[SaltSize+NonceSize:]

	derived := pbkdf2.Key(masterKey, salt, pbkdf2Iterations, KeySize, sha256.New)
	defer ZeroBytes(derived)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// ZeroBytes zeros sensitive byte slices.
// SECURITY: Zero key material to limit exposure in memory dumps.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
