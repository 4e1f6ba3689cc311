package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const sealedPrefix = "v1:"

var hkdfInfo = []byte("testcasegen api-key sealing")

// ErrSealedWithoutKey is returned when a sealed value is read but no
// encryption key is configured.
var ErrSealedWithoutKey = errors.New("secret is sealed but no encryption key is configured")

// SecretSealer protects the provider API key at rest
type SecretSealer interface {
	Seal(plaintext string) (string, error)
	Open(stored string) (string, error)
}

// NewSecretSealer returns an AES-GCM sealer derived from key, or a
// pass-through sealer when key is empty.
func NewSecretSealer(key string) (SecretSealer, error) {
	if key == "" {
		return PlaintextSealer{}, nil
	}
	return NewAESSealer(key)
}

// AESSealer seals secrets with AES-256-GCM. The stored form is
// "v1:" + base64(nonce || ciphertext).
type AESSealer struct {
	aead cipher.AEAD
}

// NewAESSealer derives a 256-bit key from secret with HKDF-SHA256
func NewAESSealer(secret string) (*AESSealer, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESSealer{aead: aead}, nil
}

func (s *AESSealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a sealed value. Values without the prefix were stored
// before a key was configured and are returned as-is.
func (s *AESSealer) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed secret: %w", err)
	}
	if len(raw) < s.aead.NonceSize() {
		return "", errors.New("sealed secret is truncated")
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed secret: %w", err)
	}
	return string(plaintext), nil
}

// PlaintextSealer stores secrets unmodified
type PlaintextSealer struct{}

func (PlaintextSealer) Seal(plaintext string) (string, error) {
	return plaintext, nil
}

func (PlaintextSealer) Open(stored string) (string, error) {
	if strings.HasPrefix(stored, sealedPrefix) {
		return "", ErrSealedWithoutKey
	}
	return stored, nil
}
