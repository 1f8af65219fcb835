// ABOUTME: Encrypting decorator for any credential store
// ABOUTME: Seals tokens with NaCl secretbox so durable backends never hold plaintext

package credstore

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/nacl/secretbox"
)

// KeySize is the length of a sealing key in bytes.
const KeySize = 32

const nonceSize = 24

// ErrInvalidKey is returned by ParseKey for keys that do not decode to KeySize bytes.
var ErrInvalidKey = errors.New("credential key must be 32 bytes, hex or base64 encoded")

// Sealed encrypts values before handing them to the wrapped Store.
type Sealed struct {
	inner  Store
	key    [KeySize]byte
	logger *slog.Logger
}

// NewSealed wraps inner so every token is encrypted with key.
func NewSealed(inner Store, key [KeySize]byte, logger *slog.Logger) *Sealed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sealed{
		inner:  inner,
		key:    key,
		logger: logger.With("component", "credstore", "backend", "sealed"),
	}
}

// ParseKey decodes a 32-byte key from hex or standard base64.
func ParseKey(s string) ([KeySize]byte, error) {
	var key [KeySize]byte
	if b, err := hex.DecodeString(s); err == nil && len(b) == KeySize {
		copy(key[:], b)
		return key, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == KeySize {
		copy(key[:], b)
		return key, nil
	}
	return key, ErrInvalidKey
}

func (s *Sealed) Get(kind Kind) (string, bool) {
	sealed, ok := s.inner.Get(kind)
	if !ok {
		return "", false
	}
	token, err := s.open(sealed)
	if err != nil {
		s.logger.Warn("discarding unreadable credential", "kind", kind, "error", err)
		return "", false
	}
	return token, true
}

func (s *Sealed) Set(kind Kind, token string) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		s.logger.Error("generating nonce", "kind", kind, "error", err)
		return
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key)
	s.inner.Set(kind, base64.StdEncoding.EncodeToString(box))
}

func (s *Sealed) Clear(kind Kind) {
	s.inner.Clear(kind)
}

func (s *Sealed) open(value string) (string, error) {
	box, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("decoding sealed value: %w", err)
	}
	if len(box) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed value too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("authentication failed")
	}
	return string(plain), nil
}
