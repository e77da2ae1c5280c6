package adaptive

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the size of every key this package derives.
	KeySize = 32

	// SaltSize is the passphrase salt length.
	SaltSize = 16

	// MinPassphraseLength is the minimum accepted passphrase length.
	MinPassphraseLength = 8

	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

var (
	ErrPassphraseTooWeak = errors.New("adaptive: passphrase too weak (minimum 8 characters)")
	ErrKeyTooShort       = errors.New("adaptive: key too short (minimum 16 bytes)")
	ErrInvalidSalt       = errors.New("adaptive: invalid salt length")
)

// Secret is a configured encryption secret: either a raw key or a
// passphrase that still needs a salt.
type Secret struct {
	Key        []byte
	Passphrase []byte
}

// ParseSecret interprets s. Hex strings of 32 or 64 digits are raw keys;
// anything else is a passphrase. An empty string yields an empty Secret.
func ParseSecret(s string) (Secret, error) {
	if s == "" {
		return Secret{}, nil
	}
	if len(s) == 32 || len(s) == 64 {
		if key, err := hex.DecodeString(s); err == nil {
			return Secret{Key: key}, nil
		}
	}
	if len(s) < MinPassphraseLength {
		return Secret{}, ErrPassphraseTooWeak
	}
	return Secret{Passphrase: []byte(s)}, nil
}

// IsZero reports whether no secret was configured.
func (s Secret) IsZero() bool {
	return len(s.Key) == 0 && len(s.Passphrase) == 0
}

// NeedsSalt reports whether the secret is a passphrase.
func (s Secret) NeedsSalt() bool {
	return len(s.Passphrase) > 0
}

// MasterKey returns the raw key, or the Argon2id derivation of the
// passphrase with salt.
func (s Secret) MasterKey(salt []byte) ([]byte, error) {
	if len(s.Passphrase) > 0 {
		return DeriveKey(s.Passphrase, salt)
	}
	if len(s.Key) < 16 {
		return nil, ErrKeyTooShort
	}
	return s.Key, nil
}

// NewSalt returns a random salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("adaptive: generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a KeySize key from a passphrase with Argon2id.
func DeriveKey(passphrase, salt []byte) ([]byte, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooWeak
	}
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}
	return argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, KeySize), nil
}

// Subkey derives a purpose-bound key from master with HKDF-SHA256, so one
// configured secret can protect several stores.
func Subkey(master []byte, info string) ([]byte, error) {
	if len(master) < 16 {
		return nil, ErrKeyTooShort
	}
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("adaptive: derive subkey: %w", err)
	}
	return key, nil
}

// ZeroKey overwrites key in place.
func ZeroKey(key []byte) {
	clear(key)
}
