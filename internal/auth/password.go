package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/session-gateway/internal/config"
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher hashes and verifies passwords. Verify reports a mismatch as
// (false, nil); an error means the hash itself could not be checked.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hashed, plain string) (bool, error)
}

// NewPasswordHasher selects the hasher named by cfg.
func NewPasswordHasher(cfg config.AuthConfig) (PasswordHasher, error) {
	switch cfg.PasswordHasher {
	case config.HasherBcrypt, "":
		return NewBcryptHasher(cfg.BcryptCost), nil
	case config.HasherArgon2:
		return NewArgon2Hasher(cfg.PasswordKey), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", cfg.PasswordHasher)
	}
}

// BcryptHasher hashes passwords with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher clamps cost into bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash hashes a plaintext password with configured cost.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compares a password against its hashed value.
func (h *BcryptHasher) Verify(hashed, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

const (
	argon2Time    uint32 = 1
	argon2Memory  uint32 = 64 * 1024
	argon2Threads uint8  = 4
	argon2KeyLen  uint32 = 32
	argon2SaltLen        = 16

	// Bounds on parameters read back from stored hashes.
	argon2MaxTime   uint32 = 16
	argon2MaxMemory uint32 = 1 << 21
	argon2MaxKeyLen        = 128
)

// Argon2Hasher produces PHC-style argon2id hashes. The key material is mixed
// into the password with HMAC before hashing, so hashes are bound to it.
type Argon2Hasher struct {
	key []byte
}

// NewArgon2Hasher builds a hasher keyed by keyMaterial (may be empty).
func NewArgon2Hasher(keyMaterial string) *Argon2Hasher {
	return &Argon2Hasher{key: []byte(keyMaterial)}
}

// Hash returns $argon2id$v=19$m=...,t=...,p=...$salt$hash.
func (h *Argon2Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey(h.pepper(plain), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify recomputes the hash with the stored parameters and compares in constant time.
func (h *Argon2Hasher) Verify(hashed, plain string) (bool, error) {
	parts := strings.Split(hashed, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, ErrMalformedHash
	}
	if iterations == 0 || iterations > argon2MaxTime || threads == 0 ||
		memory < 8*uint32(threads) || memory > argon2MaxMemory {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > argon2MaxKeyLen {
		return false, ErrMalformedHash
	}

	actual := argon2.IDKey(h.pepper(plain), salt, iterations, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

func (h *Argon2Hasher) pepper(plain string) []byte {
	if len(h.key) == 0 {
		return []byte(plain)
	}
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(plain))
	return mac.Sum(nil)
}
