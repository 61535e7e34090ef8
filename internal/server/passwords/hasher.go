// Package passwords derives and verifies Argon2id password hashes and checks
// the registration password policy.
package passwords

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"

	"siams/internal/shared"
)

// Params holds the Argon2id cost settings. They are configuration, not
// constants: every account, including seeded bootstrap admins, is hashed
// with the same policy.
type Params struct {
	Time    uint32 // passes
	Memory  uint32 // KiB
	Threads uint8  // lanes
	KeyLen  uint32 // derived key bytes
	SaltLen uint32 // salt bytes, 16 minimum
}

// DefaultParams returns the production policy: 4 passes over 64 MiB with
// 8 lanes, a 32-byte key and a 16-byte salt.
func DefaultParams() Params {
	return Params{
		Time:    4,
		Memory:  64 * 1024,
		Threads: 8,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// Hasher derives password hashes with an application-wide pepper mixed in.
// The pepper is an externally supplied secret; the hasher never generates,
// stores, or logs it.
//
// The derived message is the UTF-8 bytes of password followed by the pepper
// bytes (plain concatenation, not a keyed MAC). That construction is the
// stored-data compatibility contract and must not change without a rehash
// migration.
type Hasher struct {
	pepper string
	params Params
}

func NewHasher(pepper string, params Params) *Hasher {
	return &Hasher{pepper: pepper, params: params}
}

// Hash derives a hash for password with a fresh random salt. Both return
// values are base64-encoded for storage.
func (h *Hasher) Hash(password string) (hash string, salt string, err error) {
	if password == "" {
		return "", "", shared.ErrorInvalidRequest
	}

	rawSalt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", fmt.Errorf("salt generation error: %w", err)
	}

	key := h.derive(password, rawSalt)

	return base64.StdEncoding.EncodeToString(key),
		base64.StdEncoding.EncodeToString(rawSalt),
		nil
}

// Verify recomputes the hash from password and the stored base64 salt and
// compares it against the stored base64 hash in constant time.
func (h *Hasher) Verify(password, salt, expectedHash string) bool {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(expectedHash)
	if err != nil {
		return false
	}

	key := h.derive(password, rawSalt)

	return subtle.ConstantTimeCompare(key, expected) == 1
}

func (h *Hasher) derive(password string, salt []byte) []byte {
	msg := []byte(password + h.pepper)
	return argon2.IDKey(msg, salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
}

// passwordSymbols is the punctuation set accepted by the policy check.
const passwordSymbols = `!@#$%^&*()-_=+[]{};:'",.<>/?\|~` + "`"

// ValidatePolicy checks the registration password policy: at least 8
// characters with an upper-case letter, a lower-case letter, a digit, and a
// symbol from passwordSymbols. It returns shared.ErrorWeakPassword on any
// violation.
func ValidatePolicy(password string) error {
	if len(password) < 8 {
		return shared.ErrorWeakPassword
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	if !upper || !lower || !digit || !symbol {
		return shared.ErrorWeakPassword
	}
	return nil
}
