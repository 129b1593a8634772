// Package security hashes buyer passwords with argon2id. Accounts imported
// from the previous storefront still carry bcrypt hashes; those verify and
// are flagged for an argon2id rehash on the next successful login.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/buy2brands/wholesale-api/pkg/config"
)

const MinPasswordLength = 8

var (
	ErrInvalidHash  = errors.New("invalid password hash")
	ErrWeakPassword = errors.New("password too weak")
)

// ArgonParams are encoded into every hash so old hashes keep verifying
// after the configured cost changes.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// Verification is the outcome of checking a password against a stored hash.
type Verification struct {
	Match bool
	// NeedsRehash is set on a match whose hash is bcrypt or uses different
	// argon2id parameters than the hasher's.
	NeedsRehash bool
}

type Hasher struct {
	params ArgonParams
}

func NewHasher(cfg config.PasswordConfig) *Hasher {
	return &Hasher{params: ArgonParams{
		Memory:      clamp(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        clamp(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		SaltLen:     clamp(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      clamp(cfg.ArgonKeyLen, 16, 64),
	}}
}

// CheckStrength requires MinPasswordLength characters mixing upper case,
// lower case and a digit.
func CheckStrength(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, MinPasswordLength)
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fmt.Errorf("%w: must mix upper case, lower case and a number", ErrWeakPassword)
	}
	return nil
}

// Hash checks strength and returns a PHC-formatted argon2id hash.
func (h *Hasher) Hash(password string) (string, error) {
	if err := CheckStrength(password); err != nil {
		return "", err
	}
	return h.Rehash(password)
}

// Rehash encodes a password that has just verified against an older hash.
// It skips CheckStrength: imported accounts may predate the rules.
func (h *Hasher) Rehash(password string) (string, error) {
	p := h.params
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Hasher) Verify(password, encoded string) (Verification, error) {
	if isBcrypt(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return Verification{Match: true, NeedsRehash: true}, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return Verification{}, nil
		default:
			return Verification{}, fmt.Errorf("%w: %v", ErrInvalidHash, err)
		}
	}

	params, salt, key, err := decodeArgon(encoded)
	if err != nil {
		return Verification{}, err
	}
	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)
	if subtle.ConstantTimeCompare(key, computed) != 1 {
		return Verification{}, nil
	}
	return Verification{Match: true, NeedsRehash: params != h.params}, nil
}

func isBcrypt(encoded string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, prefix) {
			return true
		}
	}
	return false
}

func decodeArgon(encoded string) (ArgonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	var p ArgonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	p.SaltLen, p.KeyLen = uint32(len(salt)), uint32(len(key))
	return p, salt, key, nil
}

func clamp(value, min, max int) uint32 {
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return uint32(value)
}
