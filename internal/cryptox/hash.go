// Package cryptox implements salted one-way hashing of secrets.
//
// Hashes are self-describing strings, so a stored value records the
// algorithm and parameters it was produced with:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>   (base64, no padding)
//	$2a$10$...                                    (bcrypt)
//
// Every call to Hash draws a fresh random salt, therefore the same secret
// never hashes to the same string twice. Verify accepts either format.
//
// bcrypt only reads the first 72 bytes of its input, so in bcrypt mode the
// secret is first reduced to a base64 SHA-256 digest (44 bytes).
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm selects the hash function used by a Hasher.
type Algorithm string

const (
	Argon2id Algorithm = "argon2id"
	Bcrypt   Algorithm = "bcrypt"
)

var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// Params configures a Hasher. Zero fields are replaced by DefaultParams values.
type Params struct {
	Algorithm  Algorithm
	Time       uint32
	MemoryKiB  uint32
	Threads    uint8
	KeyLen     uint32
	SaltLen    int
	BcryptCost int
}

// DefaultParams follows the OWASP argon2id baseline (19 MiB, t=2, p=1).
func DefaultParams() Params {
	return Params{
		Algorithm:  Argon2id,
		Time:       2,
		MemoryKiB:  19 * 1024,
		Threads:    1,
		KeyLen:     32,
		SaltLen:    16,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Hasher produces salted hashes with fixed parameters.
type Hasher struct {
	p Params
}

// NewHasher validates p and returns a Hasher.
func NewHasher(p Params) (*Hasher, error) {
	d := DefaultParams()
	if p.Algorithm == "" {
		p.Algorithm = d.Algorithm
	}
	if p.Time == 0 {
		p.Time = d.Time
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = d.MemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = d.Threads
	}
	if p.KeyLen == 0 {
		p.KeyLen = d.KeyLen
	}
	if p.SaltLen == 0 {
		p.SaltLen = d.SaltLen
	}
	if p.BcryptCost == 0 {
		p.BcryptCost = d.BcryptCost
	}

	switch p.Algorithm {
	case Argon2id:
	case Bcrypt:
		if p.BcryptCost < bcrypt.MinCost || p.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range", p.BcryptCost)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, p.Algorithm)
	}

	return &Hasher{p: p}, nil
}

// Hash returns a salted hash of secret. Secrets of any length are accepted.
func (h *Hasher) Hash(secret string) (string, error) {
	if h.p.Algorithm == Bcrypt {
		b, err := bcrypt.GenerateFromPassword(bcryptInput(secret), h.p.BcryptCost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	salt := common.GenerateRandByteArray(h.p.SaltLen)
	key := argon2.IDKey([]byte(secret), salt, h.p.Time, h.p.MemoryKiB, h.p.Threads, h.p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.p.MemoryKiB, h.p.Time, h.p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether secret matches encoded. Malformed or unsupported
// hashes simply do not match.
func Verify(secret, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2id(secret, encoded)
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(encoded), bcryptInput(secret)) == nil
	default:
		return false
	}
}

func bcryptInput(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func verifyArgon2id(secret, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if memory == 0 || time == 0 || threads == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return false
	}

	candidate := argon2.IDKey([]byte(secret), salt, time, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1
}
