// Package password implements the native password hash format, hash
// verification, the FreeIPA hash import path, and account lockout
// state transitions.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// ErrFormat is returned when an encoded hash cannot be parsed. It is never
// returned by Verify, which treats malformed input as a failed match.
var ErrFormat = errors.New("malformed password hash")

const (
	// hashIdent tags native hashes. The format is passlib's modular crypt
	// variant: $pbkdf2-sha256$<iterations>$<salt>$<derived key>, with salt
	// and key in adapted base64 ("." instead of "+", no padding).
	hashIdent = "$pbkdf2-sha256$"

	// defaultIterations matches the passlib default used by the
	// deployments this store was imported from.
	defaultIterations = 29000

	saltLength       = 16
	derivedKeyLength = 32
)

// FreeIPA export layout: base64(tag + base64(iterations | salt | digest)).
const (
	freeipaIdent      = "{PBKDF2_SHA256}"
	freeipaInnerChars = 432 // base64 of the 324-byte binary record
	freeipaSaltLength = 64
	freeipaDigestSize = 256
)

// adapted base64: the standard alphabet with "+" swapped for ".".
var ab64 = base64.RawStdEncoding

func ab64Encode(b []byte) string {
	return strings.ReplaceAll(ab64.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return ab64.DecodeString(strings.ReplaceAll(s, ".", "+"))
}

// Hash derives a native hash string from a plaintext secret using a fresh
// random salt. Two calls with the same secret produce different strings.
func Hash(secret string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(secret), salt, defaultIterations, derivedKeyLength, sha256.New)
	return encode(defaultIterations, salt, key), nil
}

// Verify reports whether secret matches the stored hash. Malformed hashes
// never match.
func Verify(secret, storedHash string) bool {
	iterations, salt, key, err := decode(storedHash)
	if err != nil {
		return false
	}
	derived := pbkdf2.Key([]byte(secret), salt, iterations, len(key), sha256.New)
	return subtle.ConstantTimeCompare(derived, key) == 1
}

// ImportFreeIPAHash converts a FreeIPA password export into the native hash
// format without knowing the plaintext. The export is a base64 blob whose
// decoded text starts with the {PBKDF2_SHA256} tag; the remainder decodes
// to a 4-byte big-endian iteration count, a 64-byte salt, and a 256-byte
// digest of which only the first 32 bytes are kept (the native verifier
// works with 32-byte keys). Returns ErrFormat if any step fails.
func ImportFreeIPAHash(encodedBlob string) (string, error) {
	outer, err := base64.StdEncoding.DecodeString(encodedBlob)
	if err != nil {
		return "", fmt.Errorf("%w: outer base64: %v", ErrFormat, err)
	}
	text := string(outer)
	if !strings.HasPrefix(text, freeipaIdent) {
		return "", fmt.Errorf("%w: missing %s tag", ErrFormat, freeipaIdent)
	}
	inner := text[len(freeipaIdent):]
	if len(inner) != freeipaInnerChars {
		return "", fmt.Errorf("%w: inner record is %d chars, want %d", ErrFormat, len(inner), freeipaInnerChars)
	}
	record, err := base64.StdEncoding.DecodeString(inner)
	if err != nil {
		return "", fmt.Errorf("%w: inner base64: %v", ErrFormat, err)
	}
	if len(record) != 4+freeipaSaltLength+freeipaDigestSize {
		return "", fmt.Errorf("%w: inner record is %d bytes", ErrFormat, len(record))
	}

	iterations := int(binary.BigEndian.Uint32(record[:4]))
	salt := record[4 : 4+freeipaSaltLength]
	key := record[4+freeipaSaltLength : 4+freeipaSaltLength+derivedKeyLength]
	return encode(iterations, salt, key), nil
}

func encode(iterations int, salt, key []byte) string {
	return fmt.Sprintf("%s%d$%s$%s", hashIdent, iterations, ab64Encode(salt), ab64Encode(key))
}

func decode(storedHash string) (iterations int, salt, key []byte, err error) {
	if !strings.HasPrefix(storedHash, hashIdent) {
		return 0, nil, nil, fmt.Errorf("%w: unknown identifier", ErrFormat)
	}
	parts := strings.Split(storedHash[len(hashIdent):], "$")
	if len(parts) != 3 {
		return 0, nil, nil, fmt.Errorf("%w: want 3 fields, got %d", ErrFormat, len(parts))
	}
	iterations, err = strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return 0, nil, nil, fmt.Errorf("%w: bad iteration count %q", ErrFormat, parts[0])
	}
	salt, err = ab64Decode(parts[1])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%w: bad salt: %v", ErrFormat, err)
	}
	key, err = ab64Decode(parts[2])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, fmt.Errorf("%w: bad derived key", ErrFormat)
	}
	return iterations, salt, key, nil
}
