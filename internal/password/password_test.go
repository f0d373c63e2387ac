package password

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("hunter2")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$pbkdf2-sha256$"))
	assert.NotContains(t, hash, "+", "salt and key use the adapted alphabet")
	assert.NotContains(t, hash, "=", "salt and key are unpadded")

	assert.True(t, Verify("hunter2", hash))
	assert.False(t, Verify("hunter3", hash))
	assert.False(t, Verify("", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("same-secret")
	require.NoError(t, err)
	second, err := Hash("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("same-secret", first))
	assert.True(t, Verify("same-secret", second))
}

func TestVerifyMalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"wrong identifier", "$bcrypt$10$abc$def"},
		{"missing fields", "$pbkdf2-sha256$29000$onlysalt"},
		{"extra fields", "$pbkdf2-sha256$29000$a$b$c"},
		{"bad iterations", "$pbkdf2-sha256$lots$c2FsdA$a2V5"},
		{"zero iterations", "$pbkdf2-sha256$0$c2FsdA$a2V5"},
		{"bad salt encoding", "$pbkdf2-sha256$29000$!!!$a2V5"},
		{"bad key encoding", "$pbkdf2-sha256$29000$c2FsdA$!!!"},
		{"empty key", "$pbkdf2-sha256$29000$c2FsdA$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Verify("whatever", tt.hash))
		})
	}
}

// freeipaBlob builds a FreeIPA password export for the given parameters,
// the way ipa user-show renders userPassword.
func freeipaBlob(t *testing.T, iterations int, salt, digest []byte) string {
	t.Helper()
	record := make([]byte, 0, 4+len(salt)+len(digest))
	var iterBuf [4]byte
	binary.BigEndian.PutUint32(iterBuf[:], uint32(iterations)) //nolint:gosec
	record = append(record, iterBuf[:]...)
	record = append(record, salt...)
	record = append(record, digest...)
	inner := base64.StdEncoding.EncodeToString(record)
	return base64.StdEncoding.EncodeToString([]byte("{PBKDF2_SHA256}" + inner))
}

func TestImportFreeIPAHash(t *testing.T) {
	salt := make([]byte, 64)
	for i := range salt {
		salt[i] = byte(i * 3)
	}
	// FreeIPA stores a 256-byte digest; the import keeps the 32-byte prefix.
	digest := pbkdf2.Key([]byte("original-plaintext"), salt, 5000, 256, sha256.New)
	blob := freeipaBlob(t, 5000, salt, digest)

	native, err := ImportFreeIPAHash(blob)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(native, "$pbkdf2-sha256$5000$"))
	assert.True(t, Verify("original-plaintext", native))
	assert.False(t, Verify("wrong-plaintext", native))

	again, err := ImportFreeIPAHash(blob)
	require.NoError(t, err)
	assert.Equal(t, native, again, "import is deterministic")
}

func TestImportFreeIPAHashRejectsMalformedBlobs(t *testing.T) {
	salt := make([]byte, 64)
	digest := make([]byte, 256)
	good := freeipaBlob(t, 1000, salt, digest)

	tests := []struct {
		name string
		blob string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"wrong tag", base64.StdEncoding.EncodeToString([]byte("{PBKDF2_SHA512}" + strings.Repeat("A", 432)))},
		{"short inner record", base64.StdEncoding.EncodeToString([]byte("{PBKDF2_SHA256}" + strings.Repeat("A", 100)))},
		{"inner not base64", base64.StdEncoding.EncodeToString([]byte("{PBKDF2_SHA256}" + strings.Repeat("!", 432)))},
		{"truncated", good[:len(good)/2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportFreeIPAHash(tt.blob)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}
