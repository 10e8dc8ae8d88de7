package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast; the encoding is the same.
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(testParams)

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"), hash)
	assert.NotContains(t, hash, "correct horse")

	require.NoError(t, h.Verify(hash, "correct horse battery staple"))
	require.ErrorIs(t, h.Verify(hash, "wrong"), ErrMismatch)
}

func TestHasher_SaltsDiffer(t *testing.T) {
	h := NewHasher(testParams)

	first, err := h.Hash("secret")
	require.NoError(t, err)
	second, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHasher_VerifyUsesParamsFromHash(t *testing.T) {
	hash, err := NewHasher(testParams).Hash("secret")
	require.NoError(t, err)

	other := NewHasher(Params{Memory: 2048, Iterations: 2, Parallelism: 2, SaltLength: 8, KeyLength: 16})
	require.NoError(t, other.Verify(hash, "secret"))
}

func TestHasher_VerifyMalformed(t *testing.T) {
	h := NewHasher(testParams)

	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{name: "empty", encoded: "", wantErr: ErrInvalidHash},
		{name: "bcrypt", encoded: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", wantErr: ErrInvalidHash},
		{name: "argon2i", encoded: "$argon2i$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5", wantErr: ErrInvalidHash},
		{name: "bad version", encoded: "$argon2id$v=16$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5", wantErr: ErrIncompatibleVersion},
		{name: "bad params", encoded: "$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5", wantErr: ErrInvalidHash},
		{name: "zero params", encoded: "$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5", wantErr: ErrInvalidHash},
		{name: "bad salt", encoded: "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5a2V5", wantErr: ErrInvalidHash},
		{name: "empty key", encoded: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$", wantErr: ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.Verify(tt.encoded, "secret"), tt.wantErr)
		})
	}
}
