package crypt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/dailyfresh/pkg/crypt"
)

func TestEncryptDecrypt(t *testing.T) {
	enc, err := crypt.Encrypt("alice01")
	require.NoError(t, err)
	assert.NotContains(t, enc, "alice01")

	plain, err := crypt.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "alice01", plain)

	again, err := crypt.Encrypt("alice01")
	require.NoError(t, err)
	assert.NotEqual(t, enc, again, "nonce must differ per call")
}

func TestDecryptRejectsTampering(t *testing.T) {
	enc, err := crypt.Encrypt("alice01")
	require.NoError(t, err)

	tampered := []byte(enc)
	i := len(tampered) / 2
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}
	_, err = crypt.Decrypt(string(tampered))
	assert.ErrorIs(t, err, crypt.ErrDecrypt)

	_, err = crypt.Decrypt("plain-username")
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}
