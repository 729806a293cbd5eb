package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cipherText, err := Encrypt(`{"web_session":"abc"}`, "secret")
	require.NoError(t, err)
	assert.NotContains(t, cipherText, "web_session")

	plain, err := Decrypt(cipherText, "secret")
	require.NoError(t, err)
	assert.Equal(t, `{"web_session":"abc"}`, plain)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	a, err := Encrypt("same", "secret")
	require.NoError(t, err)
	b, err := Encrypt("same", "secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	cipherText, err := Encrypt("payload", "secret")
	require.NoError(t, err)

	_, err = Decrypt(cipherText, "other")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEmptyKeyRejected(t *testing.T) {
	_, err := Encrypt("payload", "")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = Decrypt("payload", "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDecryptGarbage(t *testing.T) {
	_, err := Decrypt("not base64!!", "secret")
	assert.ErrorIs(t, err, ErrInvalidCipherText)

	_, err = Decrypt("AAAA", "secret")
	assert.ErrorIs(t, err, ErrInvalidCipherText)
}
