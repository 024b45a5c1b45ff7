package crypt_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/crypt"
)

func testKey(fill byte) string {
	key := make([]byte, 32)
	for i := range key {
		key[i] = fill
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestNewBox_InvalidKeys(t *testing.T) {
	_, err := crypt.NewBox("not base64 !!!")
	assert.Error(t, err)

	_, err = crypt.NewBox(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	box, err := crypt.NewBox(testKey(1))
	require.NoError(t, err)

	plaintext := []byte(`{"final_status":"pass"}`)
	sealed, err := box.Seal(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)

	opened, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestSeal_NoncesDiffer(t *testing.T) {
	box, err := crypt.NewBox(testKey(1))
	require.NoError(t, err)

	first, err := box.Seal([]byte("payload"))
	require.NoError(t, err)
	second, err := box.Seal([]byte("payload"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestOpen_WrongKey(t *testing.T) {
	box, err := crypt.NewBox(testKey(1))
	require.NoError(t, err)
	other, err := crypt.NewBox(testKey(2))
	require.NoError(t, err)

	sealed, err := box.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.Error(t, err)
}

func TestOpen_Tampered(t *testing.T) {
	box, err := crypt.NewBox(testKey(1))
	require.NoError(t, err)

	sealed, err := box.Seal([]byte("secret"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0x01

	_, err = box.Open(sealed)
	assert.Error(t, err)
}

func TestOpen_TooShort(t *testing.T) {
	box, err := crypt.NewBox(testKey(1))
	require.NoError(t, err)

	_, err = box.Open([]byte("tiny"))
	assert.Error(t, err)
}
