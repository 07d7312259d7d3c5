package utils

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBox(t *testing.T) *FieldBox {
	t.Helper()
	box, err := NewFieldBox(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return box
}

func TestFieldBoxRoundTrip(t *testing.T) {
	box := testBox(t)

	enc, err := box.Seal("DE89370400440532013000")
	require.NoError(t, err)
	assert.NotContains(t, enc, "DE89", "ciphertext must not leak plaintext")

	// Hex of nonce||sealed, decodable as such.
	_, err = hex.DecodeString(enc)
	require.NoError(t, err)

	plain, err := box.Open(enc)
	require.NoError(t, err)
	assert.Equal(t, "DE89370400440532013000", plain)
}

func TestFieldBoxSealIsNonDeterministic(t *testing.T) {
	box := testBox(t)

	a, err := box.Seal("tax-123")
	require.NoError(t, err)
	b, err := box.Seal("tax-123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "fresh nonce per write")
}

func TestFieldBoxEmptyValuePassesThrough(t *testing.T) {
	box := testBox(t)

	enc, err := box.Seal("")
	require.NoError(t, err)
	assert.Empty(t, enc)

	plain, err := box.Open("")
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestFieldBoxOpenRejectsTampering(t *testing.T) {
	box := testBox(t)

	enc, err := box.Seal("secret-field")
	require.NoError(t, err)

	// Flip one hex digit in the sealed portion.
	last := enc[len(enc)-1]
	flipped := "0"
	if last == '0' {
		flipped = "1"
	}
	_, err = box.Open(enc[:len(enc)-1] + flipped)
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = box.Open("not hex at all")
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = box.Open("abcd") // shorter than a nonce
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestFieldBoxWrongKeyFailsClosed(t *testing.T) {
	box := testBox(t)
	other, err := NewFieldBox(strings.Repeat("cd", 32))
	require.NoError(t, err)

	enc, err := box.Seal("secret-field")
	require.NoError(t, err)

	_, err = other.Open(enc)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestNewFieldBoxValidatesKey(t *testing.T) {
	_, err := NewFieldBox("zz") // not hex
	assert.Error(t, err)

	_, err = NewFieldBox("abcd") // wrong length
	assert.Error(t, err)
}
