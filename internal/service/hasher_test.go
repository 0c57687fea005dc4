package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("", 0)
	require.NoError(t, err)
	assert.Equal(t, BcryptHasher{Cost: bcrypt.DefaultCost}, h)

	h, err = NewHasher(HasherPlain, 0)
	require.NoError(t, err)
	assert.Equal(t, PlainHasher{}, h)

	_, err = NewHasher(HasherBcrypt, 99)
	assert.Error(t, err)

	_, err = NewHasher("md5", 0)
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	first, err := h.Hash("pw1")
	require.NoError(t, err)
	second, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "hashes are salted")

	assert.True(t, h.Compare(first, "pw1"))
	assert.False(t, h.Compare(first, "pw2"))
	assert.False(t, h.Compare("pw1", "pw1"), "legacy plaintext never matches")

	_, err = h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestPlainHasher(t *testing.T) {
	h := PlainHasher{}
	stored, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.True(t, h.Compare(stored, "pw1"))
	assert.False(t, h.Compare(stored, "pw"))
}
