package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/modulehub/internal/model"
)

func newTestHasher() *Bcrypt {
	return NewBcrypt(bcrypt.MinCost, Policy{MinLength: 8})
}

func TestBcrypt_RoundTrip(t *testing.T) {
	h := newTestHasher()

	hash, err := h.Hash("longenough")
	require.NoError(t, err)
	assert.NotEqual(t, "longenough", hash)

	ok, err := h.Verify(hash, "longenough")
	require.NoError(t, err)
	assert.True(t, ok)

	for _, other := range []string{"longenougH", "longenough ", "", "something else"} {
		ok, err := h.Verify(hash, other)
		require.NoError(t, err)
		assert.False(t, ok, other)
	}
}

func TestBcrypt_FreshSaltPerHash(t *testing.T) {
	h := newTestHasher()

	first, err := h.Hash("longenough")
	require.NoError(t, err)
	second, err := h.Hash("longenough")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcrypt_Policy(t *testing.T) {
	h := newTestHasher()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "too short", password: "short", wantErr: ErrTooShort},
		{name: "exactly min", password: "12345678"},
		{name: "multibyte counts runes", password: "пароль12"},
		{name: "too long", password: strings.Repeat("a", 73), wantErr: ErrTooLong},
		{name: "bcrypt limit", password: strings.Repeat("a", 72)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Hash(tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBcrypt_VerifyMalformedHash(t *testing.T) {
	h := newTestHasher()

	ok, err := h.Verify("not-a-hash", "longenough")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestNewBcrypt_CostBounds(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0, Policy{}).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(99, Policy{}).cost)
	assert.Equal(t, 12, NewBcrypt(12, Policy{}).cost)
}

func TestBcrypt_DummyHashMatchesCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, bcrypt.MinCost + 1} {
		h := NewBcrypt(cost, Policy{MinLength: 8})

		got, err := bcrypt.Cost([]byte(h.DummyHash()))
		require.NoError(t, err)
		assert.Equal(t, cost, got)

		ok, err := h.Verify(h.DummyHash(), "longenough")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestPolicy_ErrorsAreInputErrors(t *testing.T) {
	err := Policy{MinLength: 8}.Validate("short")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
