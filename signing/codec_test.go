package signing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, maxAge time.Duration) *Codec {
	t.Helper()
	codec, err := NewCodec([]byte("test-secret"), maxAge)
	require.NoError(t, err)
	return codec
}

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec(nil, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	for _, action := range []Action{ActionAccept, ActionReject} {
		token, err := codec.Sign(42, action)
		require.NoError(t, err)

		claims, ok := codec.Verify(token)
		require.True(t, ok)
		assert.Equal(t, uint(42), claims.Subject)
		assert.Equal(t, action, claims.Action)
		assert.Zero(t, claims.Recipient)
	}
}

func TestSignForCarriesRecipient(t *testing.T) {
	codec := newTestCodec(t, 0)

	token, err := codec.SignFor(7, 9, ActionAccept)
	require.NoError(t, err)

	claims, ok := codec.Verify(token)
	require.True(t, ok)
	assert.Equal(t, uint(7), claims.Subject)
	assert.Equal(t, uint(9), claims.Recipient)
}

func TestSignRejectsUnknownAction(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	_, err := codec.Sign(1, Action("block"))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestVerifyRejectsAnySingleCharacterMutation(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	token, err := codec.Sign(42, ActionAccept)
	require.NoError(t, err)

	for i := range token {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		mutated := token[:i] + string(replacement) + token[i+1:]

		_, ok := codec.Verify(mutated)
		assert.False(t, ok, "mutation at index %d was accepted", i)
	}
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	for _, token := range []string{
		"",
		"garbage",
		"a.b.c",
		"...",
		strings.Repeat("x", 512),
	} {
		_, ok := codec.Verify(token)
		assert.False(t, ok, "token %q was accepted", token)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	other, err := NewCodec([]byte("another-secret"), time.Hour)
	require.NoError(t, err)

	token, err := other.Sign(42, ActionAccept)
	require.NoError(t, err)

	_, ok := codec.Verify(token)
	assert.False(t, ok)
}

func TestVerifyRejectsExpiredTokens(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	codec.now = func() time.Time { return issued }
	token, err := codec.Sign(42, ActionReject)
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, ok := codec.Verify(token)
	assert.True(t, ok)

	codec.now = func() time.Time { return issued.Add(time.Hour) }
	_, ok = codec.Verify(token)
	assert.False(t, ok)
}

func TestZeroMaxAgeNeverExpires(t *testing.T) {
	codec := newTestCodec(t, 0)
	issued := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	codec.now = func() time.Time { return issued }
	token, err := codec.Sign(3, ActionAccept)
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.AddDate(10, 0, 0) }
	_, ok := codec.Verify(token)
	assert.True(t, ok)
}
