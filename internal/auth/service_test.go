package auth

import (
	"testing"
	"time"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	plain := "messi10"

	hash, err := HashPassword(plain)
	require.NoError(t, err)

	require.True(t, ComparePasswords(hash, plain))
	require.False(t, ComparePasswords(hash, "ronaldo7"))
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager("0123456789abcdef", time.Hour, func() time.Time { return now })

	token, expireAt, err := tm.Issue("user-1", "session-1")
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), expireAt)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "session-1", claims.SessionID)
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	clock := now
	tm := NewTokenManager("0123456789abcdef", time.Hour, func() time.Time { return clock })

	token, _, err := tm.Issue("user-1", "session-1")
	require.NoError(t, err)

	clock = now.Add(2 * time.Hour)
	_, err = tm.Verify(token)
	require.Error(t, err)
	require.True(t, appErrors.HasCode(err, appErrors.ErrAuth))
	require.Contains(t, appErrors.MessageOf(err), "expired")
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("0123456789abcdef", time.Hour, nil)
	verifier := NewTokenManager("fedcba9876543210", time.Hour, nil)

	token, _, err := issuer.Issue("user-1", "session-1")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.True(t, appErrors.HasCode(err, appErrors.ErrAuth))

	_, err = verifier.Verify("not-a-token")
	require.True(t, appErrors.HasCode(err, appErrors.ErrAuth))
}
