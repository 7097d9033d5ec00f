package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestIssuer(accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return NewTokenIssuer([]byte("test-secret"), "task-manager-api", accessTTL, refreshTTL)
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(time.Hour, 2*time.Hour)
	token, err := issuer.IssueAccessToken(42, "a@x.com")
	require.NoError(t, err)

	claims, err := issuer.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, TokenTypeAccess, claims.Type)
	require.Equal(t, "task-manager-api", claims.Issuer)
}

func TestRefreshTokenOmitsEmail(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(time.Hour, 2*time.Hour)
	token, err := issuer.IssueRefreshToken(42)
	require.NoError(t, err)

	claims, err := issuer.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, TokenTypeRefresh, claims.Type)
	require.Empty(t, claims.Email)
}

func TestVerifyTokenExpired(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(-time.Minute, -time.Minute)
	token, err := issuer.IssueAccessToken(1, "a@x.com")
	require.NoError(t, err)

	_, err = issuer.VerifyToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(time.Hour, time.Hour)
	token, err := issuer.IssueAccessToken(1, "a@x.com")
	require.NoError(t, err)

	other := NewTokenIssuer([]byte("different-secret"), "task-manager-api", time.Hour, time.Hour)
	_, err = other.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifyTokenWrongIssuer(t *testing.T) {
	t.Parallel()

	foreign := NewTokenIssuer([]byte("test-secret"), "some-other-deployment", time.Hour, time.Hour)
	token, err := foreign.IssueAccessToken(1, "a@x.com")
	require.NoError(t, err)

	// same secret, different issuer claim: must not validate
	issuer := newTestIssuer(time.Hour, time.Hour)
	_, err = issuer.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifyTokenMalformed(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(time.Hour, time.Hour)
	_, err := issuer.VerifyToken("not.a.jwt")
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestIssueTokenPair(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(time.Hour, 2*time.Hour)
	pair, err := issuer.IssueTokenPair(7, "b@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, time.Hour, pair.ExpiresIn)

	access, err := issuer.VerifyToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, TokenTypeAccess, access.Type)

	refresh, err := issuer.VerifyToken(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, TokenTypeRefresh, refresh.Type)
}

func TestDecodeUnverified(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(-time.Minute, -time.Minute)
	token, err := issuer.IssueAccessToken(9, "c@x.com")
	require.NoError(t, err)

	// expired tokens still decode; this path is diagnostics only
	claims := issuer.DecodeUnverified(token)
	require.NotNil(t, claims)
	require.Equal(t, int64(9), claims.UserID)

	require.Nil(t, issuer.DecodeUnverified("garbage"))
}
