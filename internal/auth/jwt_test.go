package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	svc := NewService([]byte("secret"))

	tok, err := svc.Sign("abc123", time.Hour)
	require.NoError(t, err)

	claims, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.SessionID)

	require.NoError(t, svc.VerifySession(tok, "abc123"))
	require.ErrorIs(t, svc.VerifySession(tok, "other"), ErrSessionMismatch)
}

func TestVerify_Rejects(t *testing.T) {
	svc := NewService([]byte("secret"))
	tok, err := svc.Sign("abc123", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name  string
		svc   *Service
		token string
		want  error
	}{
		{name: "wrong_secret", svc: NewService([]byte("other")), token: tok, want: jwt.ErrTokenSignatureInvalid},
		{name: "garbage", svc: svc, token: "not-a-jwt", want: jwt.ErrTokenMalformed},
		{name: "expired", svc: &Service{secret: []byte("secret"), now: func() time.Time { return time.Now().Add(2 * time.Hour) }}, token: tok, want: jwt.ErrTokenExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.svc.Verify(tc.token)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{SessionID: "abc123"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewService([]byte("secret")).Verify(tok)
	require.Error(t, err)
}
