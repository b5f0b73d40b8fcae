package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestVerifyAdminToken(t *testing.T) {
	token, err := IssueAdminToken(secret, "owner", time.Hour)
	require.NoError(t, err)

	subject, err := VerifyAdminToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "owner", subject)
}

func TestVerifyAdminToken_Rejects(t *testing.T) {
	forged, err := IssueAdminToken([]byte("other-secret"), "intruder", time.Hour)
	require.NoError(t, err)
	expired, err := IssueAdminToken(secret, "owner", -time.Minute)
	require.NoError(t, err)
	viewer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Role: "viewer"}).SignedString(secret)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{Role: AdminRole}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"wrong secret", forged, ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"unsigned", unsigned, ErrInvalidToken},
		{"not admin", viewer, ErrNotAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyAdminToken(secret, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
